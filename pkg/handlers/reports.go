package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nota-scan/pkg/config"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BuildReport streams the sheet's notas as an xlsx download.
func (h *Handler) BuildReport(c *gin.Context) {
	planilhaID, err := strconv.ParseUint(c.Param("planilha_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "planilha_id must be numeric"})
		return
	}

	f, filename, err := h.reports.Build(c.Request.Context(), uint(planilhaID), currentUser(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := f.Write(c.Writer); err != nil {
		config.LogError(h.logger, "reports.go", "BuildReport", "stream workbook", filename, err)
	}
}
