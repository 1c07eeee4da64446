package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"nota-scan/pkg/models"
)

type newSheet struct {
	Codigo string `json:"codigo" binding:"required"`
}

func (h *Handler) CreateSheet(c *gin.Context) {
	var req newSheet
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := currentUser(c)
	sheet := models.Planilha{Codigo: req.Codigo, UsuarioID: user.ID}
	if err := h.db.Create(&sheet).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "sheet codigo already in use for this user"})
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sheet)
}

// LastSheet returns the user's most recently created sheet, which the
// client uses as the default confirm target.
func (h *Handler) LastSheet(c *gin.Context) {
	user := currentUser(c)

	var sheet models.Planilha
	err := h.db.Where("usuario_id = ?", user.ID).Order("id desc").First(&sheet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no sheets for this user"})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}
