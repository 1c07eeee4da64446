package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"nota-scan/pkg/models"
	"nota-scan/pkg/services/ledger"
	"nota-scan/pkg/services/storage"
)

// maxUploadBytes caps receipt uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// ProcessNote accepts a multipart receipt image and runs the scan pipeline.
// The response is a reviewable draft; nothing is persisted until confirm.
func (h *Handler) ProcessNote(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds 10 MiB"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.respondError(c, err)
		return
	}

	draft, err := h.scanner.Process(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

type confirmNoteRequest struct {
	PlanilhaID          uint   `json:"planilha_id" binding:"required"`
	CategoriaID         uint   `json:"categoria_id" binding:"required"`
	Valor               string `json:"valor" binding:"required"`
	Data                string `json:"data" binding:"required"`
	Descricao           string `json:"descricao"`
	ImagemOriginalURL   string `json:"imagem_original_url" binding:"required"`
	ImagemProcessadaURL string `json:"imagem_processada_url" binding:"required"`
}

// ConfirmNote turns a reviewed draft into a persisted nota and debits the
// caixa atomically.
func (h *Handler) ConfirmNote(c *gin.Context) {
	var req confirmNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	nota, err := h.reconciler.Confirm(c.Request.Context(), ledger.ConfirmRequest{
		UsuarioID:           currentUser(c).ID,
		PlanilhaID:          req.PlanilhaID,
		CategoriaID:         req.CategoriaID,
		Valor:               req.Valor,
		Data:                req.Data,
		Descricao:           req.Descricao,
		ImagemOriginalURL:   req.ImagemOriginalURL,
		ImagemProcessadaURL: req.ImagemProcessadaURL,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, nota)
}

type rejectNoteRequest struct {
	URLs []string `json:"urls" binding:"required"`
}

// RejectNote discards an abandoned draft by deleting its uploaded images.
func (h *Handler) RejectNote(c *gin.Context) {
	var req rejectNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results := h.reconciler.Reject(c.Request.Context(), req.URLs)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *Handler) LastNotes(c *gin.Context) {
	var notas []models.Nota
	err := h.db.Preload("Categoria").
		Where("usuario_id = ?", currentUser(c).ID).
		Order("created_at desc").
		Limit(10).
		Find(&notas).Error
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notas)
}

// SignNoteImage exchanges a stored image URL for a short-lived signed read
// URL, so clients can display receipts from a non-public bucket.
func (h *Handler) SignNoteImage(c *gin.Context) {
	objectName := storage.ObjectName(c.Query("url"))
	if objectName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'url' is required"})
		return
	}

	signed, err := h.signer.SignedURL(objectName, h.signedTTL)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"signed_url": signed,
		"expires_in": int(h.signedTTL.Seconds()),
	})
}

func (h *Handler) CountNotes(c *gin.Context) {
	var total int64
	err := h.db.Model(&models.Nota{}).
		Where("usuario_id = ?", currentUser(c).ID).
		Count(&total).Error
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_notes": total})
}
