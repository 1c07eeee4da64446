package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"nota-scan/pkg/models"
)

type newCategory struct {
	Codigo    int    `json:"codigo" binding:"required"`
	Descricao string `json:"descricao" binding:"required"`
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req newCategory
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.Categoria{Codigo: req.Codigo, Descricao: req.Descricao}
	if err := h.db.Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "codigo already in use"})
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) ListCategories(c *gin.Context) {
	var categories []models.Categoria
	if err := h.db.Order("codigo").Find(&categories).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}
