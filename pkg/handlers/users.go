package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"nota-scan/pkg/models"
)

// CreateUser registers a new user with a bcrypt-hashed senha. This route is
// open; everything else behind the API requires a token issued for an
// existing user.
func (h *Handler) CreateUser(c *gin.Context) {
	var req models.NewUsuario
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Caixa < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "caixa must not be negative"})
		return
	}

	user := models.Usuario{
		Codigo:      req.Codigo,
		Nome:        req.Nome,
		Email:       req.Email,
		Caixa:       req.Caixa,
		IsSuperuser: req.IsSuperuser,
	}
	if err := user.SetPassword(req.Senha); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "codigo or email already in use"})
			return
		}
		h.respondError(c, err)
		return
	}

	user.PrepareGive()
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) GetUser(c *gin.Context) {
	codigo := c.Param("codigo")

	var user models.Usuario
	err := h.db.Where("codigo = ?", codigo).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "usuario not found"})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	user.PrepareGive()
	c.JSON(http.StatusOK, user)
}

type creditRequest struct {
	Valor int64 `json:"valor" binding:"required"`
}

// CreditUser adds to a user's caixa. This is the only mutation of the
// balance outside the confirm flow and it is restricted to superusers.
func (h *Handler) CreditUser(c *gin.Context) {
	if !currentUser(c).IsSuperuser {
		c.JSON(http.StatusForbidden, gin.H{"error": "superuser required"})
		return
	}

	var req creditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Valor <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valor must be positive"})
		return
	}

	codigo := c.Param("codigo")
	res := h.db.Model(&models.Usuario{}).
		Where("codigo = ?", codigo).
		Update("caixa", gorm.Expr("caixa + ?", req.Valor))
	if res.Error != nil {
		h.respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "usuario not found"})
		return
	}

	var user models.Usuario
	if err := h.db.Where("codigo = ?", codigo).First(&user).Error; err != nil {
		h.respondError(c, err)
		return
	}
	user.PrepareGive()
	c.JSON(http.StatusOK, user)
}
