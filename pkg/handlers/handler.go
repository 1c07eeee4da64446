// Package handlers is the gin HTTP layer. Handlers do request decoding and
// response shaping only; all behavior lives in the service packages.
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"nota-scan/pkg/apperr"
	"nota-scan/pkg/auth"
	"nota-scan/pkg/config"
	"nota-scan/pkg/models"
	"nota-scan/pkg/services/ledger"
	"nota-scan/pkg/services/report"
	"nota-scan/pkg/services/scan"
)

const userKey = "currentUser"

// URLSigner produces time-limited read URLs for stored objects.
type URLSigner interface {
	SignedURL(objectName string, ttl time.Duration) (string, error)
}

type Handler struct {
	db         *gorm.DB
	logger     *logrus.Logger
	auth       *auth.Manager
	scanner    *scan.Orchestrator
	reconciler *ledger.Reconciler
	reports    *report.Generator
	signer     URLSigner
	signedTTL  time.Duration
}

func New(db *gorm.DB, logger *logrus.Logger, authManager *auth.Manager, scanner *scan.Orchestrator, reconciler *ledger.Reconciler, reports *report.Generator, signer URLSigner, signedTTL time.Duration) *Handler {
	return &Handler{
		db:         db,
		logger:     logger,
		auth:       authManager,
		scanner:    scanner,
		reconciler: reconciler,
		reports:    reports,
		signer:     signer,
		signedTTL:  signedTTL,
	}
}

func (h *Handler) Register(r *gin.Engine) {
	api := r.Group("/api/v1")

	api.POST("/users", h.CreateUser)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/refresh", h.Refresh)

	protected := api.Group("", h.AuthRequired())
	protected.GET("/users/:codigo", h.GetUser)
	protected.POST("/users/:codigo/credit", h.CreditUser)

	protected.POST("/categories", h.CreateCategory)
	protected.GET("/categories", h.ListCategories)

	protected.POST("/sheets", h.CreateSheet)
	protected.GET("/sheets/last", h.LastSheet)

	protected.POST("/notes/process", h.ProcessNote)
	protected.POST("/notes/confirm", h.ConfirmNote)
	protected.POST("/notes/reject", h.RejectNote)
	protected.GET("/notes/last", h.LastNotes)
	protected.GET("/notes/count", h.CountNotes)
	protected.GET("/notes/image-url", h.SignNoteImage)

	protected.GET("/reports/:planilha_id", h.BuildReport)
}

// AuthRequired resolves the bearer token to a Usuario and stores it on the
// context for the handler.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := h.auth.ValidateAccess(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		var user models.Usuario
		err = h.db.Where("codigo = ?", claims.Codigo).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}
		if err != nil {
			h.respondError(c, err)
			c.Abort()
			return
		}

		c.Set(userKey, &user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.Usuario {
	return c.MustGet(userKey).(*models.Usuario)
}

// respondError maps the error taxonomy to HTTP statuses. Unclassified
// errors are logged and reported as 500 without the internal message.
func (h *Handler) respondError(c *gin.Context, err error) {
	var (
		ve  *apperr.ValidationError
		nf  *apperr.NotFoundError
		ese *apperr.ExternalServiceError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Msg})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": nf.Error()})
	case errors.Is(err, apperr.ErrInsufficientBalance):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &ese):
		config.LogError(h.logger, "handler.go", "respondError", c.FullPath(), ese.Service, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": ese.Error()})
	default:
		config.LogError(h.logger, "handler.go", "respondError", c.FullPath(), nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
