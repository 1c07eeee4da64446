// Package ledger turns a reviewed draft into a persisted nota and keeps the
// user's caixa consistent with it.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"nota-scan/pkg/apperr"
	"nota-scan/pkg/config"
	"nota-scan/pkg/models"
	"nota-scan/pkg/services/extract"
)

const dateLayout = "02/01/2006"

// ObjectStore is the delete-side of the object gateway used by the reject
// flow.
type ObjectStore interface {
	Delete(ctx context.Context, url string) error
}

// ConfirmRequest carries the draft fields as reviewed by the user, plus the
// pre-resolved identifiers from the request layer.
type ConfirmRequest struct {
	UsuarioID           uint
	PlanilhaID          uint
	CategoriaID         uint
	Valor               string
	Data                string
	Descricao           string
	ImagemOriginalURL   string
	ImagemProcessadaURL string
}

// RejectResult reports one cleanup attempt of the reject flow.
type RejectResult struct {
	URL     string `json:"url"`
	Deleted bool   `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

type Reconciler struct {
	store   Store
	objects ObjectStore
	logger  *logrus.Logger
}

func NewReconciler(store Store, objects ObjectStore, logger *logrus.Logger) *Reconciler {
	return &Reconciler{store: store, objects: objects, logger: logger}
}

// Confirm validates the draft and commits the nota and the caixa debit as
// one all-or-nothing operation. Preconditions are checked in a fixed order
// and each failure class is reported distinctly; on any failure nothing is
// written.
func (r *Reconciler) Confirm(ctx context.Context, req ConfirmRequest) (*models.Nota, error) {
	sheet, err := r.store.SheetForUser(ctx, req.PlanilhaID, req.UsuarioID)
	if err != nil {
		return nil, err
	}
	category, err := r.store.CategoryByID(ctx, req.CategoriaID)
	if err != nil {
		return nil, err
	}

	date, err := time.Parse(dateLayout, req.Data)
	if err != nil {
		return nil, apperr.Validation("data must be DD/MM/YYYY, got %q", req.Data)
	}
	if req.ImagemOriginalURL == "" || req.ImagemProcessadaURL == "" {
		return nil, apperr.Validation("both image URLs are required")
	}

	amount, err := extract.ParseAmount(req.Valor)
	if err != nil {
		return nil, err
	}

	nota := &models.Nota{
		Valor:               extract.MinorUnits(amount),
		Data:                date,
		Descricao:           req.Descricao,
		ImagemOriginalURL:   req.ImagemOriginalURL,
		ImagemProcessadaURL: req.ImagemProcessadaURL,
		CategoriaID:         category.ID,
		UsuarioID:           req.UsuarioID,
		PlanilhaID:          sheet.ID,
	}

	if err := r.store.CommitNota(ctx, nota); err != nil {
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"nota_id":     nota.ID,
		"usuario_id":  nota.UsuarioID,
		"planilha_id": nota.PlanilhaID,
		"valor":       nota.Valor,
	}).Info("[ledger.confirm]")

	return nota, nil
}

// Reject deletes the given image URLs best effort. Every URL is attempted
// even when earlier deletions fail; an already-missing object counts as
// settled.
func (r *Reconciler) Reject(ctx context.Context, urls []string) []RejectResult {
	results := make([]RejectResult, 0, len(urls))
	for _, url := range urls {
		result := RejectResult{URL: url}
		err := r.objects.Delete(ctx, url)
		switch {
		case err == nil:
			result.Deleted = true
		case isNotFound(err):
			result.Deleted = true
		default:
			result.Error = err.Error()
			config.LogError(r.logger, "ledger.go", "Reject", "delete object", url, err)
		}
		results = append(results, result)
	}
	return results
}

func isNotFound(err error) bool {
	var nf *apperr.NotFoundError
	return errors.As(err, &nf)
}
