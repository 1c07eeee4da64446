package ledger

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nota-scan/pkg/apperr"
	"nota-scan/pkg/models"
)

// Store is the persistence boundary of the reconciler. The gorm
// implementation is used in production; tests substitute an in-memory one.
type Store interface {
	SheetForUser(ctx context.Context, planilhaID, usuarioID uint) (*models.Planilha, error)
	CategoryByID(ctx context.Context, categoriaID uint) (*models.Categoria, error)
	// CommitNota inserts the nota and debits the owner's caixa by
	// nota.Valor inside one transaction. It returns
	// apperr.ErrInsufficientBalance, with no state change, when the
	// balance cannot cover the amount.
	CommitNota(ctx context.Context, nota *models.Nota) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) SheetForUser(ctx context.Context, planilhaID, usuarioID uint) (*models.Planilha, error) {
	var sheet models.Planilha
	err := s.db.WithContext(ctx).
		Where("id = ? AND usuario_id = ?", planilhaID, usuarioID).
		First(&sheet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperr.NotFoundError{Resource: "planilha"}
	}
	if err != nil {
		return nil, err
	}
	return &sheet, nil
}

func (s *GormStore) CategoryByID(ctx context.Context, categoriaID uint) (*models.Categoria, error) {
	var category models.Categoria
	err := s.db.WithContext(ctx).First(&category, categoriaID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperr.NotFoundError{Resource: "categoria"}
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// CommitNota serializes concurrent confirms for the same user through a row
// lock so two debits cannot both observe a sufficient balance.
func (s *GormStore) CommitNota(ctx context.Context, nota *models.Nota) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.Usuario
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, nota.UsuarioID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFoundError{Resource: "usuario"}
		}
		if err != nil {
			return err
		}

		if user.Caixa < nota.Valor {
			return apperr.ErrInsufficientBalance
		}

		if err := tx.Create(nota).Error; err != nil {
			return err
		}
		return tx.Model(&models.Usuario{}).
			Where("id = ?", user.ID).
			Update("caixa", gorm.Expr("caixa - ?", nota.Valor)).Error
	})
}
