// Package auth issues and validates the API's JWT access tokens and manages
// DB-backed refresh tokens.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"nota-scan/pkg/apperr"
	"nota-scan/pkg/models"
)

// Claims is the access-token payload. Codigo identifies the user; the
// numeric ID is resolved per request so tokens survive re-imports.
type Claims struct {
	Codigo string `json:"codigo_usuario"`
	jwt.RegisteredClaims
}

// TokenPair is what a successful login or refresh returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	db         *gorm.DB
}

func NewManager(secret string, accessTTL, refreshTTL time.Duration, db *gorm.DB) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		db:         db,
	}
}

// CreateAccessToken signs a short-lived HS256 token for the given user code.
func (m *Manager) CreateAccessToken(codigo string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Codigo: codigo,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
	})
	return token.SignedString(m.secret)
}

// ValidateAccess parses and verifies an access token and returns its claims.
func (m *Manager) ValidateAccess(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, apperr.Validation("invalid token: %v", err)
	}
	if !token.Valid {
		return nil, apperr.Validation("invalid token")
	}
	return claims, nil
}

// IssuePair signs an access token and stores a fresh refresh token for the
// user.
func (m *Manager) IssuePair(ctx context.Context, user *models.Usuario) (*TokenPair, error) {
	return m.issuePair(m.db.WithContext(ctx), user)
}

func (m *Manager) issuePair(db *gorm.DB, user *models.Usuario) (*TokenPair, error) {
	access, err := m.CreateAccessToken(user.Codigo)
	if err != nil {
		return nil, err
	}

	refresh, err := opaqueToken()
	if err != nil {
		return nil, err
	}
	record := &models.RefreshToken{
		UsuarioID: user.ID,
		Token:     refresh,
		ExpiresAt: time.Now().Add(m.refreshTTL),
	}
	if err := db.Create(record).Error; err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued inside one transaction, so a failed issue leaves the old
// token usable. Expired or already-revoked tokens are rejected.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var record models.RefreshToken
	err := m.db.WithContext(ctx).
		Where("token = ?", refreshToken).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Validation("unknown refresh token")
	}
	if err != nil {
		return nil, err
	}
	if record.Revoked || time.Now().After(record.ExpiresAt) {
		return nil, apperr.Validation("refresh token expired or revoked")
	}

	var user models.Usuario
	if err := m.db.WithContext(ctx).First(&user, record.UsuarioID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Resource: "usuario"}
		}
		return nil, err
	}

	var pair *TokenPair
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&record).Update("revoked", true).Error; err != nil {
			return err
		}
		p, err := m.issuePair(tx, &user)
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func opaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
