package models

import "time"

// RefreshToken backs refresh-token rotation so issued tokens can be revoked.
type RefreshToken struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	UsuarioID uint      `gorm:"not null;index" json:"usuario_id"`
	Token     string    `gorm:"size:512;not null;unique" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Revoked   bool      `gorm:"not null;default:false" json:"revoked"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
