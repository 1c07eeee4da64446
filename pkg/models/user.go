package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Usuario owns sheets and notes. Caixa is the running balance in centavos;
// it is debited by confirmed notes and must never go negative.
type Usuario struct {
	ID          uint      `gorm:"primary_key" json:"id"`
	Codigo      string    `gorm:"size:100;not null;unique" json:"codigo"`
	Nome        string    `gorm:"size:100;not null" json:"nome"`
	Email       string    `gorm:"size:100;not null;unique" json:"email"`
	Senha       string    `gorm:"size:255;not null" json:"senha,omitempty"`
	Caixa       int64     `gorm:"not null;default:0" json:"caixa"`
	IsSuperuser bool      `gorm:"not null;default:false" json:"is_superuser"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewUsuario struct {
	Codigo      string `json:"codigo" binding:"required"`
	Nome        string `json:"nome" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Senha       string `json:"senha" binding:"required"`
	Caixa       int64  `json:"caixa"`
	IsSuperuser bool   `json:"is_superuser"`
}

func (u *Usuario) SetPassword(plain string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Senha = string(hashed)
	return nil
}

func (u *Usuario) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Senha), []byte(plain)) == nil
}

// PrepareGive strips the password hash before the record leaves the API.
func (u *Usuario) PrepareGive() {
	u.Senha = ""
}
