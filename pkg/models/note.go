package models

import "time"

// Nota is the confirmed ledger entry for one processed receipt. Valor is in
// centavos and never negative. A nota is immutable once created; there is no
// update path.
type Nota struct {
	ID                  uint       `gorm:"primary_key" json:"id"`
	Valor               int64      `gorm:"not null" json:"valor"`
	Data                time.Time  `gorm:"not null" json:"data"`
	Descricao           string     `gorm:"size:255" json:"descricao"`
	ImagemOriginalURL   string     `gorm:"size:512;not null" json:"imagem_original_url"`
	ImagemProcessadaURL string     `gorm:"size:512;not null" json:"imagem_processada_url"`
	CategoriaID         uint       `gorm:"not null" json:"categoria_id"`
	Categoria           *Categoria `gorm:"foreignKey:CategoriaID" json:"categoria,omitempty"`
	UsuarioID           uint       `gorm:"not null;index" json:"usuario_id"`
	PlanilhaID          uint       `gorm:"not null;index" json:"planilha_id"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
