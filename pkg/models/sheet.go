package models

import "time"

// Planilha groups a user's notes into one reporting spreadsheet.
type Planilha struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	Codigo    string    `gorm:"size:100;not null;uniqueIndex:idx_planilha_codigo_usuario" json:"codigo"`
	UsuarioID uint      `gorm:"not null;uniqueIndex:idx_planilha_codigo_usuario" json:"usuario_id"`
	Usuario   *Usuario  `gorm:"foreignKey:UsuarioID" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
