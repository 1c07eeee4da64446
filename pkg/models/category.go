package models

// Categoria classifies notes for reporting.
type Categoria struct {
	ID        uint   `gorm:"primary_key" json:"id"`
	Codigo    int    `gorm:"not null;unique" json:"codigo"`
	Descricao string `gorm:"size:255;not null" json:"descricao"`
}
