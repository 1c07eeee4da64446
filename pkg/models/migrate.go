package models

import "gorm.io/gorm"

func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&Usuario{},
		&Categoria{},
		&Planilha{},
		&Nota{},
		&RefreshToken{},
	)
}
