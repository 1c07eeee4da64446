// Package report renders a sheet's confirmed notas as an xlsx workbook.
package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"nota-scan/pkg/apperr"
	"nota-scan/pkg/models"
	"nota-scan/pkg/services/extract"
)

const sheetName = "Sheet1"

type Generator struct {
	db *gorm.DB
}

func NewGenerator(db *gorm.DB) *Generator {
	return &Generator{db: db}
}

// Build assembles the workbook for one sheet owned by the given user. Notas
// are grouped by category with a subtotal per group and a grand total row.
func (g *Generator) Build(ctx context.Context, planilhaID, usuarioID uint) (*excelize.File, string, error) {
	var sheet models.Planilha
	err := g.db.WithContext(ctx).
		Where("id = ? AND usuario_id = ?", planilhaID, usuarioID).
		First(&sheet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", &apperr.NotFoundError{Resource: "planilha"}
	}
	if err != nil {
		return nil, "", err
	}

	var notas []models.Nota
	err = g.db.WithContext(ctx).
		Preload("Categoria").
		Where("planilha_id = ?", sheet.ID).
		Order("categoria_id, data").
		Find(&notas).Error
	if err != nil {
		return nil, "", err
	}

	return build(notas), sheet.Codigo + ".xlsx", nil
}

func build(notas []models.Nota) *excelize.File {
	f := excelize.NewFile()

	f.SetCellValue(sheetName, "A1", "ID")
	f.SetCellValue(sheetName, "B1", "Categoria")
	f.SetCellValue(sheetName, "C1", "Valor")
	f.SetCellValue(sheetName, "D1", "Data")

	row := 2
	var total, subtotal int64
	var currentCategory uint
	for i, nota := range notas {
		if i > 0 && nota.CategoriaID != currentCategory {
			writeSubtotal(f, row, subtotal)
			row++
			subtotal = 0
		}
		currentCategory = nota.CategoriaID

		f.SetCellValue(sheetName, "A"+fmt.Sprint(row), nota.ID)
		f.SetCellValue(sheetName, "B"+fmt.Sprint(row), categoryLabel(&nota))
		f.SetCellValue(sheetName, "C"+fmt.Sprint(row), "R$ "+extract.FormatMinor(nota.Valor))
		f.SetCellValue(sheetName, "D"+fmt.Sprint(row), nota.Data.Format("02/01/2006"))
		row++

		subtotal += nota.Valor
		total += nota.Valor
	}
	if len(notas) > 0 {
		writeSubtotal(f, row, subtotal)
		row++
	}

	f.SetCellValue(sheetName, "B"+fmt.Sprint(row), "Total")
	f.SetCellValue(sheetName, "C"+fmt.Sprint(row), "R$ "+extract.FormatMinor(total))
	return f
}

func writeSubtotal(f *excelize.File, row int, subtotal int64) {
	f.SetCellValue(sheetName, "B"+fmt.Sprint(row), "Subtotal")
	f.SetCellValue(sheetName, "C"+fmt.Sprint(row), "R$ "+extract.FormatMinor(subtotal))
}

func categoryLabel(nota *models.Nota) string {
	if nota.Categoria != nil {
		return nota.Categoria.Descricao
	}
	return fmt.Sprint(nota.CategoriaID)
}
