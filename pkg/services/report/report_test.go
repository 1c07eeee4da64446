package report

import (
	"testing"
	"time"

	"nota-scan/pkg/models"
)

func date(day int) time.Time {
	return time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC)
}

func TestBuildGroupsAndTotals(t *testing.T) {
	mercado := &models.Categoria{ID: 1, Codigo: 10, Descricao: "Mercado"}
	farmacia := &models.Categoria{ID: 2, Codigo: 20, Descricao: "Farmacia"}

	notas := []models.Nota{
		{ID: 1, Valor: 123456, Data: date(2), CategoriaID: 1, Categoria: mercado},
		{ID: 2, Valor: 1000, Data: date(10), CategoriaID: 1, Categoria: mercado},
		{ID: 3, Valor: 2550, Data: date(12), CategoriaID: 2, Categoria: farmacia},
	}

	f := build(notas)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}

	want := [][]string{
		{"ID", "Categoria", "Valor", "Data"},
		{"1", "Mercado", "R$ 1.234,56", "02/08/2026"},
		{"2", "Mercado", "R$ 10,00", "10/08/2026"},
		{"", "Subtotal", "R$ 1.244,56"},
		{"3", "Farmacia", "R$ 25,50", "12/08/2026"},
		{"", "Subtotal", "R$ 25,50"},
		{"", "Total", "R$ 1.270,06"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d: %v", len(rows), len(want), rows)
	}
	for i, wantRow := range want {
		for j, cell := range wantRow {
			if j >= len(rows[i]) {
				if cell == "" {
					continue
				}
				t.Fatalf("row %d missing column %d, want %q", i, j, cell)
			}
			if rows[i][j] != cell {
				t.Fatalf("row %d col %d = %q, want %q", i, j, rows[i][j], cell)
			}
		}
	}
}

func TestBuildEmptySheet(t *testing.T) {
	f := build(nil)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header and total only: %v", len(rows), rows)
	}
	if rows[1][1] != "Total" || rows[1][2] != "R$ 0,00" {
		t.Fatalf("total row = %v", rows[1])
	}
}
