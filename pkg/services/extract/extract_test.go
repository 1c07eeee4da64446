package extract

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestExtract_KeywordWindowTakesMaximum(t *testing.T) {
	text := "CUPOM FISCAL\nVALOR TOTAL 12,50 199,90\nOBRIGADO"
	got := Extract(text)
	if got.Valor != "199,90" {
		t.Fatalf("expected 199,90, got %s", got.Valor)
	}
}

func TestExtract_KeywordPriorityOrder(t *testing.T) {
	// VALOR PAGO appears earlier in the document but VALOR TOTAL has
	// higher priority and must win.
	text := "VALOR PAGO 50,00 ...................................................................... VALOR TOTAL 10,00"
	got := Extract(text)
	if got.Valor != "10,00" {
		t.Fatalf("expected 10,00 from VALOR TOTAL window, got %s", got.Valor)
	}
}

func TestExtract_WindowCountsCharactersNotBytes(t *testing.T) {
	// The candidate sits 43 characters before the keyword but 71 bytes
	// back because of the accented run; a byte-counted window would miss
	// it and fall through to the larger global value.
	text := "123,45 " + strings.Repeat("ç", 35) + " VALOR TOTAL " +
		strings.Repeat(".", 60) + " 999,99"
	got := Extract(text)
	if got.Valor != "123,45" {
		t.Fatalf("expected 123,45 from the keyword window, got %s", got.Valor)
	}
}

func TestExtract_BrazilianFormatting(t *testing.T) {
	got := Extract("VALOR TOTAL R$ 1.234,56")
	if got.Valor != "1.234,56" {
		t.Fatalf("expected 1.234,56, got %s", got.Valor)
	}
}

func TestExtract_USFormatNormalizedEquivalently(t *testing.T) {
	got := Extract("Total 1,234.56")
	if got.Valor != "1.234,56" {
		t.Fatalf("expected 1.234,56, got %s", got.Valor)
	}
}

func TestExtract_FallbackToGlobalMaximum(t *testing.T) {
	text := "sem palavras chave 33,10 e tambem 7,99"
	got := Extract(text)
	if got.Valor != "33,10" {
		t.Fatalf("expected 33,10, got %s", got.Valor)
	}
}

func TestExtract_NoMonetaryValues(t *testing.T) {
	got := Extract("nenhum numero por aqui")
	if got.Valor != "0,00" {
		t.Fatalf("expected 0,00, got %s", got.Valor)
	}
	if got.Data != "" {
		t.Fatalf("expected empty date, got %s", got.Data)
	}
}

func TestExtract_FirstDateInDocumentOrder(t *testing.T) {
	cases := []struct {
		text     string
		expected string
	}{
		{"emitida em 05/01/2025 paga em 07/01/2025", "05/01/2025"},
		{"data 2025-01-05 e depois 06/01/2025", "05/01/2025"},
		{"sem data nenhuma", ""},
	}
	for _, tc := range cases {
		got := Extract(tc.text)
		if got.Data != tc.expected {
			t.Fatalf("Extract(%q) date expected %q, got %q", tc.text, tc.expected, got.Data)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"12,50", "12.5"},
		{"12.50", "12.5"},
		{"999,99", "999.99"},
	}
	for _, tc := range cases {
		d, err := Normalize(tc.in)
		if err != nil {
			t.Fatalf("Normalize(%q) error: %v", tc.in, err)
		}
		if d.String() != tc.expected {
			t.Fatalf("Normalize(%q) expected %s, got %s", tc.in, tc.expected, d.String())
		}
	}
}

func TestAmountRoundTrip(t *testing.T) {
	for _, display := range []string{"1.234,56", "0,00", "12,50", "999.999,99"} {
		amount, err := ParseAmount(display)
		if err != nil {
			t.Fatalf("ParseAmount(%q) error: %v", display, err)
		}
		minor := MinorUnits(amount)
		if got := FormatMinor(minor); got != display {
			t.Fatalf("round trip of %q produced %q (minor=%d)", display, got, minor)
		}
	}
}

func TestMinorUnitsTruncates(t *testing.T) {
	value := decimal.RequireFromString("10.999")
	if got := MinorUnits(value); got != 1099 {
		t.Fatalf("expected floor to 1099, got %d", got)
	}
}
