// Package extract pulls the paid amount and transaction date out of noisy
// OCR text from Brazilian receipts.
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"nota-scan/pkg/apperr"
)

var (
	// One to three digits, optional groups of three behind either
	// separator, then a mandatory two-digit decimal part.
	valueRe = regexp.MustCompile(`\d{1,3}(?:[.,]\d{3})*[.,]\d{2}`)
	dateRe  = regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b|\b\d{4}-\d{2}-\d{2}\b`)
	isoRe   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
)

// Keyword phrases tried in priority order. The first keyword whose window
// contains any monetary substring wins; later keywords are not consulted.
var keywords = []string{"VALOR TOTAL", "VALOR A PAGAR", "VALOR PAGO"}

// keywordWindow is how many characters around a keyword occurrence are
// scanned.
const keywordWindow = 50

// Fields is the extraction result. Valor carries Brazilian display
// formatting ("1.234,56"); "0,00" means extraction found nothing. Data is
// DD/MM/YYYY or empty.
type Fields struct {
	Valor string `json:"valor"`
	Data  string `json:"data"`
}

// Extract scans the recognized text for the paid amount and the transaction
// date. It never fails: missing data degrades to a zero amount and an empty
// date for the reviewer to fill in.
func Extract(text string) Fields {
	amount, found := keywordAmount(text)
	if !found {
		amount, _ = maxAmount(valueRe.FindAllString(text, -1))
	}
	return Fields{
		Valor: FormatBR(amount),
		Data:  brazilianDate(dateRe.FindString(text)),
	}
}

// keywordAmount searches a window around each keyword, in priority order,
// and returns the maximum normalized value of the first keyword that has
// any match in its window.
func keywordAmount(text string) (decimal.Decimal, bool) {
	lower := strings.ToLower(text)
	for _, keyword := range keywords {
		idx := strings.Index(lower, strings.ToLower(keyword))
		if idx < 0 {
			continue
		}
		// Window bounds are counted in characters, not bytes, so
		// accented receipt text does not shrink the window.
		start := idx
		for n := 0; n < keywordWindow && start > 0; n++ {
			_, size := utf8.DecodeLastRuneInString(text[:start])
			start -= size
		}
		end := idx
		for n := 0; n < keywordWindow && end < len(text); n++ {
			_, size := utf8.DecodeRuneInString(text[end:])
			end += size
		}
		if amount, ok := maxAmount(valueRe.FindAllString(text[start:end], -1)); ok {
			return amount, true
		}
	}
	return decimal.Zero, false
}

// maxAmount normalizes every candidate and keeps the numeric maximum, never
// the first or nearest. Candidates that fail to normalize are skipped.
func maxAmount(candidates []string) (decimal.Decimal, bool) {
	best := decimal.Zero
	found := false
	for _, raw := range candidates {
		value, err := Normalize(raw)
		if err != nil {
			continue
		}
		if !found || value.GreaterThan(best) {
			best = value
			found = true
		}
	}
	return best, found
}

// Normalize disambiguates the separators of one raw monetary substring.
// When both "." and "," appear, the one occurring later in the string is the
// decimal separator; a lone "," is always decimal. This handles "1.234,56"
// and "1,234.56" from the same field without locale configuration.
func Normalize(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	hasComma := strings.Contains(raw, ",")
	hasDot := strings.Contains(raw, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(raw, ",") > strings.LastIndex(raw, ".") {
			raw = strings.ReplaceAll(raw, ".", "")
			raw = decimalComma(raw)
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case hasComma:
		raw = decimalComma(raw)
	}

	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperr.Validation("invalid monetary value %q", raw)
	}
	return value, nil
}

// decimalComma turns the last comma into the decimal point and drops any
// earlier ones.
func decimalComma(raw string) string {
	i := strings.LastIndex(raw, ",")
	return strings.ReplaceAll(raw[:i], ",", "") + "." + raw[i+1:]
}

// ParseAmount parses a display string back into a non-negative decimal.
func ParseAmount(display string) (decimal.Decimal, error) {
	value, err := Normalize(display)
	if err != nil {
		return decimal.Zero, err
	}
	if value.IsNegative() {
		return decimal.Zero, apperr.Validation("amount must not be negative")
	}
	return value, nil
}

// MinorUnits converts a non-negative amount to centavos, truncating any
// sub-centavo remainder.
func MinorUnits(value decimal.Decimal) int64 {
	return value.Mul(decimal.NewFromInt(100)).IntPart()
}

// FormatBR renders an amount in Brazilian display convention: "." grouping,
// "," decimals, always two decimal places.
func FormatBR(value decimal.Decimal) string {
	fixed := value.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var grouped strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		grouped.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if grouped.Len() > 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteString(intPart[i : i+3])
	}

	out := grouped.String() + "," + fracPart
	if neg {
		return "-" + out
	}
	return out
}

// FormatMinor renders centavos in Brazilian display convention.
func FormatMinor(minor int64) string {
	return FormatBR(decimal.New(minor, -2))
}

// brazilianDate maps an ISO match to DD/MM/YYYY; DD/MM/YYYY passes through.
func brazilianDate(date string) string {
	if m := isoRe.FindStringSubmatch(date); m != nil {
		return m[3] + "/" + m[2] + "/" + m[1]
	}
	return date
}
