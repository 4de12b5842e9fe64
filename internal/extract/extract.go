// Package extract parses structured payment and donor fields out of noisy
// OCR text from scanned checks and buckslip reply documents.
//
// Extraction is heuristic and best-effort: every field is produced by an
// ordered list of pure rules tried with early exit, and a field no rule can
// resolve is left nil rather than guessed. Parse never fails; malformed
// input yields an emptier Fields value, not an error. Identical input text
// always yields identical output.
package extract

import (
	"math"
	"strings"
	"time"
)

// Fields is the structured result of parsing one page's OCR text.
// Nil pointers mean the field was absent or ambiguous in the text.
type Fields struct {
	Amount      *float64   `json:"amount"`
	CheckDate   *time.Time `json:"check_date"`
	CheckNumber *string    `json:"check_number"`

	Name         *string `json:"name"`
	AddressLine1 *string `json:"address_line1"`
	AddressLine2 *string `json:"address_line2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	ZipCode      *string `json:"zip_code"`

	MoneyOrder bool `json:"money_order"`
}

// Parse extracts payment and donor fields from raw OCR text. Buckslip pages
// carry donor identity but no check number, so check-number rules are
// skipped for them.
func Parse(text string, isBuckslip bool) Fields {
	var f Fields

	f.MoneyOrder = detectMoneyOrder(text)
	f.Amount = extractAmount(text)
	f.CheckDate = extractDate(text)
	if !isBuckslip {
		f.CheckNumber = extractCheckNumber(text)
	}

	lines := splitLines(text)
	f.Name = extractName(lines)
	extractAddress(&f, lines, text)

	return f
}

func detectMoneyOrder(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range moneyOrderKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// splitLines returns the trimmed, non-empty lines of the text.
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func strPtr(s string) *string {
	return &s
}
