package extract

import (
	"strconv"
	"strings"
	"time"
)

// extractAmount tries the amount patterns in precedence order and returns
// the first parseable match, with thousands separators stripped and the
// value rounded to two decimals.
func extractAmount(text string) *float64 {
	for _, pattern := range amountPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		raw := strings.ReplaceAll(match[1], ",", "")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		rounded := round2(value)
		return &rounded
	}
	return nil
}

// extractDate tries numeric M/D/Y candidates first, then day + month-name
// forms. Two-digit years are normalized by adding 2000. A candidate that
// does not construct a real calendar date is skipped.
func extractDate(text string) *time.Time {
	for _, match := range numericDatePattern.FindAllStringSubmatch(text, -1) {
		month, _ := strconv.Atoi(match[1])
		day, _ := strconv.Atoi(match[2])
		year, _ := strconv.Atoi(match[3])
		if date, ok := buildDate(year, month, day); ok {
			return &date
		}
	}

	for _, match := range monthNameDatePattern.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(match[1])
		month := monthsByName[strings.ToLower(match[2])]
		year, _ := strconv.Atoi(match[3])
		if date, ok := buildDate(year, month, day); ok {
			return &date
		}
	}

	return nil
}

func buildDate(year, month, day int) (time.Time, bool) {
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (Feb 30 becomes Mar 2); a shifted
	// component means the candidate was not a real date.
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

// extractCheckNumber prefers an explicitly labeled check number whose label
// is not itself part of scanner metadata, then falls back to the first
// short bare number with a clean surrounding context.
func extractCheckNumber(text string) *string {
	// Lowercasing can change byte length (U+212A lowers from 3 bytes to
	// 1), so the patterns run over the lowered text and every index is an
	// offset into it. The captures are digits, which lowering never alters.
	lower := strings.ToLower(text)

	for _, idx := range labeledCheckNumberPattern.FindAllStringSubmatchIndex(lower, -1) {
		prefix := lower[maxInt(0, idx[0]-30):idx[0]]
		if containsAny(prefix, labelMetadataWords) {
			continue
		}
		return strPtr(lower[idx[2]:idx[3]])
	}

	for _, idx := range bareCheckNumberPattern.FindAllStringSubmatchIndex(lower, -1) {
		context := lower[maxInt(0, idx[0]-50):minInt(len(lower), idx[1]+50)]
		if containsAny(context, contextExclusionWords) {
			continue
		}
		return strPtr(lower[idx[2]:idx[3]])
	}

	return nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
