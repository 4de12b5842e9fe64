package extract

import (
	"strings"
	"unicode"
)

// extractName scans the page's lines for a donor name: 2-5 capitalized
// words on a line free of report metadata. A candidate directly followed
// (within 3 lines) by an address-shaped line is accepted immediately;
// otherwise the first plausible candidate is kept as a fallback.
func extractName(lines []string) *string {
	var fallback string

	for i, line := range lines {
		if metadataLinePattern.MatchString(line) {
			continue
		}
		candidate, ok := nameCandidate(line)
		if !ok {
			continue
		}
		if followedByAddress(lines, i) {
			return strPtr(candidate)
		}
		if fallback == "" {
			fallback = candidate
		}
	}

	if fallback != "" {
		return strPtr(fallback)
	}
	return nil
}

func nameCandidate(line string) (string, bool) {
	clean := strings.TrimSpace(nameCleanPattern.ReplaceAllString(line, ""))
	if len(clean) <= 3 {
		return "", false
	}

	words := strings.Fields(clean)
	if len(words) < 2 || len(words) > 5 {
		return "", false
	}
	for _, word := range words {
		if !startsUpper(word) {
			return "", false
		}
	}

	// Truncate at the first organization keyword: the words before it are
	// the donor, the rest name the org. Fewer than two words before the
	// keyword is not a usable name.
	for i, word := range words {
		if organizationKeywords[normalizeWord(word)] {
			if i < 2 {
				return "", false
			}
			words = words[:i]
			break
		}
	}

	for _, word := range words {
		token := normalizeWord(word)
		if streetSuffixes[token] || salutationWords[token] {
			return "", false
		}
	}

	return strings.Join(words, " "), true
}

// followedByAddress reports whether any of the next 3 lines looks like a
// street address.
func followedByAddress(lines []string, idx int) bool {
	end := minInt(len(lines), idx+4)
	for _, line := range lines[idx+1 : end] {
		if addressShapedPattern.MatchString(line) {
			return true
		}
	}
	return false
}

// extractAddress fills AddressLine1/2, City, State and ZipCode. The line
// scan finds the street address and the city line following it; whole-text
// fallbacks recover location fields the scan missed.
func extractAddress(f *Fields, lines []string, text string) {
	addressIdx := -1

	for i, line := range lines {
		if metadataLinePattern.MatchString(line) {
			continue
		}
		if match := addressLine1Pattern.FindStringSubmatch(line); match != nil {
			f.AddressLine1 = strPtr(strings.TrimSpace(match[1]))
			addressIdx = i
			break
		}
	}

	if addressIdx >= 0 {
		for _, line := range lines[addressIdx+1:] {
			if match := cityStateZipPattern.FindStringSubmatch(line); match != nil {
				f.City = strPtr(strings.TrimSpace(match[1]))
				f.State = strPtr(match[2])
				f.ZipCode = strPtr(match[3])
				break
			}
			if f.AddressLine2 == nil {
				f.AddressLine2 = strPtr(line)
			}
		}
	}

	if f.City == nil {
		if match := fullCityStateZipPattern.FindStringSubmatch(text); match != nil {
			f.City = strPtr(strings.TrimSpace(match[1]))
			if f.State == nil {
				f.State = strPtr(match[2])
			}
			if f.ZipCode == nil {
				f.ZipCode = strPtr(match[3])
			}
		}
	}
	if f.ZipCode == nil {
		if match := bareZipPattern.FindStringSubmatch(text); match != nil {
			f.ZipCode = strPtr(match[1])
		}
	}
	if f.State == nil {
		if match := stateNearZipPattern.FindStringSubmatch(text); match != nil {
			f.State = strPtr(match[1])
		}
	}
}

func startsUpper(word string) bool {
	for _, r := range word {
		if unicode.IsLetter(r) {
			return unicode.IsUpper(r)
		}
	}
	return false
}

func normalizeWord(word string) string {
	return strings.ToLower(strings.Trim(word, ".,-'"))
}
