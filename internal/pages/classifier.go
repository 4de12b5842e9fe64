// Package pages labels scanned pages by role and groups them into
// extraction units (a lone check page, or a check paired with the buckslip
// reply document that followed it through the scanner).
package pages

import "strings"

// Role is the classified role of a scanned page.
type Role string

const (
	RoleCheck    Role = "check"
	RoleBuckslip Role = "buckslip"
	RoleUnknown  Role = "unknown"
)

// Scanner software stamps these marker phrases onto the page; when present
// they override the indicator heuristic entirely.
var (
	buckslipMarkers = []string{"front image - document", "document front"}
	checkMarkers    = []string{"front image - check", "check front"}
)

// Indicator phrases counted when no marker is present. More distinct check
// indicators than buckslip indicators means check, and vice versa.
var (
	checkIndicators    = []string{"pay to the order", "dollars", "routing", "account", "void after"}
	buckslipIndicators = []string{"appeal", "donation", "contribution", "thank you", "dear"}
)

// Classify labels a page's role from its OCR text. It is pure and
// deterministic: identical text always yields the identical role.
func Classify(text string) Role {
	lower := strings.ToLower(text)

	for _, marker := range buckslipMarkers {
		if strings.Contains(lower, marker) {
			return RoleBuckslip
		}
	}
	for _, marker := range checkMarkers {
		if strings.Contains(lower, marker) {
			return RoleCheck
		}
	}

	checkScore := countIndicators(lower, checkIndicators)
	buckslipScore := countIndicators(lower, buckslipIndicators)

	switch {
	case checkScore > buckslipScore:
		return RoleCheck
	case buckslipScore > checkScore:
		return RoleBuckslip
	default:
		return RoleUnknown
	}
}

func countIndicators(lower string, indicators []string) int {
	count := 0
	for _, indicator := range indicators {
		if strings.Contains(lower, indicator) {
			count++
		}
	}
	return count
}
