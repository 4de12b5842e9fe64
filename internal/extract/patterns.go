package extract

import "regexp"

// moneyOrderKeywords flag payment instruments excluded from deal submission.
var moneyOrderKeywords = []string{
	"money order",
	"postal money order",
	"usps money order",
	"western union",
}

// amountPatterns are tried in order; the first capture that parses wins.
// Precedence: currency-marked, asterisk-marked (check protectograph
// prints), bare decimal optionally followed by "dollars".
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\s*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`),
	regexp.MustCompile(`\*\*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\*\*`),
	regexp.MustCompile(`(\d{1,3}(?:,\d{3})*\.\d{2})\s*(?:dollars|DOLLARS)?`),
}

// Numeric M/D/Y with slash or dash separators, then day + month name + year.
var (
	numericDatePattern   = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\b`)
	monthNameDatePattern = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+(\d{2,4})\b`)
)

var monthsByName = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// labeledCheckNumberPattern matches an explicitly labeled check number.
var labeledCheckNumberPattern = regexp.MustCompile(`(?i)\bcheck\s*(?:#|no\.?|number)\s*:?\s*(\d{3,10})\b`)

// bareCheckNumberPattern matches the short sequence numbers printed in the
// top-right corner of personal checks. Digits touching currency or grouping
// punctuation are amount fragments, not check numbers.
var bareCheckNumberPattern = regexp.MustCompile(`(?:^|[^0-9,.$])(\d{3,4})(?:[^0-9,.]|$)`)

// labelMetadataWords disqualify a labeled check-number match when they
// appear just before the label ("lockbox check no", "batch check #").
var labelMetadataWords = []string{"lockbox", "transaction", "batch", "sequence"}

// contextExclusionWords disqualify a bare number whose surrounding text
// marks it as scanner or lockbox metadata rather than a check number.
var contextExclusionWords = []string{
	"lockbox", "transaction", "batch", "sequence", "deposit date", "site code",
}

// metadataLinePattern marks report/header lines that can never hold a donor
// name ("Lockbox Detail Report", "Page 2 of 9", deposit headers).
var metadataLinePattern = regexp.MustCompile(`(?i)\b(batch|report|detail|lockbox|transaction|deposit|sequence|site\s+code|appeal|page|of)\b`)

// nameCleanPattern strips everything but letters, whitespace and the
// punctuation that legitimately appears in personal names.
var nameCleanPattern = regexp.MustCompile(`[^a-zA-Z\s.,\-']`)

// organizationKeywords truncate a name candidate: words from the keyword
// onward belong to an organization, not the donor ("John Smith Family
// Foundation" keeps "John Smith").
var organizationKeywords = map[string]bool{
	"family": true, "foundation": true, "fund": true, "charity": true,
	"church": true, "chapel": true, "ministry": true, "ministries": true,
	"radio": true, "association": true, "society": true,
	"inc": true, "llc": true, "corp": true, "corporation": true,
	"company": true, "bank": true, "trust": true, "union": true,
	"national": true, "federal": true, "savings": true,
}

// streetSuffixes are recognized street-type tokens; a name candidate
// containing one is an address line, not a person.
var streetSuffixes = map[string]bool{
	"st": true, "street": true, "ave": true, "avenue": true,
	"rd": true, "road": true, "dr": true, "drive": true,
	"ln": true, "lane": true, "blvd": true, "boulevard": true,
	"ct": true, "court": true, "cir": true, "circle": true,
	"way": true, "pl": true, "place": true, "ter": true, "terrace": true,
	"pkwy": true, "parkway": true, "hwy": true, "highway": true,
	"trl": true, "trail": true,
}

// salutationWords reject letter-body lines that happen to look like names.
var salutationWords = map[string]bool{
	"dear": true, "thank": true, "please": true, "enclosed": true,
}

// addressShapedPattern is the loose "digits then a word" test used both for
// address line detection and for checking whether a name candidate is
// followed by an address.
var addressShapedPattern = regexp.MustCompile(`\d+\s+\w+`)

// addressLine1Pattern captures the leading house number + street name +
// recognized suffix span of an address line.
var addressLine1Pattern = regexp.MustCompile(`(?i)\b(\d+(?:\s+[A-Za-z][A-Za-z.']*){1,4}?\s+(?:st|street|ave|avenue|rd|road|dr|drive|ln|lane|blvd|boulevard|ct|court|cir|circle|way|pl|place|ter|terrace|pkwy|parkway|hwy|highway|trl|trail)\.?)(?:\b|$)`)

// cityStateZipPattern matches a "City, ST 12345" or "City, ST 12345-6789"
// line following the address start.
var cityStateZipPattern = regexp.MustCompile(`^([A-Za-z\s]+),?\s*([A-Z]{2})\s*(\d{5}(?:-\d{4})?)`)

// Whole-text fallbacks when the line scan leaves location fields empty.
var (
	fullCityStateZipPattern = regexp.MustCompile(`\b([A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+)*),?\s+([A-Z]{2})\s+(\d{5}(?:-\d{4})?)\b`)
	bareZipPattern          = regexp.MustCompile(`\b(\d{5}(?:-\d{4})?)\b`)
	stateNearZipPattern     = regexp.MustCompile(`\b([A-Z]{2})\s+\d{5}\b`)
)
