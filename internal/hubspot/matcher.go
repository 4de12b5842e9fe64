package hubspot

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"donorscan/internal/logger"
	"donorscan/internal/similarity"
	"donorscan/pkg/models"
)

// Scoring weights: a postal-code match can lift a fuzzy name over the
// clear-confidence bar, but never carry a bad name on its own.
const (
	nameWeight = 0.7
	zipWeight  = 0.3

	// zipNeutralScore is used when the postal code is absent or differs;
	// a mismatched zip is weak evidence (donors move), not disproof.
	zipNeutralScore = 0.5

	searchLimit = 20
)

// Directory abstracts the contact search for testing.
type Directory interface {
	Configured() bool
	SearchByName(ctx context.Context, firstName, lastName string, limit int) ([]Contact, error)
}

// Matcher scores directory contacts against an extracted donor identity.
type Matcher struct {
	directory Directory
	log       zerolog.Logger
}

// NewMatcher creates a matcher backed by the given directory.
func NewMatcher(directory Directory) *Matcher {
	return &Matcher{
		directory: directory,
		log:       logger.WithComponent("matcher"),
	}
}

// Configured reports whether the underlying directory is usable.
func (m *Matcher) Configured() bool {
	return m.directory.Configured()
}

// Match searches the directory for the extracted donor name and returns
// candidates sorted by descending score:
//
//	score = 0.7 * nameSimilarity + 0.3 * (1.0 if zip matches exactly, else 0.5)
//
// An unconfigured directory or empty name yields no candidates.
func (m *Matcher) Match(ctx context.Context, name, zip string) ([]models.MatchCandidate, error) {
	if !m.Configured() || strings.TrimSpace(name) == "" {
		return nil, nil
	}

	first, last := splitName(name)
	contacts, err := m.directory.SearchByName(ctx, first, last, searchLimit)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.MatchCandidate, 0, len(contacts))
	for _, contact := range contacts {
		candidates = append(candidates, models.MatchCandidate{
			ID:      contact.ID,
			Name:    contact.Name(),
			Email:   contact.Email,
			Address: contact.Address,
			City:    contact.City,
			State:   contact.State,
			Zip:     contact.Zip,
			Score:   scoreContact(name, zip, contact),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return candidates, nil
}

func scoreContact(searchName, searchZip string, contact Contact) float64 {
	var nameScore float64
	if contactName := contact.Name(); searchName != "" && contactName != "" {
		nameScore = similarity.Ratio(searchName, contactName)
	}

	zipScore := zipNeutralScore
	if searchZip != "" && contact.Zip == searchZip {
		zipScore = 1.0
	}

	score := nameWeight*nameScore + zipWeight*zipScore
	return math.Round(score*100) / 100
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	first = parts[0]
	if len(parts) > 1 {
		last = strings.Join(parts[1:], " ")
	}
	return first, last
}
