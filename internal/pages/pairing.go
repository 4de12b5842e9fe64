package pages

import (
	"donorscan/internal/logger"
	"donorscan/pkg/models"
)

// Page is one rasterized page handed to the pairing engine. Text holds the
// classification-pass OCR text; Role is filled in by BuildUnits for deposit
// scans and left unknown for mail batches, which never need it.
type Page struct {
	Number    int
	ImagePath string
	Text      string
	Role      Role
}

// Unit is one extraction unit: a check page, optionally with the buckslip
// that carries the donor's identity.
type Unit struct {
	Check    Page
	Buckslip *Page
}

// BuildUnits groups pages into ordered extraction units.
//
// Mail batches are trivial: every page is an independently scanned check.
// Deposit scans are classified page by page; each check page claims the
// nearest following buckslip, skipping unknown pages, with the search
// bounded by the next check page so a later check keeps its own buckslip.
// A buckslip with no preceding unpaired check is dropped.
func BuildUnits(pgs []Page, kind models.BatchKind) []Unit {
	if kind != models.KindDepositScan {
		units := make([]Unit, 0, len(pgs))
		for _, p := range pgs {
			units = append(units, Unit{Check: p})
		}
		return units
	}

	log := logger.WithComponent("pairing")

	for i := range pgs {
		pgs[i].Role = Classify(pgs[i].Text)
	}

	var units []Unit
	i := 0
	for i < len(pgs) {
		page := pgs[i]

		switch page.Role {
		case RoleCheck:
			pairIdx := -1
			for j := i + 1; j < len(pgs); j++ {
				if pgs[j].Role == RoleBuckslip {
					pairIdx = j
					break
				}
				if pgs[j].Role == RoleCheck {
					break
				}
			}
			if pairIdx >= 0 {
				buckslip := pgs[pairIdx]
				units = append(units, Unit{Check: page, Buckslip: &buckslip})
				i = pairIdx + 1
			} else {
				units = append(units, Unit{Check: page})
				i++
			}

		case RoleBuckslip:
			// No preceding unpaired check claims this page; it carries no
			// payment and is dropped.
			log.Warn().
				Int("page", page.Number).
				Msg("Dropping buckslip page with no preceding check")
			i++

		default:
			i++
		}
	}

	return units
}
