package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CheckRecord is the extracted result for one check, or one check/buckslip
// pair in a deposit scan. It is created once per extraction unit and never
// re-derived; corrections happen through review edits.
type CheckRecord struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BatchID uuid.UUID `gorm:"type:uuid;index;not null" json:"batch_id"`

	// PageNumber is the check page; BuckslipPageNumber is set only when a
	// buckslip was paired with the check.
	PageNumber         int  `gorm:"not null" json:"page_number"`
	BuckslipPageNumber *int `json:"buckslip_page_number"`

	Amount      *float64   `json:"amount"`
	CheckDate   *time.Time `json:"check_date"`
	CheckNumber *string    `json:"check_number"`

	Name         *string `json:"name"`
	AddressLine1 *string `json:"address_line1"`
	AddressLine2 *string `json:"address_line2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	ZipCode      *string `json:"zip_code"`

	ContactID       *string        `json:"contact_id"`
	ContactName     *string        `json:"contact_name"`
	MatchConfidence float64        `json:"match_confidence"`
	MatchCandidates datatypes.JSON `json:"match_candidates"`

	MoneyOrder  bool `json:"money_order"`
	NeedsReview bool `gorm:"default:true" json:"needs_review"`

	DealID *string `json:"deal_id"`

	// Raw OCR text is retained per source page for auditing, plus the
	// combined blob shown during review.
	CheckOCRText    string `gorm:"type:text" json:"check_ocr_text"`
	BuckslipOCRText string `gorm:"type:text" json:"buckslip_ocr_text"`
	RawOCRText      string `gorm:"type:text" json:"raw_ocr_text"`

	OCREngine            string  `json:"ocr_engine"`
	OCRConfidence        float64 `json:"ocr_confidence"`
	OCRNeedsVerification bool    `json:"ocr_needs_verification"`

	CheckImagePath    string  `json:"check_image_path"`
	BuckslipImagePath *string `json:"buckslip_image_path"`

	CreatedAt time.Time `json:"created_at"`
}

// MatchCandidate is a scored directory contact produced by the matcher.
// Candidates are ephemeral; the winning one is copied onto the record and
// the full scored list is stored as a JSON audit snapshot.
type MatchCandidate struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Address string  `json:"address"`
	City    string  `json:"city"`
	State   string  `json:"state"`
	Zip     string  `json:"zip"`
	Score   float64 `json:"score"`
}
