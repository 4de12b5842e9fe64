package models

import (
	"time"

	"github.com/google/uuid"
)

// BatchKind identifies how a scanned PDF was produced, which decides how its
// pages are grouped into records.
type BatchKind string

const (
	// KindMail is a mail batch: every page is an independently scanned check.
	KindMail BatchKind = "mail"

	// KindDepositScan is a bank deposit scan: check pages interleaved with
	// buckslip reply documents that carry the donor's identity.
	KindDepositScan BatchKind = "deposit_scan"
)

// Batch statuses. Converting through Ready are driven by the background
// runner; Submitted is set by the CRM submission step.
const (
	BatchStatusConverting = "converting"
	BatchStatusProcessing = "processing"
	BatchStatusReady      = "ready"
	BatchStatusSubmitted  = "submitted"
	BatchStatusError      = "error"
)

// Batch is one uploaded PDF of scanned donation checks.
type Batch struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Filename       string    `gorm:"not null" json:"filename"`
	Kind           BatchKind `gorm:"index" json:"kind"`
	CampaignCode   string    `json:"campaign_code"`
	Status         string    `gorm:"index" json:"status"`
	TotalPages     int       `json:"total_pages"`
	TotalRecords   int       `json:"total_records"`
	ExpectedAmount *float64  `json:"expected_amount"`
	CreatedAt      time.Time `json:"created_at"`
	SubmittedAt    *time.Time `json:"submitted_at"`
}
