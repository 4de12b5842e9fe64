// Package pipeline drives the background processing of one uploaded batch:
// rasterization, page classification and pairing, dual-engine OCR, field
// extraction, per-record persistence, and contact matching.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"donorscan/internal/extract"
	"donorscan/internal/logger"
	"donorscan/internal/ocr"
	"donorscan/internal/pages"
	"donorscan/internal/raster"
	"donorscan/pkg/models"
)

// Rasterizer renders a batch PDF into ordered page images.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath, outputDir string) ([]raster.PageImage, error)
}

// PageReader produces the cheap text used to classify deposit-scan pages.
type PageReader interface {
	Extract(ctx context.Context, imagePath string) (string, error)
}

// UnitExtractor produces the reconciled OCR result for an extraction unit's pages.
type UnitExtractor interface {
	Extract(ctx context.Context, imagePath string) ocr.Result
}

// ContactMatcher scores directory contacts against an extracted identity.
type ContactMatcher interface {
	Configured() bool
	Match(ctx context.Context, name, zip string) ([]models.MatchCandidate, error)
}

// Store is the persistence surface the runner needs.
type Store interface {
	GetBatch(id uuid.UUID) (*models.Batch, error)
	SaveBatch(batch *models.Batch) error
	CreateRecord(record *models.CheckRecord) error
	ListRecords(batchID uuid.UUID) ([]models.CheckRecord, error)
	SaveRecord(record *models.CheckRecord) error
	CountRecords(batchID uuid.UUID) (int64, error)
}

// Runner executes batch jobs. Each Start spawns one independent goroutine;
// jobs for different batches run fully concurrently and share nothing but
// the status store.
type Runner struct {
	store          Store
	status         *StatusStore
	rasterizer     Rasterizer
	reader         PageReader
	extractor      UnitExtractor
	matcher        ContactMatcher
	imageDir       string
	matchThreshold float64
}

// NewRunner wires the pipeline. matchThreshold is the minimum match score
// that clears a record's needs_review flag.
func NewRunner(store Store, status *StatusStore, rasterizer Rasterizer, reader PageReader, extractor UnitExtractor, matcher ContactMatcher, imageDir string, matchThreshold float64) *Runner {
	return &Runner{
		store:          store,
		status:         status,
		rasterizer:     rasterizer,
		reader:         reader,
		extractor:      extractor,
		matcher:        matcher,
		imageDir:       imageDir,
		matchThreshold: matchThreshold,
	}
}

// Start launches processing of one batch in the background and returns
// immediately. There is no cancellation: once started, a job runs to
// completion or failure unattended, which is why it gets a fresh
// background context rather than the caller's.
func (r *Runner) Start(batchID uuid.UUID, pdfPath string, kind models.BatchKind) {
	go r.Run(context.Background(), batchID, pdfPath, kind)
}

// Run processes a batch synchronously. Any failure, including a panic from
// an OCR backend, is absorbed at this boundary and recorded as a terminal
// error status; it never propagates to the host process. Records persisted
// before a failure are kept.
func (r *Runner) Run(ctx context.Context, batchID uuid.UUID, pdfPath string, kind models.BatchKind) {
	log := logger.WithComponent("runner").With().Str("batch_id", batchID.String()).Logger()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("Batch processing panicked")
			r.fail(batchID, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	r.status.Set(batchID, JobStatus{
		Status:  StatusConverting,
		Message: "Converting PDF to images...",
	})

	pageImages, err := r.rasterizer.Rasterize(ctx, pdfPath, filepath.Join(r.imageDir, "batch_"+batchID.String()))
	if err != nil {
		log.Error().Err(err).Msg("Rasterization failed")
		r.fail(batchID, err.Error())
		return
	}
	totalPages := len(pageImages)

	batch, err := r.store.GetBatch(batchID)
	if err != nil {
		log.Error().Err(err).Msg("Batch not found")
		r.fail(batchID, "batch not found")
		return
	}
	batch.TotalPages = totalPages
	batch.Status = models.BatchStatusProcessing
	if err := r.store.SaveBatch(batch); err != nil {
		log.Error().Err(err).Msg("Failed to update batch")
		r.fail(batchID, err.Error())
		return
	}

	r.status.Update(batchID, func(s *JobStatus) {
		s.Status = StatusProcessing
		s.TotalPages = totalPages
	})

	units := r.buildUnits(ctx, pageImages, kind)

	// Units run strictly in order; unit N+1 does not start until N's
	// record is committed, because the status counters are order-dependent.
	recordsFound := 0
	for _, unit := range units {
		r.status.Update(batchID, func(s *JobStatus) {
			s.CurrentPage = unit.Check.Number
			s.Message = fmt.Sprintf("Processing page %d of %d...", unit.Check.Number, totalPages)
		})

		record := r.extractUnit(ctx, batchID, unit)
		if err := r.store.CreateRecord(record); err != nil {
			log.Error().Err(err).Int("page", unit.Check.Number).Msg("Failed to persist record, aborting batch")
			r.fail(batchID, err.Error())
			return
		}

		recordsFound++
		r.status.Update(batchID, func(s *JobStatus) {
			s.RecordsFound = recordsFound
		})
	}

	if err := r.matchContacts(ctx, batchID, log); err != nil {
		r.fail(batchID, err.Error())
		return
	}

	count, err := r.store.CountRecords(batchID)
	if err != nil {
		r.fail(batchID, err.Error())
		return
	}
	batch.TotalRecords = int(count)
	batch.Status = models.BatchStatusReady
	if err := r.store.SaveBatch(batch); err != nil {
		r.fail(batchID, err.Error())
		return
	}

	r.status.Set(batchID, JobStatus{
		Status:       StatusComplete,
		TotalPages:   totalPages,
		RecordsFound: int(count),
		Message:      "Processing complete!",
	})
	log.Info().Int("records", int(count)).Msg("Batch processing complete")
}

// buildUnits groups the rasterized pages into extraction units. Deposit
// scans need a classification pass first, which uses the low-cost baseline
// engine only; the full dual extraction runs later, per unit.
func (r *Runner) buildUnits(ctx context.Context, pageImages []raster.PageImage, kind models.BatchKind) []pages.Unit {
	pgs := make([]pages.Page, 0, len(pageImages))
	for _, img := range pageImages {
		page := pages.Page{Number: img.PageNumber, ImagePath: img.Path}
		if kind == models.KindDepositScan {
			text, err := r.reader.Extract(ctx, img.Path)
			if err != nil {
				// An unreadable page classifies as unknown.
				text = ""
			}
			page.Text = text
		}
		pgs = append(pgs, page)
	}
	return pages.BuildUnits(pgs, kind)
}

// extractUnit OCRs a unit's pages and merges the parsed fields into one
// record: payment fields prefer the check, donor identity prefers the
// buckslip when one is present.
func (r *Runner) extractUnit(ctx context.Context, batchID uuid.UUID, unit pages.Unit) *models.CheckRecord {
	checkRes := r.extractor.Extract(ctx, unit.Check.ImagePath)
	checkFields := extract.Parse(checkRes.Text, false)

	record := &models.CheckRecord{
		ID:                   uuid.New(),
		BatchID:              batchID,
		PageNumber:           unit.Check.Number,
		NeedsReview:          true,
		CheckOCRText:         checkRes.Text,
		RawOCRText:           checkRes.Text,
		OCREngine:            checkRes.Engine,
		OCRConfidence:        checkRes.Confidence,
		OCRNeedsVerification: checkRes.NeedsVerification,
		CheckImagePath:       unit.Check.ImagePath,
		CreatedAt:            time.Now().UTC(),
	}

	identity := checkFields
	if unit.Buckslip != nil {
		buckRes := r.extractor.Extract(ctx, unit.Buckslip.ImagePath)
		buckFields := extract.Parse(buckRes.Text, true)

		record.BuckslipPageNumber = &unit.Buckslip.Number
		record.BuckslipOCRText = buckRes.Text
		record.BuckslipImagePath = &unit.Buckslip.ImagePath
		record.RawOCRText = fmt.Sprintf("CHECK:\n%s\n\nBUCKSLIP:\n%s", checkRes.Text, buckRes.Text)
		record.OCRNeedsVerification = checkRes.NeedsVerification || buckRes.NeedsVerification

		// The buckslip is printed with the donor's mailing block; the
		// check's own identity lines are a fallback.
		identity = mergeIdentity(buckFields, checkFields)
		checkFields.Amount = coalesceFloat(checkFields.Amount, buckFields.Amount)
		checkFields.CheckDate = coalesceTime(checkFields.CheckDate, buckFields.CheckDate)
		checkFields.CheckNumber = coalesceStr(checkFields.CheckNumber, buckFields.CheckNumber)
	}

	record.Amount = checkFields.Amount
	record.CheckDate = checkFields.CheckDate
	record.CheckNumber = checkFields.CheckNumber
	record.MoneyOrder = checkFields.MoneyOrder

	record.Name = identity.Name
	record.AddressLine1 = identity.AddressLine1
	record.AddressLine2 = identity.AddressLine2
	record.City = identity.City
	record.State = identity.State
	record.ZipCode = identity.ZipCode

	return record
}

// matchContacts runs the directory pass over a batch's persisted records.
// Directory failures leave individual records unmatched; only persistence
// failures abort the batch.
func (r *Runner) matchContacts(ctx context.Context, batchID uuid.UUID, log zerolog.Logger) error {
	if !r.matcher.Configured() {
		log.Info().Msg("Contact directory not configured, skipping matching")
		return nil
	}

	r.status.Update(batchID, func(s *JobStatus) {
		s.Status = StatusMatching
		s.Message = "Matching contacts..."
	})

	records, err := r.store.ListRecords(batchID)
	if err != nil {
		return err
	}

	for i := range records {
		record := &records[i]
		if record.Name == nil {
			continue
		}
		zip := ""
		if record.ZipCode != nil {
			zip = *record.ZipCode
		}

		candidates, err := r.matcher.Match(ctx, *record.Name, zip)
		if err != nil {
			log.Warn().Err(err).Str("record_id", record.ID.String()).Msg("Contact search failed")
			continue
		}
		if len(candidates) == 0 {
			continue
		}

		top := candidates[0]
		record.ContactID = &top.ID
		contactName := top.Name
		record.ContactName = &contactName
		record.MatchConfidence = top.Score
		if top.Score >= r.matchThreshold {
			record.NeedsReview = false
		}
		if raw, err := json.Marshal(candidates); err == nil {
			record.MatchCandidates = raw
		}

		if err := r.store.SaveRecord(record); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) fail(batchID uuid.UUID, message string) {
	if batch, err := r.store.GetBatch(batchID); err == nil {
		batch.Status = models.BatchStatusError
		_ = r.store.SaveBatch(batch)
	}
	r.status.Update(batchID, func(s *JobStatus) {
		s.Status = StatusError
		s.Message = message
	})
}

func mergeIdentity(primary, fallback extract.Fields) extract.Fields {
	return extract.Fields{
		Name:         coalesceStr(primary.Name, fallback.Name),
		AddressLine1: coalesceStr(primary.AddressLine1, fallback.AddressLine1),
		AddressLine2: coalesceStr(primary.AddressLine2, fallback.AddressLine2),
		City:         coalesceStr(primary.City, fallback.City),
		State:        coalesceStr(primary.State, fallback.State),
		ZipCode:      coalesceStr(primary.ZipCode, fallback.ZipCode),
	}
}

func coalesceStr(a, b *string) *string {
	if a != nil {
		return a
	}
	return b
}

func coalesceFloat(a, b *float64) *float64 {
	if a != nil {
		return a
	}
	return b
}

func coalesceTime(a, b *time.Time) *time.Time {
	if a != nil {
		return a
	}
	return b
}
