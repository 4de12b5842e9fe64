package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorscan/internal/ocr"
	"donorscan/internal/raster"
	"donorscan/pkg/models"
)

type memStore struct {
	mu      sync.Mutex
	batches map[uuid.UUID]*models.Batch
	records []models.CheckRecord

	failCreateAt int // 1-based record index that fails, 0 disables
}

func newMemStore(batch *models.Batch) *memStore {
	return &memStore{batches: map[uuid.UUID]*models.Batch{batch.ID: batch}}
}

func (m *memStore) GetBatch(id uuid.UUID) (*models.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch, ok := m.batches[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *batch
	return &copied, nil
}

func (m *memStore) SaveBatch(batch *models.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *batch
	m.batches[batch.ID] = &copied
	return nil
}

func (m *memStore) CreateRecord(record *models.CheckRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateAt > 0 && len(m.records)+1 == m.failCreateAt {
		return errors.New("insert failed")
	}
	m.records = append(m.records, *record)
	return nil
}

func (m *memStore) ListRecords(batchID uuid.UUID) ([]models.CheckRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.CheckRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *memStore) SaveRecord(record *models.CheckRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == record.ID {
			m.records[i] = *record
			return nil
		}
	}
	return errors.New("not found")
}

func (m *memStore) CountRecords(batchID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.records)), nil
}

type fakeRasterizer struct {
	pages int
	err   error
}

func (f *fakeRasterizer) Rasterize(ctx context.Context, pdfPath, outputDir string) ([]raster.PageImage, error) {
	if f.err != nil {
		return nil, f.err
	}
	images := make([]raster.PageImage, f.pages)
	for i := range images {
		images[i] = raster.PageImage{PageNumber: i + 1, Path: fmt.Sprintf("page_%d.png", i+1)}
	}
	return images, nil
}

// fakeOCR serves both the classification reader and the unit extractor,
// keyed by image path.
type fakeOCR struct {
	texts map[string]string
	panic bool
}

func (f *fakeOCR) Extract(ctx context.Context, imagePath string) (string, error) {
	return f.texts[imagePath], nil
}

type fakeExtractor struct {
	ocr *fakeOCR
}

func (f *fakeExtractor) Extract(ctx context.Context, imagePath string) ocr.Result {
	if f.ocr.panic {
		panic("engine exploded")
	}
	return ocr.Result{
		Text:       f.ocr.texts[imagePath],
		Confidence: ocr.BaselineConfidence,
		Engine:     ocr.EngineBaseline,
	}
}

type fakeMatcher struct {
	configured bool
	candidates []models.MatchCandidate
	err        error
}

func (f *fakeMatcher) Configured() bool { return f.configured }

func (f *fakeMatcher) Match(ctx context.Context, name, zip string) ([]models.MatchCandidate, error) {
	return f.candidates, f.err
}

func newTestRunner(st *memStore, rasterizer *fakeRasterizer, texts map[string]string, matcher *fakeMatcher) (*Runner, *StatusStore, *fakeOCR) {
	reader := &fakeOCR{texts: texts}
	status := NewStatusStore()
	runner := NewRunner(st, status, rasterizer, reader, &fakeExtractor{ocr: reader}, matcher, "/tmp/pages", 0.8)
	return runner, status, reader
}

const testCheckText = "Check #1234\nDate: 03/15/24\n$250.00\npay to the order of\ndollars\nrouting"
const testBuckslipText = "dear friend\nthank you for your donation\nJohn Smith\n123 Main Street\nSpringfield, IL 62704"

func TestRunMailBatch(t *testing.T) {
	batch := &models.Batch{ID: uuid.New(), Kind: models.KindMail, Status: models.BatchStatusConverting}
	st := newMemStore(batch)
	runner, status, _ := newTestRunner(st, &fakeRasterizer{pages: 2}, map[string]string{
		"page_1.png": testCheckText,
		"page_2.png": "$75.00\npay to the order of",
	}, &fakeMatcher{})

	runner.Run(context.Background(), batch.ID, "batch.pdf", models.KindMail)

	final, err := st.GetBatch(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchStatusReady, final.Status)
	assert.Equal(t, 2, final.TotalPages)
	assert.Equal(t, 2, final.TotalRecords)

	require.Len(t, st.records, 2)
	first := st.records[0]
	assert.Equal(t, 1, first.PageNumber)
	assert.Nil(t, first.BuckslipPageNumber)
	require.NotNil(t, first.Amount)
	assert.InDelta(t, 250.00, *first.Amount, 0.001)
	require.NotNil(t, first.CheckNumber)
	assert.Equal(t, "1234", *first.CheckNumber)
	assert.True(t, first.NeedsReview)

	snapshot := status.Get(batch.ID)
	assert.Equal(t, StatusComplete, snapshot.Status)
	assert.Equal(t, 2, snapshot.RecordsFound)
}

func TestRunDepositScanPairsBuckslips(t *testing.T) {
	batch := &models.Batch{ID: uuid.New(), Kind: models.KindDepositScan, Status: models.BatchStatusConverting}
	st := newMemStore(batch)
	runner, _, _ := newTestRunner(st, &fakeRasterizer{pages: 2}, map[string]string{
		"page_1.png": testCheckText,
		"page_2.png": testBuckslipText,
	}, &fakeMatcher{})

	runner.Run(context.Background(), batch.ID, "batch.pdf", models.KindDepositScan)

	require.Len(t, st.records, 1)
	rec := st.records[0]
	assert.Equal(t, 1, rec.PageNumber)
	require.NotNil(t, rec.BuckslipPageNumber)
	assert.Equal(t, 2, *rec.BuckslipPageNumber)

	// Payment from the check, identity from the buckslip.
	require.NotNil(t, rec.Amount)
	assert.InDelta(t, 250.00, *rec.Amount, 0.001)
	require.NotNil(t, rec.Name)
	assert.Equal(t, "John Smith", *rec.Name)
	require.NotNil(t, rec.ZipCode)
	assert.Equal(t, "62704", *rec.ZipCode)

	assert.Contains(t, rec.RawOCRText, "CHECK:")
	assert.Contains(t, rec.RawOCRText, "BUCKSLIP:")
}

func TestRunRasterizationFailure(t *testing.T) {
	batch := &models.Batch{ID: uuid.New(), Kind: models.KindMail, Status: models.BatchStatusConverting}
	st := newMemStore(batch)
	runner, status, _ := newTestRunner(st, &fakeRasterizer{err: errors.New("corrupt pdf")}, nil, &fakeMatcher{})

	runner.Run(context.Background(), batch.ID, "batch.pdf", models.KindMail)

	final, _ := st.GetBatch(batch.ID)
	assert.Equal(t, models.BatchStatusError, final.Status)
	snapshot := status.Get(batch.ID)
	assert.Equal(t, StatusError, snapshot.Status)
	assert.Contains(t, snapshot.Message, "corrupt pdf")
}

func TestRunPersistenceFailureKeepsEarlierRecords(t *testing.T) {
	batch := &models.Batch{ID: uuid.New(), Kind: models.KindMail, Status: models.BatchStatusConverting}
	st := newMemStore(batch)
	st.failCreateAt = 2
	runner, status, _ := newTestRunner(st, &fakeRasterizer{pages: 3}, map[string]string{
		"page_1.png": "$10.00",
		"page_2.png": "$20.00",
		"page_3.png": "$30.00",
	}, &fakeMatcher{})

	runner.Run(context.Background(), batch.ID, "batch.pdf", models.KindMail)

	final, _ := st.GetBatch(batch.ID)
	assert.Equal(t, models.BatchStatusError, final.Status)
	assert.Equal(t, StatusError, status.Get(batch.ID).Status)

	// The first record survived the failure on the second.
	require.Len(t, st.records, 1)
	assert.Equal(t, 1, st.records[0].PageNumber)
}

func TestRunPanicBecomesErrorStatus(t *testing.T) {
	batch := &models.Batch{ID: uuid.New(), Kind: models.KindMail, Status: models.BatchStatusConverting}
	st := newMemStore(batch)
	runner, status, reader := newTestRunner(st, &fakeRasterizer{pages: 1}, map[string]string{
		"page_1.png": "$10.00",
	}, &fakeMatcher{})
	reader.panic = true

	runner.Run(context.Background(), batch.ID, "batch.pdf", models.KindMail)

	final, _ := st.GetBatch(batch.ID)
	assert.Equal(t, models.BatchStatusError, final.Status)
	assert.Equal(t, StatusError, status.Get(batch.ID).Status)
}

func TestRunMatchingAttachesTopCandidate(t *testing.T) {
	batch := &models.Batch{ID: uuid.New(), Kind: models.KindMail, Status: models.BatchStatusConverting}
	st := newMemStore(batch)
	matcher := &fakeMatcher{configured: true, candidates: []models.MatchCandidate{
		{ID: "c-1", Name: "John Smith", Zip: "62704", Score: 0.95},
		{ID: "c-2", Name: "Jon Smithe", Zip: "62704", Score: 0.71},
	}}
	runner, _, _ := newTestRunner(st, &fakeRasterizer{pages: 1}, map[string]string{
		"page_1.png": "John Smith\n123 Main Street\nSpringfield, IL 62704",
	}, matcher)

	runner.Run(context.Background(), batch.ID, "batch.pdf", models.KindMail)

	require.Len(t, st.records, 1)
	rec := st.records[0]
	require.NotNil(t, rec.ContactID)
	assert.Equal(t, "c-1", *rec.ContactID)
	assert.Equal(t, 0.95, rec.MatchConfidence)
	assert.False(t, rec.NeedsReview, "a match at or above the threshold clears review")
	assert.NotEmpty(t, rec.MatchCandidates)
}

func TestRunMatchingBelowThresholdKeepsReview(t *testing.T) {
	batch := &models.Batch{ID: uuid.New(), Kind: models.KindMail, Status: models.BatchStatusConverting}
	st := newMemStore(batch)
	matcher := &fakeMatcher{configured: true, candidates: []models.MatchCandidate{
		{ID: "c-1", Name: "Jon Smithe", Score: 0.64},
	}}
	runner, _, _ := newTestRunner(st, &fakeRasterizer{pages: 1}, map[string]string{
		"page_1.png": "John Smith\n123 Main Street",
	}, matcher)

	runner.Run(context.Background(), batch.ID, "batch.pdf", models.KindMail)

	require.Len(t, st.records, 1)
	rec := st.records[0]
	require.NotNil(t, rec.ContactID)
	assert.True(t, rec.NeedsReview)
}

func TestRunMatcherErrorLeavesRecordUnmatched(t *testing.T) {
	batch := &models.Batch{ID: uuid.New(), Kind: models.KindMail, Status: models.BatchStatusConverting}
	st := newMemStore(batch)
	matcher := &fakeMatcher{configured: true, err: errors.New("directory down")}
	runner, status, _ := newTestRunner(st, &fakeRasterizer{pages: 1}, map[string]string{
		"page_1.png": "John Smith\n123 Main Street",
	}, matcher)

	runner.Run(context.Background(), batch.ID, "batch.pdf", models.KindMail)

	// A directory failure is not fatal to the batch.
	final, _ := st.GetBatch(batch.ID)
	assert.Equal(t, models.BatchStatusReady, final.Status)
	assert.Equal(t, StatusComplete, status.Get(batch.ID).Status)
	require.Len(t, st.records, 1)
	assert.Nil(t, st.records[0].ContactID)
}
