package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"donorscan/internal/logger"
	"donorscan/internal/pipeline"
	"donorscan/internal/store"
	"donorscan/pkg/models"
)

// BatchHandler serves the batch lifecycle: upload, listing, status polling
// and deletion. Uploads return immediately; extraction runs in the
// background and progress is read from the status store.
type BatchHandler struct {
	store     *store.Store
	status    *pipeline.StatusStore
	runner    *pipeline.Runner
	uploadDir string
}

func NewBatchHandler(st *store.Store, status *pipeline.StatusStore, runner *pipeline.Runner, uploadDir string) *BatchHandler {
	return &BatchHandler{store: st, status: status, runner: runner, uploadDir: uploadDir}
}

// Upload accepts a multipart PDF, creates the batch row, and kicks off the
// background job. Responds 202 with the batch ID for polling.
func (h *BatchHandler) Upload(c *gin.Context) {
	log := logger.WithComponent("api")

	file, err := c.FormFile("pdf_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pdf_file is required"})
		return
	}

	kind := models.BatchKind(c.PostForm("kind"))
	if kind != models.KindMail && kind != models.KindDepositScan {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be mail or deposit_scan"})
		return
	}

	batch := &models.Batch{
		ID:           uuid.New(),
		Filename:     filepath.Base(file.Filename),
		Kind:         kind,
		CampaignCode: c.PostForm("campaign_code"),
		Status:       models.BatchStatusConverting,
		CreatedAt:    time.Now().UTC(),
	}
	if raw := c.PostForm("expected_amount"); raw != "" {
		if amount, err := strconv.ParseFloat(raw, 64); err == nil {
			batch.ExpectedAmount = &amount
		}
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}
	pdfPath := filepath.Join(h.uploadDir, batch.ID.String()+".pdf")
	if err := c.SaveUploadedFile(file, pdfPath); err != nil {
		log.Error().Err(err).Msg("Failed to save uploaded PDF")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}

	if err := h.store.Batches.Create(batch); err != nil {
		log.Error().Err(err).Msg("Failed to create batch")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create batch"})
		return
	}

	h.runner.Start(batch.ID, pdfPath, kind)
	log.Info().Str("batch_id", batch.ID.String()).Str("kind", string(kind)).Msg("Batch accepted")

	c.JSON(http.StatusAccepted, gin.H{"batch_id": batch.ID, "status": batch.Status})
}

func (h *BatchHandler) List(c *gin.Context) {
	batches, err := h.store.Batches.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"batches": batches})
}

// Get returns a batch together with its records in page order.
func (h *BatchHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	batch, err := h.store.Batches.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}
	records, err := h.store.Records.ListByBatch(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"batch": batch, "records": records})
}

// GetStatus is the polling endpoint for an in-flight job. Unknown batch IDs
// get status "unknown" rather than 404 so the client can poll before the
// first status write lands.
func (h *BatchHandler) GetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}
	c.JSON(http.StatusOK, h.status.Get(id))
}

// Delete removes the batch, its records, and its job status entry.
func (h *BatchHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	if _, err := h.store.Batches.GetByID(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}
	if err := h.store.Batches.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.status.Delete(id)

	c.JSON(http.StatusOK, gin.H{"message": "batch deleted"})
}
