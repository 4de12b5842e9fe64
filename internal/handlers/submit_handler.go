package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"donorscan/internal/hubspot"
	"donorscan/internal/logger"
	"donorscan/internal/store"
	"donorscan/pkg/models"
)

// SubmitHandler pushes a reviewed batch into the CRM as donation deals.
type SubmitHandler struct {
	store *store.Store
	crm   *hubspot.Client
}

func NewSubmitHandler(st *store.Store, crm *hubspot.Client) *SubmitHandler {
	return &SubmitHandler{store: st, crm: crm}
}

// Submit creates one deal per eligible record. Money orders and records
// with no amount are skipped, not failed; a record without a matched
// contact still gets a deal, just unassociated. Records that already carry
// a deal ID are never re-submitted, so the endpoint is safe to retry after
// a partial failure.
func (h *SubmitHandler) Submit(c *gin.Context) {
	log := logger.WithComponent("submit")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}
	if !h.crm.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "CRM not configured"})
		return
	}

	batch, err := h.store.Batches.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}
	if batch.Status != models.BatchStatusReady && batch.Status != models.BatchStatusSubmitted {
		c.JSON(http.StatusConflict, gin.H{"error": "batch is not ready for submission"})
		return
	}

	records, err := h.store.Records.ListByBatch(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	submitted, skipped, failed := 0, 0, 0
	for i := range records {
		rec := &records[i]
		if rec.DealID != nil {
			continue
		}
		if rec.MoneyOrder || rec.Amount == nil {
			skipped++
			continue
		}

		contactID := ""
		if rec.ContactID != nil {
			contactID = *rec.ContactID
		}
		dealID, err := h.crm.CreateDeal(c.Request.Context(), *rec, contactID, batch.CampaignCode)
		if err != nil {
			log.Error().Err(err).Str("record_id", rec.ID.String()).Msg("Deal creation failed")
			failed++
			continue
		}
		rec.DealID = &dealID
		if err := h.store.Records.Save(rec); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		submitted++
	}

	if failed == 0 {
		now := time.Now().UTC()
		batch.Status = models.BatchStatusSubmitted
		batch.SubmittedAt = &now
		if err := h.store.Batches.Save(batch); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	log.Info().Str("batch_id", id.String()).Int("submitted", submitted).Int("skipped", skipped).Int("failed", failed).Msg("Batch submission finished")
	c.JSON(http.StatusOK, gin.H{
		"submitted": submitted,
		"skipped":   skipped,
		"failed":    failed,
		"status":    batch.Status,
	})
}
