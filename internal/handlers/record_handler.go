package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"donorscan/internal/store"
)

// RecordHandler serves review-time reads and edits of individual records.
type RecordHandler struct {
	store *store.Store
}

func NewRecordHandler(st *store.Store) *RecordHandler {
	return &RecordHandler{store: st}
}

func (h *RecordHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record ID"})
		return
	}
	record, err := h.store.Records.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// recordUpdate carries review edits. Amount and check_date arrive as
// strings from the review form; values that fail to parse are ignored
// rather than rejected, so one bad field never blocks the rest of an edit.
type recordUpdate struct {
	Name         *string `json:"name"`
	Amount       *string `json:"amount"`
	CheckDate    *string `json:"check_date"`
	CheckNumber  *string `json:"check_number"`
	AddressLine1 *string `json:"address_line1"`
	AddressLine2 *string `json:"address_line2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	ZipCode      *string `json:"zip_code"`
	ContactID    *string `json:"contact_id"`
	ContactName  *string `json:"contact_name"`
	MoneyOrder   *bool   `json:"money_order"`
	NeedsReview  *bool   `json:"needs_review"`
}

// Update applies a partial edit to a record. Absent fields are untouched.
func (h *RecordHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record ID"})
		return
	}
	record, err := h.store.Records.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}

	var payload recordUpdate
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if payload.Name != nil {
		record.Name = payload.Name
	}
	if payload.Amount != nil {
		if amount, ok := parseEditAmount(*payload.Amount); ok {
			record.Amount = &amount
		}
	}
	if payload.CheckDate != nil {
		if date, ok := parseEditDate(*payload.CheckDate); ok {
			record.CheckDate = &date
		}
	}
	if payload.CheckNumber != nil {
		record.CheckNumber = payload.CheckNumber
	}
	if payload.AddressLine1 != nil {
		record.AddressLine1 = payload.AddressLine1
	}
	if payload.AddressLine2 != nil {
		record.AddressLine2 = payload.AddressLine2
	}
	if payload.City != nil {
		record.City = payload.City
	}
	if payload.State != nil {
		record.State = payload.State
	}
	if payload.ZipCode != nil {
		record.ZipCode = payload.ZipCode
	}
	if payload.ContactID != nil {
		record.ContactID = payload.ContactID
	}
	if payload.ContactName != nil {
		record.ContactName = payload.ContactName
	}
	if payload.MoneyOrder != nil {
		record.MoneyOrder = *payload.MoneyOrder
	}
	if payload.NeedsReview != nil {
		record.NeedsReview = *payload.NeedsReview
	}

	if err := h.store.Records.Save(record); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

// parseEditAmount parses a review-form amount, rounded to two decimals
// like every other amount in the system.
func parseEditAmount(raw string) (float64, bool) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return math.Round(amount*100) / 100, true
}

var editDateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006", "01-02-2006"}

func parseEditDate(raw string) (time.Time, bool) {
	for _, layout := range editDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
