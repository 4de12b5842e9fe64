package store

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"donorscan/pkg/models"
)

type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Create commits one record immediately; the record is the unit of
// durability for the pipeline.
func (r *RecordRepository) Create(record *models.CheckRecord) error {
	return r.db.Create(record).Error
}

func (r *RecordRepository) GetByID(id uuid.UUID) (*models.CheckRecord, error) {
	var record models.CheckRecord
	if err := r.db.First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByBatch returns a batch's records in page order.
func (r *RecordRepository) ListByBatch(batchID uuid.UUID) ([]models.CheckRecord, error) {
	var records []models.CheckRecord
	err := r.db.Where("batch_id = ?", batchID).Order("page_number").Find(&records).Error
	return records, err
}

func (r *RecordRepository) CountByBatch(batchID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.CheckRecord{}).Where("batch_id = ?", batchID).Count(&count).Error
	return count, err
}

func (r *RecordRepository) Save(record *models.CheckRecord) error {
	return r.db.Save(record).Error
}
