package store

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"donorscan/pkg/models"
)

type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func (r *BatchRepository) Create(batch *models.Batch) error {
	return r.db.Create(batch).Error
}

func (r *BatchRepository) GetByID(id uuid.UUID) (*models.Batch, error) {
	var batch models.Batch
	if err := r.db.First(&batch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// List returns batches newest first.
func (r *BatchRepository) List() ([]models.Batch, error) {
	var batches []models.Batch
	err := r.db.Order("created_at DESC").Find(&batches).Error
	return batches, err
}

func (r *BatchRepository) Save(batch *models.Batch) error {
	return r.db.Save(batch).Error
}

// Delete removes a batch and all its records.
func (r *BatchRepository) Delete(id uuid.UUID) error {
	if err := r.db.Where("batch_id = ?", id).Delete(&models.CheckRecord{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Batch{}, "id = ?", id).Error
}
