// Package store holds the gorm repositories for batches and extracted
// check records. Each record write is its own commit: a later failure in a
// batch never rolls back records already persisted.
package store

import (
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"donorscan/pkg/models"
)

// Open connects to Postgres and migrates the schema.
func Open(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.Batch{}, &models.CheckRecord{}); err != nil {
		return nil, err
	}

	return db, nil
}

// Store bundles both repositories behind the flat surface the pipeline
// runner depends on.
type Store struct {
	Batches *BatchRepository
	Records *RecordRepository
}

func New(db *gorm.DB) *Store {
	return &Store{
		Batches: NewBatchRepository(db),
		Records: NewRecordRepository(db),
	}
}

func (s *Store) GetBatch(id uuid.UUID) (*models.Batch, error) { return s.Batches.GetByID(id) }
func (s *Store) SaveBatch(batch *models.Batch) error          { return s.Batches.Save(batch) }

func (s *Store) CreateRecord(record *models.CheckRecord) error { return s.Records.Create(record) }
func (s *Store) SaveRecord(record *models.CheckRecord) error   { return s.Records.Save(record) }

func (s *Store) ListRecords(batchID uuid.UUID) ([]models.CheckRecord, error) {
	return s.Records.ListByBatch(batchID)
}

func (s *Store) CountRecords(batchID uuid.UUID) (int64, error) {
	return s.Records.CountByBatch(batchID)
}
