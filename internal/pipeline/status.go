package pipeline

import (
	"sync"

	"github.com/google/uuid"
)

// Job statuses reported to pollers. Consumers poll until they observe
// StatusComplete or StatusError.
const (
	StatusConverting = "converting"
	StatusProcessing = "processing"
	StatusMatching   = "matching"
	StatusComplete   = "complete"
	StatusError      = "error"
	StatusUnknown    = "unknown"
)

// JobStatus is the progress snapshot for one running batch.
type JobStatus struct {
	Status       string `json:"status"`
	CurrentPage  int    `json:"current_page"`
	TotalPages   int    `json:"total_pages"`
	RecordsFound int    `json:"records_found"`
	Message      string `json:"message"`
}

// StatusStore is the shared progress map, created once at process start
// and injected into the runner and the poll handler. One mutex guards all
// access, so a reader can observe a snapshot between field updates but
// never a torn field. Entries are not evicted when a job finishes; only
// explicit Delete (batch deletion) removes them.
type StatusStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]JobStatus
}

func NewStatusStore() *StatusStore {
	return &StatusStore{jobs: make(map[uuid.UUID]JobStatus)}
}

// Set replaces the snapshot for a batch.
func (s *StatusStore) Set(batchID uuid.UUID, status JobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[batchID] = status
}

// Update applies fn to the batch's snapshot, creating one if absent.
func (s *StatusStore) Update(batchID uuid.UUID, fn func(*JobStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := s.jobs[batchID]
	fn(&status)
	s.jobs[batchID] = status
}

// Get returns the snapshot for a batch, or a StatusUnknown snapshot when
// the batch has no entry.
func (s *StatusStore) Get(batchID uuid.UUID) JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.jobs[batchID]; ok {
		return status
	}
	return JobStatus{Status: StatusUnknown}
}

// Delete removes a batch's entry.
func (s *StatusStore) Delete(batchID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, batchID)
}
