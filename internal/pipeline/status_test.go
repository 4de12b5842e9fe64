package pipeline

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStatusStoreSetGet(t *testing.T) {
	store := NewStatusStore()
	id := uuid.New()

	store.Set(id, JobStatus{Status: StatusConverting, Message: "Converting PDF to images..."})

	got := store.Get(id)
	assert.Equal(t, StatusConverting, got.Status)
	assert.Equal(t, "Converting PDF to images...", got.Message)
}

func TestStatusStoreUnknownBatch(t *testing.T) {
	store := NewStatusStore()
	got := store.Get(uuid.New())
	assert.Equal(t, StatusUnknown, got.Status)
}

func TestStatusStoreUpdate(t *testing.T) {
	store := NewStatusStore()
	id := uuid.New()

	store.Set(id, JobStatus{Status: StatusProcessing, TotalPages: 10})
	store.Update(id, func(s *JobStatus) {
		s.CurrentPage = 3
		s.RecordsFound = 2
	})

	got := store.Get(id)
	assert.Equal(t, StatusProcessing, got.Status)
	assert.Equal(t, 10, got.TotalPages)
	assert.Equal(t, 3, got.CurrentPage)
	assert.Equal(t, 2, got.RecordsFound)
}

func TestStatusStoreDelete(t *testing.T) {
	store := NewStatusStore()
	id := uuid.New()

	store.Set(id, JobStatus{Status: StatusComplete})
	store.Delete(id)

	assert.Equal(t, StatusUnknown, store.Get(id).Status)
}

func TestStatusStoreConcurrentAccess(t *testing.T) {
	store := NewStatusStore()
	id := uuid.New()
	store.Set(id, JobStatus{Status: StatusProcessing})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Update(id, func(s *JobStatus) { s.RecordsFound++ })
		}()
		go func() {
			defer wg.Done()
			store.Get(id)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, store.Get(id).RecordsFound)
}
