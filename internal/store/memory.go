package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore implements JobStore in process memory with the same transition
// rules as DynamoStore. Used by the CLI and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]AlbumJob
}

var _ JobStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]AlbumJob)}
}

func memKey(sessionID, jobID string) string { return sessionPK(sessionID) + "|" + albumSK(jobID) }

// CreateAlbumJob implements JobStore.
func (m *MemoryStore) CreateAlbumJob(_ context.Context, job *AlbumJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memKey(job.SessionID, job.ID)
	if _, ok := m.jobs[key]; ok {
		return fmt.Errorf("create album job %s/%s: %w", job.SessionID, job.ID, ErrJobExists)
	}
	now := time.Now().Unix()
	if job.CreatedAt == 0 {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = StatusProcessing
	}
	m.jobs[key] = *job
	return nil
}

// GetAlbumJob implements JobStore.
func (m *MemoryStore) GetAlbumJob(_ context.Context, sessionID, jobID string) (*AlbumJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[memKey(sessionID, jobID)]
	if !ok {
		return nil, nil
	}
	return &job, nil
}

// UpdateAlbumJob implements JobStore.
func (m *MemoryStore) UpdateAlbumJob(_ context.Context, job *AlbumJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memKey(job.SessionID, job.ID)
	old, ok := m.jobs[key]
	if !ok {
		return fmt.Errorf("update album job %s/%s: %w", job.SessionID, job.ID, ErrJobNotFound)
	}
	if !CanTransition(old.Status, job.Status) {
		return fmt.Errorf("update album job %s/%s: %w: %s -> %s", job.SessionID, job.ID, ErrInvalidTransition, old.Status, job.Status)
	}
	job.UpdatedAt = time.Now().Unix()
	m.jobs[key] = *job
	return nil
}
