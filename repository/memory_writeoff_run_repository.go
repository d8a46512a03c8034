package repository

import (
	"context"
	"sync"
	"time"

	"egais-writeoff/models"
)

// MemoryWriteoffRunRepository keeps the latest runs in memory.
// Used when no database is configured; history is lost on restart.
type MemoryWriteoffRunRepository struct {
	mu       sync.Mutex
	runs     []models.WriteoffRun
	capacity int
	now      func() time.Time
}

// NewMemoryWriteoffRunRepository creates a repository keeping at most capacity runs
func NewMemoryWriteoffRunRepository(capacity int) *MemoryWriteoffRunRepository {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryWriteoffRunRepository{
		capacity: capacity,
		now:      time.Now,
	}
}

// Ensure MemoryWriteoffRunRepository implements WriteoffRunRepositoryInterface
var _ WriteoffRunRepositoryInterface = (*MemoryWriteoffRunRepository)(nil)

// Insert stores the run, evicting the oldest one when full
func (r *MemoryWriteoffRunRepository) Insert(ctx context.Context, run *models.WriteoffRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run.CreatedAt = r.now().UTC().Format(time.RFC3339)
	r.runs = append(r.runs, *run)
	if len(r.runs) > r.capacity {
		r.runs = r.runs[len(r.runs)-r.capacity:]
	}
	return nil
}

// ListRecent returns up to limit runs, newest first
func (r *MemoryWriteoffRunRepository) ListRecent(ctx context.Context, limit int) ([]models.WriteoffRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit > len(r.runs) {
		limit = len(r.runs)
	}
	out := make([]models.WriteoffRun, 0, limit)
	for i := len(r.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.runs[i])
	}
	return out, nil
}
