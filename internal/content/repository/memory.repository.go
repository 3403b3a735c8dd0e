package repository

import (
	"context"
	"sync"

	"tulisan/internal/content/model"
)

// MemoryRepository keeps records in process memory. It backs STORE_DRIVER=memory
// and tests; everything is lost on restart.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []model.ContentRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Insert(ctx context.Context, rec model.ContentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

// Latest breaks CreatedAt ties in favour of the later insert.
func (r *MemoryRepository) Latest(ctx context.Context) (model.ContentRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.ContentRecord{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.records) == 0 {
		return model.ContentRecord{}, model.ErrNoContent
	}
	latest := r.records[0]
	for _, rec := range r.records[1:] {
		if !rec.CreatedAt.Before(latest.CreatedAt) {
			latest = rec
		}
	}
	return latest, nil
}

// Len reports how many records have been stored.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
