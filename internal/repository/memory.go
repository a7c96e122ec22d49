package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"checkin-api/internal/database"
	"checkin-api/internal/models"

	"github.com/google/uuid"
)

// MemoryRepository keeps capture records in process memory. It backs local
// development (memory:// store URI) and the handler tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []models.CaptureRecord
	now     func() time.Time
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

// Create stores a copy of rec under a fresh id.
func (r *MemoryRepository) Create(ctx context.Context, rec *models.CaptureRecord) (*models.CaptureRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *rec
	stored.ID = uuid.NewString()
	now := r.now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Timestamp.IsZero() {
		stored.Timestamp = now
	}
	if stored.DeviceInfo == nil {
		stored.DeviceInfo = models.DeviceInfo{}
	}
	r.records = append(r.records, stored)

	out := stored
	return &out, nil
}

// List returns every record, newest first. Records created at the same
// instant keep reverse insertion order.
func (r *MemoryRepository) List(ctx context.Context) ([]models.CaptureRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.CaptureRecord, len(r.records))
	for i := range r.records {
		out[len(out)-1-i] = r.records[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Get returns the record with the given id.
func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.CaptureRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.records {
		if r.records[i].ID == id {
			out := r.records[i]
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// Health always reports a connected store holding the locations collection.
func (r *MemoryRepository) Health(ctx context.Context) (*models.DatabaseHealth, error) {
	return &models.DatabaseHealth{
		Name:        "memory",
		State:       database.Connected.String(),
		Collections: []string{models.CollectionName},
	}, nil
}

// Close is a no-op.
func (r *MemoryRepository) Close(ctx context.Context) error {
	return nil
}
