package service

import (
	"context"
	"fmt"
	"time"

	"checkin-api/internal/models"
)

// CaptureService contains the business logic for storing and reading check-ins
type CaptureService struct {
	repo CaptureRepository
	now  func() time.Time
}

// CaptureRepository interface for dependency injection
type CaptureRepository interface {
	Create(ctx context.Context, rec *models.CaptureRecord) (*models.CaptureRecord, error)
	List(ctx context.Context) ([]models.CaptureRecord, error)
	Get(ctx context.Context, id string) (*models.CaptureRecord, error)
	Health(ctx context.Context) (*models.DatabaseHealth, error)
}

// NewCaptureService creates a new capture service
func NewCaptureService(repo CaptureRepository) *CaptureService {
	return &CaptureService{repo: repo, now: time.Now}
}

// Create validates the request, applies defaults and stores one record.
// Identical requests produce distinct records; there is no deduplication.
func (s *CaptureService) Create(ctx context.Context, req *models.CaptureRequest) (*models.CaptureRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("service: invalid capture: %w", err)
	}

	rec, err := s.repo.Create(ctx, req.NewRecord(s.now().UTC()))
	if err != nil {
		return nil, fmt.Errorf("service: failed to save capture: %w", err)
	}

	return rec, nil
}

// List returns all records, newest first
func (s *CaptureService) List(ctx context.Context) ([]models.CaptureRecord, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list captures: %w", err)
	}

	return records, nil
}

// Get returns a single record by its store-assigned id
func (s *CaptureService) Get(ctx context.Context, id string) (*models.CaptureRecord, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get capture %q: %w", id, err)
	}

	return rec, nil
}

// Health probes the store
func (s *CaptureService) Health(ctx context.Context) (*models.DatabaseHealth, error) {
	health, err := s.repo.Health(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: health probe failed: %w", err)
	}

	return health, nil
}
