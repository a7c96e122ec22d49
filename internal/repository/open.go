package repository

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"checkin-api/internal/models"
)

// Store is implemented by every capture record backend.
type Store interface {
	Create(ctx context.Context, rec *models.CaptureRecord) (*models.CaptureRecord, error)
	List(ctx context.Context) ([]models.CaptureRecord, error)
	Get(ctx context.Context, id string) (*models.CaptureRecord, error)
	Health(ctx context.Context) (*models.DatabaseHealth, error)
	Close(ctx context.Context) error
}

// Open selects a backend from the scheme of uri. No connection is made until
// the first operation.
func Open(uri, dbName string, timeout time.Duration) (Store, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("repository: invalid store uri: %w", err)
	}

	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		return NewMongoRepository(uri, dbName, timeout), nil
	case "postgres", "postgresql":
		return NewPostgresRepository(uri, timeout), nil
	case "memory":
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("repository: unsupported store scheme %q", u.Scheme)
	}
}
