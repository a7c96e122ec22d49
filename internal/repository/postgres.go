package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"checkin-api/internal/database"
	"checkin-api/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS locations (
		id BIGSERIAL PRIMARY KEY,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		ip TEXT NOT NULL DEFAULT 'Unknown',
		user_agent TEXT NOT NULL DEFAULT '',
		timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
		session_id TEXT NOT NULL DEFAULT '',
		device_info JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
	);
	CREATE INDEX IF NOT EXISTS locations_created_at_idx ON locations (created_at DESC);
`

const selectColumns = `
	id,
	latitude,
	longitude,
	address,
	ip,
	user_agent,
	timestamp,
	session_id,
	device_info,
	created_at,
	updated_at
`

// PostgresRepository stores capture records in a PostgreSQL table with a JSONB device column.
type PostgresRepository struct {
	conn *database.Lazy[*pgxpool.Pool]
}

// NewPostgresRepository creates a repository whose pool is established on first use.
func NewPostgresRepository(dsn string, timeout time.Duration) *PostgresRepository {
	return &PostgresRepository{
		conn: database.NewLazy(
			func(ctx context.Context) (*pgxpool.Pool, error) {
				pool, err := database.ConnectPostgres(ctx, dsn, timeout)
				if err != nil {
					return nil, err
				}
				ctx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()
				if _, err := pool.Exec(ctx, createTableSQL); err != nil {
					pool.Close()
					return nil, fmt.Errorf("repository: failed to create table: %w", err)
				}
				return pool, nil
			},
			func(ctx context.Context, p *pgxpool.Pool) error {
				p.Close()
				return nil
			},
		),
	}
}

func (r *PostgresRepository) pool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := r.conn.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: store unavailable: %w", err)
	}
	return pool, nil
}

// Create inserts one capture record and returns the stored row.
func (r *PostgresRepository) Create(ctx context.Context, rec *models.CaptureRecord) (*models.CaptureRecord, error) {
	pool, err := r.pool(ctx)
	if err != nil {
		return nil, err
	}

	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	device := rec.DeviceInfo
	if device == nil {
		device = models.DeviceInfo{}
	}

	sql := `
		INSERT INTO locations (latitude, longitude, address, ip, user_agent, timestamp, session_id, device_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING` + selectColumns

	row := pool.QueryRow(ctx, sql,
		rec.Latitude,
		rec.Longitude,
		rec.Address,
		rec.IP,
		rec.UserAgent,
		ts,
		rec.SessionID,
		map[string]interface{}(device),
	)
	stored, err := scanCapture(row)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to insert capture record: %w", err)
	}
	return stored, nil
}

// List returns every capture record, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]models.CaptureRecord, error) {
	pool, err := r.pool(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, `SELECT`+selectColumns+`FROM locations ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute list query: %w", err)
	}
	defer rows.Close()

	records := []models.CaptureRecord{}
	for rows.Next() {
		rec, err := scanCapture(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan capture record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}
	return records, nil
}

// Get returns the capture record with the given id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.CaptureRecord, error) {
	key, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	pool, err := r.pool(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := scanCapture(pool.QueryRow(ctx, `SELECT`+selectColumns+`FROM locations WHERE id = $1`, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to find capture record: %w", err)
	}
	return rec, nil
}

// Health reports the connection state and the tables of the public schema.
func (r *PostgresRepository) Health(ctx context.Context) (*models.DatabaseHealth, error) {
	pool, err := r.pool(ctx)
	if err != nil {
		return nil, err
	}

	health := &models.DatabaseHealth{State: r.conn.State().String(), Collections: []string{}}
	if err := pool.QueryRow(ctx, `SELECT current_database()`).Scan(&health.Name); err != nil {
		return nil, fmt.Errorf("repository: failed to read database name: %w", err)
	}

	rows, err := pool.Query(ctx, `SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to list tables: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("repository: failed to scan table name: %w", err)
		}
		health.Collections = append(health.Collections, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}
	return health, nil
}

// Close releases the pool if it was established.
func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func scanCapture(row pgx.Row) (*models.CaptureRecord, error) {
	var (
		rec    models.CaptureRecord
		id     int64
		device map[string]interface{}
	)
	err := row.Scan(
		&id,
		&rec.Latitude,
		&rec.Longitude,
		&rec.Address,
		&rec.IP,
		&rec.UserAgent,
		&rec.Timestamp,
		&rec.SessionID,
		&device,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.ID = strconv.FormatInt(id, 10)
	rec.DeviceInfo = models.DeviceInfo(device)
	if rec.DeviceInfo == nil {
		rec.DeviceInfo = models.DeviceInfo{}
	}
	return &rec, nil
}
