package capture

import (
	"context"
	"fmt"

	"checkin-api/internal/enrichment"
	"checkin-api/internal/geolocation"
	"checkin-api/internal/models"

	"github.com/rs/zerolog/log"
)

// Acquirer obtains a position after permission is granted.
type Acquirer interface {
	Acquire(ctx context.Context) (geolocation.Coordinates, error)
}

// Enricher resolves best-effort address and IP fields.
type Enricher interface {
	Resolve(ctx context.Context, lat, lon float64) enrichment.Result
}

// Submitter delivers a capture request to the persistence endpoint.
type Submitter interface {
	Submit(ctx context.Context, req *models.CaptureRequest) (*models.CaptureRecord, error)
}

// Pipeline runs one check-in: acquire, enrich, build, submit.
type Pipeline struct {
	acquirer  Acquirer
	enricher  Enricher
	builder   *Builder
	submitter Submitter
	device    Device
}

// NewPipeline wires the capture steps.
func NewPipeline(acq Acquirer, enr Enricher, b *Builder, sub Submitter, device Device) *Pipeline {
	return &Pipeline{acquirer: acq, enricher: enr, builder: b, submitter: sub, device: device}
}

// Run performs the check-in once. Permission denial and timeouts stop it
// before anything is sent; submission failures are returned, not retried.
func (p *Pipeline) Run(ctx context.Context) (*models.CaptureRecord, error) {
	coords, err := p.acquirer.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}

	enriched := p.enricher.Resolve(ctx, coords.Latitude, coords.Longitude)
	req := p.builder.Build(coords, enriched, p.device)

	log.Debug().Str("session_id", req.SessionID).Msg("submitting check-in")
	rec, err := p.submitter.Submit(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	return rec, nil
}
