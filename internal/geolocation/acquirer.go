// Package geolocation obtains a one-shot position fix after the person has
// agreed to share it.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind classifies an acquisition failure.
type Kind int

const (
	PermissionDenied Kind = iota + 1
	Timeout
)

func (k Kind) String() string {
	switch k {
	case PermissionDenied:
		return "PermissionDenied"
	case Timeout:
		return "Timeout"
	default:
		return "Unknown"
	}
}

var (
	ErrPermissionDenied = &Error{Kind: PermissionDenied}
	ErrTimeout          = &Error{Kind: Timeout}
)

// Error is returned by Acquire when no position can be obtained.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is matches errors of the same kind regardless of reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Options constrain a position request.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	// MaximumAge is the oldest cached fix accepted; zero forces a fresh fix.
	MaximumAge time.Duration
}

// DefaultOptions asks for a fresh high-accuracy fix within ten seconds.
var DefaultOptions = Options{HighAccuracy: true, Timeout: 10 * time.Second, MaximumAge: 0}

// PermissionState is the result of a permission query.
type PermissionState int

const (
	Prompt PermissionState = iota
	Granted
	Denied
)

// Permission decides whether the position may be shared.
type Permission interface {
	// State reports a decision already on record without asking.
	State(ctx context.Context) (PermissionState, error)
	// Request asks the person and reports whether they agreed.
	Request(ctx context.Context) (bool, error)
}

// PositionSource produces position fixes.
type PositionSource interface {
	CurrentPosition(ctx context.Context, opts Options) (Coordinates, error)
}

// Acquirer gates a PositionSource behind a Permission.
type Acquirer struct {
	permission Permission
	source     PositionSource
	opts       Options
}

// NewAcquirer creates an acquirer using DefaultOptions.
func NewAcquirer(permission Permission, source PositionSource) *Acquirer {
	return &Acquirer{permission: permission, source: source, opts: DefaultOptions}
}

// Acquire returns a fresh position. A prior grant skips the prompt; anything
// other than an explicit yes is PermissionDenied.
func (a *Acquirer) Acquire(ctx context.Context) (Coordinates, error) {
	if err := a.authorize(ctx); err != nil {
		return Coordinates{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	type result struct {
		coords Coordinates
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		c, err := a.source.CurrentPosition(ctx, a.opts)
		ch <- result{c, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) {
				return Coordinates{}, &Error{Kind: Timeout, Reason: "no position fix within " + a.opts.Timeout.String()}
			}
			return Coordinates{}, fmt.Errorf("geolocation: position unavailable: %w", r.err)
		}
		return r.coords, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.Canceled) {
			return Coordinates{}, ctx.Err()
		}
		return Coordinates{}, &Error{Kind: Timeout, Reason: "no position fix within " + a.opts.Timeout.String()}
	}
}

func (a *Acquirer) authorize(ctx context.Context) error {
	state, err := a.permission.State(ctx)
	if err != nil {
		return fmt.Errorf("geolocation: permission query failed: %w", err)
	}

	switch state {
	case Granted:
		return nil
	case Denied:
		return &Error{Kind: PermissionDenied, Reason: "location sharing was declined"}
	}

	ok, err := a.permission.Request(ctx)
	if err != nil {
		return fmt.Errorf("geolocation: permission request failed: %w", err)
	}
	if !ok {
		return &Error{Kind: PermissionDenied, Reason: "location sharing was declined"}
	}
	return nil
}
