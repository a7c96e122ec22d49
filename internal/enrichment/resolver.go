// Package enrichment adds a street address and public IP to a check-in.
// Both lookups are best effort: they always return a value.
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	// AddressUnavailable replaces the address when the lookup fails.
	AddressUnavailable = "Address not available"
	// AddressNotFound is used when the lookup succeeds without a display name.
	AddressNotFound = "Address not found"
	// UnknownIP replaces the public IP when the lookup fails.
	UnknownIP = "Unknown"
)

// Result holds the resolved enrichment fields.
type Result struct {
	Address string
	IP      string
}

// Resolver queries a reverse geocoding service and an IP echo service.
type Resolver struct {
	client     *http.Client
	geocodeURL string
	ipURL      string
	userAgent  string
}

// NewResolver creates a resolver. A nil client gets a ten second timeout.
func NewResolver(client *http.Client, geocodeURL, ipURL, userAgent string) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Resolver{client: client, geocodeURL: geocodeURL, ipURL: ipURL, userAgent: userAgent}
}

// Resolve runs both lookups concurrently and waits for both to settle.
func (r *Resolver) Resolve(ctx context.Context, lat, lon float64) Result {
	var res Result
	var g errgroup.Group
	g.Go(func() error {
		res.Address = r.ReverseGeocode(ctx, lat, lon)
		return nil
	})
	g.Go(func() error {
		res.IP = r.PublicIP(ctx)
		return nil
	})
	_ = g.Wait()
	return res
}

// ReverseGeocode returns the display name for a coordinate, or AddressUnavailable.
func (r *Resolver) ReverseGeocode(ctx context.Context, lat, lon float64) string {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("addressdetails", "1")

	var body struct {
		DisplayName string `json:"display_name"`
	}
	if err := r.getJSON(ctx, r.geocodeURL, q, &body); err != nil {
		log.Warn().Err(err).Str("op", "reverse_geocode").Msg("enrichment failed, using fallback")
		return AddressUnavailable
	}
	if body.DisplayName == "" {
		return AddressNotFound
	}
	return body.DisplayName
}

// PublicIP returns the caller's public address, or UnknownIP.
func (r *Resolver) PublicIP(ctx context.Context) string {
	q := url.Values{}
	q.Set("format", "json")

	var body struct {
		IP string `json:"ip"`
	}
	if err := r.getJSON(ctx, r.ipURL, q, &body); err != nil || body.IP == "" {
		log.Warn().Err(err).Str("op", "public_ip").Msg("enrichment failed, using fallback")
		return UnknownIP
	}
	return body.IP
}

func (r *Resolver) getJSON(ctx context.Context, base string, q url.Values, dst interface{}) error {
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("enrichment: invalid url %q: %w", base, err)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("enrichment: failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("enrichment: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("enrichment: unexpected status %d from %s", resp.StatusCode, u.Host)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("enrichment: malformed response: %w", err)
	}
	return nil
}
