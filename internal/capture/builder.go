// Package capture assembles check-in records and runs the opt-in capture flow.
package capture

import (
	"math/rand"
	"strconv"
	"time"

	"checkin-api/internal/enrichment"
	"checkin-api/internal/geolocation"
	"checkin-api/internal/models"
)

const sessionSuffixLen = 9

// Size is a width/height pair in pixels.
type Size struct {
	Width  int
	Height int
}

// Device describes the submitting device.
type Device struct {
	Screen        Size
	Viewport      Size
	Language      string
	Platform      string
	CookieEnabled bool
	UserAgent     string
}

// Info converts the descriptor to the opaque map stored with the record.
func (d Device) Info() models.DeviceInfo {
	return models.DeviceInfo{
		"screen":        map[string]interface{}{"width": d.Screen.Width, "height": d.Screen.Height},
		"viewport":      map[string]interface{}{"width": d.Viewport.Width, "height": d.Viewport.Height},
		"language":      d.Language,
		"platform":      d.Platform,
		"cookieEnabled": d.CookieEnabled,
	}
}

// Builder produces capture requests.
type Builder struct {
	now  func() time.Time
	rand *rand.Rand
}

// NewBuilder creates a builder using the wall clock.
func NewBuilder() *Builder {
	return &Builder{
		now:  time.Now,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Build assembles one capture request. No validation happens here.
func (b *Builder) Build(coords geolocation.Coordinates, enriched enrichment.Result, device Device) *models.CaptureRequest {
	now := b.now().UTC()
	return &models.CaptureRequest{
		Latitude:   models.Float64(coords.Latitude),
		Longitude:  models.Float64(coords.Longitude),
		Address:    enriched.Address,
		IP:         enriched.IP,
		UserAgent:  device.UserAgent,
		Timestamp:  &now,
		SessionID:  b.SessionID(),
		DeviceInfo: device.Info(),
	}
}

// SessionID returns the millisecond timestamp followed by a short base36
// suffix. It is a correlation tag only and may collide.
func (b *Builder) SessionID() string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffix := make([]byte, sessionSuffixLen)
	for i := range suffix {
		suffix[i] = alphabet[b.rand.Intn(len(alphabet))]
	}
	return strconv.FormatInt(b.now().UnixMilli(), 10) + string(suffix)
}
