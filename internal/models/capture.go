package models

import (
	"errors"
	"time"
)

// UnknownIP is stored when neither the request headers nor the body carry an address.
const UnknownIP = "Unknown"

// CollectionName is the single collection (or table) holding capture records.
const CollectionName = "locations"

// ErrMissingCoordinates is returned when a capture has no latitude or longitude.
var ErrMissingCoordinates = errors.New("latitude and longitude are required")

// DeviceInfo is an opaque description of the submitting device. It is stored as received.
type DeviceInfo map[string]interface{}

// CaptureRecord represents one location check-in as persisted by the store.
type CaptureRecord struct {
	ID         string     `json:"id" bson:"-"`
	Latitude   float64    `json:"latitude" bson:"latitude"`
	Longitude  float64    `json:"longitude" bson:"longitude"`
	Address    string     `json:"address" bson:"address"`
	IP         string     `json:"ip" bson:"ip"`
	UserAgent  string     `json:"userAgent" bson:"userAgent"`
	Timestamp  time.Time  `json:"timestamp" bson:"timestamp"`
	SessionID  string     `json:"sessionId" bson:"sessionId"`
	DeviceInfo DeviceInfo `json:"deviceInfo" bson:"deviceInfo"`
	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// CaptureRequest is the body accepted by the create endpoint and produced by the client builder.
// Coordinates are pointers so that a missing value can be told apart from zero.
type CaptureRequest struct {
	Latitude   *float64   `json:"latitude"`
	Longitude  *float64   `json:"longitude"`
	Address    string     `json:"address,omitempty"`
	IP         string     `json:"ip,omitempty"`
	UserAgent  string     `json:"userAgent,omitempty"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	SessionID  string     `json:"sessionId,omitempty"`
	DeviceInfo DeviceInfo `json:"deviceInfo,omitempty"`
}

// Validate reports whether the request carries both coordinates.
func (r *CaptureRequest) Validate() error {
	if r.Latitude == nil || r.Longitude == nil {
		return ErrMissingCoordinates
	}
	return nil
}

// NewRecord applies the storage defaults to a validated request.
// CreatedAt and UpdatedAt are left for the store to assign.
func (r *CaptureRequest) NewRecord(now time.Time) *CaptureRecord {
	rec := &CaptureRecord{
		Latitude:   *r.Latitude,
		Longitude:  *r.Longitude,
		Address:    r.Address,
		IP:         r.IP,
		UserAgent:  r.UserAgent,
		Timestamp:  now,
		SessionID:  r.SessionID,
		DeviceInfo: r.DeviceInfo,
	}
	if rec.IP == "" {
		rec.IP = UnknownIP
	}
	if r.Timestamp != nil && !r.Timestamp.IsZero() {
		rec.Timestamp = *r.Timestamp
	}
	if rec.DeviceInfo == nil {
		rec.DeviceInfo = DeviceInfo{}
	}
	return rec
}

// Float64 returns a pointer to v. Handy for building requests.
func Float64(v float64) *float64 {
	return &v
}
