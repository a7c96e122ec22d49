package geolocation

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPermission struct {
	mock.Mock
}

func (m *MockPermission) State(ctx context.Context) (PermissionState, error) {
	args := m.Called(ctx)
	return args.Get(0).(PermissionState), args.Error(1)
}

func (m *MockPermission) Request(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

type blockingSource struct{}

func (blockingSource) CurrentPosition(ctx context.Context, opts Options) (Coordinates, error) {
	<-ctx.Done()
	return Coordinates{}, ctx.Err()
}

func TestAcquirer_Acquire(t *testing.T) {
	here := Coordinates{Latitude: 37.77, Longitude: -122.41}

	tests := []struct {
		name         string
		state        PermissionState
		askResult    *bool
		expectedKind Kind
	}{
		{name: "prior grant skips prompt", state: Granted},
		{name: "prompt accepted", state: Prompt, askResult: boolPtr(true)},
		{name: "prompt declined", state: Prompt, askResult: boolPtr(false), expectedKind: PermissionDenied},
		{name: "denied on record", state: Denied, expectedKind: PermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perm := new(MockPermission)
			perm.On("State", mock.Anything).Return(tt.state, nil)
			if tt.askResult != nil {
				perm.On("Request", mock.Anything).Return(*tt.askResult, nil)
			}

			coords, err := NewAcquirer(perm, StaticSource{Coordinates: here}).Acquire(context.Background())

			if tt.expectedKind != 0 {
				assert.ErrorIs(t, err, ErrPermissionDenied)
				assert.Equal(t, Coordinates{}, coords)
			} else {
				require.NoError(t, err)
				assert.Equal(t, here, coords)
			}
			perm.AssertExpectations(t)
		})
	}
}

func TestAcquirer_Timeout(t *testing.T) {
	perm := new(MockPermission)
	perm.On("State", mock.Anything).Return(Granted, nil)

	a := NewAcquirer(perm, blockingSource{})
	a.opts.Timeout = 20 * time.Millisecond

	_, err := a.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, ErrPermissionDenied)
}

func TestDefaultOptions(t *testing.T) {
	assert.True(t, DefaultOptions.HighAccuracy)
	assert.Equal(t, 10*time.Second, DefaultOptions.Timeout)
	assert.Equal(t, time.Duration(0), DefaultOptions.MaximumAge)
}

func TestPromptPermission_Request(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"sure\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			p := &PromptPermission{In: strings.NewReader(tt.input), Out: &out, Destination: "http://localhost:5000/api/location"}

			state, err := p.State(context.Background())
			require.NoError(t, err)
			assert.Equal(t, Prompt, state)

			ok, err := p.Request(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
			assert.Contains(t, out.String(), "http://localhost:5000/api/location")
			assert.Contains(t, out.String(), "[y/N]")
		})
	}
}

func TestPromptPermission_Remembered(t *testing.T) {
	p := &PromptPermission{Remembered: true}
	state, err := p.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Granted, state)
}

func boolPtr(b bool) *bool {
	return &b
}
