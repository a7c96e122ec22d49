// Package submission posts a capture request to the persistence endpoint once.
package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"checkin-api/internal/models"
)

// Error reports a non-2xx response from the endpoint.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("submission: server responded %d", e.Status)
	}
	return fmt.Sprintf("submission: server responded %d: %s", e.Status, e.Message)
}

type envelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Error   string                `json:"error"`
	Data    *models.CaptureRecord `json:"data"`
}

// Client performs a single POST per Submit call. There is no retry.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a client for endpoint. A nil http client gets a default.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{endpoint: endpoint, http: httpClient}
}

// Endpoint returns the URL submissions are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit sends req and returns the stored record.
func (c *Client) Submit(ctx context.Context, req *models.CaptureRequest) (*models.CaptureRecord, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("submission: failed to encode payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("submission: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.UserAgent != "" {
		httpReq.Header.Set("User-Agent", req.UserAgent)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("submission: network error: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if env.Error != "" {
			msg = fmt.Sprintf("%s: %s", env.Message, env.Error)
		}
		return nil, &Error{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("submission: malformed response: %w", decodeErr)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("submission: response carried no record")
	}
	return env.Data, nil
}
