package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"checkin-api/internal/models"
	"checkin-api/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCaptureService is a mock implementation of the CaptureService interface
type MockCaptureService struct {
	mock.Mock
}

func (m *MockCaptureService) Create(ctx context.Context, req *models.CaptureRequest) (*models.CaptureRecord, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*models.CaptureRecord), args.Error(1)
}

func (m *MockCaptureService) List(ctx context.Context) ([]models.CaptureRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.CaptureRecord), args.Error(1)
}

func (m *MockCaptureService) Get(ctx context.Context, id string) (*models.CaptureRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.CaptureRecord), args.Error(1)
}

func (m *MockCaptureService) Health(ctx context.Context) (*models.DatabaseHealth, error) {
	args := m.Called(ctx)
	return args.Get(0).(*models.DatabaseHealth), args.Error(1)
}

func TestCaptureHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		body           string
		headers        map[string]string
		expectRequest  *models.CaptureRequest
		mockRecord     *models.CaptureRecord
		mockError      error
		expectedStatus int
		expectedBody   interface{}
	}{
		{
			name:           "malformed body",
			body:           `{"latitude":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody: map[string]interface{}{
				"success": false,
				"message": "Error saving location data",
				"error":   "invalid request body",
			},
		},
		{
			name:           "missing coordinates",
			body:           `{"sessionId":"abc123"}`,
			expectRequest:  &models.CaptureRequest{SessionID: "abc123"},
			mockRecord:     nil,
			mockError:      fmt.Errorf("service: invalid capture: %w", models.ErrMissingCoordinates),
			expectedStatus: http.StatusBadRequest,
			expectedBody: map[string]interface{}{
				"success": false,
				"message": "Error saving location data",
				"error":   "latitude and longitude are required",
			},
		},
		{
			name: "headers override body",
			body: `{"latitude":1,"longitude":2,"ip":"198.51.100.1","userAgent":"body-agent"}`,
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.9, 10.0.0.1",
				"User-Agent":      "header-agent",
			},
			expectRequest: &models.CaptureRequest{
				Latitude:  models.Float64(1),
				Longitude: models.Float64(2),
				IP:        "203.0.113.9",
				UserAgent: "header-agent",
			},
			mockRecord:     &models.CaptureRecord{ID: "x", Latitude: 1, Longitude: 2, IP: "203.0.113.9", UserAgent: "header-agent"},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "body used without headers",
			body: `{"latitude":1,"longitude":2,"ip":"198.51.100.1","userAgent":"body-agent"}`,
			expectRequest: &models.CaptureRequest{
				Latitude:  models.Float64(1),
				Longitude: models.Float64(2),
				IP:        "198.51.100.1",
				UserAgent: "body-agent",
			},
			mockRecord:     &models.CaptureRecord{ID: "y", Latitude: 1, Longitude: 2, IP: "198.51.100.1", UserAgent: "body-agent"},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "store failure",
			body: `{"latitude":1,"longitude":2}`,
			expectRequest: &models.CaptureRequest{
				Latitude:  models.Float64(1),
				Longitude: models.Float64(2),
			},
			mockRecord:     nil,
			mockError:      assert.AnError,
			expectedStatus: http.StatusInternalServerError,
			expectedBody: map[string]interface{}{
				"success": false,
				"message": "Error saving location data",
				"error":   assert.AnError.Error(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			mockSvc := new(MockCaptureService)
			handler := NewCaptureHandler(mockSvc)

			if tt.expectRequest != nil {
				mockSvc.On("Create", mock.Anything, tt.expectRequest).Return(tt.mockRecord, tt.mockError)
			}

			// Create request
			req := httptest.NewRequest(http.MethodPost, "/location", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()

			// Create Gin context
			c, _ := gin.CreateTestContext(w)
			c.Request = req

			// Execute
			handler.Create(c)

			// Assert
			assert.Equal(t, tt.expectedStatus, w.Code)

			var actualBody map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &actualBody)
			assert.NoError(t, err)
			if tt.expectedBody != nil {
				assert.Equal(t, tt.expectedBody, actualBody)
			} else {
				assert.Equal(t, true, actualBody["success"])
				assert.Equal(t, "locations", actualBody["collection"])
				data := actualBody["data"].(map[string]interface{})
				assert.Equal(t, tt.mockRecord.ID, data["id"])
				assert.Equal(t, tt.mockRecord.IP, data["ip"])
				assert.Equal(t, tt.mockRecord.UserAgent, data["userAgent"])
			}

			mockSvc.AssertExpectations(t)
		})
	}
}

func TestCaptureHandler_Get(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		id             string
		mockRecord     *models.CaptureRecord
		mockError      error
		expectedStatus int
		expectedBody   interface{}
	}{
		{
			name:           "found",
			id:             "652f1c2b9d1e8a0012345678",
			mockRecord:     &models.CaptureRecord{ID: "652f1c2b9d1e8a0012345678", Latitude: 35.681236, Longitude: 139.767125},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "absent",
			id:             "652f1c2b9d1e8a0012345679",
			mockError:      fmt.Errorf("service: %w", repository.ErrNotFound),
			expectedStatus: http.StatusNotFound,
			expectedBody:   map[string]interface{}{"success": false, "message": "Location not found"},
		},
		{
			name:           "malformed id",
			id:             "zzz",
			mockError:      fmt.Errorf("service: %w", repository.ErrInvalidID),
			expectedStatus: http.StatusInternalServerError,
			expectedBody: map[string]interface{}{
				"success": false,
				"message": "Error fetching location data",
				"error":   fmt.Errorf("service: %w", repository.ErrInvalidID).Error(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockCaptureService)
			handler := NewCaptureHandler(mockSvc)
			mockSvc.On("Get", mock.Anything, tt.id).Return(tt.mockRecord, tt.mockError)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/location/"+tt.id, nil)
			c.Params = gin.Params{{Key: "id", Value: tt.id}}

			handler.Get(c)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var actualBody map[string]interface{}
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &actualBody))
			if tt.expectedBody != nil {
				assert.Equal(t, tt.expectedBody, actualBody)
			} else {
				data := actualBody["data"].(map[string]interface{})
				assert.Equal(t, tt.id, data["id"])
			}

			mockSvc.AssertExpectations(t)
		})
	}
}

func TestCaptureHandler_ListAndHealthErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockSvc := new(MockCaptureService)
	handler := NewCaptureHandler(mockSvc)
	mockSvc.On("List", mock.Anything).Return([]models.CaptureRecord(nil), assert.AnError)
	mockSvc.On("Health", mock.Anything).Return((*models.DatabaseHealth)(nil), assert.AnError)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/locations", nil)
	handler.List(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.Health(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Database connection error", body["message"])

	mockSvc.AssertExpectations(t)
}
