package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"checkin-api/internal/models"
	"checkin-api/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// CaptureHandler handles check-in persistence requests
type CaptureHandler struct {
	service CaptureService
}

// Service interface for dependency injection
type CaptureService interface {
	Create(context.Context, *models.CaptureRequest) (*models.CaptureRecord, error)
	List(context.Context) ([]models.CaptureRecord, error)
	Get(context.Context, string) (*models.CaptureRecord, error)
	Health(context.Context) (*models.DatabaseHealth, error)
}

// NewCaptureHandler creates a new capture handler
func NewCaptureHandler(svc CaptureService) *CaptureHandler {
	return &CaptureHandler{service: svc}
}

// Create handles POST /location requests
func (h *CaptureHandler) Create(c *gin.Context) {
	var req models.CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Str("op", "create").Msg("rejected malformed capture body")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Error saving location data",
			"error":   "invalid request body",
		})
		return
	}

	if ip := forwardedFor(c.GetHeader("X-Forwarded-For")); ip != "" {
		req.IP = ip
	}
	if ua := c.GetHeader("User-Agent"); ua != "" {
		req.UserAgent = ua
	}

	log.Debug().Interface("body", req).Msg("received capture")

	rec, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, models.ErrMissingCoordinates) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Error saving location data",
				"error":   models.ErrMissingCoordinates.Error(),
			})
			return
		}
		log.Error().Err(err).Str("op", "create").Msg("error saving capture")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error saving location data",
			"error":   err.Error(),
		})
		return
	}

	log.Info().Str("id", rec.ID).Msg("capture saved")
	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "Location data saved successfully",
		"data":       rec,
		"collection": models.CollectionName,
	})
}

// List handles GET /locations requests
func (h *CaptureHandler) List(c *gin.Context) {
	records, err := h.service.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("op", "list").Msg("error fetching captures")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error fetching location data",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(records),
		"data":    records,
	})
}

// Get handles GET /location/:id requests
func (h *CaptureHandler) Get(c *gin.Context) {
	id := c.Param("id")

	rec, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Location not found",
			})
			return
		}
		log.Error().Err(err).Str("op", "get").Str("id", id).Msg("error fetching capture")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error fetching location data",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    rec,
	})
}

// Health handles GET /health requests
func (h *CaptureHandler) Health(c *gin.Context) {
	health, err := h.service.Health(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("op", "health").Msg("health probe failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Database connection error",
			"error":     err.Error(),
			"timestamp": time.Now().UTC(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Server and database are running",
		"database":  health,
		"timestamp": time.Now().UTC(),
	})
}

// forwardedFor returns the client entry of an X-Forwarded-For header.
func forwardedFor(header string) string {
	first, _, _ := strings.Cut(header, ",")
	return strings.TrimSpace(first)
}
