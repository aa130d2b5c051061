package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-impact-sim/internal/ingestion"
	"github.com/mr1hm/go-impact-sim/internal/models"
)

type closeApproachQuery struct {
	DaysAhead int `form:"days_ahead,default=30"`
	Limit     int `form:"limit,default=10"`
}

func (h *Handler) listAsteroids(c *gin.Context) {
	var filter models.AsteroidFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}

	refresh := false
	if r := c.Query("refresh_cache"); r != "" {
		b, err := strconv.ParseBool(r)
		if err != nil {
			respondError(c, models.Invalid("refresh_cache", "must be a boolean"))
			return
		}
		refresh = b
	}

	result, err := h.asteroids.List(c.Request.Context(), filter, refresh)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) getAsteroid(c *gin.Context) {
	a, err := h.asteroids.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) closeApproaches(c *gin.Context) {
	var q closeApproachQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	report, err := h.asteroids.CloseApproaches(c.Request.Context(), q.DaysAhead, q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) triggerSync(c *gin.Context) {
	if h.sync == nil || !h.asteroids.SourceConfigured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalogue sync is not available: NASA API key not configured"})
		return
	}

	switch err := h.sync.TriggerSync(); {
	case errors.Is(err, ingestion.ErrSyncInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "status": "in_progress"})
	case err != nil:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusAccepted, gin.H{
			"message": "NASA NEO database sync started in background",
			"status":  "in_progress",
		})
	}
}

func (h *Handler) lastSync(c *gin.Context) {
	if h.sync == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalogue sync is not available"})
		return
	}
	report := h.sync.LastSync()
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no catalogue sync has run yet"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) asteroidStats(c *gin.Context) {
	stats, err := h.asteroids.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) featured(c *gin.Context) {
	featured := h.asteroids.Featured(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"featured_asteroids": featured,
		"count":              len(featured),
	})
}
