package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mr1hm/go-impact-sim/internal/ingestion"
	"github.com/mr1hm/go-impact-sim/internal/models"
	"github.com/mr1hm/go-impact-sim/internal/service"
	"github.com/mr1hm/go-impact-sim/internal/stream"
)

const Version = "2.0.0"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SyncTrigger starts catalogue syncs on demand.
type SyncTrigger interface {
	TriggerSync() error
	LastSync() *ingestion.SyncReport
}

type Handler struct {
	asteroids   *service.AsteroidService
	simulations *service.SimulationService
	sync        SyncTrigger
	broadcaster *stream.Broadcaster
	db          Pinger
}

// NewHandler builds the HTTP handler. syncer and broadcaster may be nil, in
// which case their routes answer 503.
func NewHandler(asteroids *service.AsteroidService, simulations *service.SimulationService, syncer SyncTrigger, broadcaster *stream.Broadcaster, db Pinger) *Handler {
	registerJSONFieldNames()
	return &Handler{
		asteroids:   asteroids,
		simulations: simulations,
		sync:        syncer,
		broadcaster: broadcaster,
		db:          db,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/", h.root)
	api.GET("/health", h.health)

	neo := api.Group("/neo")
	neo.GET("/asteroids", h.listAsteroids)
	neo.GET("/asteroid/:id", h.getAsteroid)
	neo.GET("/close-approaches", h.closeApproaches)
	neo.POST("/sync", h.triggerSync)
	neo.GET("/sync", h.lastSync)
	neo.GET("/stats", h.asteroidStats)
	neo.GET("/featured", h.featured)

	sim := api.Group("/simulation")
	sim.POST("/run", h.runSimulation)
	sim.GET("/simulations", h.listSimulations)
	sim.GET("/simulations.geojson", h.simulationsGeoJSON)
	sim.GET("/simulation/:id", h.getSimulation)
	sim.PUT("/simulation/:id", h.updateSimulation)
	sim.DELETE("/simulation/:id", h.deleteSimulation)
	sim.POST("/compare", h.compareSimulations)
	sim.GET("/statistics", h.simulationStatistics)
	sim.GET("/stream", h.streamSimulations)
}

func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Asteroid Impact Simulator API v" + Version,
		"features": []string{
			"NASA NEO real data integration",
			"Enhanced physics calculations",
			"Orbital mechanics modeling",
			"Scientific impact assessment",
		},
		"nasa_api_configured": h.asteroids.SourceConfigured(),
		"version":             Version,
	})
}

func (h *Handler) health(c *gin.Context) {
	status, database := "healthy", "connected"
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			status, database = "degraded", "error: "+err.Error()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":              status,
		"database":            database,
		"nasa_api_configured": h.asteroids.SourceConfigured(),
		"timestamp":           time.Now().UTC(),
	})
}

type fieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  ve.Error(),
			"fields": []fieldError{{Field: ve.Field, Reason: ve.Reason}},
		})
	case errors.Is(err, models.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrSourceUnavailable):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled):
		c.Status(499)
	default:
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// respondBindError renders gin binding failures. Validator failures become
// per-field messages; decode failures a single message.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	fields := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldError{Field: fieldPath(fe), Reason: reason(fe)})
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error":  "invalid request",
		"fields": fields,
	})
}

// fieldPath drops the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lt":
		return "must be less than " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

var fieldNamesOnce sync.Once

// registerJSONFieldNames makes validator errors report the json or form
// name of a field instead of the Go one.
func registerJSONFieldNames() {
	fieldNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
	})
}
