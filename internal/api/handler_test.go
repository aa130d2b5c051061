package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mr1hm/go-impact-sim/internal/ingestion"
	"github.com/mr1hm/go-impact-sim/internal/models"
	"github.com/mr1hm/go-impact-sim/internal/neo"
	"github.com/mr1hm/go-impact-sim/internal/observability"
	"github.com/mr1hm/go-impact-sim/internal/physics"
	"github.com/mr1hm/go-impact-sim/internal/repository"
	"github.com/mr1hm/go-impact-sim/internal/service"
	"github.com/mr1hm/go-impact-sim/internal/stream"
)

// mockSource implements service.AsteroidSource over a fixed catalogue.
type mockSource struct {
	catalogue  map[string]*models.Asteroid
	approaches []models.ApproachInfo
	disabled   bool
}

func (m *mockSource) Configured() bool { return !m.disabled }

func (m *mockSource) FetchAsteroid(ctx context.Context, id string) (*models.Asteroid, error) {
	a, ok := m.catalogue[id]
	if !ok {
		return nil, neo.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockSource) Search(ctx context.Context, f models.AsteroidFilter) ([]*models.Asteroid, error) {
	var out []*models.Asteroid
	for _, a := range m.catalogue {
		if f.Matches(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockSource) CloseApproaches(ctx context.Context, daysAhead int) ([]models.ApproachInfo, error) {
	return m.approaches, nil
}

// mockSync implements SyncTrigger.
type mockSync struct {
	err      error
	triggers int
	last     *ingestion.SyncReport
}

func (m *mockSync) TriggerSync() error {
	m.triggers++
	return m.err
}

func (m *mockSync) LastSync() *ingestion.SyncReport { return m.last }

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("database is locked") }

type testServer struct {
	router      *gin.Engine
	db          *repository.SQLiteDB
	source      *mockSource
	sync        *mockSync
	broadcaster *stream.Broadcaster
	metrics     *observability.Metrics
}

func testAsteroid(id, name string, diameterKm float64, hazardous bool) *models.Asteroid {
	return &models.Asteroid{
		NASAID:               id,
		Name:                 name,
		EstimatedDiameterKm:  models.Float(diameterKm),
		Diameter:             models.DiameterEstimate{AverageKm: models.Float(diameterKm)},
		PotentiallyHazardous: hazardous,
		CompositionType:      physics.CompositionRocky,
		DensityKgM3:          models.Float(physics.DensityFor(physics.CompositionRocky)),
		CloseApproaches:      []models.CloseApproach{},
		LastUpdated:          time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		IsActive:             true,
	}
}

func setupTestRouter(t *testing.T, asteroids ...*models.Asteroid) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	source := &mockSource{catalogue: make(map[string]*models.Asteroid)}
	for _, a := range asteroids {
		source.catalogue[a.NASAID] = a
	}

	metrics := observability.NewMetricsForTesting()
	broadcaster := stream.NewBroadcaster(metrics)
	t.Cleanup(broadcaster.Close)

	asteroidSvc := service.NewAsteroidService(db, source, metrics)
	simulationSvc := service.NewSimulationService(asteroidSvc, db, broadcaster, metrics,
		clockwork.NewFakeClockAt(time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)))
	sync := &mockSync{}

	router := gin.New()
	router.Use(AccessLogMiddleware(metrics))
	handler := NewHandler(asteroidSvc, simulationSvc, sync, broadcaster, db)
	handler.RegisterRoutes(router)

	return &testServer{
		router:      router,
		db:          db,
		source:      source,
		sync:        sync,
		broadcaster: broadcaster,
		metrics:     metrics,
	}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			json.NewEncoder(&buf).Encode(body)
		}
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	s.router.ServeHTTP(w, req)
	return w
}

const customRunBody = `{
	"parameters": {
		"custom_asteroid": {"name": "Test Rock", "diameter_km": 1, "composition": "rocky"},
		"impact_velocity_kms": 20,
		"impact_location": {"lat": 48.8566, "lng": 2.3522, "name": "Paris", "population": 2100000}
	}
}`

func (s *testServer) runCustom(t *testing.T) models.Simulation {
	t.Helper()
	w := s.do("POST", "/api/simulation/run", customRunBody)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var sim models.Simulation
	if err := json.Unmarshal(w.Body.Bytes(), &sim); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return sim
}

type errorBody struct {
	Error  string       `json:"error"`
	Fields []fieldError `json:"fields"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse error body: %v", err)
	}
	return body
}

func hasField(body errorBody, field string) bool {
	for _, f := range body.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func TestRoot(t *testing.T) {
	s := setupTestRouter(t)

	w := s.do("GET", "/api/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["version"] != Version {
		t.Errorf("expected version %s, got %v", Version, resp["version"])
	}
	if resp["nasa_api_configured"] != true {
		t.Errorf("expected nasa_api_configured true, got %v", resp["nasa_api_configured"])
	}
}

func TestHealth(t *testing.T) {
	s := setupTestRouter(t)

	w := s.do("GET", "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != "healthy" {
		t.Errorf("expected status healthy, got %v", resp["status"])
	}
	if resp["database"] != "connected" {
		t.Errorf("expected database connected, got %v", resp["database"])
	}
}

func TestHealth_Degraded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	source := &mockSource{disabled: true}
	asteroids := service.NewAsteroidService(nil, source, nil)
	NewHandler(asteroids, nil, nil, nil, failingPinger{}).RegisterRoutes(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/health", nil)
	router.ServeHTTP(w, req)

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != "degraded" {
		t.Errorf("expected status degraded, got %v", resp["status"])
	}
	if !strings.HasPrefix(resp["database"].(string), "error:") {
		t.Errorf("expected database error, got %v", resp["database"])
	}
	if resp["nasa_api_configured"] != false {
		t.Errorf("expected nasa_api_configured false, got %v", resp["nasa_api_configured"])
	}
}

func TestRunSimulation_CustomAsteroid(t *testing.T) {
	s := setupTestRouter(t)

	sim := s.runCustom(t)

	if sim.Name != "Impact: Test Rock → Paris" {
		t.Errorf("unexpected name %q", sim.Name)
	}
	if sim.Results == nil || sim.Calculation == nil {
		t.Fatalf("expected results and calculation, got %+v", sim)
	}
	if sim.Results.AsteroidSource != models.SourceCustom {
		t.Errorf("expected source custom, got %s", sim.Results.AsteroidSource)
	}
	if got := sim.Calculation.EnergyMt; got < 65073 || got > 65076 {
		t.Errorf("expected about 65074 MT, got %f", got)
	}
	// defaults applied to fields absent from the request
	if sim.Parameters.ImpactAngleDeg != physics.DefaultAngleDeg {
		t.Errorf("expected default angle, got %f", sim.Parameters.ImpactAngleDeg)
	}
	if !sim.Parameters.AtmosphericEntry {
		t.Error("expected atmospheric_entry to default to true")
	}
}

func TestRunSimulation_CatalogueAsteroid(t *testing.T) {
	s := setupTestRouter(t, testAsteroid("2000433", "433 Eros", 16.84, false))

	body := `{"parameters": {"asteroid_nasa_id": "2000433",
		"impact_location": {"lat": 40.7128, "lng": -74.006, "name": "New York", "population": 8336817}}}`
	w := s.do("POST", "/api/simulation/run", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var sim models.Simulation
	json.Unmarshal(w.Body.Bytes(), &sim)
	if !sim.NASAEnhanced {
		t.Error("expected nasa_enhanced simulation")
	}
	if sim.Results.ConfidenceLevel != models.ConfidenceNASA {
		t.Errorf("expected confidence %v, got %v", models.ConfidenceNASA, sim.Results.ConfidenceLevel)
	}
}

func TestRunSimulation_UnknownAsteroid(t *testing.T) {
	s := setupTestRouter(t)

	body := `{"parameters": {"asteroid_nasa_id": "999",
		"impact_location": {"lat": 0, "lng": 0, "name": "Null Island", "population": 0}}}`
	w := s.do("POST", "/api/simulation/run", body)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRunSimulation_BindingErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{
			name:  "angle below range",
			body:  `{"parameters": {"impact_angle_deg": 10, "custom_asteroid": {"name": "a", "diameter_km": 1}, "impact_location": {"name": "x"}}}`,
			field: "parameters.impact_angle_deg",
		},
		{
			name:  "latitude out of range",
			body:  `{"parameters": {"custom_asteroid": {"name": "a", "diameter_km": 1}, "impact_location": {"name": "x", "lat": 91}}}`,
			field: "parameters.impact_location.lat",
		},
		{
			name:  "missing location name",
			body:  `{"parameters": {"custom_asteroid": {"name": "a", "diameter_km": 1}, "impact_location": {}}}`,
			field: "parameters.impact_location.name",
		},
		{
			name:  "velocity beyond range",
			body:  `{"parameters": {"impact_velocity_kms": 1e160, "custom_asteroid": {"name": "a", "diameter_km": 1}, "impact_location": {"name": "x"}}}`,
			field: "parameters.impact_velocity_kms",
		},
		{
			name:  "diameter beyond range",
			body:  `{"parameters": {"custom_asteroid": {"name": "a", "diameter_km": 1e110}, "impact_location": {"name": "x"}}}`,
			field: "parameters.custom_asteroid.diameter_km",
		},
		{
			name:  "density beyond range",
			body:  `{"parameters": {"custom_asteroid": {"name": "a", "diameter_km": 1, "density_kg_m3": 1e300}, "impact_location": {"name": "x"}}}`,
			field: "parameters.custom_asteroid.density_kg_m3",
		},
		{
			name:  "unknown composition",
			body:  `{"parameters": {"custom_asteroid": {"name": "a", "diameter_km": 1, "composition": "cheese"}, "impact_location": {"name": "x"}}}`,
			field: "parameters.custom_asteroid.composition",
		},
	}

	s := setupTestRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do("POST", "/api/simulation/run", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
			}
			if body := decodeError(t, w); !hasField(body, tt.field) {
				t.Errorf("expected field error for %s, got %+v", tt.field, body.Fields)
			}
		})
	}
}

func TestRunSimulation_ServiceValidation(t *testing.T) {
	s := setupTestRouter(t)

	body := `{"parameters": {"impact_location": {"name": "Paris", "lat": 48.8, "lng": 2.3}}}`
	w := s.do("POST", "/api/simulation/run", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
	if body := decodeError(t, w); !hasField(body, "parameters") {
		t.Errorf("expected parameters field error, got %+v", body)
	}
}

func TestRunSimulation_MalformedJSON(t *testing.T) {
	s := setupTestRouter(t)

	w := s.do("POST", "/api/simulation/run", `{"parameters": `)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestSimulationLifecycle(t *testing.T) {
	s := setupTestRouter(t)
	sim := s.runCustom(t)
	path := "/api/simulation/simulation/" + sim.ID

	w := s.do("GET", path, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	w = s.do("PUT", path, map[string]any{"name": "Renamed", "is_public": true, "tags": []string{"demo"}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated models.Simulation
	json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.Name != "Renamed" || !updated.IsPublic {
		t.Errorf("update not applied: %+v", updated)
	}
	if len(updated.Tags) != 1 || updated.Tags[0] != "demo" {
		t.Errorf("expected tags [demo], got %v", updated.Tags)
	}

	w = s.do("DELETE", path, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	w = s.do("GET", path, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 after delete, got %d", w.Code)
	}
	w = s.do("DELETE", path, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 deleting twice, got %d", w.Code)
	}
}

func TestGetSimulation_InvalidID(t *testing.T) {
	s := setupTestRouter(t)

	w := s.do("GET", "/api/simulation/simulation/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestListSimulations(t *testing.T) {
	s := setupTestRouter(t)
	s.runCustom(t)
	s.runCustom(t)

	w := s.do("GET", "/api/simulation/simulations?limit=1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var sims []models.Simulation
	json.Unmarshal(w.Body.Bytes(), &sims)
	if len(sims) != 1 {
		t.Errorf("expected 1 simulation, got %d", len(sims))
	}

	w = s.do("GET", "/api/simulation/simulations?asteroid_type=custom", nil)
	json.Unmarshal(w.Body.Bytes(), &sims)
	if len(sims) != 2 {
		t.Errorf("expected 2 custom simulations, got %d", len(sims))
	}

	w = s.do("GET", "/api/simulation/simulations?nasa_enhanced_only=true", nil)
	json.Unmarshal(w.Body.Bytes(), &sims)
	if len(sims) != 0 {
		t.Errorf("expected no nasa enhanced simulations, got %d", len(sims))
	}

	w = s.do("GET", "/api/simulation/simulations?limit=500", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for oversized limit, got %d", w.Code)
	}
}

func TestSimulationsGeoJSON(t *testing.T) {
	s := setupTestRouter(t)
	sim := s.runCustom(t)

	w := s.do("GET", "/api/simulation/simulations.geojson", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	contentType := w.Header().Get("Content-Type")
	if contentType != "application/geo+json" {
		t.Errorf("expected content-type application/geo+json, got %s", contentType)
	}

	var fc FeatureCollection
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if fc.Type != "FeatureCollection" {
		t.Errorf("expected type FeatureCollection, got %s", fc.Type)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(fc.Features))
	}

	f := fc.Features[0]
	if f.Geometry.Coordinates[0] != 2.3522 || f.Geometry.Coordinates[1] != 48.8566 {
		t.Errorf("expected [lng, lat] coordinates, got %v", f.Geometry.Coordinates)
	}
	if f.Properties["id"] != sim.ID {
		t.Errorf("expected id %s, got %v", sim.ID, f.Properties["id"])
	}
	if f.Properties["severity"] != string(physics.SeverityCatastrophic) {
		t.Errorf("expected catastrophic severity, got %v", f.Properties["severity"])
	}
}

func TestCompareSimulations(t *testing.T) {
	s := setupTestRouter(t)
	a := s.runCustom(t)
	b := s.runCustom(t)

	w := s.do("POST", "/api/simulation/compare", []string{a.ID, b.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var cmp models.Comparison
	json.Unmarshal(w.Body.Bytes(), &cmp)
	if cmp.Summary.TotalCompared != 2 {
		t.Errorf("expected 2 compared, got %d", cmp.Summary.TotalCompared)
	}
	if len(cmp.ComparisonMatrix.Energies) != 2 {
		t.Errorf("expected 2 energy values, got %d", len(cmp.ComparisonMatrix.Energies))
	}

	w = s.do("POST", "/api/simulation/compare", []string{a.ID})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for a single id, got %d", w.Code)
	}
}

func TestSimulationStatistics(t *testing.T) {
	s := setupTestRouter(t)
	s.runCustom(t)

	w := s.do("GET", "/api/simulation/statistics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var stats models.SimulationStats
	json.Unmarshal(w.Body.Bytes(), &stats)
	if stats.TotalSimulations != 1 {
		t.Errorf("expected 1 simulation, got %d", stats.TotalSimulations)
	}
	if len(stats.PopularLocations) != 1 || stats.PopularLocations[0].Name != "Paris" {
		t.Errorf("expected Paris as popular location, got %+v", stats.PopularLocations)
	}
}

func TestGetAsteroid(t *testing.T) {
	s := setupTestRouter(t, testAsteroid("3554375", "101955 Bennu", 0.49, true))

	w := s.do("GET", "/api/neo/asteroid/3554375", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var a models.Asteroid
	json.Unmarshal(w.Body.Bytes(), &a)
	if a.Name != "101955 Bennu" {
		t.Errorf("expected Bennu, got %s", a.Name)
	}

	w = s.do("GET", "/api/neo/asteroid/0000000", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestListAsteroids_Filters(t *testing.T) {
	s := setupTestRouter(t)
	ctx := context.Background()
	for _, a := range []*models.Asteroid{
		testAsteroid("1", "Big", 5, true),
		testAsteroid("2", "Medium", 1, false),
		testAsteroid("3", "Small", 0.1, true),
	} {
		if err := s.db.UpsertAsteroid(ctx, a); err != nil {
			t.Fatalf("failed to seed asteroid: %v", err)
		}
	}

	w := s.do("GET", "/api/neo/asteroids?potentially_hazardous=true&diameter_min_km=0.5", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var result models.AsteroidSearchResult
	json.Unmarshal(w.Body.Bytes(), &result)
	if len(result.Asteroids) != 1 || result.Asteroids[0].NASAID != "1" {
		t.Errorf("expected only asteroid 1, got %+v", result.Asteroids)
	}

	w = s.do("GET", "/api/neo/asteroids?limit=0", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected limit=0 to fall back to the default, got %d", w.Code)
	}

	w = s.do("GET", "/api/neo/asteroids?neo_type=Centaur", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for unknown neo_type, got %d", w.Code)
	}

	w = s.do("GET", "/api/neo/asteroids?refresh_cache=maybe", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for bad refresh_cache, got %d", w.Code)
	}
}

func TestCloseApproaches(t *testing.T) {
	s := setupTestRouter(t)
	s.source.approaches = []models.ApproachInfo{
		{Asteroid: *testAsteroid("a", "Near", 0.2, true), ClosestApproachKm: 1.2e6},
		{Asteroid: *testAsteroid("b", "Far", 0.3, false), ClosestApproachKm: 4.5e7},
	}

	w := s.do("GET", "/api/neo/close-approaches?limit=1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var report models.CloseApproachReport
	json.Unmarshal(w.Body.Bytes(), &report)
	if report.DaysAhead != 30 {
		t.Errorf("expected default days_ahead 30, got %d", report.DaysAhead)
	}
	if report.TotalFound != 2 || report.Returned != 1 {
		t.Errorf("expected 2 found, 1 returned, got %d/%d", report.TotalFound, report.Returned)
	}

	w = s.do("GET", "/api/neo/close-approaches?days_ahead=400", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for days_ahead=400, got %d", w.Code)
	}
}

func TestFeatured(t *testing.T) {
	s := setupTestRouter(t, testAsteroid("2000433", "433 Eros", 16.84, false))

	w := s.do("GET", "/api/neo/featured", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp struct {
		Featured []models.FeaturedAsteroid `json:"featured_asteroids"`
		Count    int                       `json:"count"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 1 || resp.Featured[0].Asteroid.Name != "433 Eros" {
		t.Errorf("expected only Eros, got %+v", resp)
	}
}

func TestAsteroidStats(t *testing.T) {
	s := setupTestRouter(t)
	s.db.UpsertAsteroid(context.Background(), testAsteroid("1", "One", 2, true))

	w := s.do("GET", "/api/neo/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var stats models.AsteroidStats
	json.Unmarshal(w.Body.Bytes(), &stats)
	if stats.TotalAsteroids != 1 || stats.PotentiallyHazardous != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestTriggerSync(t *testing.T) {
	s := setupTestRouter(t)

	w := s.do("POST", "/api/neo/sync", nil)
	if w.Code != http.StatusAccepted {
		t.Errorf("expected status 202, got %d", w.Code)
	}

	s.sync.err = ingestion.ErrSyncInProgress
	w = s.do("POST", "/api/neo/sync", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", w.Code)
	}
	if s.sync.triggers != 2 {
		t.Errorf("expected 2 triggers, got %d", s.sync.triggers)
	}

	s.source.disabled = true
	w = s.do("POST", "/api/neo/sync", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503 without an API key, got %d", w.Code)
	}
}

func TestLastSync(t *testing.T) {
	s := setupTestRouter(t)

	w := s.do("GET", "/api/neo/sync", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 before any sync, got %d", w.Code)
	}

	s.sync.last = &ingestion.SyncReport{Pages: 3, Stored: 60}
	w = s.do("GET", "/api/neo/sync", nil)
	var report ingestion.SyncReport
	json.Unmarshal(w.Body.Bytes(), &report)
	if report.Stored != 60 {
		t.Errorf("expected 60 stored, got %d", report.Stored)
	}
}

func TestAccessLogMiddleware_CountsRequests(t *testing.T) {
	s := setupTestRouter(t)
	s.do("GET", "/api/health", nil)
	s.do("GET", "/api/health", nil)

	got := testutil.ToFloat64(s.metrics.HTTPRequests.WithLabelValues("GET", "/api/health", "200"))
	if got != 2 {
		t.Errorf("expected 2 counted requests, got %v", got)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(1))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	codes := make([]int, 0, 2)
	for range 2 {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("expected [200 429], got %v", codes)
	}
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(0))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for range 5 {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
	}
}

func TestStreamSimulations(t *testing.T) {
	s := setupTestRouter(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", srv.URL+"/api/simulation/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected content-type text/event-stream, got %s", ct)
	}
	if n := s.broadcaster.SubscriberCount(); n != 1 {
		t.Fatalf("expected 1 subscriber, got %d", n)
	}

	sim := s.runCustom(t)

	reader := bufio.NewReader(resp.Body)
	var event string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("stream ended before simulation event: %v", err)
		}
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "event:") {
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			continue
		}
		if event == "simulation" && strings.HasPrefix(line, "data:") {
			var summary models.SimulationSummary
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data:")), &summary); err != nil {
				t.Fatalf("failed to parse event data: %v", err)
			}
			if summary.ID != sim.ID {
				t.Errorf("expected summary for %s, got %s", sim.ID, summary.ID)
			}
			break
		}
	}
}

func TestStreamSimulations_Unavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(service.NewAsteroidService(nil, &mockSource{}, nil), nil, nil, nil, nil).RegisterRoutes(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/simulation/stream", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}
