// Package ingestion keeps the local asteroid store in step with the NASA
// NeoWs catalogue.
package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-impact-sim/internal/config"
	"github.com/mr1hm/go-impact-sim/internal/models"
	"github.com/mr1hm/go-impact-sim/internal/neo"
	"github.com/mr1hm/go-impact-sim/internal/observability"
	"github.com/mr1hm/go-impact-sim/internal/repository"
	"github.com/mr1hm/go-impact-sim/internal/worker"
)

var (
	ErrSyncInProgress = errors.New("catalogue sync already in progress")
	ErrNotStarted     = errors.New("ingestion manager not started")
)

// CatalogueSource pages through the NEO catalogue.
type CatalogueSource interface {
	Browse(ctx context.Context, page, size int) (*neo.Page, error)
}

// SyncReport summarises one catalogue sync.
type SyncReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Pages      int       `json:"pages"`
	Fetched    int       `json:"fetched"`
	Stored     int       `json:"stored"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
}

type upsertJob struct {
	asteroid *models.Asteroid
	done     func(error)
}

type Manager struct {
	cfg     *config.Config
	source  CatalogueSource
	repo    repository.AsteroidRepository
	metrics *observability.Metrics
	clock   clockwork.Clock

	pool    *worker.WorkerPool[upsertJob]
	trigger chan struct{}
	running atomic.Bool
	wg      sync.WaitGroup

	mu   sync.Mutex
	last *SyncReport
}

func NewManager(cfg *config.Config, source CatalogueSource, repo repository.AsteroidRepository, metrics *observability.Metrics, clock clockwork.Clock) *Manager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Manager{
		cfg:     cfg,
		source:  source,
		repo:    repo,
		metrics: metrics,
		clock:   clock,
		trigger: make(chan struct{}, 1),
	}
}

func (m *Manager) Start(ctx context.Context) {
	processor := func(ctx context.Context, job upsertJob) error {
		err := m.repo.UpsertAsteroid(ctx, job.asteroid)
		if err != nil {
			slog.Error("error storing asteroid", "nasa_id", job.asteroid.NASAID, "error", err)
		}
		job.done(err)
		return err
	}

	m.pool = worker.NewWorkerPool("neo-sync", m.cfg.Worker.Count, m.cfg.Worker.BufferSize, processor)
	m.pool.Start(ctx)

	m.wg.Add(1)
	go m.run(ctx)
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	var tick <-chan time.Time
	if m.cfg.Sync.Enabled {
		slog.Info("starting NEO catalogue sync", "interval", m.cfg.Sync.Interval, "pages", m.cfg.Sync.Pages)
		ticker := m.clock.NewTicker(m.cfg.Sync.Interval)
		defer ticker.Stop()
		tick = ticker.Chan()

		m.syncLogged(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("catalogue sync shutting down")
			return
		case <-tick:
			m.syncLogged(ctx)
		case <-m.trigger:
			m.syncLogged(ctx)
		}
	}
}

func (m *Manager) syncLogged(ctx context.Context) {
	report, err := m.Sync(ctx)
	if err != nil {
		if !errors.Is(err, ErrSyncInProgress) {
			slog.Error("catalogue sync failed", "error", err)
		}
		return
	}
	slog.Info("catalogue sync complete", "pages", report.Pages, "stored", report.Stored, "failed", report.Failed)
}

// TriggerSync queues an asynchronous sync. It fails when a sync is running
// or already queued.
func (m *Manager) TriggerSync() error {
	if m.pool == nil {
		return ErrNotStarted
	}
	if m.running.Load() {
		return ErrSyncInProgress
	}
	select {
	case m.trigger <- struct{}{}:
		return nil
	default:
		return ErrSyncInProgress
	}
}

// Sync browses the configured number of catalogue pages and stores every
// object through the worker pool. Only one sync runs at a time. A failure
// on the first page fails the sync; later page failures end it early.
func (m *Manager) Sync(ctx context.Context) (*SyncReport, error) {
	if m.pool == nil {
		return nil, ErrNotStarted
	}
	if !m.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer m.running.Store(false)

	report := &SyncReport{StartedAt: m.clock.Now()}
	var (
		stored, failed atomic.Int64
		syncErr        error
	)
	// outstanding holds one token for the submit loop plus one per queued job.
	var outstanding atomic.Int64
	outstanding.Store(1)
	allDone := make(chan struct{})
	release := func() {
		if outstanding.Add(-1) == 0 {
			close(allDone)
		}
	}
	done := func(err error) {
		if err != nil {
			failed.Add(1)
		} else {
			stored.Add(1)
		}
		release()
	}

pages:
	for page := 0; page < m.cfg.Sync.Pages; page++ {
		p, err := m.source.Browse(ctx, page, neo.MaxPageSize)
		if err != nil {
			if page == 0 {
				syncErr = err
			} else {
				slog.Warn("catalogue page failed, ending sync early", "page", page, "error", err)
			}
			break
		}
		report.Pages++
		report.Fetched += len(p.Asteroids)

		for _, a := range p.Asteroids {
			outstanding.Add(1)
			if err := m.pool.Submit(ctx, upsertJob{asteroid: a, done: done}); err != nil {
				release()
				syncErr = err
				break pages
			}
		}

		if p.TotalPages > 0 && page+1 >= p.TotalPages {
			break
		}
	}

	release()
	select {
	case <-allDone:
	case <-ctx.Done():
	}

	report.Stored = int(stored.Load())
	report.Failed = int(failed.Load())
	report.FinishedAt = m.clock.Now()
	if syncErr != nil {
		report.Error = syncErr.Error()
	}

	m.mu.Lock()
	m.last = report
	m.mu.Unlock()

	if m.metrics != nil {
		outcome := "success"
		if syncErr != nil {
			outcome = "error"
		}
		m.metrics.SyncRuns.WithLabelValues(outcome).Inc()
		m.metrics.SyncedAsteroids.Add(float64(report.Stored))
	}

	if syncErr != nil {
		return report, syncErr
	}
	return report, nil
}

// LastSync returns the report of the most recent sync, or nil.
func (m *Manager) LastSync() *SyncReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return nil
	}
	r := *m.last
	return &r
}

func (m *Manager) Stop() {
	m.wg.Wait()
	if m.pool != nil {
		m.pool.Stop()
	}
	slog.Info("ingestion manager stopped")
}
