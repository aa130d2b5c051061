package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/go-impact-sim/internal/api"
	"github.com/mr1hm/go-impact-sim/internal/config"
	"github.com/mr1hm/go-impact-sim/internal/ingestion"
	"github.com/mr1hm/go-impact-sim/internal/logging"
	"github.com/mr1hm/go-impact-sim/internal/neo"
	"github.com/mr1hm/go-impact-sim/internal/observability"
	"github.com/mr1hm/go-impact-sim/internal/repository"
	"github.com/mr1hm/go-impact-sim/internal/service"
	"github.com/mr1hm/go-impact-sim/internal/stream"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("Asteroid impact simulator starting",
		"version", api.Version,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"nasa_api_configured", cfg.NASA.APIKey != "",
	)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	client := neo.NewClient(cfg.NASA.APIKey, cfg.NASA.BaseURL, cfg.NASA.Timeout, cfg.NASA.MaxRetries, metrics, nil)

	// Live simulation feed for SSE subscribers
	broadcaster := stream.NewBroadcaster(metrics)

	asteroids := service.NewAsteroidService(db, client, metrics)
	simulations := service.NewSimulationService(asteroids, db, broadcaster, metrics, nil)

	// Catalogue sync: periodic when enabled, on demand via POST /api/neo/sync
	mgr := ingestion.NewManager(cfg, client, db, metrics, nil)
	mgr.Start(ctx)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.AccessLogMiddleware(metrics))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: !slices.Contains(cfg.Server.CORSAllowOrigins, "*"),
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimitRPS))

	handler := api.NewHandler(asteroids, simulations, mgr, broadcaster, db)
	handler.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	mgr.Stop()
	broadcaster.Close() // ends open SSE streams so Shutdown can drain

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
