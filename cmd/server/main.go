package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/cors"

	"github.com/rpattn/influencer-api/internal/analysis"
	"github.com/rpattn/influencer-api/internal/catalog"
	"github.com/rpattn/influencer-api/internal/config"
	"github.com/rpattn/influencer-api/internal/db"
	"github.com/rpattn/influencer-api/internal/influencer"
	"github.com/rpattn/influencer-api/internal/logging"
	"github.com/rpattn/influencer-api/internal/metrics"
	"github.com/rpattn/influencer-api/internal/middleware"
	"github.com/rpattn/influencer-api/internal/repository"
)

var defaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "."
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("Failed to load config", "err", err)
	}
	logger := logging.New(cfg.Log)
	if cfg.File != "" {
		logger.Info("Loaded config", "file", cfg.File)
	} else {
		logger.Info("No config.yaml found, using defaults and env vars")
	}

	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup database connection
	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	m := metrics.New()

	// Create repositories
	repoOpts := []repository.Option{
		repository.WithQueryTimeout(cfg.Database.QueryTimeout),
		repository.WithQueryObserver(m.ObserveQuery),
	}
	influencerRepo := repository.NewInfluencerRepository(conn.Pool, cfg.Dataset, repoOpts...)
	catalogRepo := repository.NewCatalogRepository(conn.Pool, cfg.Dataset, repoOpts...)

	// Create services
	normalizer := analysis.NewNormalizer(
		analysis.WithField(cfg.Analysis.Field),
		analysis.WithLogger(logger),
		analysis.WithObserver(m.ObserveAnalysis),
	)
	influencerService := influencer.NewService(influencerRepo,
		influencer.WithNormalizer(normalizer),
		influencer.WithDetailAnalysis(analysis.Options{ParseRaw: cfg.Analysis.DetailParseRaw}),
		influencer.WithListAnalysis(analysis.Options{ParseRaw: cfg.Analysis.ListParseRaw}),
		influencer.WithPageLimits(cfg.Pagination.Limits()),
		influencer.WithExportMaxRows(cfg.Pagination.ExportMaxRows),
		influencer.WithLogger(logger),
	)
	catalogService := catalog.NewService(catalogRepo)

	influencerHandler := middleware.ProfileLoaderMiddleware(influencerRepo)(
		influencer.NewHTTPHandler(influencerService, logger),
	)

	mux := http.NewServeMux()
	mux.Handle(influencer.ListPath, influencerHandler)
	mux.Handle(influencer.ExportPath, influencerHandler)
	mux.Handle("/api/categories", catalog.NewCategoriesHandler(catalogService, logger))
	mux.Handle("/api/locations", catalog.NewLocationsHandler(catalogService, logger))
	mux.Handle("/healthz", healthHandler(conn))
	mux.Handle("/metrics", m.Handler())

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: append(append([]string{}, defaultAllowedOrigins...), cfg.Server.AllowedOrigins...),
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	routeLabel := func(r *http.Request) string {
		_, pattern := mux.Handler(r)
		if pattern == "" {
			return "unmatched"
		}
		return pattern
	}
	handler := corsHandler.Handler(middleware.LoggingMiddleware(logger, routeLabel, m.ObserveRequest)(mux))

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting influencer API", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", "err", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "err", err)
		return
	}

	logger.Info("Server exited")
}

func healthHandler(conn *db.Connection) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		w.Header().Set("Content-Type", "application/json")
		if err := conn.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
}
