package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/ndewijer/mf-folio-backend/internal/api"
	"github.com/ndewijer/mf-folio-backend/internal/config"
	"github.com/ndewijer/mf-folio-backend/internal/database"
	"github.com/ndewijer/mf-folio-backend/internal/folio"
	"github.com/ndewijer/mf-folio-backend/internal/logging"
	"github.com/ndewijer/mf-folio-backend/internal/metrics"
	"github.com/ndewijer/mf-folio-backend/internal/repository"
	"github.com/ndewijer/mf-folio-backend/internal/scheduler"
	"github.com/ndewijer/mf-folio-backend/internal/service"
	"github.com/ndewijer/mf-folio-backend/internal/valuation"
	"github.com/ndewijer/mf-folio-backend/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log.Logger = logger

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	schemaVersion, err := database.Migrate(context.Background(), db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}
	logger.Info().Str("path", cfg.Database.Path).Int64("schema_version", schemaVersion).Msg("connected to database")

	migrator, err := database.NewMigrator(db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create migrator")
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Holding sources
	holdingRepo := repository.NewHoldingRepository(db)

	var client *folio.Client
	if cfg.Folio.APIURL != "" {
		client = folio.NewClient(
			folio.Config{BaseURL: cfg.Folio.APIURL, Timeout: cfg.Folio.Timeout},
			folio.WithMetrics(m),
			folio.WithLogger(logger),
		)
	}

	var source service.HoldingSource = holdingRepo
	if cfg.Holdings.Source == config.SourceRemote {
		source = client
	}

	var aggOpts []valuation.Option
	if cfg.Valuation.PreserveInputOrder {
		aggOpts = append(aggOpts, valuation.WithInputOrder())
	}

	// Create services
	portfolioService := service.NewPortfolioService(source, valuation.New(aggOpts...), m, logger)

	var syncService *service.SyncService
	if client != nil {
		syncService = service.NewSyncService(client, holdingRepo, cfg.Sync.Concurrency, m, logger)
	}

	systemService := service.NewSystemService(db, migrator, map[string]bool{
		"xirr":           true,
		"local_holdings": cfg.Holdings.Source == config.SourceLocal,
		"sync":           syncService != nil,
		"scheduled_sync": cfg.Sync.Schedule != "",
	})

	// Scheduled sync
	sched := scheduler.New(logger)
	if cfg.Sync.Schedule != "" {
		if err := sched.Add("holdings-sync", cfg.Sync.Schedule, scheduler.SyncJob(syncService, cfg.Sync.UserIDs)); err != nil {
			logger.Fatal().Err(err).Msg("failed to schedule holdings sync")
		}
		sched.Start()
		logger.Info().Str("schedule", cfg.Sync.Schedule).Msg("holdings sync scheduled")
	}

	// Create router
	router := api.NewRouter(api.Services{
		System:    systemService,
		Portfolio: portfolioService,
		Sync:      syncService,
	}, cfg, logger, m, reg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().
			Str("addr", cfg.Server.Addr).
			Str("version", version.Version).
			Str("holdings_source", cfg.Holdings.Source).
			Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	if err := sched.Stop(ctx); err != nil {
		logger.Error().Err(err).Msg("scheduled jobs did not finish before shutdown")
	}

	logger.Info().Msg("server exited")
}
