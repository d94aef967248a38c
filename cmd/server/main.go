package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"brokerage/server/config"
	"brokerage/server/internal/api"
	"brokerage/server/internal/bi"
	"brokerage/server/internal/cache"
	"brokerage/server/internal/database"
	"brokerage/server/internal/insights"
	"brokerage/server/internal/models"
	"brokerage/server/internal/processor"
	"brokerage/server/internal/queue"
	"brokerage/server/internal/scheduler"
	"brokerage/server/internal/supabase"
)

// Queued imports get this long to reach the store once the server has stopped.
const drainTimeout = 15 * time.Second

// recordStore is what the server needs from either database backend.
type recordStore interface {
	bi.RecordStore
	UpsertBatch(ctx context.Context, batch models.RecordBatch) error
	Counts(ctx context.Context) (models.RecordCounts, error)
	Close() error
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, using info")
	}
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open record store")
	}
	defer store.Close()

	snapshots, err := openCache(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open snapshot cache")
	}
	if snapshots != nil {
		defer snapshots.Close()
	}

	service := bi.NewService(store, snapshots, bi.Options{
		FetchTimeout: cfg.Dashboard.FetchTimeout,
		CacheTTL:     cfg.Dashboard.CacheTTL,
		Bands:        cfg.PriceBands(),
		RecentSales:  cfg.Dashboard.RecentSales,
	}, logger)

	pricer := bi.NewPricer(config.MarketCenters(), cfg.Markets.Default, nil)

	narrator := insights.NewService(insights.Config{
		Enabled: cfg.Insights.Enabled,
		APIURL:  cfg.Insights.APIURL,
		APIKey:  cfg.Insights.APIKey,
		Model:   cfg.Insights.Model,
		Timeout: cfg.Insights.Timeout,
	}, logger)

	recordQueue := queue.NewRecordQueue(cfg.BatchProcessing.QueueSize, logger)
	importer := processor.NewBatchProcessor(store, recordQueue, cfg, logger)
	importer.Start()

	var refresher *scheduler.Scheduler
	if service.CachingEnabled() && cfg.Dashboard.RefreshInterval > 0 {
		refresher = scheduler.NewScheduler(service, cfg.Dashboard.RefreshInterval, logger)
		refresher.Start()
	}

	handler := api.NewHandler(api.Dependencies{
		Service:   service,
		Pricer:    pricer,
		Insights:  narrator,
		Processor: importer,
		Records:   store,
		Markets:   config.SupportedMarkets,
		BatchSize: cfg.BatchProcessing.MaxBatchSize,
	}, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(handler, cfg.Server.AllowedOrigins, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":   cfg.Server.Port,
			"store":  cfg.Store.Driver,
			"cache":  snapshots != nil,
			"market": cfg.Markets.Default,
		}).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to shut down server cleanly")
	}

	if refresher != nil {
		refresher.Stop()
	}
	importer.Drain(drainTimeout)
	logger.Info("Server stopped")
}

func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (recordStore, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		store, err := supabase.Connect(ctx, cfg.Store.DatabaseURL, cfg.Store.MaxConns)
		if err != nil {
			return nil, err
		}
		if cfg.Store.Migrate {
			logger.Info("Running database migrations...")
			if err := store.Migrate(ctx); err != nil {
				store.Close()
				return nil, err
			}
		}
		return store, nil
	default:
		logger.WithField("path", cfg.Store.SQLitePath).Info("Using SQLite database")
		db, err := database.NewDatabase(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		if cfg.Store.Migrate {
			logger.Info("Running database migrations...")
			if err := db.RunMigrations(); err != nil {
				db.Close()
				return nil, err
			}
		}
		return db, nil
	}
}

// openCache returns nil when snapshot caching is disabled.
func openCache(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (cache.Cache, error) {
	if cfg.Dashboard.CacheTTL <= 0 {
		return nil, nil
	}

	switch cfg.Cache.Backend {
	case config.BackendRedis:
		redisCache := cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := redisCache.Ping(pingCtx); err != nil {
			redisCache.Close()
			return nil, err
		}
		logger.WithField("addr", cfg.Cache.RedisAddr).Info("Using Redis snapshot cache")
		return redisCache, nil
	default:
		logger.Info("Using in-memory snapshot cache")
		return cache.NewMemoryCache(time.Minute), nil
	}
}
