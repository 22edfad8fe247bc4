package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/adapter"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/config"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/feed"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/gateway"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
	temporal "github.com/iQube-Protocol/kn0w1-sub001/internal/providers/temporal"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/reconciler"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/workflows"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/x402"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadReconcilerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "settlement-reconciler",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting settlement reconciler")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	jsonAdapter := adapter.NewJSON()
	clock := adapter.NewClock()

	// Gateway client for settlement status queries
	gatewayClient := gateway.NewClient(adapter.NewHTTPClient(cfg.Gateway.Timeout), cfg.Gateway.URL, cfg.Gateway.ServiceKey)

	// Connect to Temporal for webhook notifications
	temporalLogger := temporal.NewZapLoggerAdapter(logger.Default())
	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporalLogger,
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to Temporal", zap.Error(err))
	}
	defer temporalClient.Close()
	logger.InfoCtx(ctx, "Connected to Temporal", zap.String("namespace", cfg.Temporal.Namespace))

	// Connect to the NATS feed bus so recovered settlements still reach
	// live subscribers
	publisher, err := feed.NewPublisher(feed.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.StreamName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: cfg.NATS.ConnectionName,
	}, adapter.NewNatsJetStream(), jsonAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect feed publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Recovered transactions finalize through the same settlement path the
	// callback uses, workflow references only
	workerCore := workflows.NewWorkerCore(nil)
	notifier := x402.NewSettlementService(dataStore, publisher, temporalClient, workerCore, jsonAdapter, clock, cfg.Temporal.NotifyTaskQueue)

	// Initialize settlement reconciler
	reconcilerConfig := &reconciler.Config{
		BatchSize:      cfg.Reconciler.BatchSize,
		WorkerPoolSize: cfg.Reconciler.Worker.WorkerPoolSize,
		StaleAfter:     cfg.Reconciler.StaleAfter,
	}
	settlementReconciler := reconciler.NewReconciler(reconcilerConfig, dataStore, gatewayClient, notifier, clock)

	logger.InfoCtx(ctx, "Initialized settlement reconciler (continuous mode)",
		zap.Int("batch_size", cfg.Reconciler.BatchSize),
		zap.Int("worker_pool_size", cfg.Reconciler.Worker.WorkerPoolSize),
		zap.Duration("stale_after", cfg.Reconciler.StaleAfter),
	)

	// Start the reconciler in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := settlementReconciler.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Cancel context to stop the reconciler
	cancel()

	// Give the reconciler time to shut down gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()

	if err := settlementReconciler.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}

	logger.InfoCtx(shutdownCtx, "Reconciler stopped")
}
