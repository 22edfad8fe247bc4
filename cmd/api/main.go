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
	"github.com/iQube-Protocol/kn0w1-sub001/internal/api/server"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/auth"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/config"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/feed"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/gateway"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/pricing"
	temporal "github.com/iQube-Protocol/kn0w1-sub001/internal/providers/temporal"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/storage"
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
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting kn0w1 x402 API")

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
	jcsAdapter := adapter.NewJCS()
	clock := adapter.NewClock()

	// Connect to Temporal with logger integration
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
	logger.InfoCtx(ctx, "Connected to Temporal", zap.String("host_port", cfg.Temporal.HostPort))

	// Connect to the NATS feed bus
	feedConfig := feed.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.StreamName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: cfg.NATS.ConnectionName,
	}
	publisher, err := feed.NewPublisher(feedConfig, adapter.NewNatsJetStream(), jsonAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect feed publisher", zap.Error(err))
	}
	defer publisher.Close()

	hub := feed.NewHub()
	defer hub.Close()

	busConsumer, err := feed.NewBusConsumer(feedConfig, adapter.NewNatsJetStream(), jsonAdapter, hub, cfg.NATS.ConsumerName)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to start feed bus consumer", zap.Error(err))
	}
	defer busConsumer.Close()
	logger.InfoCtx(ctx, "Connected to NATS", zap.String("url", cfg.NATS.URL), zap.String("stream", cfg.NATS.StreamName))

	// Upstream clients
	pricingOracle := pricing.NewClient(adapter.NewHTTPClient(cfg.Pricing.Timeout), cfg.Pricing.URL, cfg.Pricing.APIKey)
	gatewayClient := gateway.NewClient(adapter.NewHTTPClient(cfg.Gateway.Timeout), cfg.Gateway.URL, cfg.Gateway.ServiceKey)

	cloudflareClient, err := adapter.NewCloudflareClient(cfg.Cloudflare.APIToken)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create Cloudflare client", zap.Error(err))
	}
	urlProvider := storage.NewStreamProvider(cloudflareClient, clock, cfg.Cloudflare.AccountID, cfg.Cloudflare.CustomerDomain)

	// Domain services
	authService := auth.NewService(dataStore, jcsAdapter, clock, auth.Config{
		JWTSecret:    cfg.Auth.JWTSecret,
		ChallengeTTL: cfg.Auth.ChallengeTTL,
		TokenTTL:     cfg.Auth.TokenTTL,
	})

	// The API only starts notification workflows by reference; the
	// activities behind them run in the notify worker, so no executor here
	workerCore := workflows.NewWorkerCore(nil)

	quoteIssuer := x402.NewQuoteIssuer(dataStore, pricingOracle, clock, cfg.Quote.CallbackURL)
	intentProposer := x402.NewIntentProposer(dataStore, gatewayClient, jsonAdapter, clock)
	settlementService := x402.NewSettlementService(dataStore, publisher, temporalClient, workerCore, jsonAdapter, clock, cfg.Temporal.NotifyTaskQueue)
	entitlementChecker := x402.NewEntitlementChecker(dataStore, urlProvider, clock)

	// Create server config
	serverConfig := server.Config{
		Debug:              cfg.Debug,
		Host:               cfg.Server.Host,
		Port:               cfg.Server.Port,
		ReadTimeout:        time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:       time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:        time.Duration(cfg.Server.IdleTimeout) * time.Second,
		GatewayServiceKeys: cfg.Auth.GatewayServiceKeys,
	}

	// Create and start server
	srv := server.New(serverConfig, server.Services{
		Quotes:       quoteIssuer,
		Intents:      intentProposer,
		Settlements:  settlementService,
		Entitlements: entitlementChecker,
		Auth:         authService,
	}, dataStore, hub, jsonAdapter)

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	// Shutdown server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	logger.InfoCtx(shutdownCtx, "Server exited")
}
