package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/adapter"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/api/middleware"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/api/rest"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/auth"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/feed"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/x402"
)

// Config holds the server configuration
type Config struct {
	Debug              bool
	Host               string
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	GatewayServiceKeys []string
}

// Services bundles the domain services the API fronts
type Services struct {
	Quotes       x402.Issuer
	Intents      x402.Proposer
	Settlements  x402.Notifier
	Entitlements x402.Checker
	Auth         auth.Service
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	services   Services
	store      store.Store
	hub        *feed.Hub
	json       adapter.JSON
	httpServer *http.Server
}

// New creates a new API server
func New(cfg Config, services Services, s store.Store, hub *feed.Hub, jsonAdapter adapter.JSON) *Server {
	return &Server{
		config:   cfg,
		services: services,
		store:    s,
		hub:      hub,
		json:     jsonAdapter,
	}
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	// Set Gin mode based on debug flag
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Setup middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS())

	// Create REST handler
	restHandler := rest.NewHandler(
		s.config.Debug,
		s.services.Quotes,
		s.services.Intents,
		s.services.Settlements,
		s.services.Entitlements,
		s.services.Auth,
		s.store,
		s.hub,
		s.json,
	)

	// Setup REST routes
	rest.SetupRoutes(router, restHandler, s.services.Auth, s.config.GatewayServiceKeys)

	// Create HTTP server. The write timeout must not apply to the SSE feed,
	// so it is disabled and slow handlers rely on request contexts instead.
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: s.config.ReadTimeout,
		IdleTimeout: s.config.IdleTimeout,
	}

	logger.Info("Starting API server",
		zap.String("address", addr),
	)

	// Start server
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
