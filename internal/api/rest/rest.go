package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/api/middleware"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/auth"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authService auth.Service, gatewayServiceKeys []string) {
	// Health check endpoint (no auth)
	router.GET("/health", handler.HealthCheck)

	// DID auth handshake (open)
	router.POST("/auth/challenge", handler.AuthChallenge)
	router.POST("/auth/verify", handler.AuthVerify)

	bearer := middleware.BearerAuth(authService)

	// Payment flow (requires bearer auth)
	router.POST("/quote", bearer, handler.IssueQuote)
	router.GET("/quotes", bearer, handler.ListQuotes)
	router.POST("/intent", bearer, handler.ProposeIntent)

	// Settlement callback (requires the Gateway's service key)
	router.POST("/notify", middleware.ServiceKeyAuth(gatewayServiceKeys), handler.Notify)

	// Entitlement and status reads (requires bearer auth)
	router.GET("/entitlements/:asset_id", bearer, handler.GetEntitlement)
	router.GET("/transactions/:request_id", bearer, handler.GetTransaction)

	// Live feed (token in query, validated by the handler; EventSource
	// clients cannot set an Authorization header)
	router.GET("/updates", handler.StreamUpdates)

	// Seller webhook registration (requires the Gateway's service key)
	router.POST("/webhooks/clients", middleware.ServiceKeyAuth(gatewayServiceKeys), handler.CreateWebhookClient)
}
