package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupCORS configures CORS middleware with fully open settings so browser
// buyer agents on any origin can reach the coordinator.
// FIXME: In production, we should restrict this.
func SetupCORS() gin.HandlerFunc {
	config := cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization"},
		// buyers need to read the X-402 challenge headers cross-origin
		ExposeHeaders: []string{
			"Content-Length",
			"X-402-Protocol",
			"X-402-Request-ID",
			"X-402-Asset",
			"X-402-Amount",
			"X-402-Chain",
			"X-402-To-Chain",
			"X-402-Recipient",
			"X-402-Callback",
		},
		AllowCredentials: false,
		MaxAge:           time.Hour,
	}
	return cors.New(config)
}
