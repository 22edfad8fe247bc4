package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/auth"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
)

const (
	// CALLER_DID_KEY is the gin context key holding the authenticated
	// caller's DID
	CALLER_DID_KEY = "caller_did"
)

// unauthorizedBody mirrors the REST error envelope without importing the
// rest package (middleware sits below it)
func unauthorizedBody(details string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": "Authentication failed",
			"details": details,
		},
	}
}

// BearerAuth returns a gin middleware that validates the bearer token minted
// by the DID handshake and stores the caller's DID in the request context
func BearerAuth(authService auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		did, err := authenticateBearer(c.GetHeader("Authorization"), authService)
		if err != nil {
			logger.Warn("Authentication failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedBody(err.Error()))
			return
		}

		c.Set(CALLER_DID_KEY, did)
		c.Next()
	}
}

// ServiceKeyAuth returns a gin middleware that validates the Gateway's
// service key. Used on the settlement callback, which carries no end-user
// identity.
func ServiceKeyAuth(serviceKeys []string) gin.HandlerFunc {
	keyMap := make(map[string]bool)
	for _, key := range serviceKeys {
		if key != "" {
			keyMap[key] = true
		}
	}

	return func(c *gin.Context) {
		key, err := parseAuthHeader(c.GetHeader("Authorization"), "apikey")
		if err == nil {
			if len(keyMap) == 0 {
				err = errors.New("no service keys configured")
			} else if !keyMap[key] {
				err = errors.New("invalid service key")
			}
		}

		if err != nil {
			logger.Warn("Service key authentication failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedBody(err.Error()))
			return
		}

		c.Next()
	}
}

// CallerDID returns the authenticated caller's DID from the request context,
// empty when the request was not bearer-authenticated
func CallerDID(c *gin.Context) string {
	return c.GetString(CALLER_DID_KEY)
}

// authenticateBearer validates a bearer Authorization header and returns the
// token subject
func authenticateBearer(authHeader string, authService auth.Service) (string, error) {
	token, err := parseAuthHeader(authHeader, "bearer")
	if err != nil {
		return "", err
	}
	return authService.VerifyToken(token)
}

// parseAuthHeader extracts the credentials from an Authorization header of
// the expected scheme
func parseAuthHeader(authHeader string, scheme string) (string, error) {
	if authHeader == "" {
		return "", errors.New("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", errors.New("invalid Authorization header format")
	}
	if !strings.EqualFold(parts[0], scheme) {
		return "", errors.New("unsupported authorization type: " + parts[0])
	}

	return parts[1], nil
}
