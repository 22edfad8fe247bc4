package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	errCodeBadRequest       ErrorCode = "bad_request"
	errCodeNotFound         ErrorCode = "not_found"
	errCodeValidationFailed ErrorCode = "validation_failed"
	errCodeUnauthorized     ErrorCode = "unauthorized"

	// Server errors (5xx)
	errCodeInternalError ErrorCode = "internal_error"
	errCodeUpstreamError ErrorCode = "upstream_error"
)

// errorResponse represents a standardized error response
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// errorDetail contains error information
type errorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...string) {
	response := errorResponse{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	}

	if len(details) > 0 {
		response.Error.Details = details[0]
	}

	c.JSON(statusCode, response)
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusBadRequest, errCodeBadRequest, message, details...)
}

// respondValidationError sends a 400 Bad Request with validation error
func respondValidationError(c *gin.Context, details string) {
	respondWithError(c, http.StatusBadRequest, errCodeValidationFailed, "Validation failed", details)
}

// respondInternalError sends a 500 Internal Server Error response and logs the error
func respondInternalError(c *gin.Context, err error, message string, fields ...zap.Field) {
	logger.Error(err, fields...)
	respondWithError(c, http.StatusInternalServerError, errCodeInternalError, message)
}

// respondDomainError maps a service-layer error to its wire status and code
func respondDomainError(c *gin.Context, err error, message string) {
	var upstreamErr *domain.UpstreamError

	switch {
	case errors.Is(err, domain.ErrValidation):
		respondWithError(c, http.StatusBadRequest, errCodeValidationFailed, "Validation failed", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		respondWithError(c, http.StatusUnauthorized, errCodeUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondWithError(c, http.StatusNotFound, errCodeNotFound, message, err.Error())
	case errors.As(err, &upstreamErr):
		logger.Error(err, zap.String("service", upstreamErr.Service))
		respondWithError(c, http.StatusBadGateway, errCodeUpstreamError, message, err.Error())
	default:
		respondInternalError(c, err, message)
	}
}
