package rest

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/adapter"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/api/middleware"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/auth"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/feed"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store/schema"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/x402"
)

// keepaliveInterval is how often the SSE handler emits a comment frame to
// keep idle connections from being reaped by intermediaries
const keepaliveInterval = 15 * time.Second

// Handler defines the interface for REST API handlers
type Handler interface {
	// IssueQuote prices an asset and returns the x402 payment challenge
	// POST /quote
	IssueQuote(c *gin.Context)

	// ListQuotes retrieves issued quotes
	// GET /quotes?chain=<chain>&size_usd=<usd>&limit=<limit>
	ListQuotes(c *gin.Context)

	// ProposeIntent forwards a payment intent to the settlement Gateway
	// POST /intent
	ProposeIntent(c *gin.Context)

	// Notify is the Gateway's settlement callback
	// POST /notify
	Notify(c *gin.Context)

	// AuthChallenge issues a single-use nonce for a DID
	// POST /auth/challenge
	AuthChallenge(c *gin.Context)

	// AuthVerify exchanges a signed challenge for a bearer token
	// POST /auth/verify
	AuthVerify(c *gin.Context)

	// GetEntitlement reports the caller's access to an asset
	// GET /entitlements/:asset_id
	GetEntitlement(c *gin.Context)

	// GetTransaction reads the settlement status of a transaction
	// GET /transactions/:request_id
	GetTransaction(c *gin.Context)

	// StreamUpdates serves the live feed as server-sent events
	// GET /updates?token=<bearer>
	StreamUpdates(c *gin.Context)

	// CreateWebhookClient registers a seller webhook endpoint
	// POST /webhooks/clients
	CreateWebhookClient(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	debug        bool
	quotes       x402.Issuer
	intents      x402.Proposer
	settlements  x402.Notifier
	entitlements x402.Checker
	authService  auth.Service
	store        store.Store
	hub          *feed.Hub
	json         adapter.JSON
}

// NewHandler creates a new REST API handler
func NewHandler(
	debug bool,
	quotes x402.Issuer,
	intents x402.Proposer,
	settlements x402.Notifier,
	entitlements x402.Checker,
	authService auth.Service,
	s store.Store,
	hub *feed.Hub,
	jsonAdapter adapter.JSON,
) Handler {
	return &handler{
		debug:        debug,
		quotes:       quotes,
		intents:      intents,
		settlements:  settlements,
		entitlements: entitlements,
		authService:  authService,
		store:        s,
		hub:          hub,
		json:         jsonAdapter,
	}
}

// IssueQuote prices an asset and returns the x402 payment challenge. The
// challenge headers travel both in the body and as response headers, and the
// response status is 402 per the payment-challenge convention.
func (h *handler) IssueQuote(c *gin.Context) {
	var req x402.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	result, err := h.quotes.IssueQuote(c.Request.Context(), &req)
	if err != nil {
		respondDomainError(c, err, "Failed to issue quote")
		return
	}

	for name, value := range result.Headers {
		c.Header(name, value)
	}
	c.JSON(http.StatusPaymentRequired, QuoteResponse{
		X402:    result.Quote,
		Headers: result.Headers,
	})
}

// ListQuotes retrieves issued quotes with optional filters
func (h *handler) ListQuotes(c *gin.Context) {
	chain, sizeUSD, limit, err := parseListQuotesQuery(
		c.Query("chain"), c.Query("size_usd"), c.Query("limit"))
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	quotes, err := h.quotes.ListQuotes(c.Request.Context(), chain, sizeUSD, limit)
	if err != nil {
		respondDomainError(c, err, "Failed to list quotes")
		return
	}

	c.JSON(http.StatusOK, ListQuotesResponse{Quotes: quotes, Total: len(quotes)})
}

// ProposeIntent forwards a payment intent to the Gateway on behalf of the
// authenticated caller
func (h *handler) ProposeIntent(c *gin.Context) {
	var req x402.IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	result, err := h.intents.ProposeIntent(c.Request.Context(), middleware.CallerDID(c), &req)
	if err != nil {
		respondDomainError(c, err, "Failed to propose intent")
		return
	}

	c.JSON(http.StatusAccepted, result)
}

// Notify finalizes a transaction from the Gateway's settlement callback.
// The response is sent only after the terminal state is durably recorded.
func (h *handler) Notify(c *gin.Context) {
	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	outcome, err := h.settlements.FinalizeSettlement(c.Request.Context(), &x402.SettlementInput{
		RequestID:      req.RequestID,
		Status:         domain.TransactionStatus(req.Status),
		FacilitatorRef: req.FacilitatorRef,
	})
	if err != nil {
		respondDomainError(c, err, "Failed to finalize settlement")
		return
	}

	c.JSON(http.StatusOK, NotifyResponse{
		RequestID:    outcome.Transaction.RequestID,
		Status:       string(outcome.Transaction.Status),
		AlreadyFinal: outcome.AlreadyFinal,
		FinalizedAt:  outcome.Transaction.FinalizedAt,
	})
}

// AuthChallenge issues a single-use nonce for a DID
func (h *handler) AuthChallenge(c *gin.Context) {
	var req AuthChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	challenge, err := h.authService.IssueChallenge(c.Request.Context(), req.DID)
	if err != nil {
		respondDomainError(c, err, "Failed to issue challenge")
		return
	}

	c.JSON(http.StatusOK, challenge)
}

// AuthVerify exchanges a signed challenge for a bearer token
func (h *handler) AuthVerify(c *gin.Context) {
	var signed auth.SignedChallenge
	if err := c.ShouldBindJSON(&signed); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	token, err := h.authService.VerifyChallenge(c.Request.Context(), &signed)
	if err != nil {
		respondDomainError(c, err, "Failed to verify challenge")
		return
	}

	c.JSON(http.StatusOK, token)
}

// GetEntitlement reports the authenticated caller's access to an asset
func (h *handler) GetEntitlement(c *gin.Context) {
	assetID := c.Param("asset_id")

	status, err := h.entitlements.CheckEntitlement(c.Request.Context(), middleware.CallerDID(c), assetID)
	if err != nil {
		respondDomainError(c, err, "Failed to check entitlement")
		return
	}

	c.JSON(http.StatusOK, entitlementResponse{AssetID: assetID, EntitlementStatus: status})
}

// GetTransaction reads the settlement status of a transaction. The request
// ID is an unguessable capability, so any bearer-authenticated caller that
// holds it may poll it.
func (h *handler) GetTransaction(c *gin.Context) {
	requestID := c.Param("request_id")
	if requestID == "" {
		respondBadRequest(c, "request_id is required")
		return
	}

	txn, err := h.store.GetTransactionByRequestID(c.Request.Context(), requestID)
	if err != nil {
		respondInternalError(c, err, "Failed to get transaction")
		return
	}
	if txn == nil {
		respondWithError(c, http.StatusNotFound, errCodeNotFound, "Transaction not found")
		return
	}

	c.JSON(http.StatusOK, TransactionResponse{
		RequestID:      txn.RequestID,
		AssetID:        txn.AssetID,
		Status:         string(txn.Status),
		FacilitatorRef: txn.FacilitatorRef,
		CreatedAt:      txn.CreatedAt,
		FinalizedAt:    txn.FinalizedAt,
	})
}

// StreamUpdates serves the live feed as server-sent events. The bearer token
// travels as a query parameter because EventSource cannot set headers.
func (h *handler) StreamUpdates(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		respondWithError(c, http.StatusUnauthorized, errCodeUnauthorized, "Unauthorized", "token query parameter is required")
		return
	}
	if _, err := h.authService.VerifyToken(token); err != nil {
		respondWithError(c, http.StatusUnauthorized, errCodeUnauthorized, "Unauthorized", err.Error())
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		respondInternalError(c, fmt.Errorf("response writer does not support streaming"), "Streaming unsupported")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := h.hub.Subscribe()
	defer sub.Cancel()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case event, open := <-sub.C:
			if !open {
				return
			}
			payload, err := h.json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(c.Writer, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

// CreateWebhookClient registers a seller webhook endpoint and mints its
// signing secret
func (h *handler) CreateWebhookClient(c *gin.Context) {
	var req CreateWebhookClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(h.debug); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	retryMaxAttempts := schema.DEFAULT_RETRY_MAX_ATTEMPTS
	if req.RetryMaxAttempts != nil {
		retryMaxAttempts = *req.RetryMaxAttempts
	}

	secret, err := generateWebhookSecret()
	if err != nil {
		respondInternalError(c, err, "Failed to create webhook client")
		return
	}

	filters, err := h.json.Marshal(req.EventFilters)
	if err != nil {
		respondInternalError(c, err, "Failed to create webhook client")
		return
	}

	client := &schema.WebhookClient{
		ClientID:         uuid.NewString(),
		WebhookURL:       req.WebhookURL,
		WebhookSecret:    secret,
		EventFilters:     datatypes.JSON(filters),
		IsActive:         true,
		RetryMaxAttempts: retryMaxAttempts,
	}
	if err := h.store.CreateWebhookClient(c.Request.Context(), client); err != nil {
		respondInternalError(c, err, "Failed to create webhook client")
		return
	}

	c.JSON(http.StatusCreated, CreateWebhookClientResponse{
		ClientID:         client.ClientID,
		WebhookURL:       client.WebhookURL,
		WebhookSecret:    client.WebhookSecret,
		EventFilters:     req.EventFilters,
		RetryMaxAttempts: client.RetryMaxAttempts,
	})
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": "kn0w1-x402-api",
	})
}

// generateWebhookSecret mints a 256-bit hex signing secret
func generateWebhookSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate webhook secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
