package rest

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/webhook"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/x402"
)

// QuoteResponse is the payment-challenge body: the quote object plus the
// X-402-* header map, which is also set on the HTTP response
type QuoteResponse struct {
	X402    domain.Quote      `json:"x402"`
	Headers map[string]string `json:"headers"`
}

// ListQuotesResponse wraps a page of issued quotes
type ListQuotesResponse struct {
	Quotes []domain.Quote `json:"quotes"`
	Total  int            `json:"total"`
}

// NotifyRequest is the Gateway's settlement callback body
type NotifyRequest struct {
	RequestID      string `json:"request_id" binding:"required"`
	Status         string `json:"status" binding:"required"`
	FacilitatorRef string `json:"facilitator_ref,omitempty"`
}

// NotifyResponse acknowledges a settlement callback after the terminal
// state is durably recorded
type NotifyResponse struct {
	RequestID    string     `json:"request_id"`
	Status       string     `json:"status"`
	AlreadyFinal bool       `json:"already_final"`
	FinalizedAt  *time.Time `json:"finalized_at,omitempty"`
}

// TransactionResponse is the settlement status read used by polling clients
type TransactionResponse struct {
	RequestID      string     `json:"request_id"`
	AssetID        string     `json:"asset_id"`
	Status         string     `json:"status"`
	FacilitatorRef string     `json:"facilitator_ref,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	FinalizedAt    *time.Time `json:"finalized_at,omitempty"`
}

// AuthChallengeRequest asks for a single-use nonce for a DID
type AuthChallengeRequest struct {
	DID string `json:"did" binding:"required"`
}

// CreateWebhookClientRequest registers a seller webhook endpoint
type CreateWebhookClientRequest struct {
	WebhookURL       string   `json:"webhook_url" binding:"required"`
	EventFilters     []string `json:"event_filters" binding:"required"`
	RetryMaxAttempts *int     `json:"retry_max_attempts,omitempty"`
}

// Validate checks the webhook client registration. Plain HTTP endpoints are
// only accepted in debug mode.
func (r *CreateWebhookClientRequest) Validate(debug bool) error {
	parsed, err := url.Parse(r.WebhookURL)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("webhook_url is not a valid URL")
	}
	if parsed.Scheme != "https" && !(debug && parsed.Scheme == "http") {
		return fmt.Errorf("webhook_url must use https")
	}

	if len(r.EventFilters) == 0 {
		return fmt.Errorf("event_filters must not be empty")
	}
	for _, filter := range r.EventFilters {
		switch filter {
		case webhook.EventTypeSettlementSettled, webhook.EventTypeSettlementFailed, webhook.EventTypeWildcard:
		default:
			return fmt.Errorf("unknown event filter %q", filter)
		}
	}

	if r.RetryMaxAttempts != nil && (*r.RetryMaxAttempts < 1 || *r.RetryMaxAttempts > 10) {
		return fmt.Errorf("retry_max_attempts must be between 1 and 10")
	}

	return nil
}

// CreateWebhookClientResponse returns the registered client and its signing
// secret. The secret is only ever returned here.
type CreateWebhookClientResponse struct {
	ClientID         string   `json:"client_id"`
	WebhookURL       string   `json:"webhook_url"`
	WebhookSecret    string   `json:"webhook_secret"`
	EventFilters     []string `json:"event_filters"`
	RetryMaxAttempts int      `json:"retry_max_attempts"`
}

// entitlementResponse mirrors x402.EntitlementStatus on the wire
type entitlementResponse struct {
	AssetID string `json:"asset_id"`
	*x402.EntitlementStatus
}

// parseListQuotesQuery reads the chain / size_usd / limit query parameters
func parseListQuotesQuery(chainParam, sizeParam, limitParam string) (domain.Chain, *float64, int, error) {
	chain := domain.Chain(strings.TrimSpace(chainParam))

	var sizeUSD *float64
	if sizeParam != "" {
		var v float64
		if _, err := fmt.Sscanf(sizeParam, "%f", &v); err != nil || v <= 0 {
			return "", nil, 0, fmt.Errorf("size_usd must be a positive number")
		}
		sizeUSD = &v
	}

	limit := 50
	if limitParam != "" {
		if _, err := fmt.Sscanf(limitParam, "%d", &limit); err != nil || limit < 1 || limit > 200 {
			return "", nil, 0, fmt.Errorf("limit must be between 1 and 200")
		}
	}

	return chain, sizeUSD, limit, nil
}
