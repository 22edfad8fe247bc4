package webhook

import (
	"time"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
)

// Event type constants
const (
	// EventTypeSettlementSettled is fired when a transaction finalizes as settled
	// (payment confirmed, entitlement materialized)
	EventTypeSettlementSettled = "settlement.settled"

	// EventTypeSettlementFailed is fired when a transaction finalizes as failed
	EventTypeSettlementFailed = "settlement.failed"

	// EventTypeWildcard is a special filter that matches all event types
	EventTypeWildcard = "*"
)

// EventTypeForStatus maps a terminal transaction status to its webhook event type
func EventTypeForStatus(status domain.TransactionStatus) string {
	if status == domain.TransactionStatusSettled {
		return EventTypeSettlementSettled
	}
	return EventTypeSettlementFailed
}

// WebhookEvent represents a webhook event to be delivered to clients
type WebhookEvent struct {
	// EventID is a unique identifier for this event (ULID for time-sortable uniqueness)
	EventID string `json:"event_id"`
	// EventType is the type of event (e.g., "settlement.settled")
	EventType string `json:"event_type"`
	// Timestamp is when the event was generated
	Timestamp time.Time `json:"timestamp"`
	// Data contains the event-specific payload
	Data EventData `json:"data"`
}

// EventData contains the webhook event payload
type EventData struct {
	// RequestID is the x402 request identifier of the finalized transaction
	RequestID string `json:"request_id"`
	// AssetID is the purchased asset
	AssetID string `json:"asset_id"`
	// BuyerDID is the purchasing principal
	BuyerDID string `json:"buyer_did"`
	// Status is the terminal transaction status ("settled" or "failed")
	Status string `json:"status"`
	// FacilitatorRef is the Gateway's settlement reference, empty on failure
	FacilitatorRef string `json:"facilitator_ref,omitempty"`
	// FinalizedAt is when the terminal transition was recorded
	FinalizedAt time.Time `json:"finalized_at"`
}

// DeliveryResult represents the result of a webhook delivery attempt
type DeliveryResult struct {
	// Success indicates whether the delivery was successful
	Success bool
	// StatusCode is the HTTP status code returned by the webhook endpoint
	StatusCode int
	// Body is the response body (limited to 4KB)
	Body string
	// Error contains error details if delivery failed
	Error string
}
