package store

import (
	"context"
	"time"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store/schema"
)

// FinalizeResult is the outcome of a finalize-settlement transition
type FinalizeResult struct {
	// Transaction is the terminal transaction row
	Transaction *schema.Transaction
	// Entitlement is the materialized entitlement (nil for failed settlements)
	Entitlement *schema.Entitlement
	// AlreadyFinal reports that the transaction was terminal before this call
	// and no effects were applied
	AlreadyFinal bool
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// GetAssetByAssetID retrieves an asset from the catalog by its external ID
	GetAssetByAssetID(ctx context.Context, assetID string) (*schema.Asset, error)

	// CreateQuoteWithTransaction persists a quote and its pending transaction
	// as one atomic unit; neither row exists if the other failed
	CreateQuoteWithTransaction(ctx context.Context, quote *schema.Quote, txn *schema.Transaction) error

	// GetQuoteByID retrieves a quote by its ID
	GetQuoteByID(ctx context.Context, quoteID string) (*schema.Quote, error)

	// ListQuotes retrieves quotes filtered by chain and/or USD size
	ListQuotes(ctx context.Context, chain domain.Chain, sizeUSD *float64, limit int) ([]schema.Quote, error)

	// GetTransactionByRequestID retrieves a transaction by its request ID
	GetTransactionByRequestID(ctx context.Context, requestID string) (*schema.Transaction, error)

	// FinalizeTransaction applies the single status-guarded terminal
	// transition for requestID. The entitlement template (required when
	// status is settled, ignored otherwise) is written in the same database
	// transaction as the status flip. A transaction that is already terminal
	// is returned unchanged with AlreadyFinal set.
	FinalizeTransaction(ctx context.Context, requestID string, status domain.TransactionStatus, facilitatorRef string, entitlement *schema.Entitlement) (*FinalizeResult, error)

	// ListStalePendingTransactions returns pending transactions created
	// before the cutoff, oldest first
	ListStalePendingTransactions(ctx context.Context, cutoff time.Time, limit int) ([]schema.Transaction, error)

	// ListActiveEntitlements returns non-expired entitlements for a holder
	// and asset, oldest first
	ListActiveEntitlements(ctx context.Context, holder string, assetID string, now time.Time) ([]schema.Entitlement, error)

	// CreateIntentAudit records an intent proposal audit row
	CreateIntentAudit(ctx context.Context, audit *schema.IntentAudit) error

	// CreateAuthChallenge persists a single-use auth nonce
	CreateAuthChallenge(ctx context.Context, challenge *schema.AuthChallenge) error

	// ConsumeAuthChallenge atomically deletes an unexpired challenge for the
	// DID/nonce pair, reporting whether one existed
	ConsumeAuthChallenge(ctx context.Context, did string, nonce string) (bool, error)

	// CreateWebhookClient registers a webhook client
	CreateWebhookClient(ctx context.Context, client *schema.WebhookClient) error

	// GetWebhookClientByID retrieves a webhook client, nil if unknown
	GetWebhookClientByID(ctx context.Context, clientID string) (*schema.WebhookClient, error)

	// GetActiveWebhookClientsByEventType returns active clients whose filters
	// match the event type (or subscribe to all events)
	GetActiveWebhookClientsByEventType(ctx context.Context, eventType string) ([]*schema.WebhookClient, error)

	// CreateWebhookDelivery records a delivery attempt row, returning its ID
	CreateWebhookDelivery(ctx context.Context, delivery *schema.WebhookDelivery) (uint64, error)

	// UpdateWebhookDelivery updates the outcome of a delivery attempt
	UpdateWebhookDelivery(ctx context.Context, deliveryID uint64, status schema.WebhookDeliveryStatus, attempts int, responseStatus *int, errorMessage string) error
}
