package x402

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/adapter"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/gateway"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store/schema"
)

// IntentRequest is the input for proposing a payment intent against an
// issued quote
type IntentRequest struct {
	// QuoteID references the quote being paid (required)
	QuoteID string `json:"quote_id" binding:"required"`
	// AssetID is the asset the intent pays for (required)
	AssetID string `json:"asset_id" binding:"required"`
	// RecipientDID names the entitlement recipient (required)
	RecipientDID string `json:"recipient_did" binding:"required"`
	// Extensions carries opaque fields forwarded to the Gateway untouched
	Extensions map[string]json.RawMessage `json:"extensions,omitempty"`
}

// IntentResult is the Gateway's acceptance of a proposed intent
type IntentResult struct {
	IntentID string `json:"intent_id"`
	Status   string `json:"status"`
}

// Proposer forwards payment intents to the settlement Gateway
//
//go:generate mockgen -source=intent.go -destination=../mocks/intent_proposer.go -package=mocks -mock_names=Proposer=MockIntentProposer
type Proposer interface {
	// ProposeIntent validates the quote reference, forwards the intent to
	// the Gateway under the coordinator's service key and records the audit
	// row naming the authenticated caller. The caller's own credential is
	// never forwarded.
	ProposeIntent(ctx context.Context, caller string, req *IntentRequest) (*IntentResult, error)
}

// IntentProposer is the concrete Proposer
type IntentProposer struct {
	store   store.Store
	gateway gateway.Client
	json    adapter.JSON
	clock   adapter.Clock
}

// NewIntentProposer creates an intent proposer
func NewIntentProposer(s store.Store, gw gateway.Client, jsonAdapter adapter.JSON, clock adapter.Clock) *IntentProposer {
	return &IntentProposer{
		store:   s,
		gateway: gw,
		json:    jsonAdapter,
		clock:   clock,
	}
}

// ProposeIntent implements Proposer
func (p *IntentProposer) ProposeIntent(ctx context.Context, caller string, req *IntentRequest) (*IntentResult, error) {
	if caller == "" {
		return nil, fmt.Errorf("%w: missing authenticated caller", domain.ErrUnauthorized)
	}
	if req == nil || req.QuoteID == "" {
		return nil, fmt.Errorf("%w: quote_id is required", domain.ErrValidation)
	}
	if req.AssetID == "" {
		return nil, fmt.Errorf("%w: asset_id is required", domain.ErrValidation)
	}
	if req.RecipientDID == "" {
		return nil, fmt.Errorf("%w: recipient_did is required", domain.ErrValidation)
	}
	if !domain.DID(req.RecipientDID).Valid() {
		return nil, fmt.Errorf("%w: recipient_did is not a well-formed DID", domain.ErrValidation)
	}

	quote, err := p.store.GetQuoteByID(ctx, req.QuoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up quote: %w", err)
	}
	if quote == nil {
		return nil, fmt.Errorf("%w: unknown quote %q", domain.ErrNotFound, req.QuoteID)
	}

	// The quote's transaction row (request_id == quote ID) is the reuse
	// guard: a quote issued for another asset or already finalized must not
	// back a new intent.
	txn, err := p.store.GetTransactionByRequestID(ctx, quote.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up transaction: %w", err)
	}
	if txn == nil {
		return nil, fmt.Errorf("%w: no transaction for quote %q", domain.ErrNotFound, req.QuoteID)
	}
	if txn.AssetID != req.AssetID {
		return nil, fmt.Errorf("%w: quote %q was not issued for asset %q", domain.ErrValidation, req.QuoteID, req.AssetID)
	}
	if txn.Status != domain.TransactionStatusPending {
		return nil, fmt.Errorf("%w: quote %q is already %s", domain.ErrValidation, req.QuoteID, txn.Status)
	}

	gwReq := &gateway.IntentRequest{
		QuoteID:      quote.ID,
		AssetID:      req.AssetID,
		RecipientDID: req.RecipientDID,
		Amount:       quote.Amount,
		Chain:        quote.Chain,
		ToChain:      quote.ToChain,
		Extensions:   req.Extensions,
	}

	resp, err := p.gateway.ProposeIntent(ctx, gwReq)
	if err != nil {
		return nil, err
	}

	// The audit row is the only local record of who initiated the payment,
	// so failing to write it fails the operation.
	payload, err := p.json.Marshal(gwReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal intent payload: %w", err)
	}
	audit := &schema.IntentAudit{
		Caller:        caller,
		QuoteID:       quote.ID,
		AssetID:       req.AssetID,
		RecipientDID:  req.RecipientDID,
		IntentID:      resp.IntentID,
		GatewayStatus: resp.Status,
		Payload:       payload,
		CreatedAt:     p.clock.Now().UTC(),
	}
	if err := p.store.CreateIntentAudit(ctx, audit); err != nil {
		return nil, fmt.Errorf("failed to record intent audit: %w", err)
	}

	logger.InfoCtx(ctx, "intent proposed",
		zap.String("caller", caller),
		zap.String("quote_id", quote.ID),
		zap.String("intent_id", resp.IntentID),
		zap.String("gateway_status", resp.Status))

	return &IntentResult{
		IntentID: resp.IntentID,
		Status:   resp.Status,
	}, nil
}
