package x402

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/adapter"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/pricing"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store/schema"
)

// QuoteRequest is the input for issuing a payment challenge
type QuoteRequest struct {
	// AssetID is the catalog asset being purchased (required)
	AssetID string `json:"asset_id" binding:"required"`
	// BuyerDID is the purchasing principal (required)
	BuyerDID string `json:"buyer_did" binding:"required"`
	// ToChain optionally overrides the destination settlement chain;
	// defaults to the asset's chain
	ToChain domain.Chain `json:"to_chain,omitempty"`
	// AssetSymbol optionally overrides the payment token symbol
	AssetSymbol string `json:"asset_symbol,omitempty"`
	// Extensions carries opaque pass-through fields echoed on the quote
	Extensions map[string]json.RawMessage `json:"extensions,omitempty"`
}

// QuoteResult pairs an issued quote with its x402 challenge headers
type QuoteResult struct {
	Quote   domain.Quote      `json:"quote"`
	Headers map[string]string `json:"headers"`
}

// Issuer issues payment challenges against the asset catalog
//
//go:generate mockgen -source=issuer.go -destination=../mocks/quote_issuer.go -package=mocks -mock_names=Issuer=MockQuoteIssuer
type Issuer interface {
	// IssueQuote prices an asset for a buyer and records the pending
	// transaction that tracks the payment. The quote and transaction rows
	// are created atomically; a failed issuance persists nothing.
	IssueQuote(ctx context.Context, req *QuoteRequest) (*QuoteResult, error)

	// ListQuotes retrieves previously issued quotes filtered by chain and
	// USD size
	ListQuotes(ctx context.Context, chain domain.Chain, sizeUSD *float64, limit int) ([]domain.Quote, error)
}

// QuoteIssuer is the concrete Issuer backed by the store and the pricing
// authority
type QuoteIssuer struct {
	store       store.Store
	oracle      pricing.Oracle
	clock       adapter.Clock
	callbackURL string
}

// NewQuoteIssuer creates a quote issuer. callbackURL is the absolute URL of
// the coordinator's settlement callback endpoint, advertised on every quote.
func NewQuoteIssuer(s store.Store, oracle pricing.Oracle, clock adapter.Clock, callbackURL string) *QuoteIssuer {
	return &QuoteIssuer{
		store:       s,
		oracle:      oracle,
		clock:       clock,
		callbackURL: callbackURL,
	}
}

// IssueQuote implements Issuer
func (q *QuoteIssuer) IssueQuote(ctx context.Context, req *QuoteRequest) (*QuoteResult, error) {
	if req == nil || req.AssetID == "" {
		return nil, fmt.Errorf("%w: asset_id is required", domain.ErrValidation)
	}
	if req.BuyerDID == "" {
		return nil, fmt.Errorf("%w: buyer_did is required", domain.ErrValidation)
	}
	if !domain.DID(req.BuyerDID).Valid() {
		return nil, fmt.Errorf("%w: buyer_did is not a well-formed DID", domain.ErrValidation)
	}
	if req.ToChain != "" && !domain.IsValidChain(req.ToChain) {
		return nil, fmt.Errorf("%w: unsupported to_chain %q", domain.ErrValidation, req.ToChain)
	}

	asset, err := q.store.GetAssetByAssetID(ctx, req.AssetID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up asset: %w", err)
	}
	if asset == nil {
		return nil, fmt.Errorf("%w: unknown asset %q", domain.ErrNotFound, req.AssetID)
	}

	symbol := req.AssetSymbol
	if symbol == "" {
		symbol = domain.DEFAULT_ASSET_SYMBOL
	}

	price, err := q.oracle.TokenPriceUSD(ctx, symbol)
	if err != nil {
		return nil, err
	}

	amount, err := pricing.TokenAmount(asset.SizeUSD, price)
	if err != nil {
		return nil, err
	}

	toChain := req.ToChain
	if toChain == "" {
		toChain = asset.Chain
	}

	requestID := uuid.NewString()
	now := q.clock.Now().UTC()

	quote := domain.Quote{
		ID:          requestID,
		Chain:       asset.Chain,
		SizeUSD:     asset.SizeUSD,
		Price:       price,
		AssetSymbol: symbol,
		Amount:      amount,
		Recipient:   asset.Recipient,
		ToChain:     toChain,
		Timestamp:   now,
		Extensions:  req.Extensions,
	}

	quoteRow := &schema.Quote{
		ID:          quote.ID,
		Chain:       quote.Chain,
		SizeUSD:     quote.SizeUSD,
		Price:       quote.Price,
		AssetSymbol: quote.AssetSymbol,
		Amount:      quote.Amount,
		Recipient:   quote.Recipient,
		ToChain:     quote.ToChain,
		CreatedAt:   now,
	}
	if len(req.Extensions) > 0 {
		ext, err := json.Marshal(req.Extensions)
		if err != nil {
			return nil, fmt.Errorf("%w: extensions are not serializable", domain.ErrValidation)
		}
		quoteRow.Extensions = ext
	}

	txn := &schema.Transaction{
		RequestID: requestID,
		AssetID:   asset.AssetID,
		BuyerDID:  req.BuyerDID,
		Status:    domain.TransactionStatusPending,
		CreatedAt: now,
	}

	if err := q.store.CreateQuoteWithTransaction(ctx, quoteRow, txn); err != nil {
		return nil, fmt.Errorf("failed to persist quote: %w", err)
	}

	logger.InfoCtx(ctx, "quote issued",
		zap.String("request_id", requestID),
		zap.String("asset_id", asset.AssetID),
		zap.String("buyer_did", req.BuyerDID),
		zap.String("amount", amount),
		zap.String("symbol", symbol))

	return &QuoteResult{
		Quote:   quote,
		Headers: q.challengeHeaders(&quote),
	}, nil
}

// challengeHeaders renders the HTTP 402 challenge header set for a quote
func (q *QuoteIssuer) challengeHeaders(quote *domain.Quote) map[string]string {
	return map[string]string{
		domain.HEADER_PROTOCOL:   domain.PROTOCOL_NAME,
		domain.HEADER_REQUEST_ID: quote.ID,
		domain.HEADER_ASSET:      quote.AssetSymbol,
		domain.HEADER_AMOUNT:     quote.Amount,
		domain.HEADER_CHAIN:      string(quote.Chain),
		domain.HEADER_TO_CHAIN:   string(quote.ToChain),
		domain.HEADER_RECIPIENT:  quote.Recipient,
		domain.HEADER_CALLBACK:   q.callbackURL,
	}
}

// ListQuotes implements Issuer
func (q *QuoteIssuer) ListQuotes(ctx context.Context, chain domain.Chain, sizeUSD *float64, limit int) ([]domain.Quote, error) {
	if chain != "" && !domain.IsValidChain(chain) {
		return nil, fmt.Errorf("%w: unsupported chain %q", domain.ErrValidation, chain)
	}

	rows, err := q.store.ListQuotes(ctx, chain, sizeUSD, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}

	quotes := make([]domain.Quote, 0, len(rows))
	for _, row := range rows {
		quote := domain.Quote{
			ID:          row.ID,
			Chain:       row.Chain,
			SizeUSD:     row.SizeUSD,
			Price:       row.Price,
			AssetSymbol: row.AssetSymbol,
			Amount:      row.Amount,
			Recipient:   row.Recipient,
			ToChain:     row.ToChain,
			Timestamp:   row.CreatedAt,
		}
		if len(row.Extensions) > 0 {
			var ext map[string]json.RawMessage
			if err := json.Unmarshal(row.Extensions, &ext); err == nil {
				quote.Extensions = ext
			}
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}
