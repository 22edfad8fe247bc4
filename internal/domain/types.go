package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Chain represents the blockchain network identifier using CAIP-2 format
type Chain string

const (
	ChainEthereumMainnet Chain = "eip155:1"
	ChainBaseMainnet     Chain = "eip155:8453"
	ChainBaseSepolia     Chain = "eip155:84532"
)

// IsValidChain checks if a chain is valid
func IsValidChain(chain Chain) bool {
	return chain == ChainEthereumMainnet ||
		chain == ChainBaseMainnet ||
		chain == ChainBaseSepolia
}

// TransactionStatus represents the settlement state of an x402 transaction
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSettled TransactionStatus = "settled"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// Terminal reports whether the status admits no further transition
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusSettled || s == TransactionStatusFailed
}

// IsValidFinalStatus checks that a settlement callback carries a terminal status
func IsValidFinalStatus(s TransactionStatus) bool {
	return s == TransactionStatusSettled || s == TransactionStatusFailed
}

// Right is a single access right granted by an entitlement
type Right string

const (
	RightView     Right = "view"
	RightDownload Right = "download"
	RightStream   Right = "stream"
)

// Rights is the set of access rights granted by an entitlement
type Rights []Right

// ParseRights parses a comma-separated rights list (e.g. "view,download"),
// silently dropping unknown entries
func ParseRights(s string) Rights {
	var rights Rights
	for _, part := range strings.Split(s, ",") {
		switch r := Right(strings.TrimSpace(part)); r {
		case RightView, RightDownload, RightStream:
			rights = append(rights, r)
		}
	}
	return rights
}

// Contains reports whether the set includes the given right
func (r Rights) Contains(right Right) bool {
	for _, v := range r {
		if v == right {
			return true
		}
	}
	return false
}

// RequiresResourceURL reports whether the rights set entitles the holder to a
// signed resource URL (download or stream access)
func (r Rights) RequiresResourceURL() bool {
	return r.Contains(RightDownload) || r.Contains(RightStream)
}

// String returns the comma-separated representation stored in the database
func (r Rights) String() string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = string(v)
	}
	return strings.Join(parts, ",")
}

// Quote is a priced, time-stamped payment challenge for an asset/buyer pair.
// Immutable once issued; intents reference it by ID and never mutate it.
type Quote struct {
	ID          string    `json:"id"`
	Chain       Chain     `json:"chain"`
	SizeUSD     float64   `json:"size_usd"`
	Price       float64   `json:"price"`
	AssetSymbol string    `json:"asset_symbol"`
	Amount      string    `json:"amount"`
	Recipient   string    `json:"recipient"`
	ToChain     Chain     `json:"to_chain"`
	Timestamp   time.Time `json:"timestamp"`

	// Extensions carries forward-compatible pass-through fields without
	// weakening the typed required set
	Extensions map[string]json.RawMessage `json:"extensions,omitempty"`
}

// FeedEventType represents the type of a live feed event
type FeedEventType string

const (
	FeedEventBalanceUpdate     FeedEventType = "balance_update"
	FeedEventTransactionUpdate FeedEventType = "transaction_update"
	FeedEventFill              FeedEventType = "fill"
	FeedEventPnL               FeedEventType = "pnl"
	FeedEventSettlement        FeedEventType = "settlement"
)

// IsValidFeedEventType checks if a feed event type is known
func IsValidFeedEventType(t FeedEventType) bool {
	switch t {
	case FeedEventBalanceUpdate, FeedEventTransactionUpdate, FeedEventFill,
		FeedEventPnL, FeedEventSettlement:
		return true
	}
	return false
}

// FeedEvent is a single typed event on the live update stream.
// Delivery is at-most-once; consumers reconcile via polling when the stream
// is interrupted.
type FeedEvent struct {
	ID        string          `json:"id"`
	Type      FeedEventType   `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
}

// SettlementEventData is the payload of a settlement feed event
type SettlementEventData struct {
	RequestID      string            `json:"request_id"`
	AssetID        string            `json:"asset_id"`
	BuyerDID       string            `json:"buyer_did"`
	Status         TransactionStatus `json:"status"`
	FacilitatorRef string            `json:"facilitator_ref,omitempty"`
	FinalizedAt    time.Time         `json:"finalized_at"`
}
