package schema

import (
	"time"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
)

// Transaction represents the x402_transactions table - one row per issued
// quote, tracking the payment through settlement.
//
// Invariants: request_id is globally unique and immutable; status only moves
// pending -> settled|failed, exactly once, via the status-guarded finalize
// update in the store.
type Transaction struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// RequestID is the unique x402 request identifier (UUID), also the quote ID
	RequestID string `gorm:"column:request_id;not null;unique;type:varchar(36)"`
	// AssetID is the asset being purchased
	AssetID string `gorm:"column:asset_id;not null;type:varchar(255);index"`
	// BuyerDID is the purchasing principal
	BuyerDID string `gorm:"column:buyer_did;not null;type:varchar(255);index"`
	// Status is the settlement state: pending, settled, failed
	Status domain.TransactionStatus `gorm:"column:status;not null;default:pending;type:varchar(16)"`
	// FacilitatorRef is the Gateway's settlement reference, set at finalization
	FacilitatorRef string `gorm:"column:facilitator_ref;type:varchar(255)"`
	// CreatedAt is the timestamp when the quote was issued
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// FinalizedAt is the timestamp of the terminal transition, nil while pending
	FinalizedAt *time.Time `gorm:"column:finalized_at;type:timestamptz"`
}

// TableName specifies the table name for the Transaction model
func (Transaction) TableName() string {
	return "x402_transactions"
}
