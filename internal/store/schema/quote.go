package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
)

// Quote represents the quotes table - issued payment challenges.
// A quote is immutable once written; it shares its ID with the transaction
// request_id it was issued with and both rows are created in one database
// transaction.
type Quote struct {
	// ID is the quote identifier, equal to the transaction request_id (UUID)
	ID string `gorm:"column:id;primaryKey;type:varchar(36)"`
	// Chain is the source settlement chain
	Chain domain.Chain `gorm:"column:chain;not null;type:varchar(32)"`
	// SizeUSD is the quoted USD price
	SizeUSD float64 `gorm:"column:size_usd;not null"`
	// Price is the oracle price of the asset symbol in USD at issuance time
	Price float64 `gorm:"column:price;not null"`
	// AssetSymbol is the payment token symbol (default "QCT")
	AssetSymbol string `gorm:"column:asset_symbol;not null;type:varchar(16)"`
	// Amount is the token amount payable, as a decimal string
	Amount string `gorm:"column:amount;not null;type:varchar(78)"`
	// Recipient is the settlement address payment must reach
	Recipient string `gorm:"column:recipient;not null;type:varchar(64)"`
	// ToChain is the destination chain for cross-chain settlement
	ToChain domain.Chain `gorm:"column:to_chain;not null;type:varchar(32)"`
	// Extensions carries opaque pass-through fields supplied at issuance
	Extensions datatypes.JSON `gorm:"column:extensions;type:jsonb"`
	// CreatedAt is the quote issuance timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Quote model
func (Quote) TableName() string {
	return "quotes"
}
