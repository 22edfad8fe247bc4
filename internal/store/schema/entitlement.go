package schema

import (
	"time"
)

// Entitlement represents the entitlements table - access rights derived from
// settled transactions. Rows are only ever written inside the finalize
// transition; one settled transaction materializes exactly one entitlement
// (enforced by the unique index on transaction_id).
type Entitlement struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TransactionID is the backing settled transaction
	TransactionID uint64 `gorm:"column:transaction_id;not null;uniqueIndex"`
	// AssetID is the asset access is granted to
	AssetID string `gorm:"column:asset_id;not null;type:varchar(255);index:idx_entitlements_holder_asset,priority:2"`
	// Holder is the DID holding the entitlement
	Holder string `gorm:"column:holder;not null;type:varchar(255);index:idx_entitlements_holder_asset,priority:1"`
	// Rights is the comma-separated granted rights set
	Rights string `gorm:"column:rights;not null;type:text"`
	// TokenQubeID is the iQube token identifier the entitlement is bound to
	TokenQubeID string `gorm:"column:tokenqube_id;not null;type:varchar(255)"`
	// ExpiresAt is when the entitlement lapses, nil for perpetual access
	ExpiresAt *time.Time `gorm:"column:expires_at;type:timestamptz"`
	// CreatedAt is the timestamp of materialization (== transaction finalized_at)
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	// Associations
	Transaction Transaction `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Entitlement model
func (Entitlement) TableName() string {
	return "entitlements"
}
