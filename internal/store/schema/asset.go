package schema

import (
	"time"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
)

// Asset represents the assets table - the catalog of sellable digital assets.
// Rows are managed out of band (seller onboarding); the coordinator only
// reads them as the pricing basis for quotes and the rights template for
// entitlements.
type Asset struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// AssetID is the external asset identifier quoted and purchased by buyers
	AssetID string `gorm:"column:asset_id;not null;unique;type:varchar(255)"`
	// Title is the human-readable asset name
	Title string `gorm:"column:title;not null;type:text"`
	// SizeUSD is the list price in USD
	SizeUSD float64 `gorm:"column:size_usd;not null"`
	// Rights is the comma-separated rights template granted on purchase (e.g. "view,download")
	Rights string `gorm:"column:rights;not null;type:text"`
	// TokenQubeID is the iQube token identifier backing this asset
	TokenQubeID string `gorm:"column:tokenqube_id;not null;type:varchar(255)"`
	// StreamVideoUID is the Cloudflare Stream video UID for download/stream delivery
	StreamVideoUID string `gorm:"column:stream_video_uid;type:varchar(64)"`
	// Recipient is the seller's settlement address for this asset
	Recipient string `gorm:"column:recipient;not null;type:varchar(64)"`
	// Chain is the settlement chain for this asset
	Chain domain.Chain `gorm:"column:chain;not null;type:varchar(32)"`
	// AccessDuration is how long an entitlement stays valid after settlement (0 = no expiry)
	AccessDuration time.Duration `gorm:"column:access_duration;not null;default:0"`
	// CreatedAt is the timestamp when this asset was registered
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this asset was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Asset model
func (Asset) TableName() string {
	return "assets"
}
