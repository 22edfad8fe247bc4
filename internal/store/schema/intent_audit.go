package schema

import (
	"time"

	"gorm.io/datatypes"
)

// IntentAudit represents the intent_audits table - the audit trail of intent
// proposals forwarded to the settlement Gateway. This is the only local
// record of who initiated an off-system payment, so writing it is a hard
// requirement of the propose operation, not telemetry.
type IntentAudit struct {
	// ID is an auto-incrementing sequence number
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Caller is the authenticated DID that proposed the intent
	Caller string `gorm:"column:caller;not null;type:varchar(255);index"`
	// QuoteID is the referenced quote
	QuoteID string `gorm:"column:quote_id;not null;type:varchar(36);index"`
	// AssetID is the asset the intent pays for
	AssetID string `gorm:"column:asset_id;not null;type:varchar(255)"`
	// RecipientDID is the entitlement recipient named in the intent
	RecipientDID string `gorm:"column:recipient_did;not null;type:varchar(255)"`
	// IntentID is the identifier the Gateway returned
	IntentID string `gorm:"column:intent_id;not null;type:varchar(255)"`
	// GatewayStatus is the status string the Gateway returned
	GatewayStatus string `gorm:"column:gateway_status;type:varchar(64)"`
	// Payload is the full forwarded payload for forensic replay
	Payload datatypes.JSON `gorm:"column:payload;type:jsonb"`
	// CreatedAt is the timestamp of the proposal
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the IntentAudit model
func (IntentAudit) TableName() string {
	return "intent_audits"
}
