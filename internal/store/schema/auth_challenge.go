package schema

import (
	"time"
)

// AuthChallenge represents the auth_challenges table - single-use nonces
// issued to DIDs for the challenge/verify handshake. A challenge is consumed
// (deleted) on successful verification and expires unused after its TTL.
type AuthChallenge struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// DID is the principal the challenge was issued to
	DID string `gorm:"column:did;not null;type:varchar(255);index"`
	// Nonce is the random challenge value to be signed
	Nonce string `gorm:"column:nonce;not null;unique;type:varchar(64)"`
	// ExpiresAt is when the unused challenge lapses
	ExpiresAt time.Time `gorm:"column:expires_at;not null;type:timestamptz"`
	// CreatedAt is the issuance timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the AuthChallenge model
func (AuthChallenge) TableName() string {
	return "auth_challenges"
}
