package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to defaults:
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// GetAssetByAssetID retrieves an asset from the catalog by its external ID
func (s *pgStore) GetAssetByAssetID(ctx context.Context, assetID string) (*schema.Asset, error) {
	var asset schema.Asset
	err := s.db.WithContext(ctx).Where("asset_id = ?", assetID).First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return &asset, nil
}

// CreateQuoteWithTransaction persists a quote and its pending transaction atomically
func (s *pgStore) CreateQuoteWithTransaction(ctx context.Context, quote *schema.Quote, txn *schema.Transaction) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quote).Error; err != nil {
			return fmt.Errorf("failed to create quote: %w", err)
		}
		if err := tx.Create(txn).Error; err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		return nil
	})
}

// GetQuoteByID retrieves a quote by its ID
func (s *pgStore) GetQuoteByID(ctx context.Context, quoteID string) (*schema.Quote, error) {
	var quote schema.Quote
	err := s.db.WithContext(ctx).Where("id = ?", quoteID).First(&quote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return &quote, nil
}

// ListQuotes retrieves quotes filtered by chain and/or USD size, newest first
func (s *pgStore) ListQuotes(ctx context.Context, chain domain.Chain, sizeUSD *float64, limit int) ([]schema.Quote, error) {
	if limit <= 0 {
		limit = 50
	}

	query := s.db.WithContext(ctx).Model(&schema.Quote{})
	if chain != "" {
		query = query.Where("chain = ?", chain)
	}
	if sizeUSD != nil {
		query = query.Where("size_usd = ?", *sizeUSD)
	}

	var quotes []schema.Quote
	if err := query.Order("created_at DESC").Limit(limit).Find(&quotes).Error; err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	return quotes, nil
}

// GetTransactionByRequestID retrieves a transaction by its request ID
func (s *pgStore) GetTransactionByRequestID(ctx context.Context, requestID string) (*schema.Transaction, error) {
	var txn schema.Transaction
	err := s.db.WithContext(ctx).Where("request_id = ?", requestID).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &txn, nil
}

// FinalizeTransaction applies the terminal transition for a transaction.
//
// The whole transition runs inside one database transaction:
//  1. a status-guarded UPDATE flips pending -> terminal; zero rows affected
//     means the row was missing or already terminal
//  2. on settled, the entitlement row is inserted before commit, so the
//     settled status and its entitlement become visible together
//
// Duplicate callbacks therefore observe AlreadyFinal and re-read the
// existing result without re-applying any effect.
func (s *pgStore) FinalizeTransaction(ctx context.Context, requestID string, status domain.TransactionStatus, facilitatorRef string, entitlement *schema.Entitlement) (*FinalizeResult, error) {
	if !domain.IsValidFinalStatus(status) {
		return nil, fmt.Errorf("status %q is not terminal: %w", status, domain.ErrValidation)
	}

	result := &FinalizeResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		update := tx.Model(&schema.Transaction{}).
			Where("request_id = ? AND status = ?", requestID, domain.TransactionStatusPending).
			Updates(map[string]interface{}{
				"status":          status,
				"facilitator_ref": facilitatorRef,
				"finalized_at":    now,
			})
		if update.Error != nil {
			return fmt.Errorf("failed to finalize transaction: %w", update.Error)
		}

		var txn schema.Transaction
		if err := tx.Where("request_id = ?", requestID).First(&txn).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to load transaction: %w", err)
		}
		result.Transaction = &txn

		if update.RowsAffected == 0 {
			// A concurrent or earlier callback already finalized this
			// transaction. Return the existing outcome untouched.
			result.AlreadyFinal = true
			if txn.Status == domain.TransactionStatusSettled {
				var existing schema.Entitlement
				if err := tx.Where("transaction_id = ?", txn.ID).First(&existing).Error; err != nil {
					if !errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("failed to load entitlement: %w", err)
					}
				} else {
					result.Entitlement = &existing
				}
			}
			return nil
		}

		if status == domain.TransactionStatusSettled {
			if entitlement == nil {
				return fmt.Errorf("entitlement template required for settled status: %w", domain.ErrValidation)
			}
			row := schema.Entitlement{
				TransactionID: txn.ID,
				AssetID:       entitlement.AssetID,
				Holder:        entitlement.Holder,
				Rights:        entitlement.Rights,
				TokenQubeID:   entitlement.TokenQubeID,
				ExpiresAt:     entitlement.ExpiresAt,
				CreatedAt:     now,
			}
			// The unique index on transaction_id backstops the status guard
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "transaction_id"}},
				DoNothing: true,
			}).Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create entitlement: %w", err)
			}
			result.Entitlement = &row
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ListStalePendingTransactions returns pending transactions created before the cutoff
func (s *pgStore) ListStalePendingTransactions(ctx context.Context, cutoff time.Time, limit int) ([]schema.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}

	var txns []schema.Transaction
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", domain.TransactionStatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale pending transactions: %w", err)
	}
	return txns, nil
}

// ListActiveEntitlements returns non-expired entitlements for a holder and asset.
// Rows come back oldest first; callers treat the first row as authoritative.
func (s *pgStore) ListActiveEntitlements(ctx context.Context, holder string, assetID string, now time.Time) ([]schema.Entitlement, error) {
	var entitlements []schema.Entitlement
	err := s.db.WithContext(ctx).
		Where("holder = ? AND asset_id = ?", holder, assetID).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at ASC").
		Find(&entitlements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list entitlements: %w", err)
	}
	return entitlements, nil
}

// CreateIntentAudit records an intent proposal audit row
func (s *pgStore) CreateIntentAudit(ctx context.Context, audit *schema.IntentAudit) error {
	if err := s.db.WithContext(ctx).Create(audit).Error; err != nil {
		return fmt.Errorf("failed to create intent audit: %w", err)
	}
	return nil
}

// CreateAuthChallenge persists a single-use auth nonce
func (s *pgStore) CreateAuthChallenge(ctx context.Context, challenge *schema.AuthChallenge) error {
	if err := s.db.WithContext(ctx).Create(challenge).Error; err != nil {
		return fmt.Errorf("failed to create auth challenge: %w", err)
	}
	return nil
}

// ConsumeAuthChallenge atomically deletes an unexpired challenge for the DID/nonce pair
func (s *pgStore) ConsumeAuthChallenge(ctx context.Context, did string, nonce string) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("did = ? AND nonce = ? AND expires_at > ?", did, nonce, time.Now()).
		Delete(&schema.AuthChallenge{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to consume auth challenge: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// CreateWebhookClient registers a webhook client
func (s *pgStore) CreateWebhookClient(ctx context.Context, client *schema.WebhookClient) error {
	if err := s.db.WithContext(ctx).Create(client).Error; err != nil {
		return fmt.Errorf("failed to create webhook client: %w", err)
	}
	return nil
}

// GetWebhookClientByID retrieves a webhook client, nil if unknown
func (s *pgStore) GetWebhookClientByID(ctx context.Context, clientID string) (*schema.WebhookClient, error) {
	var client schema.WebhookClient
	err := s.db.WithContext(ctx).Where("client_id = ?", clientID).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get webhook client: %w", err)
	}
	return &client, nil
}

// GetActiveWebhookClientsByEventType returns active clients whose filters match the event type
func (s *pgStore) GetActiveWebhookClientsByEventType(ctx context.Context, eventType string) ([]*schema.WebhookClient, error) {
	var clients []*schema.WebhookClient
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("event_filters @> ? OR event_filters @> ?", `["*"]`, fmt.Sprintf("[%q]", eventType)).
		Find(&clients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook clients: %w", err)
	}
	return clients, nil
}

// CreateWebhookDelivery records a delivery attempt row, returning its ID
func (s *pgStore) CreateWebhookDelivery(ctx context.Context, delivery *schema.WebhookDelivery) (uint64, error) {
	if err := s.db.WithContext(ctx).Create(delivery).Error; err != nil {
		return 0, fmt.Errorf("failed to create webhook delivery: %w", err)
	}
	return delivery.ID, nil
}

// UpdateWebhookDelivery updates the outcome of a delivery attempt
func (s *pgStore) UpdateWebhookDelivery(ctx context.Context, deliveryID uint64, status schema.WebhookDeliveryStatus, attempts int, responseStatus *int, errorMessage string) error {
	now := time.Now()
	err := s.db.WithContext(ctx).
		Model(&schema.WebhookDelivery{}).
		Where("id = ?", deliveryID).
		Updates(map[string]interface{}{
			"delivery_status": status,
			"attempts":        attempts,
			"response_status": responseStatus,
			"error_message":   errorMessage,
			"last_attempt_at": now,
			"updated_at":      now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update webhook delivery: %w", err)
	}
	return nil
}
