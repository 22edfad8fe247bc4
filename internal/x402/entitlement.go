package x402

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/adapter"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/storage"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store"
)

// EntitlementStatus is the answer to an access check
type EntitlementStatus struct {
	// HasAccess reports whether the caller holds at least one active
	// entitlement for the asset
	HasAccess bool `json:"has_access"`
	// Rights is the granted rights set when access is held
	Rights domain.Rights `json:"rights,omitempty"`
	// TokenQubeID is the iQube token the entitlement is bound to
	TokenQubeID string `json:"tokenqube_id,omitempty"`
	// ExpiresAt is when access lapses, nil for perpetual entitlements
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	// ResourceURL is a short-lived signed delivery URL, present only when
	// the rights include download or stream access. Serialized as "url".
	ResourceURL string `json:"url,omitempty"`
}

// Checker answers entitlement queries for authenticated callers
//
//go:generate mockgen -source=entitlement.go -destination=../mocks/entitlement_checker.go -package=mocks -mock_names=Checker=MockEntitlementChecker
type Checker interface {
	// CheckEntitlement reports whether caller holds access to assetID.
	// Expired entitlements never grant access; among active ones the
	// earliest created wins.
	CheckEntitlement(ctx context.Context, caller string, assetID string) (*EntitlementStatus, error)
}

// EntitlementChecker is the concrete Checker
type EntitlementChecker struct {
	store store.Store
	urls  storage.ResourceURLProvider
	clock adapter.Clock
}

// NewEntitlementChecker creates an entitlement checker. urls may be nil when
// no delivery backend is configured; download/stream entitlements then
// resolve without a resource URL.
func NewEntitlementChecker(s store.Store, urls storage.ResourceURLProvider, clock adapter.Clock) *EntitlementChecker {
	return &EntitlementChecker{
		store: s,
		urls:  urls,
		clock: clock,
	}
}

// CheckEntitlement implements Checker
func (c *EntitlementChecker) CheckEntitlement(ctx context.Context, caller string, assetID string) (*EntitlementStatus, error) {
	if caller == "" {
		return nil, fmt.Errorf("%w: missing authenticated caller", domain.ErrUnauthorized)
	}
	if assetID == "" {
		return nil, fmt.Errorf("%w: asset_id is required", domain.ErrValidation)
	}

	now := c.clock.Now().UTC()
	entitlements, err := c.store.ListActiveEntitlements(ctx, caller, assetID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list entitlements: %w", err)
	}
	if len(entitlements) == 0 {
		return &EntitlementStatus{HasAccess: false}, nil
	}

	granted := entitlements[0]
	rights := domain.ParseRights(granted.Rights)

	status := &EntitlementStatus{
		HasAccess:   true,
		Rights:      rights,
		TokenQubeID: granted.TokenQubeID,
		ExpiresAt:   granted.ExpiresAt,
	}

	if rights.RequiresResourceURL() && c.urls != nil {
		asset, err := c.store.GetAssetByAssetID(ctx, assetID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up asset: %w", err)
		}
		if asset != nil && asset.StreamVideoUID != "" {
			url, err := c.urls.SignedResourceURL(ctx, asset.StreamVideoUID)
			if err != nil {
				// Access stands even when URL signing is down; the caller
				// can retry for the URL
				logger.ErrorCtx(ctx, fmt.Errorf("failed to sign resource URL: %w", err),
					zap.String("asset_id", assetID))
			} else {
				status.ResourceURL = url
			}
		}
	}

	return status, nil
}
