package x402_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/mocks"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store/schema"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/x402"
)

type checkerMocks struct {
	ctrl    *gomock.Controller
	store   *mocks.MockStore
	urls    *mocks.MockResourceURLProvider
	clock   *mocks.MockClock
	checker *x402.EntitlementChecker
}

func setupChecker(t *testing.T) *checkerMocks {
	require.NoError(t, logger.Initialize(logger.Config{Debug: true}))

	ctrl := gomock.NewController(t)
	m := &checkerMocks{
		ctrl:  ctrl,
		store: mocks.NewMockStore(ctrl),
		urls:  mocks.NewMockResourceURLProvider(ctrl),
		clock: mocks.NewMockClock(ctrl),
	}
	m.checker = x402.NewEntitlementChecker(m.store, m.urls, m.clock)
	return m
}

func TestCheckEntitlement_NoAccess(t *testing.T) {
	m := setupChecker(t)
	defer m.ctrl.Finish()

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	m.clock.EXPECT().Now().Return(now)
	m.store.EXPECT().
		ListActiveEntitlements(gomock.Any(), testBuyerDID, "asset-premium-feed", now).
		Return(nil, nil)

	status, err := m.checker.CheckEntitlement(context.Background(), testBuyerDID, "asset-premium-feed")
	require.NoError(t, err)
	assert.False(t, status.HasAccess)
	assert.Empty(t, status.ResourceURL)
}

func TestCheckEntitlement_ViewOnlyNoResourceURL(t *testing.T) {
	m := setupChecker(t)
	defer m.ctrl.Finish()

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	m.clock.EXPECT().Now().Return(now)
	m.store.EXPECT().
		ListActiveEntitlements(gomock.Any(), testBuyerDID, "asset-premium-feed", now).
		Return([]schema.Entitlement{
			{ID: 1, AssetID: "asset-premium-feed", Holder: testBuyerDID, Rights: "view", TokenQubeID: "tq-001"},
		}, nil)

	status, err := m.checker.CheckEntitlement(context.Background(), testBuyerDID, "asset-premium-feed")
	require.NoError(t, err)
	assert.True(t, status.HasAccess)
	assert.Equal(t, domain.Rights{domain.RightView}, status.Rights)
	assert.Equal(t, "tq-001", status.TokenQubeID)
	assert.Empty(t, status.ResourceURL)
}

func TestCheckEntitlement_DownloadGetsSignedURL(t *testing.T) {
	m := setupChecker(t)
	defer m.ctrl.Finish()

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	expires := now.Add(12 * time.Hour)
	asset := testAsset()
	asset.StreamVideoUID = "vid-123"

	m.clock.EXPECT().Now().Return(now)
	m.store.EXPECT().
		ListActiveEntitlements(gomock.Any(), testBuyerDID, "asset-premium-feed", now).
		Return([]schema.Entitlement{
			{ID: 1, Rights: "view,download", TokenQubeID: "tq-001", ExpiresAt: &expires},
			{ID: 2, Rights: "view", TokenQubeID: "tq-002"},
		}, nil)
	m.store.EXPECT().GetAssetByAssetID(gomock.Any(), "asset-premium-feed").Return(asset, nil)
	m.urls.EXPECT().SignedResourceURL(gomock.Any(), "vid-123").
		Return("https://media.example.com/token/manifest/video.m3u8", nil)

	status, err := m.checker.CheckEntitlement(context.Background(), testBuyerDID, "asset-premium-feed")
	require.NoError(t, err)
	assert.True(t, status.HasAccess)
	// earliest created entitlement wins
	assert.Equal(t, "tq-001", status.TokenQubeID)
	assert.Equal(t, &expires, status.ExpiresAt)
	assert.Equal(t, "https://media.example.com/token/manifest/video.m3u8", status.ResourceURL)
}

func TestCheckEntitlement_SigningFailureStillGrantsAccess(t *testing.T) {
	m := setupChecker(t)
	defer m.ctrl.Finish()

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	asset := testAsset()
	asset.StreamVideoUID = "vid-123"

	m.clock.EXPECT().Now().Return(now)
	m.store.EXPECT().
		ListActiveEntitlements(gomock.Any(), testBuyerDID, "asset-premium-feed", now).
		Return([]schema.Entitlement{
			{ID: 1, Rights: "stream", TokenQubeID: "tq-001"},
		}, nil)
	m.store.EXPECT().GetAssetByAssetID(gomock.Any(), "asset-premium-feed").Return(asset, nil)
	m.urls.EXPECT().SignedResourceURL(gomock.Any(), "vid-123").
		Return("", errors.New("cloudflare unavailable"))

	status, err := m.checker.CheckEntitlement(context.Background(), testBuyerDID, "asset-premium-feed")
	require.NoError(t, err)
	assert.True(t, status.HasAccess)
	assert.Empty(t, status.ResourceURL)
}

func TestCheckEntitlement_InputErrors(t *testing.T) {
	m := setupChecker(t)
	defer m.ctrl.Finish()

	_, err := m.checker.CheckEntitlement(context.Background(), "", "asset-premium-feed")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = m.checker.CheckEntitlement(context.Background(), testBuyerDID, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
