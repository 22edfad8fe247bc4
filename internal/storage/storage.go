package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudflare/cloudflare-go"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/adapter"
)

// signedURLTTL is how long a delivered resource URL stays valid
const signedURLTTL = time.Hour

// ResourceURLProvider issues short-lived URLs for delivering purchased assets
//
//go:generate mockgen -source=storage.go -destination=../mocks/resource_url_provider.go -package=mocks -mock_names=ResourceURLProvider=MockResourceURLProvider
type ResourceURLProvider interface {
	// SignedResourceURL returns a playback URL for the given Stream video
	// UID, valid for one hour from issuance
	SignedResourceURL(ctx context.Context, videoUID string) (string, error)
}

// StreamProvider implements ResourceURLProvider on Cloudflare Stream
type StreamProvider struct {
	client         adapter.CloudflareClient
	clock          adapter.Clock
	accountID      string
	customerDomain string
}

// NewStreamProvider creates a new Cloudflare Stream resource URL provider
func NewStreamProvider(client adapter.CloudflareClient, clock adapter.Clock, accountID string, customerDomain string) *StreamProvider {
	return &StreamProvider{
		client:         client,
		clock:          clock,
		accountID:      accountID,
		customerDomain: customerDomain,
	}
}

// SignedResourceURL returns a one-hour signed playback URL for a Stream video
func (p *StreamProvider) SignedResourceURL(ctx context.Context, videoUID string) (string, error) {
	if videoUID == "" {
		return "", fmt.Errorf("video UID is empty")
	}

	expiry := p.clock.Now().Add(signedURLTTL).Unix()
	token, err := p.client.CreateSignedURL(ctx, cloudflare.StreamSignedURLParameters{
		AccountID: p.accountID,
		VideoID:   videoUID,
		EXP:       int(expiry),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create signed stream token: %w", err)
	}

	return fmt.Sprintf("https://%s/%s/manifest/video.m3u8", p.customerDomain, token), nil
}
