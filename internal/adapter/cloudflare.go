package adapter

import (
	"context"

	"github.com/cloudflare/cloudflare-go"
)

// CloudflareClient defines an interface for Cloudflare Stream API operations to enable mocking
//
//go:generate mockgen -source=cloudflare.go -destination=../mocks/cloudflare.go -package=mocks -mock_names=CloudflareClient=MockCloudflareClient
type CloudflareClient interface {
	// CreateSignedURL creates a signed, expiring playback/download token for
	// a Cloudflare Stream video
	CreateSignedURL(ctx context.Context, params cloudflare.StreamSignedURLParameters) (string, error)

	// GetVideo retrieves video details from Cloudflare Stream
	GetVideo(ctx context.Context, params cloudflare.StreamParameters) (cloudflare.StreamVideo, error)
}

// RealCloudflareClient implements CloudflareClient using the official Cloudflare SDK
type RealCloudflareClient struct {
	api *cloudflare.API
}

// NewCloudflareClient creates a new real Cloudflare client
func NewCloudflareClient(apiToken string) (CloudflareClient, error) {
	api, err := cloudflare.NewWithAPIToken(apiToken)
	if err != nil {
		return nil, err
	}
	return &RealCloudflareClient{
		api: api,
	}, nil
}

// CreateSignedURL creates a signed token for a Cloudflare Stream video
func (c *RealCloudflareClient) CreateSignedURL(ctx context.Context, params cloudflare.StreamSignedURLParameters) (string, error) {
	return c.api.StreamCreateSignedURL(ctx, params)
}

// GetVideo retrieves video details from Cloudflare Stream
func (c *RealCloudflareClient) GetVideo(ctx context.Context, params cloudflare.StreamParameters) (cloudflare.StreamVideo, error) {
	return c.api.StreamGetVideo(ctx, params)
}
