package pricing

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/adapter"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
)

const SERVICE_NAME = "pricing-authority"

// tokenDecimals is the precision quotes are priced at
const tokenDecimals = 6

// priceResponse represents the response from the pricing authority price endpoint
type priceResponse struct {
	Symbol string  `json:"symbol"`
	USD    float64 `json:"usd"`
}

// Oracle defines the interface for pricing operations to enable mocking
//
//go:generate mockgen -source=pricing.go -destination=../mocks/pricing_oracle.go -package=mocks -mock_names=Oracle=MockPricingOracle
type Oracle interface {
	// TokenPriceUSD returns the current USD price of one unit of the given token symbol
	TokenPriceUSD(ctx context.Context, symbol string) (float64, error)
}

// Client implements Oracle against the external pricing authority
type Client struct {
	httpClient adapter.HTTPClient
	apiURL     string
	apiKey     string
}

// NewClient creates a new pricing authority client
func NewClient(httpClient adapter.HTTPClient, apiURL string, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		apiURL:     strings.TrimRight(apiURL, "/"),
		apiKey:     apiKey,
	}
}

// TokenPriceUSD returns the current USD price of one unit of the given token symbol
func (c *Client) TokenPriceUSD(ctx context.Context, symbol string) (float64, error) {
	if symbol == "" {
		symbol = domain.DEFAULT_ASSET_SYMBOL
	}

	url := fmt.Sprintf("%s/v1/prices/%s", c.apiURL, strings.ToUpper(symbol))

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["X-API-KEY"] = c.apiKey
	}

	var resp priceResponse
	if err := c.httpClient.GetJSON(ctx, url, headers, &resp); err != nil {
		return 0, domain.NewUpstreamError(SERVICE_NAME, 0, fmt.Sprintf("failed to fetch price for %s: %v", symbol, err))
	}

	if resp.USD <= 0 {
		return 0, domain.NewUpstreamError(SERVICE_NAME, 0, fmt.Sprintf("non-positive price %v for %s", resp.USD, symbol))
	}

	return resp.USD, nil
}

// TokenAmount converts a USD size into a token amount string at the given
// unit price, rounded up so the quoted amount always covers the USD size
func TokenAmount(sizeUSD float64, priceUSD float64) (string, error) {
	if sizeUSD <= 0 {
		return "", fmt.Errorf("size must be positive, got %v: %w", sizeUSD, domain.ErrValidation)
	}
	if priceUSD <= 0 {
		return "", fmt.Errorf("price must be positive, got %v: %w", priceUSD, domain.ErrValidation)
	}

	scale := math.Pow10(tokenDecimals)
	units := math.Ceil(sizeUSD / priceUSD * scale)
	amount := units / scale

	return strconv.FormatFloat(amount, 'f', -1, 64), nil
}
