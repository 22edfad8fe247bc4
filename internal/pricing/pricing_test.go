package pricing_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/mocks"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/pricing"
)

// jsonFill unmarshals a canned payload into the out-parameter the client
// passed to GetJSON, mimicking the real adapter
func jsonFill(result interface{}, payload string) error {
	return json.Unmarshal([]byte(payload), result)
}

func TestTokenPriceUSD(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
	client := pricing.NewClient(mockHTTPClient, "https://prices.example.com/", "test-api-key")

	ctx := context.Background()
	expectedURL := "https://prices.example.com/v1/prices/QCT"
	expectedHeaders := map[string]string{
		"X-API-KEY": "test-api-key",
	}

	mockHTTPClient.EXPECT().
		GetJSON(ctx, expectedURL, expectedHeaders, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ map[string]string, result interface{}) error {
			return jsonFill(result, `{"symbol":"QCT","usd":0.5}`)
		})

	price, err := client.TokenPriceUSD(ctx, "qct")
	require.NoError(t, err)
	assert.Equal(t, 0.5, price)
}

func TestTokenPriceUSDDefaultsSymbol(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
	client := pricing.NewClient(mockHTTPClient, "https://prices.example.com", "")

	ctx := context.Background()

	mockHTTPClient.EXPECT().
		GetJSON(ctx, "https://prices.example.com/v1/prices/QCT", map[string]string{}, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ map[string]string, result interface{}) error {
			return jsonFill(result, `{"symbol":"QCT","usd":1.25}`)
		})

	price, err := client.TokenPriceUSD(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1.25, price)
}

func TestTokenPriceUSDUpstreamFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
	client := pricing.NewClient(mockHTTPClient, "https://prices.example.com", "")

	ctx := context.Background()

	mockHTTPClient.EXPECT().
		GetJSON(ctx, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("connection refused"))

	_, err := client.TokenPriceUSD(ctx, "QCT")
	require.Error(t, err)

	ue, ok := domain.IsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, pricing.SERVICE_NAME, ue.Service)
	assert.Equal(t, 0, ue.StatusCode)
}

func TestTokenPriceUSDRejectsNonPositive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockHTTPClient := mocks.NewMockHTTPClient(ctrl)
	client := pricing.NewClient(mockHTTPClient, "https://prices.example.com", "")

	ctx := context.Background()

	mockHTTPClient.EXPECT().
		GetJSON(ctx, gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ map[string]string, result interface{}) error {
			return jsonFill(result, `{"symbol":"QCT","usd":0}`)
		})

	_, err := client.TokenPriceUSD(ctx, "QCT")
	require.Error(t, err)
	_, ok := domain.IsUpstreamError(err)
	assert.True(t, ok)
}

func TestTokenAmount(t *testing.T) {
	tests := []struct {
		name     string
		sizeUSD  float64
		priceUSD float64
		want     string
		wantErr  bool
	}{
		{
			name:     "exact division",
			sizeUSD:  25,
			priceUSD: 0.5,
			want:     "50",
		},
		{
			name:     "rounds up to cover size",
			sizeUSD:  10,
			priceUSD: 3,
			want:     "3.333334",
		},
		{
			name:     "sub dollar size",
			sizeUSD:  0.99,
			priceUSD: 1,
			want:     "0.99",
		},
		{
			name:    "zero size",
			sizeUSD: 0, priceUSD: 1,
			wantErr: true,
		},
		{
			name:    "negative price",
			sizeUSD: 10, priceUSD: -1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pricing.TokenAmount(tt.sizeUSD, tt.priceUSD)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
