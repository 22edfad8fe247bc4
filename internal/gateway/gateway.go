package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/adapter"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
)

const SERVICE_NAME = "gateway"

// serviceKeyHeader carries the coordinator's own credential on every Gateway
// call. Caller bearer tokens never cross this boundary.
const serviceKeyHeader = "X-Service-Key"

// IntentRequest is the payload forwarded to the Gateway's intent endpoint.
// Extensions are pass-through fields the coordinator does not interpret.
type IntentRequest struct {
	QuoteID      string                     `json:"quote_id"`
	AssetID      string                     `json:"asset_id"`
	RecipientDID string                     `json:"recipient_did"`
	Amount       string                     `json:"amount"`
	Chain        domain.Chain               `json:"chain"`
	ToChain      domain.Chain               `json:"to_chain"`
	Extensions   map[string]json.RawMessage `json:"extensions,omitempty"`
}

// IntentResponse is the Gateway's answer to an intent proposal
type IntentResponse struct {
	IntentID string `json:"intent_id"`
	Status   string `json:"status"`
}

// SettlementStatus is the Gateway's view of a settlement, used by the
// reconciler to recover transactions whose callback was lost
type SettlementStatus struct {
	RequestID      string                   `json:"request_id"`
	Status         domain.TransactionStatus `json:"status"`
	FacilitatorRef string                   `json:"facilitator_ref"`
}

// Client defines the interface for Gateway operations to enable mocking
//
//go:generate mockgen -source=gateway.go -destination=../mocks/gateway_client.go -package=mocks -mock_names=Client=MockGatewayClient
type Client interface {
	// ProposeIntent forwards an intent proposal to the Gateway. Non-2xx
	// responses surface as UpstreamError; no retry happens at this layer.
	ProposeIntent(ctx context.Context, req *IntentRequest) (*IntentResponse, error)

	// GetSettlementStatus queries the Gateway for the settlement state of a
	// request. A Gateway that does not know the request reports it pending.
	GetSettlementStatus(ctx context.Context, requestID string) (*SettlementStatus, error)
}

// GatewayClient implements Client over the Gateway HTTP API
type GatewayClient struct {
	httpClient adapter.HTTPClient
	apiURL     string
	serviceKey string
}

// NewClient creates a new Gateway client
func NewClient(httpClient adapter.HTTPClient, apiURL string, serviceKey string) *GatewayClient {
	return &GatewayClient{
		httpClient: httpClient,
		apiURL:     strings.TrimRight(apiURL, "/"),
		serviceKey: serviceKey,
	}
}

// ProposeIntent forwards an intent proposal to the Gateway
func (c *GatewayClient) ProposeIntent(ctx context.Context, req *IntentRequest) (*IntentResponse, error) {
	url := fmt.Sprintf("%s/v1/intents", c.apiURL)
	headers := map[string]string{
		serviceKeyHeader: c.serviceKey,
	}

	status, body, err := c.httpClient.PostJSON(ctx, url, headers, req)
	if err != nil {
		return nil, domain.NewUpstreamError(SERVICE_NAME, 0, fmt.Sprintf("failed to propose intent: %v", err))
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, domain.NewUpstreamError(SERVICE_NAME, status, string(body))
	}

	var resp IntentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.NewUpstreamError(SERVICE_NAME, status, fmt.Sprintf("malformed intent response: %v", err))
	}
	if resp.IntentID == "" {
		return nil, domain.NewUpstreamError(SERVICE_NAME, status, "intent response missing intent_id")
	}

	return &resp, nil
}

// GetSettlementStatus queries the Gateway for the settlement state of a request
func (c *GatewayClient) GetSettlementStatus(ctx context.Context, requestID string) (*SettlementStatus, error) {
	url := fmt.Sprintf("%s/v1/settlements/%s", c.apiURL, requestID)
	headers := map[string]string{
		serviceKeyHeader: c.serviceKey,
	}

	var resp SettlementStatus
	if err := c.httpClient.GetJSON(ctx, url, headers, &resp); err != nil {
		return nil, domain.NewUpstreamError(SERVICE_NAME, 0, fmt.Sprintf("failed to query settlement status: %v", err))
	}

	switch resp.Status {
	case domain.TransactionStatusPending, domain.TransactionStatusSettled, domain.TransactionStatusFailed:
	default:
		return nil, domain.NewUpstreamError(SERVICE_NAME, 0, fmt.Sprintf("unknown settlement status %q", resp.Status))
	}

	return &resp, nil
}
