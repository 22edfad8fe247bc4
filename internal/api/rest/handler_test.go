package rest_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/adapter"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/api/rest"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/auth"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/feed"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/mocks"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store/schema"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/x402"
)

const (
	testCallerDID  = "did:pkh:eip155:8453:0xA0Cf024d03D05703a9E5A4b2e1a2E9b2f0a41111"
	testBearer     = "test-bearer-token"
	testServiceKey = "gw-service-key"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = logger.Initialize(logger.Config{Debug: true})
}

type testHandlerMocks struct {
	ctrl         *gomock.Controller
	quotes       *mocks.MockQuoteIssuer
	intents      *mocks.MockIntentProposer
	settlements  *mocks.MockSettlementNotifier
	entitlements *mocks.MockEntitlementChecker
	authService  *mocks.MockAuthService
	store        *mocks.MockStore
	hub          *feed.Hub
}

func setupRouter(t *testing.T) (*gin.Engine, *testHandlerMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	m := &testHandlerMocks{
		ctrl:         ctrl,
		quotes:       mocks.NewMockQuoteIssuer(ctrl),
		intents:      mocks.NewMockIntentProposer(ctrl),
		settlements:  mocks.NewMockSettlementNotifier(ctrl),
		entitlements: mocks.NewMockEntitlementChecker(ctrl),
		authService:  mocks.NewMockAuthService(ctrl),
		store:        mocks.NewMockStore(ctrl),
		hub:          feed.NewHub(),
	}

	handler := rest.NewHandler(
		true,
		m.quotes,
		m.intents,
		m.settlements,
		m.entitlements,
		m.authService,
		m.store,
		m.hub,
		adapter.NewJSON(),
	)

	router := gin.New()
	rest.SetupRoutes(router, handler, m.authService, []string{testServiceKey})
	return router, m
}

// expectBearer arranges for the middleware to accept the test bearer token
func (m *testHandlerMocks) expectBearer() {
	m.authService.EXPECT().VerifyToken(testBearer).Return(testCallerDID, nil)
}

func doJSON(router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func bearerHeader() map[string]string {
	return map[string]string{"Authorization": "Bearer " + testBearer}
}

func serviceKeyHeader() map[string]string {
	return map[string]string{"Authorization": "APIKey " + testServiceKey}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestIssueQuote_Success(t *testing.T) {
	router, m := setupRouter(t)
	m.expectBearer()

	headers := map[string]string{
		"X-402-Protocol":   "x402",
		"X-402-Request-ID": "req-123",
		"X-402-Amount":     "50",
	}
	m.quotes.EXPECT().
		IssueQuote(gomock.Any(), &x402.QuoteRequest{AssetID: "asset-1", BuyerDID: testCallerDID}).
		Return(&x402.QuoteResult{
			Quote:   domain.Quote{ID: "req-123", Amount: "50"},
			Headers: headers,
		}, nil)

	w := doJSON(router, http.MethodPost, "/quote",
		map[string]string{"asset_id": "asset-1", "buyer_did": testCallerDID},
		bearerHeader())

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, "x402", w.Header().Get("X-402-Protocol"))
	assert.Equal(t, "req-123", w.Header().Get("X-402-Request-ID"))

	var resp rest.QuoteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "req-123", resp.X402.ID)
	assert.Equal(t, "50", resp.Headers["X-402-Amount"])
}

func TestIssueQuote_RequiresAuth(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/quote",
		map[string]string{"asset_id": "asset-1", "buyer_did": testCallerDID}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", errorCode(t, w))
}

func TestIssueQuote_MissingBodyField(t *testing.T) {
	router, m := setupRouter(t)
	m.expectBearer()

	w := doJSON(router, http.MethodPost, "/quote",
		map[string]string{"asset_id": "asset-1"}, bearerHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_failed", errorCode(t, w))
}

func TestIssueQuote_UpstreamError(t *testing.T) {
	router, m := setupRouter(t)
	m.expectBearer()

	m.quotes.EXPECT().
		IssueQuote(gomock.Any(), gomock.Any()).
		Return(nil, domain.NewUpstreamError("pricing-oracle", 503, "unavailable"))

	w := doJSON(router, http.MethodPost, "/quote",
		map[string]string{"asset_id": "asset-1", "buyer_did": testCallerDID},
		bearerHeader())

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "upstream_error", errorCode(t, w))
}

func TestListQuotes(t *testing.T) {
	router, m := setupRouter(t)
	m.expectBearer()

	sizeUSD := 25.0
	m.quotes.EXPECT().
		ListQuotes(gomock.Any(), domain.Chain("eip155:8453"), &sizeUSD, 10).
		Return([]domain.Quote{{ID: "req-1"}, {ID: "req-2"}}, nil)

	w := doJSON(router, http.MethodGet, "/quotes?chain=eip155:8453&size_usd=25&limit=10", nil, bearerHeader())

	assert.Equal(t, http.StatusOK, w.Code)
	var resp rest.ListQuotesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "req-1", resp.Quotes[0].ID)
}

func TestListQuotes_BadLimit(t *testing.T) {
	router, m := setupRouter(t)
	m.expectBearer()

	w := doJSON(router, http.MethodGet, "/quotes?limit=5000", nil, bearerHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_failed", errorCode(t, w))
}

func TestProposeIntent_Success(t *testing.T) {
	router, m := setupRouter(t)
	m.expectBearer()

	m.intents.EXPECT().
		ProposeIntent(gomock.Any(), testCallerDID, &x402.IntentRequest{
			QuoteID:      "req-123",
			AssetID:      "asset-1",
			RecipientDID: testCallerDID,
		}).
		Return(&x402.IntentResult{IntentID: "intent-9", Status: "accepted"}, nil)

	w := doJSON(router, http.MethodPost, "/intent", map[string]string{
		"quote_id":      "req-123",
		"asset_id":      "asset-1",
		"recipient_did": testCallerDID,
	}, bearerHeader())

	assert.Equal(t, http.StatusAccepted, w.Code)
	var resp x402.IntentResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "intent-9", resp.IntentID)
}

func TestProposeIntent_GatewayRejection(t *testing.T) {
	router, m := setupRouter(t)
	m.expectBearer()

	m.intents.EXPECT().
		ProposeIntent(gomock.Any(), testCallerDID, gomock.Any()).
		Return(nil, domain.NewUpstreamError("gateway", 409, "quote already paid"))

	w := doJSON(router, http.MethodPost, "/intent", map[string]string{
		"quote_id":      "req-123",
		"asset_id":      "asset-1",
		"recipient_did": testCallerDID,
	}, bearerHeader())

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "upstream_error", errorCode(t, w))
}

func TestNotify_RequiresServiceKey(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/notify", map[string]string{
		"request_id": "req-123",
		"status":     "settled",
	}, map[string]string{"Authorization": "APIKey wrong-key"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNotify_BearerTokenRejected(t *testing.T) {
	router, _ := setupRouter(t)

	// the callback endpoint never accepts end-user bearer tokens
	w := doJSON(router, http.MethodPost, "/notify", map[string]string{
		"request_id": "req-123",
		"status":     "settled",
	}, bearerHeader())

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNotify_Success(t *testing.T) {
	router, m := setupRouter(t)

	finalizedAt := time.Now().UTC()
	m.settlements.EXPECT().
		FinalizeSettlement(gomock.Any(), &x402.SettlementInput{
			RequestID:      "req-123",
			Status:         domain.TransactionStatusSettled,
			FacilitatorRef: "fct-1",
		}).
		Return(&x402.SettlementOutcome{
			Transaction: &schema.Transaction{
				RequestID:   "req-123",
				Status:      domain.TransactionStatusSettled,
				FinalizedAt: &finalizedAt,
			},
		}, nil)

	w := doJSON(router, http.MethodPost, "/notify", map[string]string{
		"request_id":      "req-123",
		"status":          "settled",
		"facilitator_ref": "fct-1",
	}, serviceKeyHeader())

	assert.Equal(t, http.StatusOK, w.Code)
	var resp rest.NotifyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "req-123", resp.RequestID)
	assert.Equal(t, "settled", resp.Status)
	assert.False(t, resp.AlreadyFinal)
}

func TestNotify_UnknownRequest(t *testing.T) {
	router, m := setupRouter(t)

	m.settlements.EXPECT().
		FinalizeSettlement(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrNotFound)

	w := doJSON(router, http.MethodPost, "/notify", map[string]string{
		"request_id": "req-missing",
		"status":     "settled",
	}, serviceKeyHeader())

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", errorCode(t, w))
}

func TestAuthChallenge(t *testing.T) {
	router, m := setupRouter(t)

	m.authService.EXPECT().
		IssueChallenge(gomock.Any(), testCallerDID).
		Return(&auth.Challenge{DID: testCallerDID, Nonce: "nonce-1"}, nil)

	w := doJSON(router, http.MethodPost, "/auth/challenge",
		map[string]string{"did": testCallerDID}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var challenge auth.Challenge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &challenge))
	assert.Equal(t, "nonce-1", challenge.Nonce)
	// the nonce key on the wire is "challenge"
	assert.Contains(t, w.Body.String(), `"challenge":"nonce-1"`)
}

func TestAuthVerify_BadSignature(t *testing.T) {
	router, m := setupRouter(t)

	m.authService.EXPECT().
		VerifyChallenge(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, signed *auth.SignedChallenge) (*auth.Token, error) {
			assert.Equal(t, "not-a-real-jws", signed.JWS)
			return nil, domain.ErrUnauthorized
		})

	w := doJSON(router, http.MethodPost, "/auth/verify",
		map[string]string{"jws": "not-a-real-jws"}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", errorCode(t, w))
}

func TestGetEntitlement(t *testing.T) {
	router, m := setupRouter(t)
	m.expectBearer()

	m.entitlements.EXPECT().
		CheckEntitlement(gomock.Any(), testCallerDID, "asset-1").
		Return(&x402.EntitlementStatus{
			HasAccess:   true,
			TokenQubeID: "tq-001",
			ResourceURL: "https://stream.example.com/token/manifest/video.m3u8",
		}, nil)

	w := doJSON(router, http.MethodGet, "/entitlements/asset-1", nil, bearerHeader())

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "asset-1", resp["asset_id"])
	assert.Equal(t, true, resp["has_access"])
	assert.Equal(t, "tq-001", resp["tokenqube_id"])
	// the signed delivery URL travels under the "url" key
	assert.Equal(t, "https://stream.example.com/token/manifest/video.m3u8", resp["url"])
}

func TestGetTransaction(t *testing.T) {
	router, m := setupRouter(t)
	m.expectBearer()

	m.store.EXPECT().
		GetTransactionByRequestID(gomock.Any(), "req-123").
		Return(&schema.Transaction{
			RequestID: "req-123",
			AssetID:   "asset-1",
			Status:    domain.TransactionStatusPending,
		}, nil)

	w := doJSON(router, http.MethodGet, "/transactions/req-123", nil, bearerHeader())

	assert.Equal(t, http.StatusOK, w.Code)
	var resp rest.TransactionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "req-123", resp.RequestID)
	assert.Equal(t, "pending", resp.Status)
	assert.Nil(t, resp.FinalizedAt)
}

func TestGetTransaction_NotFound(t *testing.T) {
	router, m := setupRouter(t)
	m.expectBearer()

	m.store.EXPECT().
		GetTransactionByRequestID(gomock.Any(), "req-missing").
		Return(nil, nil)

	w := doJSON(router, http.MethodGet, "/transactions/req-missing", nil, bearerHeader())

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateWebhookClient(t *testing.T) {
	router, m := setupRouter(t)

	var created *schema.WebhookClient
	m.store.EXPECT().
		CreateWebhookClient(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, client *schema.WebhookClient) error {
			created = client
			return nil
		})

	w := doJSON(router, http.MethodPost, "/webhooks/clients", map[string]interface{}{
		"webhook_url":   "https://seller.example.com/hooks",
		"event_filters": []string{"settlement.settled"},
	}, serviceKeyHeader())

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp rest.CreateWebhookClientResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ClientID)
	assert.Len(t, resp.WebhookSecret, 64)
	assert.Equal(t, schema.DEFAULT_RETRY_MAX_ATTEMPTS, resp.RetryMaxAttempts)

	require.NotNil(t, created)
	assert.True(t, created.IsActive)
	assert.Equal(t, resp.WebhookSecret, created.WebhookSecret)
}

func TestCreateWebhookClient_UnknownFilter(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/webhooks/clients", map[string]interface{}{
		"webhook_url":   "https://seller.example.com/hooks",
		"event_filters": []string{"settlement.reversed"},
	}, serviceKeyHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_failed", errorCode(t, w))
}

func TestHealthCheck(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodGet, "/health", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestStreamUpdates_RequiresToken(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodGet, "/updates", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStreamUpdates_DeliversEvents(t *testing.T) {
	router, m := setupRouter(t)
	m.authService.EXPECT().VerifyToken(testBearer).Return(testCallerDID, nil)

	server := httptest.NewServer(router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/updates?token=" + testBearer)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// wait for the handler goroutine to attach before broadcasting
	require.Eventually(t, func() bool {
		return m.hub.SubscriberCount() == 1
	}, time.Second, 10*time.Millisecond)

	m.hub.Broadcast(&domain.FeedEvent{
		ID:   "evt-1",
		Type: domain.FeedEventSettlement,
		Data: json.RawMessage(`{"request_id":"req-123"}`),
	})

	scanner := bufio.NewScanner(resp.Body)
	var dataLine string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data:") {
			dataLine = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			break
		}
	}
	require.NotEmpty(t, dataLine)

	var event domain.FeedEvent
	require.NoError(t, json.Unmarshal([]byte(dataLine), &event))
	assert.Equal(t, "evt-1", event.ID)
	assert.Equal(t, domain.FeedEventSettlement, event.Type)
}
