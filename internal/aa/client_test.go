package aa_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/aa"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/adapter"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/auth"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
)

const (
	testDID   = "did:pkh:eip155:8453:0xA0Cf024d03D05703a9E5A4b2e1a2E9b2f0a41111"
	testToken = "test-bearer-token"
)

func init() {
	_ = logger.Initialize(logger.Config{Debug: true})
}

func newTestClient(serverURL string) *aa.Client {
	return aa.NewClient(adapter.NewHTTPClient(5*time.Second), serverURL)
}

// testSignedChallenge packs a syntactically valid jws; the test servers never
// verify the signature
func testSignedChallenge(t *testing.T, nonce string) *auth.SignedChallenge {
	t.Helper()
	signed, err := auth.NewSignedChallenge(
		auth.ChallengePayload{DID: testDID, Nonce: nonce},
		"0x"+strings.Repeat("ab", 65),
	)
	require.NoError(t, err)
	return signed
}

func TestAuthChallenge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/challenge", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, testDID, req["did"])

		json.NewEncoder(w).Encode(auth.Challenge{
			DID:       testDID,
			Nonce:     "nonce-1",
			ExpiresAt: time.Now().Add(5 * time.Minute).UTC(),
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	defer client.Close()

	challenge, err := client.AuthChallenge(context.Background(), testDID)
	require.NoError(t, err)
	assert.Equal(t, testDID, challenge.DID)
	assert.Equal(t, "nonce-1", challenge.Nonce)
}

func TestAuthChallenge_MissingDID(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0")
	defer client.Close()

	_, err := client.AuthChallenge(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuthChallenge_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	defer client.Close()

	_, err := client.AuthChallenge(context.Background(), testDID)
	require.Error(t, err)

	var upstreamErr *domain.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, aa.SERVICE_NAME, upstreamErr.Service)
	assert.Equal(t, http.StatusServiceUnavailable, upstreamErr.StatusCode)
}

func TestAuthVerify_StoresToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/verify":
			var signed auth.SignedChallenge
			require.NoError(t, json.NewDecoder(r.Body).Decode(&signed))

			// the body is {"jws": ...} carrying the challenge payload
			parts := strings.Split(signed.JWS, ".")
			require.Len(t, parts, 3)
			payloadJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
			require.NoError(t, err)
			var payload auth.ChallengePayload
			require.NoError(t, json.Unmarshal(payloadJSON, &payload))
			assert.Equal(t, "nonce-1", payload.Nonce)

			json.NewEncoder(w).Encode(auth.Token{
				Token:     testToken,
				ExpiresAt: time.Now().Add(24 * time.Hour).UTC(),
			})
		case "/transactions/req-123":
			assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"request_id": "req-123",
				"status":     "settled",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	defer client.Close()

	token, err := client.AuthVerify(context.Background(), testSignedChallenge(t, "nonce-1"))
	require.NoError(t, err)
	assert.Equal(t, testToken, token.Token)

	status, err := client.FetchStatus(context.Background(), "req-123")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusSettled, status)
}

func TestAuthVerify_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "signature does not match", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	defer client.Close()

	_, err := client.AuthVerify(context.Background(), testSignedChallenge(t, "nonce-1"))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestFetchStatus_RequiresAuthentication(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0")
	defer client.Close()

	_, err := client.FetchStatus(context.Background(), "req-123")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestFetchStatus_UnknownStatusValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/verify":
			json.NewEncoder(w).Encode(auth.Token{Token: testToken})
		default:
			json.NewEncoder(w).Encode(map[string]interface{}{
				"request_id": "req-123",
				"status":     "vanished",
			})
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	defer client.Close()

	_, err := client.AuthVerify(context.Background(), testSignedChallenge(t, "n"))
	require.NoError(t, err)

	_, err = client.FetchStatus(context.Background(), "req-123")
	assert.ErrorContains(t, err, "unexpected transaction status")
}

// sseServer streams the given frames then returns, which closes the stream
func sseServer(t *testing.T, expectedToken string, frames []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/updates", r.URL.Path)
		if r.URL.Query().Get("token") != expectedToken {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		for _, frame := range frames {
			fmt.Fprintf(w, "data: %s\n\n", frame)
			flusher.Flush()
		}
	}))
}

func feedFrame(t *testing.T, id string, eventType domain.FeedEventType) string {
	t.Helper()
	payload, err := json.Marshal(domain.FeedEvent{
		ID:        id,
		Type:      eventType,
		Data:      json.RawMessage(`{"request_id":"req-123"}`),
		Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)
	return string(payload)
}

func TestSubscribeUpdates_DeliversEvents(t *testing.T) {
	server := sseServer(t, testToken, []string{
		feedFrame(t, "evt-1", domain.FeedEventSettlement),
		feedFrame(t, "evt-2", domain.FeedEventBalanceUpdate),
	})
	defer server.Close()

	client := newTestClient(server.URL)
	defer client.Close()

	events := make(chan *domain.FeedEvent, 4)
	errs := make(chan error, 4)
	sub, err := client.SubscribeUpdates(context.Background(), testToken,
		func(event *domain.FeedEvent) { events <- event },
		func(err error) { errs <- err },
	)
	require.NoError(t, err)
	defer sub.Cancel()

	first := <-events
	assert.Equal(t, "evt-1", first.ID)
	assert.Equal(t, domain.FeedEventSettlement, first.Type)

	second := <-events
	assert.Equal(t, "evt-2", second.ID)

	// the server handler returned, so the stream reports closed
	assert.ErrorIs(t, <-errs, domain.ErrSubscriptionClosed)
}

func TestSubscribeUpdates_MultiLineDataFrame(t *testing.T) {
	// one event split across two data lines; the halves rejoin on newline,
	// which JSON tolerates as whitespace
	whole := feedFrame(t, "evt-1", domain.FeedEventSettlement)
	cut := strings.Index(whole, ",") + 1
	server := sseServer(t, testToken, []string{whole[:cut] + "\ndata: " + whole[cut:]})
	defer server.Close()

	client := newTestClient(server.URL)
	defer client.Close()

	events := make(chan *domain.FeedEvent, 2)
	errs := make(chan error, 2)
	sub, err := client.SubscribeUpdates(context.Background(), testToken,
		func(event *domain.FeedEvent) { events <- event },
		func(err error) { errs <- err },
	)
	require.NoError(t, err)
	defer sub.Cancel()

	event := <-events
	assert.Equal(t, "evt-1", event.ID)
	assert.Equal(t, domain.FeedEventSettlement, event.Type)

	assert.ErrorIs(t, <-errs, domain.ErrSubscriptionClosed)
}

func TestSubscribeUpdates_MalformedEventKeepsStreamOpen(t *testing.T) {
	server := sseServer(t, testToken, []string{
		`{not json`,
		`{"id":"evt-x","type":"gossip"}`,
		feedFrame(t, "evt-1", domain.FeedEventFill),
	})
	defer server.Close()

	client := newTestClient(server.URL)
	defer client.Close()

	events := make(chan *domain.FeedEvent, 4)
	errs := make(chan error, 4)
	sub, err := client.SubscribeUpdates(context.Background(), testToken,
		func(event *domain.FeedEvent) { events <- event },
		func(err error) { errs <- err },
	)
	require.NoError(t, err)
	defer sub.Cancel()

	assert.ErrorContains(t, <-errs, "malformed feed event")
	assert.ErrorContains(t, <-errs, "malformed feed event")

	// the good event after the bad frames still arrives
	event := <-events
	assert.Equal(t, "evt-1", event.ID)
	assert.Equal(t, domain.FeedEventFill, event.Type)
}

func TestSubscribeUpdates_RejectsBadToken(t *testing.T) {
	server := sseServer(t, testToken, nil)
	defer server.Close()

	client := newTestClient(server.URL)
	defer client.Close()

	_, err := client.SubscribeUpdates(context.Background(), "wrong-token",
		func(*domain.FeedEvent) {}, nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSubscribeUpdates_CancelStopsStream(t *testing.T) {
	blockForever := make(chan struct{})
	defer close(blockForever)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprintf(w, "data: %s\n\n", feedFrame(t, "evt-1", domain.FeedEventSettlement))
		flusher.Flush()
		select {
		case <-r.Context().Done():
		case <-blockForever:
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	defer client.Close()

	events := make(chan *domain.FeedEvent, 1)
	sub, err := client.SubscribeUpdates(context.Background(), testToken,
		func(event *domain.FeedEvent) { events <- event }, nil)
	require.NoError(t, err)

	<-events
	sub.Cancel()
	// a second Cancel is a no-op rather than a panic
	sub.Cancel()
}

func TestClose_CancelsSubscriptionsAndDropsToken(t *testing.T) {
	blockForever := make(chan struct{})
	defer close(blockForever)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/verify":
			json.NewEncoder(w).Encode(auth.Token{Token: testToken})
		case "/updates":
			w.Header().Set("Content-Type", "text/event-stream")
			w.(http.Flusher).Flush()
			select {
			case <-r.Context().Done():
			case <-blockForever:
			}
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.AuthVerify(context.Background(), testSignedChallenge(t, "n"))
	require.NoError(t, err)

	sub, err := client.SubscribeUpdates(context.Background(), testToken,
		func(*domain.FeedEvent) {}, nil)
	require.NoError(t, err)

	client.Close()

	// Cancel after Close returns immediately, the stream is already down
	sub.Cancel()

	_, err = client.FetchStatus(context.Background(), "req-123")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
