package aa

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/adapter"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/auth"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
)

// SERVICE_NAME identifies the coordinator API in upstream errors
const SERVICE_NAME = "aa-api"

// EventHandler receives one decoded live feed event
type EventHandler func(event *domain.FeedEvent)

// ErrorHandler receives stream errors. Malformed events report the error and
// keep the stream open; transport errors report and close it.
type ErrorHandler func(err error)

// Subscription is a handle on one live feed stream
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Cancel stops the stream. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.cancel()
	})
	<-s.done
}

// Client talks to the coordinator API: DID auth handshake, transaction
// status reads and the live update stream. Construct one per session and
// Close it on logout; there is no package-level instance.
type Client struct {
	httpClient adapter.HTTPClient
	sseClient  *http.Client
	apiURL     string

	mu    sync.Mutex
	token string
	subs  map[*Subscription]struct{}
}

// NewClient creates a coordinator API client
func NewClient(httpClient adapter.HTTPClient, apiURL string) *Client {
	return &Client{
		httpClient: httpClient,
		sseClient:  &http.Client{}, // no timeout, streams are long-lived
		apiURL:     strings.TrimRight(apiURL, "/"),
		subs:       make(map[*Subscription]struct{}),
	}
}

// AuthChallenge requests a single-use nonce for the DID
func (c *Client) AuthChallenge(ctx context.Context, did string) (*auth.Challenge, error) {
	if did == "" {
		return nil, fmt.Errorf("%w: did is required", domain.ErrValidation)
	}

	status, body, err := c.httpClient.PostJSON(ctx, c.apiURL+"/auth/challenge", nil, map[string]string{"did": did})
	if err != nil {
		return nil, domain.NewUpstreamError(SERVICE_NAME, 0, err.Error())
	}
	if status != http.StatusOK {
		return nil, domain.NewUpstreamError(SERVICE_NAME, status, string(body))
	}

	var challenge auth.Challenge
	if err := json.Unmarshal(body, &challenge); err != nil {
		return nil, fmt.Errorf("failed to decode challenge response: %w", err)
	}
	return &challenge, nil
}

// AuthVerify exchanges a signed challenge for a bearer token. The token is
// retained for subsequent status reads.
func (c *Client) AuthVerify(ctx context.Context, signed *auth.SignedChallenge) (*auth.Token, error) {
	if signed == nil {
		return nil, fmt.Errorf("%w: signed challenge is required", domain.ErrValidation)
	}

	status, body, err := c.httpClient.PostJSON(ctx, c.apiURL+"/auth/verify", nil, signed)
	if err != nil {
		return nil, domain.NewUpstreamError(SERVICE_NAME, 0, err.Error())
	}
	if status == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnauthorized, string(body))
	}
	if status != http.StatusOK {
		return nil, domain.NewUpstreamError(SERVICE_NAME, status, string(body))
	}

	var token auth.Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	c.mu.Lock()
	c.token = token.Token
	c.mu.Unlock()

	return &token, nil
}

// bearerToken returns the retained token, empty when not authenticated
func (c *Client) bearerToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// FetchStatus reads the settlement status of a transaction. Implements the
// poller's StatusFetcher.
func (c *Client) FetchStatus(ctx context.Context, requestID string) (domain.TransactionStatus, error) {
	if requestID == "" {
		return "", fmt.Errorf("%w: request_id is required", domain.ErrValidation)
	}
	token := c.bearerToken()
	if token == "" {
		return "", fmt.Errorf("%w: client is not authenticated", domain.ErrUnauthorized)
	}

	var resp struct {
		RequestID string                   `json:"request_id"`
		Status    domain.TransactionStatus `json:"status"`
	}
	headers := map[string]string{"Authorization": "Bearer " + token}
	if err := c.httpClient.GetJSON(ctx, c.apiURL+"/transactions/"+url.PathEscape(requestID), headers, &resp); err != nil {
		return "", err
	}

	switch resp.Status {
	case domain.TransactionStatusPending, domain.TransactionStatusSettled, domain.TransactionStatusFailed:
		return resp.Status, nil
	default:
		return "", fmt.Errorf("unexpected transaction status %q", resp.Status)
	}
}

// SubscribeUpdates opens the live feed stream with the bearer token and
// dispatches decoded events to onEvent. Delivery is at-most-once; there is
// no built-in reconnect, the caller re-subscribes after onError reports the
// stream closed.
func (c *Client) SubscribeUpdates(ctx context.Context, token string, onEvent EventHandler, onError ErrorHandler) (*Subscription, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", domain.ErrUnauthorized)
	}
	if onEvent == nil {
		return nil, fmt.Errorf("%w: onEvent handler is required", domain.ErrValidation)
	}

	streamCtx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet,
		c.apiURL+"/updates?token="+url.QueryEscape(token), nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.sseClient.Do(req)
	if err != nil {
		cancel()
		return nil, domain.NewUpstreamError(SERVICE_NAME, 0, err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: stream rejected token", domain.ErrUnauthorized)
		}
		return nil, domain.NewUpstreamError(SERVICE_NAME, resp.StatusCode, "stream rejected")
	}

	sub := &Subscription{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c.mu.Lock()
	c.subs[sub] = struct{}{}
	c.mu.Unlock()

	go c.consumeStream(streamCtx, resp, sub, onEvent, onError)

	return sub, nil
}

// consumeStream reads SSE frames until the stream ends
func (c *Client) consumeStream(ctx context.Context, resp *http.Response, sub *Subscription, onEvent EventHandler, onError ErrorHandler) {
	defer func() {
		resp.Body.Close()
		c.mu.Lock()
		delete(c.subs, sub)
		c.mu.Unlock()
		close(sub.done)
	}()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "data:"):
			// multi-line data fields rejoin on newline
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		case line == "":
			if data.Len() == 0 {
				continue
			}
			payload := data.String()
			data.Reset()

			var event domain.FeedEvent
			if err := json.Unmarshal([]byte(payload), &event); err != nil || !domain.IsValidFeedEventType(event.Type) {
				// a bad frame never kills the stream
				if onError != nil {
					onError(fmt.Errorf("malformed feed event: %q", payload))
				}
				continue
			}
			onEvent(&event)
		default:
			// comments (":keepalive") and unknown fields are skipped
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		logger.Error(err, zap.String("message", "live feed stream closed"))
		if onError != nil {
			onError(fmt.Errorf("%w: %v", domain.ErrSubscriptionClosed, err))
		}
		return
	}
	if onError != nil {
		onError(domain.ErrSubscriptionClosed)
	}
}

// Close cancels every active subscription and drops the retained token.
// Tied to logout; the client is not reusable afterwards.
func (c *Client) Close() {
	c.mu.Lock()
	subs := make([]*Subscription, 0, len(c.subs))
	for sub := range c.subs {
		subs = append(subs, sub)
	}
	c.token = ""
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}
