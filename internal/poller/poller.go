package poller

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/adapter"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
)

const (
	// DefaultInterval is the pause between status probes
	DefaultInterval = 5 * time.Second
	// DefaultMaxAttempts bounds the total number of probes
	DefaultMaxAttempts = 60
)

// StatusFetcher retrieves the current settlement status of a transaction
//
//go:generate mockgen -source=poller.go -destination=../mocks/status_fetcher.go -package=mocks -mock_names=StatusFetcher=MockStatusFetcher
type StatusFetcher interface {
	FetchStatus(ctx context.Context, requestID string) (domain.TransactionStatus, error)
}

// Config tunes the polling loop; zero values fall back to the defaults
type Config struct {
	Interval    time.Duration
	MaxAttempts int
}

// Poller waits for a transaction to reach a terminal settlement state by
// probing its status on a fixed interval. The loop is strictly bounded: it
// never probes more than MaxAttempts times.
type Poller struct {
	fetcher     StatusFetcher
	clock       adapter.Clock
	interval    time.Duration
	maxAttempts int
}

// NewPoller creates a settlement poller
func NewPoller(fetcher StatusFetcher, clock adapter.Clock, cfg Config) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Poller{
		fetcher:     fetcher,
		clock:       clock,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

// WaitForSettlement blocks until the transaction settles, fails, the attempt
// ceiling is reached or the context is cancelled.
//
// A failed status returns ErrPaymentFailed immediately. Exhausting the
// ceiling while the transaction is still pending returns ErrPollTimeout,
// which is distinct from payment failure: the transaction may still settle
// later through the callback path.
func (p *Poller) WaitForSettlement(ctx context.Context, requestID string) (domain.TransactionStatus, error) {
	if requestID == "" {
		return "", fmt.Errorf("%w: request_id is required", domain.ErrValidation)
	}

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		status, err := p.fetcher.FetchStatus(ctx, requestID)
		if err != nil {
			return "", err
		}

		switch status {
		case domain.TransactionStatusSettled:
			logger.InfoCtx(ctx, "settlement confirmed",
				zap.String("request_id", requestID),
				zap.Int("attempts", attempt))
			return status, nil
		case domain.TransactionStatusFailed:
			return status, fmt.Errorf("%w: request %s", domain.ErrPaymentFailed, requestID)
		case domain.TransactionStatusPending:
			// keep polling
		default:
			return "", fmt.Errorf("unexpected transaction status %q", status)
		}

		if attempt == p.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-p.clock.After(p.interval):
		}
	}

	logger.WarnCtx(ctx, "settlement polling exhausted while still pending",
		zap.String("request_id", requestID),
		zap.Int("max_attempts", p.maxAttempts))
	return domain.TransactionStatusPending, fmt.Errorf("%w: request %s", domain.ErrPollTimeout, requestID)
}
