package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/adapter"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/gateway"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/x402"
)

const (
	// SWEEP_CYCLE_INTERVAL is the pause between sweep cycles
	SWEEP_CYCLE_INTERVAL = 5 * time.Minute
)

// Config holds configuration for the settlement reconciler
type Config struct {
	BatchSize      int           // transactions to sweep per cycle
	WorkerPoolSize int           // concurrent Gateway queries
	StaleAfter     time.Duration // only sweep transactions pending longer than this
}

// Reconciler is a long-running background task that recovers transactions
// whose settlement callback was lost
//
//go:generate mockgen -source=reconciler.go -destination=../mocks/reconciler.go -package=mocks -mock_names=Reconciler=MockReconciler
type Reconciler interface {
	// Start begins the reconciler's main loop. Blocks until the context is
	// canceled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops the reconciler, waiting for in-flight work
	Stop(ctx context.Context) error

	// Name returns the reconciler's name for logging
	Name() string
}

// settlementReconciler sweeps stale pending transactions, asks the Gateway
// for their terminal state and finalizes them through the same settlement
// path the callback uses
type settlementReconciler struct {
	config    *Config
	store     store.Store
	gateway   gateway.Client
	notifier  x402.Notifier
	clock     adapter.Clock
	pool      pond.Pool
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewReconciler creates a settlement reconciler
func NewReconciler(
	config *Config,
	st store.Store,
	gw gateway.Client,
	notifier x402.Notifier,
	clock adapter.Clock,
) Reconciler {
	return &settlementReconciler{
		config:    config,
		store:     st,
		gateway:   gw,
		notifier:  notifier,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the reconciler's name
func (r *settlementReconciler) Name() string {
	return "settlement-reconciler"
}

// Start begins the reconciler's main loop
func (r *settlementReconciler) Start(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return fmt.Errorf("reconciler already running")
	}
	defer func() {
		r.running.Store(false)
		close(r.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting settlement reconciler",
		zap.Int("batch_size", r.config.BatchSize),
		zap.Int("worker_pool_size", r.config.WorkerPoolSize),
		zap.Duration("stale_after", r.config.StaleAfter),
	)

	r.pool = pond.NewPool(
		r.config.WorkerPoolSize,
		pond.WithQueueSize(r.config.BatchSize),
		pond.WithContext(ctx),
	)

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Settlement reconciler stopping due to context cancellation", zap.Error(ctx.Err()))
			r.cleanup()
			return nil
		case <-r.stopChan:
			logger.InfoCtx(ctx, "Settlement reconciler stop requested")
			r.cleanup()
			return nil
		default:
			if err := r.runSweepCycle(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.ErrorCtx(ctx, err)
				}
			}
		}
	}
}

// cleanup stops the worker pool and waits for tasks to complete
func (r *settlementReconciler) cleanup() {
	if r.pool != nil {
		r.pool.StopAndWait()
	}
}

// Stop gracefully stops the reconciler with timeout support
func (r *settlementReconciler) Stop(ctx context.Context) error {
	if !r.running.CompareAndSwap(true, false) {
		return nil // already stopped
	}

	logger.InfoCtx(ctx, "Stopping settlement reconciler")
	close(r.stopChan)

	select {
	case <-r.stoppedCh:
		logger.InfoCtx(ctx, "Settlement reconciler stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Settlement reconciler stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runSweepCycle runs a single sweep cycle
func (r *settlementReconciler) runSweepCycle(ctx context.Context) error {
	cutoff := r.clock.Now().UTC().Add(-r.config.StaleAfter)

	stale, err := r.store.ListStalePendingTransactions(ctx, cutoff, r.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list stale pending transactions: %w", err)
	}

	if len(stale) == 0 {
		if !r.sleep(ctx, SWEEP_CYCLE_INTERVAL) {
			return ctx.Err()
		}
		return nil
	}

	logger.InfoCtx(ctx, "Found stale pending transactions", zap.Int("count", len(stale)))

	var recovered, stillPending, failures atomic.Int32

	for _, txn := range stale {
		requestID := txn.RequestID
		r.pool.Submit(func() {
			r.reconcile(ctx, requestID, &recovered, &stillPending, &failures)
		})
	}

	r.pool.StopAndWait()

	logger.InfoCtx(ctx, "Sweep cycle complete",
		zap.Int32("recovered", recovered.Load()),
		zap.Int32("still_pending", stillPending.Load()),
		zap.Int32("failures", failures.Load()),
	)

	// Recreate pool for next cycle
	r.pool = pond.NewPool(
		r.config.WorkerPoolSize,
		pond.WithQueueSize(r.config.BatchSize),
		pond.WithContext(ctx),
	)

	if !r.sleep(ctx, SWEEP_CYCLE_INTERVAL) {
		return ctx.Err()
	}
	return nil
}

// reconcile queries the Gateway for one transaction and finalizes it when
// the Gateway reports a terminal state
func (r *settlementReconciler) reconcile(ctx context.Context, requestID string, recovered, stillPending, failures *atomic.Int32) {
	status, err := r.gateway.GetSettlementStatus(ctx, requestID)
	if err != nil {
		failures.Add(1)
		logger.ErrorCtx(ctx, fmt.Errorf("failed to query gateway settlement status: %w", err),
			zap.String("request_id", requestID))
		return
	}

	if !status.Status.Terminal() {
		stillPending.Add(1)
		return
	}

	outcome, err := r.notifier.FinalizeSettlement(ctx, &x402.SettlementInput{
		RequestID:      requestID,
		Status:         status.Status,
		FacilitatorRef: status.FacilitatorRef,
	})
	if err != nil {
		failures.Add(1)
		logger.ErrorCtx(ctx, fmt.Errorf("failed to finalize recovered settlement: %w", err),
			zap.String("request_id", requestID))
		return
	}

	// A concurrent callback may have won the race; that still counts as
	// recovered from the sweep's point of view.
	recovered.Add(1)
	logger.InfoCtx(ctx, "Recovered stale transaction",
		zap.String("request_id", requestID),
		zap.String("status", string(status.Status)),
		zap.Bool("already_final", outcome.AlreadyFinal))
}

// sleep sleeps for the given duration, returning false when interrupted by
// context cancellation
func (r *settlementReconciler) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-r.stopChan:
		return false
	case <-r.clock.After(d):
		return true
	}
}
