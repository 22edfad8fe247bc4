package reconciler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/gateway"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/mocks"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/reconciler"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store/schema"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/x402"
)

type reconcilerMocks struct {
	ctrl       *gomock.Controller
	store      *mocks.MockStore
	gateway    *mocks.MockGatewayClient
	notifier   *mocks.MockSettlementNotifier
	clock      *mocks.MockClock
	reconciler reconciler.Reconciler
}

func setupReconciler(t *testing.T) *reconcilerMocks {
	require.NoError(t, logger.Initialize(logger.Config{Debug: true}))

	ctrl := gomock.NewController(t)
	m := &reconcilerMocks{
		ctrl:     ctrl,
		store:    mocks.NewMockStore(ctrl),
		gateway:  mocks.NewMockGatewayClient(ctrl),
		notifier: mocks.NewMockSettlementNotifier(ctrl),
		clock:    mocks.NewMockClock(ctrl),
	}
	m.reconciler = reconciler.NewReconciler(&reconciler.Config{
		BatchSize:      10,
		WorkerPoolSize: 2,
		StaleAfter:     10 * time.Minute,
	}, m.store, m.gateway, m.notifier, m.clock)
	return m
}

// blockedClock parks the sweep loop after its first cycle
func blockedClock() <-chan time.Time {
	return make(chan time.Time)
}

func TestReconciler_Name(t *testing.T) {
	m := setupReconciler(t)
	defer m.ctrl.Finish()
	assert.Equal(t, "settlement-reconciler", m.reconciler.Name())
}

func TestReconciler_RecoversSettledTransaction(t *testing.T) {
	m := setupReconciler(t)
	defer m.ctrl.Finish()

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	stale := []schema.Transaction{
		{RequestID: "req-1", AssetID: "asset-premium-feed", Status: domain.TransactionStatusPending},
	}

	m.clock.EXPECT().Now().Return(now).AnyTimes()
	m.clock.EXPECT().After(gomock.Any()).
		DoAndReturn(func(time.Duration) <-chan time.Time { return blockedClock() }).
		AnyTimes()

	m.store.EXPECT().
		ListStalePendingTransactions(gomock.Any(), now.Add(-10*time.Minute), 10).
		Return(stale, nil)
	m.store.EXPECT().
		ListStalePendingTransactions(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil).
		AnyTimes()

	m.gateway.EXPECT().
		GetSettlementStatus(gomock.Any(), "req-1").
		Return(&gateway.SettlementStatus{
			RequestID:      "req-1",
			Status:         domain.TransactionStatusSettled,
			FacilitatorRef: "0xdeadbeef",
		}, nil)

	var finalized atomic.Bool
	m.notifier.EXPECT().
		FinalizeSettlement(gomock.Any(), &x402.SettlementInput{
			RequestID:      "req-1",
			Status:         domain.TransactionStatusSettled,
			FacilitatorRef: "0xdeadbeef",
		}).
		DoAndReturn(func(context.Context, *x402.SettlementInput) (*x402.SettlementOutcome, error) {
			finalized.Store(true)
			return &x402.SettlementOutcome{
				Transaction: &schema.Transaction{RequestID: "req-1", Status: domain.TransactionStatusSettled},
			}, nil
		})

	ctx := context.Background()
	go func() {
		time.Sleep(200 * time.Millisecond)
		_ = m.reconciler.Stop(ctx)
	}()

	err := m.reconciler.Start(ctx)
	assert.NoError(t, err)
	assert.True(t, finalized.Load())
}

func TestReconciler_StillPendingNotFinalized(t *testing.T) {
	m := setupReconciler(t)
	defer m.ctrl.Finish()

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	m.clock.EXPECT().Now().Return(now).AnyTimes()
	m.clock.EXPECT().After(gomock.Any()).
		DoAndReturn(func(time.Duration) <-chan time.Time { return blockedClock() }).
		AnyTimes()

	m.store.EXPECT().
		ListStalePendingTransactions(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]schema.Transaction{{RequestID: "req-1"}}, nil)
	m.store.EXPECT().
		ListStalePendingTransactions(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil).
		AnyTimes()

	// a Gateway that still reports pending leaves the transaction alone
	m.gateway.EXPECT().
		GetSettlementStatus(gomock.Any(), "req-1").
		Return(&gateway.SettlementStatus{
			RequestID: "req-1",
			Status:    domain.TransactionStatusPending,
		}, nil)

	ctx := context.Background()
	go func() {
		time.Sleep(200 * time.Millisecond)
		_ = m.reconciler.Stop(ctx)
	}()

	err := m.reconciler.Start(ctx)
	assert.NoError(t, err)
}

func TestReconciler_GatewayErrorDoesNotStopSweep(t *testing.T) {
	m := setupReconciler(t)
	defer m.ctrl.Finish()

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	m.clock.EXPECT().Now().Return(now).AnyTimes()
	m.clock.EXPECT().After(gomock.Any()).
		DoAndReturn(func(time.Duration) <-chan time.Time { return blockedClock() }).
		AnyTimes()

	m.store.EXPECT().
		ListStalePendingTransactions(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]schema.Transaction{{RequestID: "req-1"}, {RequestID: "req-2"}}, nil)
	m.store.EXPECT().
		ListStalePendingTransactions(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil).
		AnyTimes()

	m.gateway.EXPECT().
		GetSettlementStatus(gomock.Any(), "req-1").
		Return(nil, errors.New("gateway unreachable"))
	m.gateway.EXPECT().
		GetSettlementStatus(gomock.Any(), "req-2").
		Return(&gateway.SettlementStatus{
			RequestID: "req-2",
			Status:    domain.TransactionStatusFailed,
		}, nil)

	m.notifier.EXPECT().
		FinalizeSettlement(gomock.Any(), &x402.SettlementInput{
			RequestID: "req-2",
			Status:    domain.TransactionStatusFailed,
		}).
		Return(&x402.SettlementOutcome{
			Transaction: &schema.Transaction{RequestID: "req-2", Status: domain.TransactionStatusFailed},
		}, nil)

	ctx := context.Background()
	go func() {
		time.Sleep(200 * time.Millisecond)
		_ = m.reconciler.Stop(ctx)
	}()

	err := m.reconciler.Start(ctx)
	assert.NoError(t, err)
}

func TestReconciler_DoubleStartRejected(t *testing.T) {
	m := setupReconciler(t)
	defer m.ctrl.Finish()

	m.clock.EXPECT().Now().Return(time.Now()).AnyTimes()
	m.clock.EXPECT().After(gomock.Any()).
		DoAndReturn(func(time.Duration) <-chan time.Time { return blockedClock() }).
		AnyTimes()
	m.store.EXPECT().
		ListStalePendingTransactions(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil).
		AnyTimes()

	ctx := context.Background()
	go func() {
		_ = m.reconciler.Start(ctx)
	}()
	time.Sleep(100 * time.Millisecond)

	err := m.reconciler.Start(ctx)
	assert.Error(t, err)

	_ = m.reconciler.Stop(ctx)
}
