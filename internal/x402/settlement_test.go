package x402_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/adapter"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/mocks"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store/schema"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/workflows"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/x402"
)

type settlementMocks struct {
	ctrl         *gomock.Controller
	store        *mocks.MockStore
	publisher    *mocks.MockFeedPublisher
	orchestrator *mocks.MockTemporalOrchestrator
	clock        *mocks.MockClock
	service      *x402.SettlementService
}

func setupSettlement(t *testing.T) *settlementMocks {
	require.NoError(t, logger.Initialize(logger.Config{Debug: true}))

	ctrl := gomock.NewController(t)
	m := &settlementMocks{
		ctrl:         ctrl,
		store:        mocks.NewMockStore(ctrl),
		publisher:    mocks.NewMockFeedPublisher(ctrl),
		orchestrator: mocks.NewMockTemporalOrchestrator(ctrl),
		clock:        mocks.NewMockClock(ctrl),
	}
	workerCore := workflows.NewWorkerCore(workflows.NewExecutor(m.store, nil, nil, nil))
	m.service = x402.NewSettlementService(
		m.store, m.publisher, m.orchestrator, workerCore,
		adapter.NewJSON(), m.clock, workflows.TaskQueue)
	return m
}

const testRequestID = "7d1f0a52-9c2a-4f7e-80c1-8f4a4b2d7e90"

func pendingTxn() *schema.Transaction {
	return &schema.Transaction{
		ID:        11,
		RequestID: testRequestID,
		AssetID:   "asset-premium-feed",
		BuyerDID:  testBuyerDID,
		Status:    domain.TransactionStatusPending,
	}
}

func TestFinalizeSettlement_Settled(t *testing.T) {
	m := setupSettlement(t)
	defer m.ctrl.Finish()

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	txn := pendingTxn()
	asset := testAsset()
	asset.AccessDuration = 24 * time.Hour

	m.store.EXPECT().GetTransactionByRequestID(gomock.Any(), testRequestID).Return(txn, nil)
	m.store.EXPECT().GetAssetByAssetID(gomock.Any(), "asset-premium-feed").Return(asset, nil)
	m.clock.EXPECT().Now().Return(now).AnyTimes()

	settled := *txn
	settled.Status = domain.TransactionStatusSettled
	settled.FacilitatorRef = "0xdeadbeef"
	settled.FinalizedAt = &now

	m.store.EXPECT().
		FinalizeTransaction(gomock.Any(), testRequestID, domain.TransactionStatusSettled, "0xdeadbeef", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ domain.TransactionStatus, _ string, ent *schema.Entitlement) (*store.FinalizeResult, error) {
			// entitlement template derived from the asset's rights
			require.NotNil(t, ent)
			assert.Equal(t, "asset-premium-feed", ent.AssetID)
			assert.Equal(t, testBuyerDID, ent.Holder)
			assert.Equal(t, "view,download", ent.Rights)
			require.NotNil(t, ent.ExpiresAt)
			assert.Equal(t, now.Add(24*time.Hour), *ent.ExpiresAt)

			ent.ID = 5
			ent.TransactionID = txn.ID
			return &store.FinalizeResult{Transaction: &settled, Entitlement: ent}, nil
		})

	m.publisher.EXPECT().
		PublishEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event *domain.FeedEvent) error {
			assert.Equal(t, domain.FeedEventSettlement, event.Type)
			var data domain.SettlementEventData
			require.NoError(t, json.Unmarshal(event.Data, &data))
			assert.Equal(t, testRequestID, data.RequestID)
			assert.Equal(t, domain.TransactionStatusSettled, data.Status)
			assert.Equal(t, "0xdeadbeef", data.FacilitatorRef)
			return nil
		})

	m.orchestrator.EXPECT().
		ExecuteWorkflow(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, opt client.StartWorkflowOptions, _ interface{}, args ...interface{}) (client.WorkflowRun, error) {
			assert.Equal(t, workflows.TaskQueue, opt.TaskQueue)
			assert.Contains(t, opt.ID, "webhook-notify-settlement.settled-")
			return nil, nil
		})

	outcome, err := m.service.FinalizeSettlement(context.Background(), &x402.SettlementInput{
		RequestID:      testRequestID,
		Status:         domain.TransactionStatusSettled,
		FacilitatorRef: "0xdeadbeef",
	})
	require.NoError(t, err)
	assert.False(t, outcome.AlreadyFinal)
	assert.Equal(t, domain.TransactionStatusSettled, outcome.Transaction.Status)
	require.NotNil(t, outcome.Entitlement)
	assert.Equal(t, uint64(5), outcome.Entitlement.ID)
}

func TestFinalizeSettlement_Failed(t *testing.T) {
	m := setupSettlement(t)
	defer m.ctrl.Finish()

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	failed := pendingTxn()
	failed.Status = domain.TransactionStatusFailed
	failed.FinalizedAt = &now

	// no asset lookup and no entitlement template on the failed path
	m.store.EXPECT().
		FinalizeTransaction(gomock.Any(), testRequestID, domain.TransactionStatusFailed, "", nil).
		Return(&store.FinalizeResult{Transaction: failed}, nil)

	m.publisher.EXPECT().
		PublishEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event *domain.FeedEvent) error {
			var data domain.SettlementEventData
			require.NoError(t, json.Unmarshal(event.Data, &data))
			assert.Equal(t, domain.TransactionStatusFailed, data.Status)
			assert.Empty(t, data.FacilitatorRef)
			return nil
		})

	m.orchestrator.EXPECT().
		ExecuteWorkflow(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)

	outcome, err := m.service.FinalizeSettlement(context.Background(), &x402.SettlementInput{
		RequestID: testRequestID,
		Status:    domain.TransactionStatusFailed,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusFailed, outcome.Transaction.Status)
	assert.Nil(t, outcome.Entitlement)
}

func TestFinalizeSettlement_AlreadyFinalSkipsFanout(t *testing.T) {
	m := setupSettlement(t)
	defer m.ctrl.Finish()

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	settled := pendingTxn()
	settled.Status = domain.TransactionStatusSettled
	settled.FinalizedAt = &now

	// duplicate callback carrying a conflicting status still returns the
	// recorded outcome and publishes nothing
	m.store.EXPECT().
		FinalizeTransaction(gomock.Any(), testRequestID, domain.TransactionStatusFailed, "", nil).
		Return(&store.FinalizeResult{Transaction: settled, AlreadyFinal: true}, nil)

	outcome, err := m.service.FinalizeSettlement(context.Background(), &x402.SettlementInput{
		RequestID: testRequestID,
		Status:    domain.TransactionStatusFailed,
	})
	require.NoError(t, err)
	assert.True(t, outcome.AlreadyFinal)
	assert.Equal(t, domain.TransactionStatusSettled, outcome.Transaction.Status)
}

func TestFinalizeSettlement_ValidationErrors(t *testing.T) {
	m := setupSettlement(t)
	defer m.ctrl.Finish()

	_, err := m.service.FinalizeSettlement(context.Background(), &x402.SettlementInput{
		Status: domain.TransactionStatusSettled,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = m.service.FinalizeSettlement(context.Background(), &x402.SettlementInput{
		RequestID: testRequestID,
		Status:    domain.TransactionStatusPending,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFinalizeSettlement_UnknownRequest(t *testing.T) {
	m := setupSettlement(t)
	defer m.ctrl.Finish()

	m.store.EXPECT().GetTransactionByRequestID(gomock.Any(), "missing").Return(nil, nil)

	_, err := m.service.FinalizeSettlement(context.Background(), &x402.SettlementInput{
		RequestID: "missing",
		Status:    domain.TransactionStatusSettled,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFinalizeSettlement_PublishFailureDoesNotUnwind(t *testing.T) {
	m := setupSettlement(t)
	defer m.ctrl.Finish()

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	failed := pendingTxn()
	failed.Status = domain.TransactionStatusFailed
	failed.FinalizedAt = &now

	m.store.EXPECT().
		FinalizeTransaction(gomock.Any(), testRequestID, domain.TransactionStatusFailed, "", nil).
		Return(&store.FinalizeResult{Transaction: failed}, nil)
	m.publisher.EXPECT().
		PublishEvent(gomock.Any(), gomock.Any()).
		Return(errors.New("nats unavailable"))
	m.orchestrator.EXPECT().
		ExecuteWorkflow(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("temporal unavailable"))

	outcome, err := m.service.FinalizeSettlement(context.Background(), &x402.SettlementInput{
		RequestID: testRequestID,
		Status:    domain.TransactionStatusFailed,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusFailed, outcome.Transaction.Status)
}
