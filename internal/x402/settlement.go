package x402

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/adapter"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/feed"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
	temporalprovider "github.com/iQube-Protocol/kn0w1-sub001/internal/providers/temporal"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store/schema"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/webhook"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/workflows"
)

// SettlementInput is a finalization request, arriving either from the
// Gateway's callback or from the reconciler
type SettlementInput struct {
	RequestID      string                   `json:"request_id"`
	Status         domain.TransactionStatus `json:"status"`
	FacilitatorRef string                   `json:"facilitator_ref,omitempty"`
}

// SettlementOutcome is the recorded terminal state for a transaction
type SettlementOutcome struct {
	Transaction *schema.Transaction `json:"transaction"`
	Entitlement *schema.Entitlement `json:"entitlement,omitempty"`
	// AlreadyFinal reports the transaction was terminal before this call
	AlreadyFinal bool `json:"already_final"`
}

// Notifier applies settlement outcomes exactly once
//
//go:generate mockgen -source=settlement.go -destination=../mocks/settlement_notifier.go -package=mocks -mock_names=Notifier=MockSettlementNotifier
type Notifier interface {
	// FinalizeSettlement flips the transaction to its terminal status,
	// materializes the entitlement for settled outcomes and fans out
	// post-commit notifications. Duplicate calls return the recorded
	// outcome without re-applying effects.
	FinalizeSettlement(ctx context.Context, input *SettlementInput) (*SettlementOutcome, error)
}

// SettlementService is the concrete Notifier
type SettlementService struct {
	store        store.Store
	publisher    feed.Publisher
	orchestrator temporalprovider.TemporalOrchestrator
	workerCore   workflows.WorkerCore
	json         adapter.JSON
	clock        adapter.Clock
	taskQueue    string
}

// NewSettlementService creates a settlement service. publisher and
// orchestrator may be nil when the deployment runs without the feed bus or
// the webhook worker; finalization itself never depends on either.
func NewSettlementService(
	s store.Store,
	publisher feed.Publisher,
	orchestrator temporalprovider.TemporalOrchestrator,
	workerCore workflows.WorkerCore,
	jsonAdapter adapter.JSON,
	clock adapter.Clock,
	taskQueue string,
) *SettlementService {
	return &SettlementService{
		store:        s,
		publisher:    publisher,
		orchestrator: orchestrator,
		workerCore:   workerCore,
		json:         jsonAdapter,
		clock:        clock,
		taskQueue:    taskQueue,
	}
}

// FinalizeSettlement implements Notifier
func (s *SettlementService) FinalizeSettlement(ctx context.Context, input *SettlementInput) (*SettlementOutcome, error) {
	if input == nil || input.RequestID == "" {
		return nil, fmt.Errorf("%w: request_id is required", domain.ErrValidation)
	}
	if !domain.IsValidFinalStatus(input.Status) {
		return nil, fmt.Errorf("%w: status must be settled or failed, got %q", domain.ErrValidation, input.Status)
	}

	// The entitlement template is built before the transition so the row
	// lands in the same database transaction as the status flip.
	var entitlement *schema.Entitlement
	if input.Status == domain.TransactionStatusSettled {
		txn, err := s.store.GetTransactionByRequestID(ctx, input.RequestID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up transaction: %w", err)
		}
		if txn == nil {
			return nil, fmt.Errorf("%w: unknown request %q", domain.ErrNotFound, input.RequestID)
		}

		asset, err := s.store.GetAssetByAssetID(ctx, txn.AssetID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up asset: %w", err)
		}
		if asset == nil {
			return nil, fmt.Errorf("%w: unknown asset %q", domain.ErrNotFound, txn.AssetID)
		}

		entitlement = &schema.Entitlement{
			AssetID:     asset.AssetID,
			Holder:      txn.BuyerDID,
			Rights:      asset.Rights,
			TokenQubeID: asset.TokenQubeID,
		}
		if asset.AccessDuration > 0 {
			expires := s.clock.Now().UTC().Add(asset.AccessDuration)
			entitlement.ExpiresAt = &expires
		}
	}

	result, err := s.store.FinalizeTransaction(ctx, input.RequestID, input.Status, input.FacilitatorRef, entitlement)
	if err != nil {
		return nil, err
	}

	outcome := &SettlementOutcome{
		Transaction:  result.Transaction,
		Entitlement:  result.Entitlement,
		AlreadyFinal: result.AlreadyFinal,
	}

	if result.AlreadyFinal {
		logger.InfoCtx(ctx, "settlement already final, returning recorded outcome",
			zap.String("request_id", input.RequestID),
			zap.String("recorded_status", string(result.Transaction.Status)))
		return outcome, nil
	}

	logger.InfoCtx(ctx, "settlement finalized",
		zap.String("request_id", input.RequestID),
		zap.String("status", string(result.Transaction.Status)),
		zap.String("facilitator_ref", input.FacilitatorRef))

	// Post-commit fan-out. The durable write above is the source of truth;
	// notification failures are logged and never unwind it.
	s.publishFeedEvent(ctx, result.Transaction)
	s.startWebhookNotification(ctx, result.Transaction)

	return outcome, nil
}

func (s *SettlementService) finalizedAt(txn *schema.Transaction) time.Time {
	if txn.FinalizedAt != nil {
		return *txn.FinalizedAt
	}
	return s.clock.Now().UTC()
}

func (s *SettlementService) publishFeedEvent(ctx context.Context, txn *schema.Transaction) {
	if s.publisher == nil {
		return
	}

	finalizedAt := s.finalizedAt(txn)

	data, err := s.json.Marshal(domain.SettlementEventData{
		RequestID:      txn.RequestID,
		AssetID:        txn.AssetID,
		BuyerDID:       txn.BuyerDID,
		Status:         txn.Status,
		FacilitatorRef: txn.FacilitatorRef,
		FinalizedAt:    finalizedAt,
	})
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to marshal settlement feed event: %w", err),
			zap.String("request_id", txn.RequestID))
		return
	}

	event := &domain.FeedEvent{
		ID:        ulid.MustNewDefault(finalizedAt).String(),
		Type:      domain.FeedEventSettlement,
		Data:      data,
		Timestamp: finalizedAt,
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to publish settlement feed event: %w", err),
			zap.String("request_id", txn.RequestID))
	}
}

func (s *SettlementService) startWebhookNotification(ctx context.Context, txn *schema.Transaction) {
	if s.orchestrator == nil || s.workerCore == nil {
		return
	}

	finalizedAt := s.finalizedAt(txn)

	event := webhook.WebhookEvent{
		EventID:   ulid.MustNewDefault(finalizedAt).String(),
		EventType: webhook.EventTypeForStatus(txn.Status),
		Timestamp: finalizedAt,
		Data: webhook.EventData{
			RequestID:      txn.RequestID,
			AssetID:        txn.AssetID,
			BuyerDID:       txn.BuyerDID,
			Status:         string(txn.Status),
			FacilitatorRef: txn.FacilitatorRef,
			FinalizedAt:    finalizedAt,
		},
	}

	opt := client.StartWorkflowOptions{
		ID:                    fmt.Sprintf("webhook-notify-%s-%s", event.EventType, event.EventID),
		TaskQueue:             s.taskQueue,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowRunTimeout:    10 * time.Minute,
	}
	if _, err := s.orchestrator.ExecuteWorkflow(ctx, opt, s.workerCore.NotifySettlementClients, event); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to start webhook notification workflow: %w", err),
			zap.String("request_id", txn.RequestID),
			zap.String("event_id", event.EventID))
	}
}
