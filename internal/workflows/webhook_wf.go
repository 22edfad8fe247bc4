package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store/schema"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/webhook"
)

// NotifySettlementClients looks up every active webhook client subscribed to
// the event type and spawns a detached delivery workflow per client. Delivery
// failures never fail the parent.
func (w *workerCore) NotifySettlementClients(ctx workflow.Context, event webhook.WebhookEvent) error {
	logger.InfoWf(ctx, "start notifying webhook clients",
		zap.String("eventID", event.EventID),
		zap.String("eventType", event.EventType))

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 5 * time.Second,
			MaximumAttempts: 2,
		},
	})

	var clients []*schema.WebhookClient
	if err := workflow.ExecuteActivity(ctx,
		w.executor.GetActiveWebhookClientsByEventType,
		event.EventType).Get(ctx, &clients); err != nil {
		return err
	}

	if len(clients) == 0 {
		logger.InfoWf(ctx, "no webhook clients subscribed to event type",
			zap.String("eventType", event.EventType))
		return nil
	}

	for _, client := range clients {
		cwo := workflow.ChildWorkflowOptions{
			WorkflowID:            fmt.Sprintf("webhook-delivery-%s-%s", client.ClientID, event.EventID),
			WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
			ParentClosePolicy:     enums.PARENT_CLOSE_POLICY_ABANDON,
		}
		childCtx := workflow.WithChildOptions(ctx, cwo)

		// only wait for the child to start, not to finish
		if err := workflow.ExecuteChildWorkflow(childCtx,
			w.DeliverWebhook,
			client.ClientID,
			event).GetChildWorkflowExecution().Get(childCtx, nil); err != nil {
			logger.WarnWf(ctx, "failed to start webhook delivery workflow",
				zap.String("clientID", client.ClientID),
				zap.String("eventID", event.EventID),
				zap.Error(err))
		}
	}

	logger.InfoWf(ctx, "finished notifying webhook clients",
		zap.String("eventID", event.EventID),
		zap.Int("clients", len(clients)))
	return nil
}

// DeliverWebhook records a delivery attempt for a single client and runs the
// HTTP delivery activity with the client's configured retry budget.
func (w *workerCore) DeliverWebhook(ctx workflow.Context, clientID string, event webhook.WebhookEvent) error {
	logger.InfoWf(ctx, "start webhook delivery",
		zap.String("clientID", clientID),
		zap.String("eventID", event.EventID))

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 5 * time.Second,
			MaximumAttempts: 2,
		},
	})

	var client *schema.WebhookClient
	if err := workflow.ExecuteActivity(ctx,
		w.executor.GetWebhookClientByID,
		clientID).Get(ctx, &client); err != nil {
		return err
	}

	if client == nil || !client.IsActive {
		logger.WarnWf(ctx, "webhook client missing or inactive, skipping delivery",
			zap.String("clientID", clientID))
		return nil
	}

	workflowInfo := workflow.GetInfo(ctx)
	delivery := &schema.WebhookDelivery{
		ClientID:       client.ClientID,
		EventID:        event.EventID,
		EventType:      event.EventType,
		DeliveryStatus: schema.WebhookDeliveryStatusPending,
		WorkflowID:     workflowInfo.WorkflowExecution.ID,
		WorkflowRunID:  workflowInfo.WorkflowExecution.RunID,
	}

	var deliveryID uint64
	if err := workflow.ExecuteActivity(ctx,
		w.executor.CreateWebhookDeliveryRecord,
		delivery,
		event).Get(ctx, &deliveryID); err != nil {
		return err
	}

	deliverCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    int32(client.RetryMaxAttempts),
		},
	})

	var result webhook.DeliveryResult
	if err := workflow.ExecuteActivity(deliverCtx,
		w.executor.DeliverWebhookHTTP,
		client,
		event,
		deliveryID).Get(deliverCtx, &result); err != nil {
		logger.ErrorWf(ctx, err,
			zap.String("clientID", clientID),
			zap.String("eventID", event.EventID))
		return err
	}

	logger.InfoWf(ctx, "webhook delivered",
		zap.String("clientID", clientID),
		zap.String("eventID", event.EventID),
		zap.Int("statusCode", result.StatusCode))
	return nil
}
