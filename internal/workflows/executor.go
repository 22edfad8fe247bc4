package workflows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/adapter"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/store/schema"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/webhook"
)

// Executor defines the interface for executing activities
//
//go:generate mockgen -source=executor.go -destination=../mocks/executor_core.go -package=mocks -mock_names=Executor=MockCoreExecutor
type Executor interface {
	// GetActiveWebhookClientsByEventType retrieves active webhook clients matching the event type
	GetActiveWebhookClientsByEventType(ctx context.Context, eventType string) ([]*schema.WebhookClient, error)

	// GetWebhookClientByID retrieves a webhook client by client ID
	GetWebhookClientByID(ctx context.Context, clientID string) (*schema.WebhookClient, error)

	// CreateWebhookDeliveryRecord creates a new webhook delivery record
	CreateWebhookDeliveryRecord(ctx context.Context, delivery *schema.WebhookDelivery, event webhook.WebhookEvent) (uint64, error)

	// DeliverWebhookHTTP performs the actual HTTP delivery of a webhook with signature
	DeliverWebhookHTTP(ctx context.Context, client *schema.WebhookClient, event webhook.WebhookEvent, deliveryID uint64) (webhook.DeliveryResult, error)
}

// executor is the concrete implementation of Executor
type executor struct {
	store            store.Store
	httpClient       adapter.HTTPClient
	json             adapter.JSON
	temporalActivity adapter.Activity
}

// NewExecutor creates a new executor instance
func NewExecutor(s store.Store, httpClient adapter.HTTPClient, jsonAdapter adapter.JSON, temporalActivity adapter.Activity) Executor {
	return &executor{
		store:            s,
		httpClient:       httpClient,
		json:             jsonAdapter,
		temporalActivity: temporalActivity,
	}
}

// GetActiveWebhookClientsByEventType retrieves active webhook clients matching the event type
func (e *executor) GetActiveWebhookClientsByEventType(ctx context.Context, eventType string) ([]*schema.WebhookClient, error) {
	return e.store.GetActiveWebhookClientsByEventType(ctx, eventType)
}

// GetWebhookClientByID retrieves a webhook client by client ID
func (e *executor) GetWebhookClientByID(ctx context.Context, clientID string) (*schema.WebhookClient, error) {
	return e.store.GetWebhookClientByID(ctx, clientID)
}

// CreateWebhookDeliveryRecord creates a new webhook delivery record
func (e *executor) CreateWebhookDeliveryRecord(ctx context.Context, delivery *schema.WebhookDelivery, event webhook.WebhookEvent) (uint64, error) {
	eventJSON, err := e.json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal webhook event: %w", err)
	}
	delivery.Payload = eventJSON
	delivery.DeliveryStatus = schema.WebhookDeliveryStatusPending

	return e.store.CreateWebhookDelivery(ctx, delivery)
}

// DeliverWebhookHTTP performs the actual HTTP delivery of a webhook with HMAC signature
// This activity will be automatically retried by Temporal with exponential backoff
func (e *executor) DeliverWebhookHTTP(ctx context.Context, client *schema.WebhookClient, event webhook.WebhookEvent, deliveryID uint64) (webhook.DeliveryResult, error) {
	attempt := e.temporalActivity.GetInfo(ctx).Attempt

	logger.InfoCtx(ctx, "attempting webhook delivery",
		zap.String("client_id", client.ClientID),
		zap.String("event_id", event.EventID),
		zap.Int32("attempt", attempt))

	payload, signature, timestamp, err := webhook.GenerateSignedPayload(client.WebhookSecret, event)
	if err != nil {
		logger.ErrorCtx(ctx, errors.New("failed to generate signed payload"),
			zap.Error(err), zap.String("client_id", client.ClientID))

		if ierr := e.store.UpdateWebhookDelivery(ctx, deliveryID, schema.WebhookDeliveryStatusFailed, int(attempt), nil, err.Error()); ierr != nil {
			logger.ErrorCtx(ctx, errors.New("failed to update webhook delivery status"),
				zap.Error(ierr), zap.String("client_id", client.ClientID))
		}

		// A payload we cannot sign today we cannot sign tomorrow either
		return webhook.DeliveryResult{Success: false, Error: err.Error()},
			temporal.NewNonRetryableApplicationError(err.Error(), "failed to generate signed payload", err)
	}

	headers := map[string]string{
		"X-Webhook-Signature":  signature,
		"X-Webhook-Event-ID":   event.EventID,
		"X-Webhook-Event-Type": event.EventType,
		"X-Webhook-Timestamp":  fmt.Sprintf("%d", timestamp),
		"User-Agent":           "KN0W1-Webhook/1.0",
	}

	// json.RawMessage keeps the signed bytes intact through PostJSON
	statusCode, respBody, err := e.httpClient.PostJSON(ctx, client.WebhookURL, headers, json.RawMessage(payload))
	if err != nil {
		logger.ErrorCtx(ctx, errors.New("failed to post webhook HTTP request"),
			zap.Error(err), zap.String("client_id", client.ClientID))

		if ierr := e.store.UpdateWebhookDelivery(ctx, deliveryID, schema.WebhookDeliveryStatusFailed, int(attempt), nil, err.Error()); ierr != nil {
			logger.ErrorCtx(ctx, errors.New("failed to update webhook delivery status"),
				zap.Error(ierr), zap.String("client_id", client.ClientID))
		}

		// Return error to trigger Temporal retry
		return webhook.DeliveryResult{Success: false, Error: err.Error()}, err
	}

	if len(respBody) > 4*1024 {
		respBody = respBody[:4*1024]
	}

	if statusCode < 200 || statusCode >= 300 {
		logger.ErrorCtx(ctx, errors.New("webhook endpoint rejected delivery"),
			zap.Int("status_code", statusCode),
			zap.String("client_id", client.ClientID))

		err := fmt.Errorf("HTTP %d", statusCode)
		if ierr := e.store.UpdateWebhookDelivery(ctx, deliveryID, schema.WebhookDeliveryStatusFailed, int(attempt), &statusCode, err.Error()); ierr != nil {
			logger.ErrorCtx(ctx, errors.New("failed to update webhook delivery status"),
				zap.Error(ierr), zap.String("client_id", client.ClientID))
		}

		// Return error to trigger Temporal retry
		return webhook.DeliveryResult{Success: false, StatusCode: statusCode, Body: string(respBody)}, err
	}

	if err := e.store.UpdateWebhookDelivery(ctx, deliveryID, schema.WebhookDeliveryStatusSuccess, int(attempt), &statusCode, ""); err != nil {
		logger.ErrorCtx(ctx, errors.New("failed to update webhook delivery status"),
			zap.Error(err), zap.String("client_id", client.ClientID))
	}

	return webhook.DeliveryResult{Success: true, StatusCode: statusCode, Body: string(respBody)}, nil
}
