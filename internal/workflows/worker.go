package workflows

import (
	"go.temporal.io/sdk/workflow"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/webhook"
)

// TaskQueue is the Temporal task queue for settlement notification workflows
const TaskQueue = "kn0w1-settlement-notify"

// WorkerCore defines the interface for settlement notification workflows
//
//go:generate mockgen -source=worker.go -destination=../mocks/worker_core.go -package=mocks -mock_names=WorkerCore=MockCoreWorker
type WorkerCore interface {
	// NotifySettlementClients fans a settlement event out to all matching
	// webhook clients
	NotifySettlementClients(ctx workflow.Context, event webhook.WebhookEvent) error

	// DeliverWebhook delivers one settlement event to one client with stored
	// delivery audit and retry
	DeliverWebhook(ctx workflow.Context, clientID string, event webhook.WebhookEvent) error
}

// workerCore is the concrete implementation of WorkerCore
type workerCore struct {
	executor Executor
}

// NewWorkerCore creates a new worker core instance
func NewWorkerCore(executor Executor) WorkerCore {
	return &workerCore{
		executor: executor,
	}
}
