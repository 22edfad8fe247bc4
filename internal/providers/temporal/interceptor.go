package temporal

import (
	"context"

	"github.com/getsentry/sentry-go"
	"go.temporal.io/sdk/interceptor"
)

// NewSentryActivityInterceptor creates a new Sentry activity interceptor
func NewSentryActivityInterceptor() interceptor.WorkerInterceptor {
	return &SentryActivityInterceptor{
		WorkerInterceptorBase: interceptor.WorkerInterceptorBase{},
	}
}

// SentryActivityInterceptor injects a Sentry hub into activity contexts so
// context-aware logging (logger.ErrorCtx etc.) reports per activity run
type SentryActivityInterceptor struct {
	interceptor.WorkerInterceptorBase
}

// InterceptActivity wraps activity execution to inject the Sentry hub
func (s *SentryActivityInterceptor) InterceptActivity(ctx context.Context, next interceptor.ActivityInboundInterceptor) interceptor.ActivityInboundInterceptor {
	return &sentryActivityInboundInterceptor{
		ActivityInboundInterceptorBase: interceptor.ActivityInboundInterceptorBase{
			Next: next,
		},
	}
}

type sentryActivityInboundInterceptor struct {
	interceptor.ActivityInboundInterceptorBase
}

// ExecuteActivity attaches a cloned Sentry hub to the context before execution
func (s *sentryActivityInboundInterceptor) ExecuteActivity(ctx context.Context, in *interceptor.ExecuteActivityInput) (interface{}, error) {
	hub := sentry.CurrentHub().Clone()
	ctx = sentry.SetHubOnContext(ctx, hub)
	return s.Next.ExecuteActivity(ctx, in)
}
