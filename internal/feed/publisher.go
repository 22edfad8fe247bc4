package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/adapter"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
)

// Config holds the configuration for the NATS JetStream feed bus
type Config struct {
	URL            string
	StreamName     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
}

// Publisher defines the interface for publishing feed events to the bus
//
//go:generate mockgen -source=publisher.go -destination=../mocks/feed_publisher.go -package=mocks -mock_names=Publisher=MockFeedPublisher
type Publisher interface {
	// PublishEvent publishes a feed event to the message broker
	PublishEvent(ctx context.Context, event *domain.FeedEvent) error
	// Close closes the connection
	Close()
}

type publisher struct {
	nc         adapter.NatsConn
	js         adapter.JetStream
	streamName string
	json       adapter.JSON
}

// NewPublisher creates a new NATS JetStream feed publisher and ensures the
// feed stream exists
func NewPublisher(cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (Publisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	if err := js.CreateOrUpdateStream(context.Background(), jetstream.StreamConfig{
		Name:      cfg.StreamName,
		Subjects:  []string{"feed.>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour,
	}); err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure feed stream: %w", err)
	}

	return &publisher{
		nc:         nc,
		js:         js,
		streamName: cfg.StreamName,
		json:       jsonAdapter,
	}, nil
}

// PublishEvent publishes a feed event to NATS JetStream
func (p *publisher) PublishEvent(ctx context.Context, event *domain.FeedEvent) error {
	logger.Debug("publishing feed event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))

	data, err := p.json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Subject format: feed.{event_type}, e.g. feed.settlement
	subject := fmt.Sprintf("feed.%s", event.Type)

	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}

	p.nc.Close()
}
