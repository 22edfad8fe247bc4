package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/adapter"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
)

// subscriberBuffer is the per-connection event buffer. A subscriber that
// falls further behind than this starts losing events (at-most-once).
const subscriberBuffer = 64

// Subscription is one live feed consumer attached to the hub
type Subscription struct {
	// C delivers feed events until the subscription is cancelled
	C <-chan *domain.FeedEvent

	cancel func()
	once   sync.Once
}

// Cancel detaches the subscription from the hub and closes C
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// Hub fans feed events out to in-process subscribers. Events arrive either
// from the local process (publish-after-commit) or from the NATS feed stream
// when running behind a bus.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint64]chan *domain.FeedEvent
	nextID      uint64
	closed      bool
}

// NewHub creates a new feed hub
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uint64]chan *domain.FeedEvent),
	}
}

// Subscribe attaches a new subscriber to the hub
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	ch := make(chan *domain.FeedEvent, subscriberBuffer)
	if h.closed {
		close(ch)
		return &Subscription{C: ch, cancel: func() {}}
	}
	h.subscribers[id] = ch

	return &Subscription{
		C: ch,
		cancel: func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subscribers[id]; ok {
				delete(h.subscribers, id)
				close(sub)
			}
		},
	}
}

// Broadcast delivers an event to every attached subscriber. Slow subscribers
// with a full buffer are skipped rather than blocking the hub.
func (h *Hub) Broadcast(event *domain.FeedEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			logger.Warn("dropping feed event for slow subscriber",
				zap.Uint64("subscriber_id", id),
				zap.String("event_id", event.ID))
		}
	}
}

// Close detaches and closes every subscriber; later Subscribe calls return
// already-closed subscriptions
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for id, ch := range h.subscribers {
		delete(h.subscribers, id)
		close(ch)
	}
}

// SubscriberCount returns the number of attached subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// BusConsumer feeds a Hub from the NATS feed stream so every API instance
// sees events published by any of them
type BusConsumer struct {
	nc      adapter.NatsConn
	consume adapter.ConsumeContext
}

// NewBusConsumer connects to NATS, attaches a durable consumer to the feed
// stream and pumps decoded events into the hub
func NewBusConsumer(cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON, hub *Hub, durableName string) (*BusConsumer, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	consumer, err := js.CreateOrUpdateConsumer(context.Background(), cfg.StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: "feed.>",
		AckPolicy:     jetstream.AckExplicitPolicy,
		// The feed is a live view; old events are useless to a late joiner
		DeliverPolicy: jetstream.DeliverNewPolicy,
		AckWait:       30 * time.Second,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create feed consumer: %w", err)
	}

	consumeCtx, err := consumer.Consume(func(msg adapter.Message) {
		var event domain.FeedEvent
		if err := jsonAdapter.Unmarshal(msg.Data(), &event); err != nil {
			logger.Warn("discarding malformed feed event", zap.Error(err))
			// Malformed payloads never become deliverable; drop them
			if err := msg.Term(); err != nil {
				logger.Warn("failed to term message", zap.Error(err))
			}
			return
		}

		hub.Broadcast(&event)

		if err := msg.Ack(); err != nil {
			logger.Warn("failed to ack feed event", zap.Error(err), zap.String("event_id", event.ID))
		}
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to start feed consumer: %w", err)
	}

	return &BusConsumer{nc: nc, consume: consumeCtx}, nil
}

// Close drains the consumer and closes the connection
func (c *BusConsumer) Close() {
	if c.consume != nil {
		c.consume.Drain()
	}
	if c.nc != nil {
		c.nc.Close()
	}
}
