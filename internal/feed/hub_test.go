package feed_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iQube-Protocol/kn0w1-sub001/internal/domain"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/feed"
	"github.com/iQube-Protocol/kn0w1-sub001/internal/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func settlementEvent(id string) *domain.FeedEvent {
	return &domain.FeedEvent{
		ID:   id,
		Type: domain.FeedEventSettlement,
		Data: json.RawMessage(`{"request_id":"r1","status":"settled"}`),
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := feed.NewHub()
	defer hub.Close()

	sub1 := hub.Subscribe()
	sub2 := hub.Subscribe()
	assert.Equal(t, 2, hub.SubscriberCount())

	hub.Broadcast(settlementEvent("ev-1"))

	got1 := <-sub1.C
	got2 := <-sub2.C
	assert.Equal(t, "ev-1", got1.ID)
	assert.Equal(t, "ev-1", got2.ID)
}

func TestHubCancelDetachesSubscriber(t *testing.T) {
	hub := feed.NewHub()
	defer hub.Close()

	sub := hub.Subscribe()
	sub.Cancel()
	// Cancel is safe to call more than once
	sub.Cancel()

	assert.Equal(t, 0, hub.SubscriberCount())

	_, open := <-sub.C
	assert.False(t, open)

	// Broadcasting after cancellation must not panic
	hub.Broadcast(settlementEvent("ev-2"))
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	hub := feed.NewHub()
	defer hub.Close()

	sub := hub.Subscribe()

	// Overfill the buffer; the extra events are dropped, not delivered late
	for i := 0; i < 200; i++ {
		hub.Broadcast(settlementEvent("ev"))
	}

	delivered := 0
	sub.Cancel()
	for range sub.C {
		delivered++
	}
	assert.Less(t, delivered, 200)
	assert.Greater(t, delivered, 0)
}

func TestHubClose(t *testing.T) {
	hub := feed.NewHub()

	sub := hub.Subscribe()
	hub.Close()

	_, open := <-sub.C
	assert.False(t, open)

	// Subscriptions taken after Close come back already closed
	late := hub.Subscribe()
	_, open = <-late.C
	require.False(t, open)
}
