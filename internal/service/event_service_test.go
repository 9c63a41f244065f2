package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"fisiqia-be/internal/pkg/logger"
	"fisiqia-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureForwarder struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *captureForwarder) Publish(_ context.Context, e events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *captureForwarder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func TestPublisherAndConsumerForwardEvents(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fwd := &captureForwarder{}
	consumer := NewConsumerService(pubSub, EventsTopic, fwd, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService(EventsTopic, pubSub)
	require.NoError(t, publisher.Publish(ctx, events.New(events.TypeExchangeRecorded, map[string]interface{}{"secao": "materials"})))

	require.Eventually(t, func() bool { return fwd.count() == 1 }, time.Second, 10*time.Millisecond)

	fwd.mu.Lock()
	got := fwd.events[0]
	fwd.mu.Unlock()
	assert.Equal(t, events.TypeExchangeRecorded, got.EventType())
	assert.Equal(t, "materials", got.Payload()["secao"])
	assert.False(t, got.Timestamp().IsZero())
}

func TestConsumerAcksMalformedMessages(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fwd := &captureForwarder{}
	require.NoError(t, NewConsumerService(pubSub, EventsTopic, fwd, logger.NewNopLogger()).Consume(ctx))

	// Publish blocks until the subscriber acks, so returning at all means it was acked.
	require.NoError(t, pubSub.Publish(EventsTopic, message.NewMessage(watermill.NewUUID(), []byte("not json"))))
	require.NoError(t, NewPublisherService(EventsTopic, pubSub).Publish(ctx, events.New(events.TypeReportGenerated, nil)))

	require.Eventually(t, func() bool { return fwd.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestConsumerWithoutForwarder(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, NewConsumerService(pubSub, EventsTopic, nil, logger.NewNopLogger()).Consume(ctx))
	assert.NoError(t, NewPublisherService(EventsTopic, pubSub).Publish(ctx, events.New(events.TypeReportRejected, nil)))
}
