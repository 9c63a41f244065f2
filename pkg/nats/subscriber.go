package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"fisiqia-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler is a function that processes an event.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber listens on the EVENTS stream. Used by downstream tools (cmd/fisiqia eventos).
type Subscriber struct {
	nc       *nats.Conn
	js       jetstream.JetStream
	consumed jetstream.ConsumeContext
}

func NewSubscriber(url string) (*Subscriber, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &Subscriber{nc: nc, js: js}, nil
}

// Decode turns a message body written by Publisher back into an event.
// Bodies that only carry a payload keep the subject as type.
func Decode(subject string, body []byte) (events.BaseEvent, error) {
	var event events.BaseEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return events.BaseEvent{}, err
	}
	if event.Type == "" {
		event.Type = subject
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	return event, nil
}

// Subscribe registers a handler with an ephemeral consumer when durableName is empty,
// a durable one otherwise.
func (s *Subscriber) Subscribe(ctx context.Context, subject, durableName string, handler EventHandler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		event, err := Decode(msg.Subject(), msg.Data())
		if err != nil {
			log.Printf("[ERROR] Unmarshalling event data: %v", err)
			_ = msg.Term()
			return
		}

		if err := handler(ctx, event); err != nil {
			log.Printf("[ERROR] Handler failed for event %s: %v", msg.Subject(), err)
			_ = msg.Nak()
			return
		}

		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	s.consumed = cc

	return nil
}

func (s *Subscriber) Close() {
	if s.consumed != nil {
		s.consumed.Stop()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}
