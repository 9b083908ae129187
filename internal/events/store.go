// Package events publishes kiosk events to the JetStream event log.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/indirex/touchmeter/internal/broker"
	"github.com/indirex/touchmeter/internal/logger"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/xid"
)

// Event types.
const (
	TypeMembers = "members"
	TypeSetup   = "setup"
)

// Event actions.
const (
	ActionToggle   = "toggle"
	ActionComplete = "complete"
)

// ErrNoDevice is returned when an event has no device id.
var ErrNoDevice = errors.New("event has no device")

// Event is one entry in the event log.
type Event struct {
	ID        string          `json:"id"`        // xid, assigned on publish
	Timestamp time.Time       `json:"timestamp"` // Set on publish when zero
	Device    string          `json:"device"`    // Meter id
	Type      string          `json:"type"`      // members, setup
	Action    string          `json:"action"`    // toggle, complete
	Data      json.RawMessage `json:"data,omitempty"`
}

// Store publishes events under a subject prefix.
type Store struct {
	js     jetstream.JetStream
	prefix string
}

// NewStore creates a store publishing to prefix.<device>.<type>.
func NewStore(js jetstream.JetStream, prefix string) *Store {
	return &Store{js: js, prefix: prefix}
}

// Publish appends e to the event log and returns the stored event.
func (s *Store) Publish(ctx context.Context, e Event) (Event, error) {
	if e.Device == "" {
		return e, ErrNoDevice
	}
	if e.ID == "" {
		e.ID = xid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return e, fmt.Errorf("marshaling event: %w", err)
	}

	subject := broker.SubjectForEvent(s.prefix, e.Device, e.Type)
	logger.Debug("Publishing event: device=%s type=%s action=%s", e.Device, e.Type, e.Action)

	ack, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		logger.Error("Failed to publish event to subject %s: %v", subject, err)
		return e, fmt.Errorf("publishing event: %w", err)
	}

	logger.Debug("Event published: seq=%d", ack.Sequence)
	return e, nil
}

// PublishJSON marshals payload into Data and publishes.
func (s *Store) PublishJSON(ctx context.Context, device, eventType, action string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshaling %s payload: %w", eventType, err)
	}
	return s.Publish(ctx, Event{Device: device, Type: eventType, Action: action, Data: raw})
}

// Load reads every event stored for device, oldest first.
func (s *Store) Load(ctx context.Context, stream jetstream.Stream, device string) ([]Event, error) {
	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject:     broker.SubjectForDevice(s.prefix, device),
		DeliverPolicy:     jetstream.DeliverAllPolicy,
		AckPolicy:         jetstream.AckExplicitPolicy,
		InactiveThreshold: time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("creating consumer: %w", err)
	}

	const batchSize = 500
	var out []Event
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		n := 0
		for msg := range msgs.Messages() {
			n++
			var e Event
			if err := json.Unmarshal(msg.Data(), &e); err != nil {
				logger.Warn("Skipping malformed event: %v", err)
			} else {
				out = append(out, e)
			}
			_ = msg.Ack()
		}
		if n < batchSize {
			break
		}
	}
	return out, nil
}
