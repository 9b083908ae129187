package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// Retention is how long events stay in the stream.
const Retention = 30 * 24 * time.Hour

// StreamName returns the stream that captures every subject under prefix.
func StreamName(prefix string) string {
	return prefix + "_events"
}

// SubjectForDevice returns the wildcard subject for all events of a device.
// Example: "touchmeter.00A1B2.>"
func SubjectForDevice(prefix, device string) string {
	return fmt.Sprintf("%s.%s.>", prefix, device)
}

// SubjectForEvent returns the subject for one event type of a device.
// Example: "touchmeter.00A1B2.members"
func SubjectForEvent(prefix, device, eventType string) string {
	return fmt.Sprintf("%s.%s.%s", prefix, device, eventType)
}

// SetupStream creates or updates the event stream for prefix.
func SetupStream(ctx context.Context, js jetstream.JetStream, prefix string) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName(prefix),
		Subjects: []string{prefix + ".>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   Retention,
	})
}

// CreateConsumer creates a durable consumer that reads the stream from the start.
func CreateConsumer(ctx context.Context, stream jetstream.Stream, name string) (jetstream.Consumer, error) {
	return stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       name,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
}
