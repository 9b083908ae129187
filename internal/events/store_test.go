package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/indirex/touchmeter/internal/broker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBroker(t *testing.T) *broker.Broker {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	b, err := broker.Open(ctx, broker.Options{StoreDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestPublishAndLoad(t *testing.T) {
	b := openBroker(t)
	s := NewStore(b.JetStream(), b.Prefix())
	ctx := context.Background()

	roster := []map[string]any{{"id": "M1", "active": true}}
	e, err := s.PublishJSON(ctx, "dev1", TypeMembers, ActionToggle, roster)
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())

	_, err = s.Publish(ctx, Event{Device: "dev1", Type: TypeSetup, Action: ActionComplete})
	require.NoError(t, err)
	_, err = s.Publish(ctx, Event{Device: "dev2", Type: TypeSetup, Action: ActionComplete})
	require.NoError(t, err)

	got, err := s.Load(ctx, b.Stream(), "dev1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, e.ID, got[0].ID)
	assert.Equal(t, TypeMembers, got[0].Type)
	assert.Equal(t, ActionComplete, got[1].Action)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(got[0].Data, &decoded))
	assert.Equal(t, "M1", decoded[0]["id"])
}

func TestPublishRequiresDevice(t *testing.T) {
	b := openBroker(t)
	s := NewStore(b.JetStream(), b.Prefix())

	_, err := s.Publish(context.Background(), Event{Type: TypeSetup})
	assert.ErrorIs(t, err, ErrNoDevice)
}

func TestLoadEmpty(t *testing.T) {
	b := openBroker(t)
	s := NewStore(b.JetStream(), b.Prefix())

	got, err := s.Load(context.Background(), b.Stream(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}
