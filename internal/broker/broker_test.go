package broker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenEmbedded(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := Open(ctx, Options{StoreDir: t.TempDir()})
	require.NoError(t, err)
	defer func() { assert.NoError(t, b.Close()) }()

	assert.True(t, b.Embedded())
	assert.Equal(t, "touchmeter", b.Prefix())

	info, err := b.Stream().Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "touchmeter_events", info.Config.Name)
	assert.Equal(t, []string{"touchmeter.>"}, info.Config.Subjects)
	assert.Equal(t, Retention, info.Config.MaxAge)

	ack, err := b.JetStream().Publish(ctx, SubjectForEvent("touchmeter", "dev1", "setup"), []byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ack.Sequence)
}

func TestOpenCustomPrefix(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := Open(ctx, Options{StoreDir: t.TempDir(), SubjectPrefix: "meter"})
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	assert.Equal(t, "meter_events", b.Stream().CachedInfo().Config.Name)
}

func TestOpenRemoteUnreachable(t *testing.T) {
	_, err := Open(context.Background(), Options{URL: "nats://127.0.0.1:1"})
	assert.Error(t, err)
}

func TestSubjects(t *testing.T) {
	assert.Equal(t, "touchmeter.dev1.>", SubjectForDevice("touchmeter", "dev1"))
	assert.Equal(t, "touchmeter.dev1.members", SubjectForEvent("touchmeter", "dev1", "members"))
}

func TestShutdownNil(t *testing.T) {
	assert.NoError(t, Shutdown(nil, nil))
}
