package device

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsMarkerCreation(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, MarkerTVOn), nil, 0644))

	deadline := time.After(3 * time.Second)
	for {
		select {
		case name := <-w.Events():
			if name == MarkerTVOn {
				return
			}
		case <-deadline:
			t.Fatal("no event for created marker")
		}
	}
}

func TestWatcher_StopClosesEvents(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())

	_, ok := <-w.Events()
	require.False(t, ok)
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	_, ok := <-w.Events()
	require.False(t, ok)
}

func TestWatcher_StopAfterFailedStart(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	require.Error(t, w.Start())

	require.NoError(t, w.Stop())
	_, ok := <-w.Events()
	require.False(t, ok)
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Start())

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
