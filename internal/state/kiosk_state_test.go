package state

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNonExistent(t *testing.T) {
	st := Load(t.TempDir())
	require.NotNil(t, st)
	assert.False(t, st.Setup.Complete)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	st := Default()
	st.MarkComplete(at)
	require.NoError(t, Save(dir, st))

	_, err := os.Stat(Path(dir))
	require.NoError(t, err)

	loaded := Load(dir)
	assert.True(t, loaded.Setup.Complete)
	assert.True(t, at.Equal(loaded.Setup.CompletedAt))
}

func TestSaveCreatesDataDir(t *testing.T) {
	dir := t.TempDir() + "/nested/data"
	require.NoError(t, Save(dir, Default()))
	assert.FileExists(t, Path(dir))
}

func TestLoadCorrupted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir), []byte("{not json"), 0644))

	st := Load(dir)
	require.NotNil(t, st)
	assert.False(t, st.Setup.Complete)
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	st := Default()
	st.MarkComplete(time.Now())
	require.NoError(t, Save(dir, st))

	require.NoError(t, Clear(dir))
	assert.NoFileExists(t, Path(dir))
	assert.False(t, Load(dir).Setup.Complete)

	// Clearing twice is fine.
	assert.NoError(t, Clear(dir))
}
