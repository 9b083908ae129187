package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelWarn)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "[WARN] warn message")
	assert.Contains(t, out, "[ERROR] error message")
}

func TestLogger_EnvVars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "touchmeter.log")
	t.Setenv("TOUCHMETER_LOG_LEVEL", "debug")
	t.Setenv("TOUCHMETER_LOG_FILE", path)

	l := New()
	assert.Equal(t, LevelDebug, l.level)

	l.Debug("probe %s", "network")
	require.NoError(t, l.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[DEBUG] probe network")
}

func TestLogger_Configure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configured.log")

	l := New()
	require.NoError(t, l.Configure("error", path))
	l.Warn("dropped")
	l.Error("kept")
	require.NoError(t, l.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "dropped")
	assert.Contains(t, string(content), "kept")

	assert.Error(t, l.Configure("loud", ""))
}

func TestLogger_CloseWithoutFile(t *testing.T) {
	l := New()
	assert.NoError(t, l.Close())
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	Default.SetOutput(&buf)
	Default.SetLevel(LevelDebug)
	t.Cleanup(func() { Default.SetLevel(LevelInfo) })

	Debug("debug %s", "test")
	Info("info %s", "test")
	Warn("warn %s", "test")
	Error("error %s", "test")

	out := buf.String()
	for _, want := range []string{"debug test", "info test", "warn test", "error test"} {
		assert.Contains(t, out, want)
	}
}

func TestLogger_RotatesAtMaxSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "touchmeter.log")

	l := New()
	require.NoError(t, l.Configure("info", path))
	// Each line below is 68 bytes with the timestamp and level prefix, so
	// the second one crosses the limit.
	l.SetMaxSize(100)

	l.Info("first line  %s", strings.Repeat("a", 28))
	l.Info("second line %s", strings.Repeat("b", 28))
	l.Info("third line  %s", strings.Repeat("c", 28))
	require.NoError(t, l.Close())

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	backup, err := os.ReadFile(path + ".1")
	require.NoError(t, err)

	assert.Contains(t, string(backup), "first line")
	assert.Contains(t, string(backup), "second line")
	assert.NotContains(t, string(backup), "third line")

	assert.Contains(t, string(current), "third line")
	assert.NotContains(t, string(current), "second line")
}
