package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points both config locations at a fresh temp directory.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	for _, key := range envKeys {
		t.Setenv("TOUCHMETER_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), "")
		_ = os.Unsetenv("TOUCHMETER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}
	return tmpDir
}

func TestGlobalPath(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		assert.Equal(t, "/custom/config/touchmeter/touchmeter.yml", GlobalPath())
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		got := GlobalPath()
		assert.True(t, filepath.IsAbs(got), "GlobalPath() should be absolute, got %v", got)
		assert.Equal(t, "touchmeter.yml", filepath.Base(got))
	})
}

func TestProjectPath(t *testing.T) {
	assert.Equal(t, "touchmeter.yml", ProjectPath())
}

func TestExists(t *testing.T) {
	isolate(t)

	t.Run("no config exists", func(t *testing.T) {
		assert.False(t, Exists())
	})

	t.Run("global config exists", func(t *testing.T) {
		require.NoError(t, WriteGlobal(Default()))
		defer func() { _ = os.Remove(GlobalPath()) }()
		assert.True(t, Exists())
	})

	t.Run("project config exists", func(t *testing.T) {
		require.NoError(t, WriteProject(Default()))
		defer func() { _ = os.Remove(ProjectPath()) }()
		assert.True(t, Exists())
	})
}

func TestWriteGlobal(t *testing.T) {
	isolate(t)

	cfg := Default()
	cfg.DataDir = "/var/lib/touchmeter"
	cfg.LogLevel = "debug"
	cfg.API.BaseURL = "https://meter.example.com/api"
	cfg.Processing.Mode = ModeVerify

	require.NoError(t, WriteGlobal(cfg))

	data, err := os.ReadFile(GlobalPath())
	require.NoError(t, err)

	content := string(data)
	for _, field := range []string{
		"data_dir: /var/lib/touchmeter",
		"log_level: debug",
		"probe_interval: 5s",
		"mode: verify",
		"base_url: https://meter.example.com/api",
		"subject_prefix: touchmeter",
	} {
		assert.Contains(t, content, field)
	}
}

func TestLoad_NoConfig(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.ProbeInterval)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
	assert.Equal(t, ModeTimer, cfg.Processing.Mode)
	assert.Equal(t, 10*time.Second, cfg.Processing.Duration)
	assert.Equal(t, time.Second, cfg.Processing.MessageInterval)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, filepath.Join("./data", "broker"), cfg.Broker.StoreDir)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	isolate(t)

	global := Default()
	global.DataDir = "/global"
	global.LogLevel = "warn"
	require.NoError(t, WriteGlobal(global))

	require.NoError(t, os.WriteFile(ProjectPath(), []byte("log_level: debug\nprocessing:\n  duration: 3s\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/global", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.Processing.Duration)
	assert.Equal(t, filepath.Join("/global", "broker"), cfg.Broker.StoreDir)
}

func TestLoad_EnvOverridesFiles(t *testing.T) {
	isolate(t)

	require.NoError(t, WriteProject(Default()))
	t.Setenv("TOUCHMETER_DATA_DIR", "/env")
	t.Setenv("TOUCHMETER_PROCESSING_MODE", "verify")
	t.Setenv("TOUCHMETER_API_TIMEOUT", "2s")
	t.Setenv("TOUCHMETER_BROKER_URL", "nats://broker:4222")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/env", cfg.DataDir)
	assert.Equal(t, ModeVerify, cfg.Processing.Mode)
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	assert.Equal(t, "nats://broker:4222", cfg.Broker.URL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"verify mode", func(c *Config) { c.Processing.Mode = ModeVerify }, false},
		{"unknown mode", func(c *Config) { c.Processing.Mode = "manual" }, true},
		{"zero duration", func(c *Config) { c.Processing.Duration = 0 }, true},
		{"negative probe interval", func(c *Config) { c.ProbeInterval = -time.Second }, true},
		{"zero api timeout", func(c *Config) { c.API.Timeout = 0 }, true},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
