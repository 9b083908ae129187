// Package config provides centralized configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Processing modes.
const (
	ModeTimer  = "timer"
	ModeVerify = "verify"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all configuration values for touchmeter.
type Config struct {
	DataDir       string        `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel      string        `mapstructure:"log_level" yaml:"log_level"`
	LogFile       string        `mapstructure:"log_file" yaml:"log_file"`
	ProbeInterval time.Duration `mapstructure:"probe_interval" yaml:"probe_interval"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	Processing Processing `mapstructure:"processing" yaml:"processing"`
	API        API        `mapstructure:"api" yaml:"api"`
	Broker     Broker     `mapstructure:"broker" yaml:"broker"`
}

// Processing controls the step between the stepper and the outro.
type Processing struct {
	Mode            string        `mapstructure:"mode" yaml:"mode"`
	Duration        time.Duration `mapstructure:"duration" yaml:"duration"`
	MessageInterval time.Duration `mapstructure:"message_interval" yaml:"message_interval"`
}

// API is the household registration backend.
type API struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Broker selects the event broker. An empty URL starts an embedded server
// without a network listener; events then never leave the meter.
type Broker struct {
	URL           string `mapstructure:"url" yaml:"url"`
	StoreDir      string `mapstructure:"store_dir" yaml:"store_dir"`
	SubjectPrefix string `mapstructure:"subject_prefix" yaml:"subject_prefix"`
}

// envKeys lists every key bound to a TOUCHMETER_ variable.
var envKeys = []string{
	"data_dir",
	"log_level",
	"log_file",
	"probe_interval",
	"idle_timeout",
	"processing.mode",
	"processing.duration",
	"processing.message_interval",
	"api.base_url",
	"api.timeout",
	"broker.url",
	"broker.store_dir",
	"broker.subject_prefix",
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:       "./data",
		LogLevel:      "info",
		ProbeInterval: 5 * time.Second,
		IdleTimeout:   60 * time.Second,
		Processing: Processing{
			Mode:            ModeTimer,
			Duration:        10 * time.Second,
			MessageInterval: time.Second,
		},
		API: API{
			Timeout: 15 * time.Second,
		},
		Broker: Broker{
			SubjectPrefix: "touchmeter",
		},
	}
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("touchmeter")

	d := Default()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("probe_interval", d.ProbeInterval)
	v.SetDefault("idle_timeout", d.IdleTimeout)
	v.SetDefault("processing.mode", d.Processing.Mode)
	v.SetDefault("processing.duration", d.Processing.Duration)
	v.SetDefault("processing.message_interval", d.Processing.MessageInterval)
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("broker.url", "")
	v.SetDefault("broker.store_dir", "")
	v.SetDefault("broker.subject_prefix", d.Broker.SubjectPrefix)

	// Setup ENV binding with TOUCHMETER_ prefix
	v.SetEnvPrefix("TOUCHMETER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Nested keys are not picked up by AutomaticEnv during Unmarshal.
	for _, key := range envKeys {
		env := "TOUCHMETER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	// Load global config first (if exists)
	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	// Merge project config on top (if exists)
	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Broker.StoreDir == "" {
		cfg.Broker.StoreDir = filepath.Join(cfg.DataDir, "broker")
	}

	return &cfg, nil
}

// Validate checks values Load cannot type-check.
func (c *Config) Validate() error {
	switch c.Processing.Mode {
	case ModeTimer, ModeVerify:
	default:
		return fmt.Errorf("%w: processing.mode %q (want %q or %q)", ErrInvalid, c.Processing.Mode, ModeTimer, ModeVerify)
	}

	durations := []struct {
		key string
		val time.Duration
	}{
		{"probe_interval", c.ProbeInterval},
		{"idle_timeout", c.IdleTimeout},
		{"processing.duration", c.Processing.Duration},
		{"processing.message_interval", c.Processing.MessageInterval},
		{"api.timeout", c.API.Timeout},
	}
	for _, d := range durations {
		if d.val <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalid, d.key, d.val)
		}
	}

	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is empty", ErrInvalid)
	}
	return nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/touchmeter/touchmeter.yml or $XDG_CONFIG_HOME/touchmeter/touchmeter.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "touchmeter", "touchmeter.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "touchmeter", "touchmeter.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "touchmeter.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
