package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/indirex/touchmeter/internal/backend"
	"github.com/indirex/touchmeter/internal/broker"
	"github.com/indirex/touchmeter/internal/config"
	"github.com/indirex/touchmeter/internal/device"
	"github.com/indirex/touchmeter/internal/events"
	"github.com/indirex/touchmeter/internal/logger"
	"github.com/indirex/touchmeter/internal/service"
	"github.com/indirex/touchmeter/internal/state"
	"github.com/indirex/touchmeter/internal/tui"
	"github.com/spf13/cobra"
)

var runFlags struct {
	dataDir   string
	mode      string
	brokerURL string
	apiURL    string
	fromStart bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the setup wizard",
	Long: `Start the full-screen setup wizard.

Configuration is read from the global and project config files and
TOUCHMETER_ environment variables; flags override both. Without a broker
URL an embedded NATS server is started in the data directory. It has no
network listener, so member toggles and the setup event stay in the
JetStream store on the meter until broker.url points at a NATS server that
other services subscribe to.

A device that already finished setup opens on the members screen unless
--from-start is given.`,
	RunE: runWizard,
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.dataDir, "data-dir", "d", "", "Device data directory (overrides config)")
	runCmd.Flags().StringVar(&runFlags.mode, "processing", "", "Processing mode: timer or verify (overrides config)")
	runCmd.Flags().StringVar(&runFlags.brokerURL, "broker-url", "", "NATS server URL, empty for embedded (overrides config)")
	runCmd.Flags().StringVar(&runFlags.apiURL, "api-url", "", "Registration backend base URL (overrides config)")
	runCmd.Flags().BoolVar(&runFlags.fromStart, "from-start", false, "Open on the welcome screen even after a finished setup")
}

// loadConfig loads the config and applies the run flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = runFlags.dataDir
	}
	if cmd.Flags().Changed("processing") {
		cfg.Processing.Mode = runFlags.mode
	}
	if cmd.Flags().Changed("broker-url") {
		cfg.Broker.URL = runFlags.brokerURL
	}
	if cmd.Flags().Changed("api-url") {
		cfg.API.BaseURL = runFlags.apiURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runWizard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, closeService, err := openService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open broker: %w", err)
	}
	defer closeService()

	opts := tui.OptionsFromConfig(cfg)
	opts.StartComplete = !runFlags.fromStart && state.Load(cfg.DataDir).Setup.Complete

	w, err := device.NewWatcher(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to create marker watcher: %w", err)
	}
	defer func() { _ = w.Stop() }()
	if err := w.Start(); err != nil {
		// Periodic probes still cover marker changes.
		logger.Warn("Marker watcher unavailable: %v", err)
	} else {
		opts.Markers = w.Events()
	}

	app, err := tui.NewApp(ctx, svc, opts)
	if err != nil {
		return err
	}
	logger.Info("Starting wizard (data dir %s, processing %s)", cfg.DataDir, cfg.Processing.Mode)
	return tui.Run(ctx, app)
}

// openService wires the service to the configured broker. The returned
// function closes the broker.
func openService(ctx context.Context, cfg *config.Config) (*service.Service, func(), error) {
	b, err := broker.Open(ctx, broker.Options{
		URL:           cfg.Broker.URL,
		StoreDir:      cfg.Broker.StoreDir,
		SubjectPrefix: cfg.Broker.SubjectPrefix,
	})
	if err != nil {
		return nil, nil, err
	}
	svc := service.New(
		device.NewStore(cfg.DataDir),
		backend.New(cfg.API.BaseURL, cfg.API.Timeout),
		events.NewStore(b.JetStream(), b.Prefix()),
	)
	closeFn := func() {
		if err := b.Close(); err != nil {
			logger.Warn("Closing broker: %v", err)
		}
	}
	return svc, closeFn, nil
}
