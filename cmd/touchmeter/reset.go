package main

import (
	"fmt"

	"github.com/indirex/touchmeter/internal/state"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget a finished setup",
	Long: `Remove the kiosk state file so the next run starts the wizard from the
welcome screen. Device and household files are left untouched.`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().StringVarP(&runFlags.dataDir, "data-dir", "d", "", "Device data directory (overrides config)")
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := state.Clear(cfg.DataDir); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	fmt.Printf("Cleared %s\n", state.Path(cfg.DataDir))
	return nil
}
