package main

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/indirex/touchmeter/internal/device"
	"github.com/indirex/touchmeter/internal/state"
	"github.com/indirex/touchmeter/internal/tui/theme"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Report device identity, markers and setup state",
	Long: `Print what the wizard would see: the device and household ids,
every hardware marker and whether setup already finished. The broker is
opened once to check it is reachable.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().StringVarP(&runFlags.dataDir, "data-dir", "d", "", "Device data directory (overrides config)")
	doctorCmd.Flags().StringVar(&runFlags.brokerURL, "broker-url", "", "NATS server URL, empty for embedded (overrides config)")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	t := theme.NewCatppuccinMocha()
	ok := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success))
	bad := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error))
	mark := func(good bool, text string) string {
		if good {
			return ok.Render("✓ " + text)
		}
		return bad.Render("✗ " + text)
	}

	store := device.NewStore(cfg.DataDir)
	fmt.Printf("Data directory: %s\n\n", cfg.DataDir)

	if id, err := store.DeviceID(); err != nil {
		fmt.Println(mark(false, "Device ID: "+err.Error()))
	} else {
		fmt.Println(mark(true, "Device ID: "+id))
	}
	if id, err := store.HouseholdID(); err != nil {
		fmt.Println(mark(false, "Household ID: "+err.Error()))
	} else {
		fmt.Println(mark(true, "Household ID: "+id))
	}

	fmt.Println()
	for _, name := range device.Markers {
		present, err := store.ProbeMarker(name)
		if err != nil {
			fmt.Println(mark(false, fmt.Sprintf("%s: %v", name, err)))
			continue
		}
		fmt.Println(mark(present, name))
	}

	fmt.Println()
	st := state.Load(cfg.DataDir)
	if st.Setup.Complete {
		fmt.Println(mark(true, "Setup completed "+st.Setup.CompletedAt.Format("2006-01-02 15:04")))
	} else {
		fmt.Println(mark(false, "Setup not completed"))
	}

	_, closeService, err := openService(cmd.Context(), cfg)
	if err != nil {
		fmt.Println(mark(false, "Broker: "+err.Error()))
		return nil
	}
	closeService()
	where := "embedded"
	if cfg.Broker.URL != "" {
		where = cfg.Broker.URL
	}
	fmt.Println(mark(true, "Broker: "+where))
	return nil
}
