package main

import (
	"context"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/indirex/touchmeter/internal/logger"
	"github.com/indirex/touchmeter/internal/tui/theme"
	"github.com/spf13/cobra"
)

const logoText = "▀█▀ █▀█ █ █ █▀▀ █ █   █▀▄▀█ █▀▀ ▀█▀ █▀▀ █▀█"

// Version set via ldflags during build
var version = "dev"

func main() {
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "touchmeter",
	Short: "Guided setup wizard for the Indi touch meter kiosk",
}

// renderLogo shades the logo from the primary to the secondary accent.
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	runes := []rune(logoText)

	var b strings.Builder
	for i, r := range runes {
		c := theme.InterpolateColor(t.Primary, t.Secondary, float64(i)/float64(len(runes)))
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render(string(r)))
	}
	return b.String()
}

func init() {
	rootCmd.Long = renderLogo() + `

touchmeter walks an installer through setting up an audience measurement
meter: network, device identity, household assignment with OTP
verification, hardware checks and household members. Device state lives
in a local data directory and setup events are published to NATS
JetStream.`

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(resetCmd)
}
