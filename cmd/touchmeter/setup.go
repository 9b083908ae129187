package main

import (
	"fmt"
	"os"

	"github.com/indirex/touchmeter/internal/config"
	"github.com/spf13/cobra"
)

var setupFlags struct {
	project bool
	force   bool
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create touchmeter configuration file",
	Long: `Create a touchmeter configuration file with the built-in defaults.

By default, creates a global config at ~/.config/touchmeter/touchmeter.yml.
Use --project to create a project-local config in the current directory.
The data directory named in the new config is created as well, so device
services can start dropping marker files before the first run.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVarP(&setupFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	setupCmd.Flags().BoolVarP(&setupFlags.force, "force", "f", false, "Overwrite existing config file")
}

func runSetup(cmd *cobra.Command, args []string) error {
	targetPath := config.GlobalPath()
	if setupFlags.project {
		targetPath = config.ProjectPath()
	}

	if !setupFlags.force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	cfg := config.Default()

	var err error
	if setupFlags.project {
		err = config.WriteProject(cfg)
	} else {
		err = config.WriteGlobal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	fmt.Printf("Config written to: %s\n", targetPath)
	fmt.Printf("Data directory:    %s\n\n", cfg.DataDir)
	fmt.Println("Set api.base_url, then run 'touchmeter run' to start the wizard.")
	fmt.Println("Member events stay on an embedded NATS server until broker.url is set.")
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
