// Package state persists kiosk progress across restarts.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/indirex/touchmeter/internal/logger"
)

// FileName is the state file inside the data directory.
const FileName = "kiosk-state.json"

// KioskState holds progress that survives a restart.
type KioskState struct {
	Setup SetupState `json:"setup"`
}

// SetupState records whether the installation wizard finished.
type SetupState struct {
	Complete    bool      `json:"complete"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
}

// Default returns the state of a fresh device.
func Default() *KioskState {
	return &KioskState{}
}

// MarkComplete records a finished setup at t.
func (s *KioskState) MarkComplete(t time.Time) {
	s.Setup.Complete = true
	s.Setup.CompletedAt = t.UTC()
}

// Path returns the state file location for dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// Load reads the kiosk state from dataDir.
// Returns default state if the file doesn't exist or on error.
func Load(dataDir string) *KioskState {
	path := Path(dataDir)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default()
	}
	if err != nil {
		logger.Warn("Failed to read kiosk state file: %v", err)
		return Default()
	}

	var st KioskState
	if err := json.Unmarshal(data, &st); err != nil {
		logger.Warn("Failed to parse kiosk state JSON: %v", err)
		return Default()
	}
	return &st
}

// Save writes the kiosk state to dataDir, creating it if needed.
func Save(dataDir string, st *KioskState) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling kiosk state: %w", err)
	}

	path := Path(dataDir)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing kiosk state file: %w", err)
	}

	logger.Debug("Kiosk state saved to %s", path)
	return nil
}

// Clear removes the state file. A missing file is not an error.
func Clear(dataDir string) error {
	if err := os.Remove(Path(dataDir)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing kiosk state file: %w", err)
	}
	return nil
}
