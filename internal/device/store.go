// Package device reads and writes the meter's local data directory: identity
// files, the household roster and the marker files other services drop to
// report hardware status.
package device

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/indirex/touchmeter/internal/logger"
)

// Files inside the data directory.
const (
	DeviceIDFile    = "device_id.txt"
	HouseholdIDFile = "hhid.txt"
	MembersFile     = "members.json"
)

// Marker names probed by the wizard.
const (
	MarkerNetwork          = "network"
	MarkerTVOn             = "tv_on"
	MarkerHDMIInput        = "hdmi_input"
	MarkerLineInInput      = "line_in_input"
	MarkerObjectDetection  = "object_detection"
	MarkerAudioFingerprint = "audio_fingerprint"
)

// Markers lists every marker in display order.
var Markers = []string{
	MarkerNetwork,
	MarkerTVOn,
	MarkerHDMIInput,
	MarkerLineInInput,
	MarkerObjectDetection,
	MarkerAudioFingerprint,
}

var (
	// ErrLookup is returned when an identity file is missing or empty.
	ErrLookup = errors.New("lookup failed")
	// ErrUnknownMember is returned when toggling an id not in the roster.
	ErrUnknownMember = errors.New("member not found")
	// ErrMarkerName is returned for marker names that are not plain file names.
	ErrMarkerName = errors.New("invalid marker name")
)

// Store is the data directory.
type Store struct {
	dir string
	mu  sync.Mutex // Guards members.json read-modify-write
}

// NewStore returns a store rooted at dir. The directory is not created.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// DeviceID returns the trimmed contents of device_id.txt.
func (s *Store) DeviceID() (string, error) {
	return s.readID(DeviceIDFile, "device ID")
}

// HouseholdID returns the registered household id.
func (s *Store) HouseholdID() (string, error) {
	return s.readID(HouseholdIDFile, "household ID")
}

func (s *Store) readID(name, what string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w: %w", what, ErrLookup, err)
	}
	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", fmt.Errorf("reading %s: %w: %s is empty", what, ErrLookup, name)
	}
	return id, nil
}

// WriteHouseholdID persists the household id after a successful registration.
func (s *Store) WriteHouseholdID(hhid string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(s.path(HouseholdIDFile), []byte(hhid), 0644); err != nil {
		return fmt.Errorf("writing household ID: %w", err)
	}
	logger.Debug("Household ID %s written", hhid)
	return nil
}

// ProbeMarker reports whether the marker file name exists in the data directory.
func (s *Store) ProbeMarker(name string) (bool, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return false, fmt.Errorf("%w: %q", ErrMarkerName, name)
	}
	_, err := os.Stat(s.path(name))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("probing marker %s: %w", name, err)
	}
}

// Members returns the household roster. A missing file is an empty roster.
func (s *Store) Members() ([]Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readMembers()
}

// WriteMembers replaces the roster.
func (s *Store) WriteMembers(members []Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeMembers(members)
}

// ToggleMember flips the active flag of id and returns the updated roster.
func (s *Store) ToggleMember(id string) ([]Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := s.readMembers()
	if err != nil {
		return nil, err
	}

	found := false
	for i := range members {
		if members[i].ID == id {
			members[i].Active = !members[i].Active
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMember, id)
	}

	if err := s.writeMembers(members); err != nil {
		return nil, err
	}
	return members, nil
}

func (s *Store) readMembers() ([]Member, error) {
	data, err := os.ReadFile(s.path(MembersFile))
	if errors.Is(err, os.ErrNotExist) {
		return []Member{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading members: %w", err)
	}

	var members []Member
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("parsing members: %w", err)
	}
	return members, nil
}

func (s *Store) writeMembers(members []Member) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	data, err := json.MarshalIndent(members, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling members: %w", err)
	}
	if err := os.WriteFile(s.path(MembersFile), data, 0644); err != nil {
		return fmt.Errorf("writing members: %w", err)
	}
	return nil
}
