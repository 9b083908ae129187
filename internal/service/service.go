// Package service composes the device store, the registration backend and
// the event log into the operations the setup wizard calls.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/indirex/touchmeter/internal/backend"
	"github.com/indirex/touchmeter/internal/device"
	"github.com/indirex/touchmeter/internal/events"
	"github.com/indirex/touchmeter/internal/logger"
	"github.com/indirex/touchmeter/internal/state"
)

// Status strings returned to the wizard.
const (
	StatusOTPSent     = "OTP sent successfully"
	StatusOTPVerified = "OTP verified, members fetched"
)

// ErrNoPublisher is returned when an operation needs the event log and none
// was configured.
var ErrNoPublisher = errors.New("event publisher not configured")

// Registrar is the registration backend.
type Registrar interface {
	InitiateAssignment(ctx context.Context, meterID, hhid string) error
	VerifyOTP(ctx context.Context, meterID, hhid, otp string) error
	Members(ctx context.Context, meterID, hhid string) ([]backend.Member, error)
}

// Publisher appends events to the event log.
type Publisher interface {
	PublishJSON(ctx context.Context, device, eventType, action string, payload any) (events.Event, error)
}

// Service implements the wizard's collaborators.
type Service struct {
	store     *device.Store
	registrar Registrar
	publisher Publisher
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a service. publisher may be nil, in which case member toggles
// and finalization fail with ErrNoPublisher.
func New(store *device.Store, registrar Registrar, publisher Publisher, opts ...Option) *Service {
	s := &Service{
		store:     store,
		registrar: registrar,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProbeMarker reports whether a marker file exists.
func (s *Service) ProbeMarker(name string) (bool, error) {
	return s.store.ProbeMarker(name)
}

// DeviceID returns the meter id.
func (s *Service) DeviceID() (string, error) {
	return s.store.DeviceID()
}

// HouseholdID returns the registered household id.
func (s *Service) HouseholdID() (string, error) {
	return s.store.HouseholdID()
}

// SubmitHouseholdID registers hhid for the meter and triggers an OTP.
// The household id is persisted once the backend accepts it.
func (s *Service) SubmitHouseholdID(ctx context.Context, deviceID, hhid string) (string, error) {
	if err := s.registrar.InitiateAssignment(ctx, deviceID, hhid); err != nil {
		return "", fmt.Errorf("registering household %s: %w", hhid, err)
	}
	if err := s.store.WriteHouseholdID(hhid); err != nil {
		return "", err
	}
	logger.Info("Household %s assigned to meter %s", hhid, deviceID)
	return StatusOTPSent, nil
}

// RetryOTP asks the backend to send a new OTP.
func (s *Service) RetryOTP(ctx context.Context, deviceID, hhid string) (string, error) {
	return s.SubmitHouseholdID(ctx, deviceID, hhid)
}

// VerifyOTP confirms otp and downloads the household roster.
func (s *Service) VerifyOTP(ctx context.Context, deviceID, hhid, otp string) (string, error) {
	if err := s.registrar.VerifyOTP(ctx, deviceID, hhid, otp); err != nil {
		return "", fmt.Errorf("verifying OTP: %w", err)
	}
	if err := s.syncMembers(ctx, deviceID, hhid); err != nil {
		return "", err
	}
	return StatusOTPVerified, nil
}

func (s *Service) syncMembers(ctx context.Context, deviceID, hhid string) error {
	remote, err := s.registrar.Members(ctx, deviceID, hhid)
	if err != nil {
		return fmt.Errorf("fetching members: %w", err)
	}

	now := s.now()
	members := make([]device.Member, 0, len(remote))
	for _, m := range remote {
		age, err := device.AgeAt(m.DOB, now)
		if err != nil {
			return fmt.Errorf("member %s: %w", m.MemberCode, err)
		}
		members = append(members, device.Member{
			ID:     m.MemberCode,
			Age:    age,
			Gender: m.Gender,
		})
	}

	if err := s.store.WriteMembers(members); err != nil {
		return err
	}
	logger.Info("Stored %d household members", len(members))
	return nil
}

// ListMembers returns the local roster.
func (s *Service) ListMembers() ([]device.Member, error) {
	return s.store.Members()
}

// ToggleMember flips a member's presence and publishes the whole roster.
func (s *Service) ToggleMember(ctx context.Context, id string) error {
	if s.publisher == nil {
		return ErrNoPublisher
	}
	deviceID, err := s.store.DeviceID()
	if err != nil {
		return err
	}

	roster, err := s.store.ToggleMember(id)
	if err != nil {
		return err
	}

	if _, err := s.publisher.PublishJSON(ctx, deviceID, events.TypeMembers, events.ActionToggle, roster); err != nil {
		return fmt.Errorf("publishing roster: %w", err)
	}
	return nil
}

// Finalize checks the device is registered, records setup as complete and
// announces it on the event log.
func (s *Service) Finalize(ctx context.Context) error {
	deviceID, err := s.store.DeviceID()
	if err != nil {
		return err
	}
	hhid, err := s.store.HouseholdID()
	if err != nil {
		return err
	}
	if s.publisher == nil {
		return ErrNoPublisher
	}

	members, err := s.store.Members()
	if err != nil {
		return err
	}

	payload := struct {
		HouseholdID string `json:"hhid"`
		Members     int    `json:"members"`
	}{hhid, len(members)}
	if _, err := s.publisher.PublishJSON(ctx, deviceID, events.TypeSetup, events.ActionComplete, payload); err != nil {
		return fmt.Errorf("announcing setup: %w", err)
	}

	st := state.Load(s.store.Dir())
	st.MarkComplete(s.now())
	if err := state.Save(s.store.Dir(), st); err != nil {
		return err
	}
	logger.Info("Setup complete for meter %s household %s", deviceID, hhid)
	return nil
}
