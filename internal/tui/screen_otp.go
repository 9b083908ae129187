package tui

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/indirex/touchmeter/internal/keyboard"
	"github.com/indirex/touchmeter/internal/logger"
	"github.com/indirex/touchmeter/internal/tui/theme"
)

// OTPLength is the number of digits of a verification code.
const OTPLength = 4

const statusMissingIDs = "Missing meter ID or HHID"

// OTPScreen verifies the one-time code sent to the household.
type OTPScreen struct {
	env *env

	field     *TextField
	deviceID  string
	hhid      string
	verifying bool
	status    string

	hits hitMap
}

func newOTPScreen(e *env) *OTPScreen {
	o := &OTPScreen{env: e}
	o.field = NewTextField(keyboard.FieldBinding{
		Name:        "otp",
		Label:       fmt.Sprintf("Enter the %d-digit verification code", OTPLength),
		Placeholder: "0000",
		MaxLength:   OTPLength,
		NumericOnly: true,
	}, 12)
	o.field.OnSubmit(func(string) { e.emit(o.verify()) })
	return o
}

// Status returns the status line.
func (o *OTPScreen) Status() string { return o.status }

func (o *OTPScreen) Enter() tea.Cmd {
	return tea.Batch(loadDeviceID(o.env.svc), loadHouseholdID(o.env.svc))
}

func (o *OTPScreen) Leave() {}

func (o *OTPScreen) ready() bool {
	if o.deviceID == "" || o.hhid == "" {
		o.status = statusMissingIDs
		return false
	}
	return true
}

func (o *OTPScreen) verify() tea.Cmd {
	if o.verifying || !o.field.Completed() || !o.ready() {
		return nil
	}
	o.verifying = true
	o.status = "Verifying..."

	ctx, svc, deviceID, hhid, otp := o.env.ctx, o.env.svc, o.deviceID, o.hhid, o.field.Value()
	return func() tea.Msg {
		status, err := svc.VerifyOTP(ctx, deviceID, hhid, otp)
		return otpResultMsg{Status: status, Err: err}
	}
}

func (o *OTPScreen) resend() tea.Cmd {
	if o.verifying || !o.ready() {
		return nil
	}
	o.status = "Resending OTP..."

	ctx, svc, deviceID, hhid := o.env.ctx, o.env.svc, o.deviceID, o.hhid
	return func() tea.Msg {
		status, err := svc.RetryOTP(ctx, deviceID, hhid)
		return otpResultMsg{Resend: true, Status: status, Err: err}
	}
}

func (o *OTPScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case deviceIDMsg:
		if msg.Err != nil {
			logger.Warn("otp: %v", msg.Err)
			return nil
		}
		o.deviceID = msg.ID
	case householdIDMsg:
		if msg.Err != nil {
			logger.Warn("otp: %v", msg.Err)
			return nil
		}
		o.hhid = msg.ID
	case otpResultMsg:
		if !msg.Resend {
			o.verifying = false
		}
		switch {
		case msg.Err != nil && msg.Resend:
			o.status = fmt.Sprintf("Retry failed: %v", msg.Err)
		case msg.Err != nil:
			o.status = fmt.Sprintf("Failed: %v", msg.Err)
		default:
			o.status = msg.Status
			if !msg.Resend {
				o.env.facts.Verified = true
			}
		}
	case tea.KeyPressMsg:
		if msg.String() == "enter" {
			o.field.Focus(o.env.relay)
		}
	}
	return nil
}

func (o *OTPScreen) Draw(scr uv.Screen, area uv.Rectangle) {
	s := theme.Current().S()
	o.hits.reset()
	y := area.Min.Y

	PlaceCentered(scr, area, y, s.Body.Render(fmt.Sprintf("Enter the %d-digit verification code", OTPLength)))
	fieldX := area.Min.X + (area.Dx()-16)/2
	o.field.Draw(scr, fieldX, y+1, o.env.relay)

	verifyLabel := "Verify OTP"
	verifyState := ButtonFocused
	if o.verifying {
		verifyLabel = "Verifying..."
	}
	if o.verifying || !o.field.Completed() {
		verifyState = ButtonDisabled
	}
	resendState := ButtonNormal
	if o.verifying {
		resendState = ButtonDisabled
	}

	resend := renderButton(Button{Label: "Resend OTP", State: resendState})
	verify := renderButton(Button{Label: verifyLabel, State: verifyState})
	row := resend + "  " + verify
	r := PlaceCentered(scr, area, y+5, row)
	o.hits.set("resend", uv.Rect(r.Min.X, r.Min.Y, lipgloss.Width(resend), 1))
	o.hits.set("verify", uv.Rect(r.Min.X+lipgloss.Width(resend)+2, r.Min.Y, lipgloss.Width(verify), 1))

	if o.status != "" {
		PlaceCentered(scr, area, y+7, renderStatus(o.status))
	}
	PlaceCentered(scr, area, y+9, s.Muted.Render("The OTP is validated against the registered household details."))
}

func (o *OTPScreen) HandleClick(x, y int) tea.Cmd {
	if o.field.Contains(x, y) {
		o.field.Focus(o.env.relay)
		return nil
	}
	switch o.hits.at(x, y) {
	case "resend":
		return o.resend()
	case "verify":
		return o.verify()
	}
	return nil
}
