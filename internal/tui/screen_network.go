package tui

import (
	tea "charm.land/bubbletea/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/indirex/touchmeter/internal/device"
	"github.com/indirex/touchmeter/internal/keyboard"
	"github.com/indirex/touchmeter/internal/logger"
	"github.com/indirex/touchmeter/internal/tui/theme"
)

// Network types.
const (
	NetworkWiFi = "WiFi"
	NetworkGSM  = "GSM"
)

const fieldWidth = 32

// NetworkScreen chooses between WiFi and GSM and collects WiFi credentials.
type NetworkScreen struct {
	env *env

	choice    string
	ssid      *TextField
	password  *TextField
	connected bool
	probed    bool
	status    string

	hits hitMap
}

// newNetworkScreen creates the network step.
func newNetworkScreen(e *env) *NetworkScreen {
	n := &NetworkScreen{env: e, choice: NetworkWiFi}
	n.ssid = NewTextField(keyboard.FieldBinding{
		Name:        "wifi-ssid",
		Label:       "Network name (SSID)",
		Placeholder: "Home-WiFi",
	}, fieldWidth)
	n.password = NewTextField(keyboard.FieldBinding{
		Name:        "wifi-password",
		Label:       "WiFi password",
		Placeholder: "Enter password",
		Masked:      true,
	}, fieldWidth)

	n.ssid.OnSubmit(func(string) { n.password.Focus(e.relay) })
	n.password.OnSubmit(func(string) { n.connect() })
	e.facts.Network = n.choice
	return n
}

// Choice returns the selected network type.
func (n *NetworkScreen) Choice() string { return n.choice }

func (n *NetworkScreen) choose(c string) {
	if n.choice == c {
		return
	}
	n.choice = c
	n.env.facts.Network = c
	n.status = ""
	if n.env.relay.IsBound(n.ssid.Name()) || n.env.relay.IsBound(n.password.Name()) {
		n.env.relay.Unbind()
	}
}

func (n *NetworkScreen) connect() {
	if n.ssid.Value() == "" {
		n.status = "Enter a network name first"
		return
	}
	// The meter's network service joins the network and drops the network
	// marker; this screen never uses the credentials itself and only waits
	// for the marker.
	logger.Info("network: credentials entered for %q", n.ssid.Value())
	n.status = "Waiting for the network service to join " + n.ssid.Value() + "..."
}

func (n *NetworkScreen) Enter() tea.Cmd {
	return probeCmd(n.env.svc, device.MarkerNetwork)
}

func (n *NetworkScreen) Leave() {}

func (n *NetworkScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case probeTickMsg:
		return probeCmd(n.env.svc, device.MarkerNetwork)
	case markerChangedMsg:
		if msg.Name == device.MarkerNetwork {
			return probeCmd(n.env.svc, device.MarkerNetwork)
		}
	case markerProbedMsg:
		if msg.Name != device.MarkerNetwork {
			return nil
		}
		if msg.Err != nil {
			logger.Warn("network: probe failed: %v", msg.Err)
			return nil
		}
		n.probed = true
		n.connected = msg.Present
		if n.connected && n.choice == NetworkWiFi && n.ssid.Value() != "" {
			n.status = "Network connected"
		}
	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "w":
			n.choose(NetworkWiFi)
		case "down", "g":
			n.choose(NetworkGSM)
		case "enter":
			if n.choice == NetworkWiFi {
				n.ssid.Focus(n.env.relay)
			}
		}
	}
	return nil
}

func (n *NetworkScreen) Draw(scr uv.Screen, area uv.Rectangle) {
	s := theme.Current().S()
	n.hits.reset()
	width := area.Dx() - 4

	radio := func(c, desc string) string {
		mark := "( )"
		if n.choice == c {
			mark = s.Emphasis.Render("(•)")
		}
		return panel(mark+" "+s.Emphasis.Render(c)+"  "+s.Muted.Render(desc), width, n.choice == c)
	}

	y := area.Min.Y
	r := Place(scr, area.Min.X, y, radio(NetworkWiFi, "Scan and connect to wireless networks"))
	n.hits.set(NetworkWiFi, r)
	y += r.Dy()
	r = Place(scr, area.Min.X, y, radio(NetworkGSM, "Use mobile data via SIM card"))
	n.hits.set(NetworkGSM, r)
	y += r.Dy() + 1

	state := badge(n.connected, "Connected", "Not connected")
	if !n.probed {
		state = s.Muted.Render("Checking...")
	}

	if n.choice == NetworkGSM {
		Place(scr, area.Min.X, y, panel(spaceBetween(s.Emphasis.Render("GSM Connection"), state, width), width, n.connected))
		return
	}

	Place(scr, area.Min.X, y, spaceBetween(s.Body.Render("Wi-Fi Settings"), state, width+4))
	y += 1
	Place(scr, area.Min.X, y+1, s.Muted.Render("SSID"))
	n.ssid.Draw(scr, area.Min.X+10, y, n.env.relay)
	y += 3
	Place(scr, area.Min.X, y+1, s.Muted.Render("Password"))
	n.password.Draw(scr, area.Min.X+10, y, n.env.relay)
	y += 3
	if n.status != "" {
		Place(scr, area.Min.X, y, renderStatus(n.status))
	}
}

func (n *NetworkScreen) HandleClick(x, y int) tea.Cmd {
	switch {
	case n.choice == NetworkWiFi && n.ssid.Contains(x, y):
		n.ssid.Focus(n.env.relay)
	case n.choice == NetworkWiFi && n.password.Contains(x, y):
		n.password.Focus(n.env.relay)
	default:
		switch n.hits.at(x, y) {
		case NetworkWiFi:
			n.choose(NetworkWiFi)
		case NetworkGSM:
			n.choose(NetworkGSM)
		}
	}
	return nil
}
