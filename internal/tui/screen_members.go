package tui

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/indirex/touchmeter/internal/device"
	"github.com/indirex/touchmeter/internal/logger"
	"github.com/indirex/touchmeter/internal/tui/theme"
)

// Members grid geometry.
const (
	memberColumns   = 4
	memberCardWidth = 22
	memberGap       = 2
	statusClearTime = 2 * time.Second
)

const statusSent = "Successfully sent!"

// MembersScreen is the outro: the household roster, where tapping a member
// toggles their viewing state and publishes the roster.
type MembersScreen struct {
	env *env

	members  []device.Member
	selected int
	sending  bool
	status   string
	// statusGen invalidates pending clears when a newer status is shown.
	statusGen int

	cards []uv.Rectangle
}

func newMembersScreen(e *env) *MembersScreen {
	return &MembersScreen{env: e}
}

// Members returns the displayed roster.
func (m *MembersScreen) Members() []device.Member { return m.members }

// Status returns the status line.
func (m *MembersScreen) Status() string { return m.status }

func (m *MembersScreen) load() tea.Cmd {
	svc := m.env.svc
	return func() tea.Msg {
		members, err := svc.ListMembers()
		return membersLoadedMsg{Members: members, Err: err}
	}
}

func (m *MembersScreen) Enter() tea.Cmd { return m.load() }

func (m *MembersScreen) Leave() {}

func (m *MembersScreen) toggle(i int) tea.Cmd {
	if m.sending || i < 0 || i >= len(m.members) {
		return nil
	}
	m.selected = i
	m.sending = true
	m.status = "Sending..."
	m.statusGen++

	ctx, svc, id := m.env.ctx, m.env.svc, m.members[i].ID
	return func() tea.Msg {
		return memberToggledMsg{ID: id, Err: svc.ToggleMember(ctx, id)}
	}
}

func (m *MembersScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case membersLoadedMsg:
		if msg.Err != nil {
			m.status = fmt.Sprintf("Failed to load members: %v", msg.Err)
			return nil
		}
		m.members = msg.Members
		if m.selected >= len(m.members) {
			m.selected = 0
		}
	case memberToggledMsg:
		m.sending = false
		if msg.Err != nil {
			logger.Warn("members: toggle %s: %v", msg.ID, msg.Err)
			m.status = fmt.Sprintf("Failed: %v", msg.Err)
			return nil
		}
		m.status = statusSent
		m.statusGen++
		gen := m.statusGen
		return tea.Batch(
			m.load(),
			tea.Tick(statusClearTime, func(time.Time) tea.Msg { return clearStatusMsg{gen: gen} }),
		)
	case clearStatusMsg:
		if msg.gen == m.statusGen {
			m.status = ""
		}
	case tea.KeyPressMsg:
		return m.handleKey(msg.String())
	}
	return nil
}

func (m *MembersScreen) handleKey(k string) tea.Cmd {
	if len(m.members) == 0 {
		return nil
	}
	switch k {
	case "left":
		m.selected = max(m.selected-1, 0)
	case "right":
		m.selected = min(m.selected+1, len(m.members)-1)
	case "up":
		if m.selected >= memberColumns {
			m.selected -= memberColumns
		}
	case "down":
		if m.selected+memberColumns < len(m.members) {
			m.selected += memberColumns
		}
	case "enter", "space":
		return m.toggle(m.selected)
	}
	return nil
}

func (m *MembersScreen) renderCard(i int) string {
	s := theme.Current().S()
	mem := m.members[i]

	style := s.MemberIdle
	state := "Inactive"
	if mem.Active {
		style = s.MemberActive
		state = "Watching"
	}
	if i == m.selected {
		style = style.BorderForeground(lipgloss.Color(theme.Current().Primary))
	}

	lines := []string{
		s.Emphasis.Render(mem.ID),
		fmt.Sprintf("%s · %d", strings.ToLower(mem.Gender), mem.Age),
		mem.Category(),
		state,
	}
	for j, l := range lines {
		lines[j] = padCenter(l, memberCardWidth)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m *MembersScreen) Draw(scr uv.Screen, area uv.Rectangle) {
	s := theme.Current().S()
	m.cards = make([]uv.Rectangle, len(m.members))

	y := area.Min.Y + 1
	PlaceCentered(scr, area, y, s.AppTitle.Render("Household Members"))
	y++
	PlaceCentered(scr, area, y, s.Muted.Render("Tap a member to mark who is watching."))
	y += 2

	if len(m.members) == 0 {
		if m.status == "" {
			PlaceCentered(scr, area, y, s.Muted.Render("No members registered yet."))
		}
	} else {
		rowWidth := memberColumns*(memberCardWidth+2) + (memberColumns-1)*memberGap
		x0 := area.Min.X + (area.Dx()-rowWidth)/2
		if x0 < area.Min.X {
			x0 = area.Min.X
		}
		cardHeight := 0
		for i := range m.members {
			col, row := i%memberColumns, i/memberColumns
			card := m.renderCard(i)
			cardHeight = lipgloss.Height(card)
			x := x0 + col*(memberCardWidth+2+memberGap)
			m.cards[i] = Place(scr, x, y+row*(cardHeight+1), card)
		}
		rows := (len(m.members) + memberColumns - 1) / memberColumns
		y += rows * (cardHeight + 1)
	}

	if m.status != "" {
		y++
		PlaceCentered(scr, area, y, renderStatus(m.status))
	}
}

func (m *MembersScreen) HandleClick(x, y int) tea.Cmd {
	for i, r := range m.cards {
		if inside(r, x, y) {
			return m.toggle(i)
		}
	}
	return nil
}
