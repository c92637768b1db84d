// Package console is a terminal admin console for the doctor directory,
// built on bubbletea.
package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/duynhne/doctor-service/internal/view"
)

// RefreshMsg asks the model to redraw after the directory changed.
type RefreshMsg struct{}

// NoticeMsg carries a directory notification into the update loop.
type NoticeMsg view.Notification

type deletedMsg struct {
	id  string
	err error
}

type profileLoadedMsg struct{}

type screen int

const (
	screenList screen = iota
	screenProfile
)

const requestTimeout = 10 * time.Second

// Model is the bubbletea model. Directory and profile state live in the
// view package; Model only tracks the cursor, screen and status line.
type Model struct {
	dir     *view.Directory
	profile *view.Profile

	screen screen
	cursor int
	status string
}

// NewModel creates a console model over a directory and a profile view.
func NewModel(dir *view.Directory, profile *view.Profile) Model {
	return Model{dir: dir, profile: profile}
}

// Init starts the initial directory search.
func (m Model) Init() tea.Cmd {
	m.dir.Start()
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshMsg, profileLoadedMsg:
		m.cursor = m.clampCursor(m.cursor)
		return m, nil
	case NoticeMsg:
		m.status = msg.Message
		return m, nil
	case deletedMsg:
		if msg.err == nil {
			m.cursor = m.clampCursor(m.cursor)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.screen == screenProfile {
			return m.updateProfile(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyRunes, tea.KeySpace:
		m.dir.SetSearchTerm(m.dir.SearchTerm() + string(msg.Runes))
		m.status = ""
	case tea.KeyBackspace:
		term := []rune(m.dir.SearchTerm())
		if len(term) > 0 {
			m.dir.SetSearchTerm(string(term[:len(term)-1]))
		}
	case tea.KeyLeft:
		m.dir.PrevPage()
		m.cursor = 0
	case tea.KeyRight:
		m.dir.NextPage()
		m.cursor = 0
	case tea.KeyUp:
		m.cursor = m.clampCursor(m.cursor - 1)
	case tea.KeyDown:
		m.cursor = m.clampCursor(m.cursor + 1)
	case tea.KeyCtrlD:
		if id, ok := m.selected(); ok {
			return m, m.deleteCmd(id)
		}
	case tea.KeyEnter:
		if id, ok := m.selected(); ok {
			m.screen = screenProfile
			return m, m.loadProfileCmd(id)
		}
	}
	return m, nil
}

func (m Model) updateProfile(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyBackspace:
		m.screen = screenList
		m.status = ""
	case tea.KeyRunes:
		card := m.profile.Card()
		if card == nil {
			return m, nil
		}
		switch string(msg.Runes) {
		case "c":
			m.status = "Chat Now -> " + card.ChatRoute
		case "s":
			m.status = "Schedule for Later -> " + card.ScheduleRoute
		}
	}
	return m, nil
}

func (m Model) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return deletedMsg{id: id, err: m.dir.Delete(ctx, id)}
	}
}

func (m Model) loadProfileCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		m.profile.Load(ctx, id)
		return profileLoadedMsg{}
	}
}

func (m Model) selected() (string, bool) {
	visible := m.dir.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return "", false
	}
	return visible[m.cursor].ID, true
}

func (m Model) clampCursor(c int) int {
	n := len(m.dir.Visible())
	if c >= n {
		c = n - 1
	}
	if c < 0 {
		c = 0
	}
	return c
}

func (m Model) View() string {
	if m.screen == screenProfile {
		return m.viewProfile()
	}
	return m.viewList()
}

func (m Model) viewList() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search doctors by id or profile: %s_\n\n", m.dir.SearchTerm())

	switch {
	case m.dir.Loading():
		b.WriteString("  Loading...\n")
	case m.dir.Empty():
		b.WriteString("  " + view.MsgNoDoctors + "\n")
	default:
		for i, d := range m.dir.Visible() {
			marker := "  "
			if i == m.cursor {
				marker = "> "
			}
			fmt.Fprintf(&b, "%s%-28s %5s  %s\n", marker, d.DisplayName(), view.FormatRating(d.Rating), strings.Join(d.Specializations, ", "))
		}
		p := m.dir.Pager()
		prev, next := "<- prev", "next ->"
		if !p.HasPrev() {
			prev = "       "
		}
		if !p.HasNext() {
			next = ""
		}
		fmt.Fprintf(&b, "\n%s  page %d/%d  %s\n", prev, p.Page, p.TotalPages(), next)
	}

	if m.status != "" {
		fmt.Fprintf(&b, "\n%s\n", m.status)
	}
	b.WriteString("\ntype to search  ←/→ page  ↑/↓ select  enter open  ctrl+d delete  esc quit\n")
	return b.String()
}

func (m Model) viewProfile() string {
	var b strings.Builder

	c := m.profile.Card()
	switch {
	case m.profile.State() == view.ProfileNotFound:
		b.WriteString(view.MsgDoctorNotFound + "\n")
	case c == nil:
		b.WriteString("Loading...\n")
	default:
		fmt.Fprintf(&b, "%s", c.Name)
		if c.AvailableDay != "" {
			fmt.Fprintf(&b, "  [%s]", c.AvailableDay)
		}
		fmt.Fprintf(&b, "\n%s Rating\n%s  %s\n\n", c.Rating, c.SpecializationSummary, c.Experience)
		fmt.Fprintf(&b, "Organizations:    %s\n", c.Organizations)
		fmt.Fprintf(&b, "Languages spoken: %s\n", c.Languages)
		b.WriteString("Education:\n")
		for _, e := range c.Education {
			fmt.Fprintf(&b, "  • %s\n", e)
		}
		fmt.Fprintf(&b, "Phone: %s\n\n", c.Phone)
		b.WriteString("[c] Chat Now   [s] Schedule for Later\n")
	}

	if m.status != "" {
		fmt.Fprintf(&b, "\n%s\n", m.status)
	}
	b.WriteString("\nesc back to doctors list\n")
	return b.String()
}
