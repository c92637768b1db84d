package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/doctor-service/internal/core/domain"
	"github.com/duynhne/doctor-service/internal/view"
)

type memorySource struct {
	mu        sync.Mutex
	doctors   []domain.Doctor
	deleteErr error
}

func (s *memorySource) GetDoctor(_ context.Context, id string) (*domain.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.doctors {
		if d.ID == id {
			d := d
			return &d, nil
		}
	}
	return nil, nil
}

func (s *memorySource) SearchDoctors(_ context.Context, q string) ([]domain.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Doctor
	for _, d := range s.doctors {
		if matchesQuery(d, q) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *memorySource) DeleteDoctor(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for i, d := range s.doctors {
		if d.ID == id {
			s.doctors = append(s.doctors[:i:i], s.doctors[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func newTestModel(t *testing.T, n int, notifier view.Notifier) (Model, *view.Directory, *memorySource) {
	t.Helper()
	src := &memorySource{}
	for i := 1; i <= n; i++ {
		src.doctors = append(src.doctors, domain.Doctor{
			ID:              fmt.Sprintf("d%02d", i),
			User:            domain.DoctorUser{FirstName: "Doc", LastName: fmt.Sprintf("N%02d", i)},
			Rating:          4.5,
			Specializations: []string{"Spec"},
		})
	}
	src.doctors = append(src.doctors, domain.Doctor{
		ID: "cx", User: domain.DoctorUser{FirstName: "Heart", LastName: "Expert"},
		Specializations: []string{"Cardiology"}, Education: []string{"MD"},
	})

	dir := view.NewDirectory(src, view.NewTermStore(""), notifier, view.WithDebounce(time.Millisecond))
	t.Cleanup(dir.Close)
	m := NewModel(dir, view.NewProfile(src, nil))
	m.Init()
	require.Eventually(t, func() bool { return len(dir.Doctors()) == n+1 && !dir.Loading() }, time.Second, time.Millisecond)
	return m, dir, src
}

func press(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConsoleListsFirstPage(t *testing.T) {
	m, _, _ := newTestModel(t, 9, nil)

	out := m.View()
	assert.Contains(t, out, "> Doc N01")
	assert.Contains(t, out, "page 1/2")
	assert.NotContains(t, out, "<- prev")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRight})
	out = m.View()
	assert.Contains(t, out, "page 2/2")
	assert.Contains(t, out, "<- prev")
	assert.NotContains(t, out, "next ->")
}

func TestConsoleTypingSearches(t *testing.T) {
	m, dir, _ := newTestModel(t, 3, nil)

	for _, r := range "heart" {
		m, _ = press(m, runes(string(r)))
	}
	assert.Equal(t, "heart", dir.SearchTerm())
	require.Eventually(t, func() bool { return len(dir.Doctors()) == 1 }, time.Second, time.Millisecond)
	assert.Contains(t, m.View(), "Heart Expert")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "hear", dir.SearchTerm())
}

func TestConsoleDelete(t *testing.T) {
	var notes []view.Notification
	var mu sync.Mutex
	notifier := view.NotifierFunc(func(n view.Notification) {
		mu.Lock()
		notes = append(notes, n)
		mu.Unlock()
	})
	m, dir, _ := newTestModel(t, 3, notifier)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlD})
	require.NotNil(t, cmd)
	msg := cmd()
	next, _ := m.Update(msg)
	m = next.(Model)

	ids := []string{}
	for _, d := range dir.Doctors() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"d01", "d03", "cx"}, ids)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, notes, 1)
	assert.Equal(t, view.MsgRemoved, notes[0].Message)

	next, _ = m.Update(NoticeMsg(notes[0]))
	assert.Contains(t, next.(Model).View(), view.MsgRemoved)
}

func TestConsoleOpensProfile(t *testing.T) {
	m, _, _ := newTestModel(t, 0, nil)

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	m = next.(Model)

	out := m.View()
	assert.Contains(t, out, "Heart Expert")
	assert.Contains(t, out, "Cardiology")
	assert.Contains(t, out, "[c] Chat Now")

	m, _ = press(m, runes("s"))
	assert.Contains(t, m.View(), "Schedule for Later -> "+view.ScheduleRoute)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Contains(t, m.View(), "Search doctors by id or profile")
}

func TestConsoleQuit(t *testing.T) {
	m, _, _ := newTestModel(t, 1, nil)
	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

// matchesQuery mirrors the repository search: case-insensitive substring over
// ID, username, names, languages and specializations.
func matchesQuery(d domain.Doctor, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	fields := []string{d.ID, d.User.Username, d.User.FirstName, d.User.LastName, d.Languages, d.DisplayName()}
	fields = append(fields, d.Specializations...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
