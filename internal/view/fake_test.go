package view

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/duynhne/doctor-service/internal/core/domain"
)

// fakeSource is an in-memory DoctorSource that records calls.
type fakeSource struct {
	mu        sync.Mutex
	doctors   []domain.Doctor
	queries   []string
	getErr    error
	searchErr error
	deleteErr error
	// gate, when set for a query, blocks SearchDoctors until closed.
	gate map[string]chan struct{}
}

func newFakeSource(doctors ...domain.Doctor) *fakeSource {
	return &fakeSource{doctors: doctors, gate: map[string]chan struct{}{}}
}

func (f *fakeSource) GetDoctor(_ context.Context, id string) (*domain.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, d := range f.doctors {
		if d.ID == id {
			d := d
			return &d, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) SearchDoctors(_ context.Context, query string) ([]domain.Doctor, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	gate := f.gate[query]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []domain.Doctor
	for _, d := range f.doctors {
		if matchesQuery(d, query) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeSource) DeleteDoctor(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, d := range f.doctors {
		if d.ID == id {
			f.doctors = append(f.doctors[:i:i], f.doctors[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("doctor %s: not found", id)
}

func (f *fakeSource) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func makeDoctors(n int) []domain.Doctor {
	out := make([]domain.Doctor, n)
	for i := range out {
		out[i] = domain.Doctor{
			ID:   fmt.Sprintf("d%02d", i+1),
			User: domain.DoctorUser{FirstName: "Doc", LastName: fmt.Sprintf("Number%02d", i+1)},
		}
	}
	return out
}

func ids(doctors []domain.Doctor) []string {
	out := make([]string, len(doctors))
	for i, d := range doctors {
		out[i] = d.ID
	}
	return out
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	r.notes = append(r.notes, n)
	r.mu.Unlock()
}

func (r *recordingNotifier) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notes...)
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
