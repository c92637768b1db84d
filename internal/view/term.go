package view

import "sync"

// TermStore holds the directory search term. Writers call Set; readers call
// Get or Subscribe. Subscribers run synchronously on the writer's goroutine,
// outside the store lock, and only when the value actually changes.
type TermStore struct {
	mu   sync.Mutex
	term string
	subs map[int]func(string)
	next int
}

// NewTermStore creates a new TermStore holding initial.
func NewTermStore(initial string) *TermStore {
	return &TermStore{term: initial, subs: make(map[int]func(string))}
}

// Get returns the current term.
func (s *TermStore) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

// Set stores term and notifies subscribers if it changed.
func (s *TermStore) Set(term string) {
	s.mu.Lock()
	if term == s.term {
		s.mu.Unlock()
		return
	}
	s.term = term
	subs := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(term)
	}
}

// Subscribe registers fn and returns a function that removes it.
func (s *TermStore) Subscribe(fn func(string)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
