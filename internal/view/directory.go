package view

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/duynhne/doctor-service/internal/core/domain"
)

// DefaultDebounce is the quiet period before a search term is sent.
const DefaultDebounce = 500 * time.Millisecond

// Directory is the admin doctor list: a debounced search driven by a
// TermStore, client-side pagination, and deletion with an optimistic local
// update.
//
// Each search gets a sequence number when it is issued. A response is applied
// only if its sequence is still the latest, so a slow earlier search can never
// overwrite a later one.
type Directory struct {
	source   DoctorSource
	terms    *TermStore
	notifier Notifier
	logger   *zap.Logger
	pageSize int
	debounce time.Duration

	ctx         context.Context
	cancel      context.CancelFunc
	debouncer   *Debouncer
	unsubscribe func()

	mu       sync.Mutex
	doctors  []domain.Doctor
	page     int
	loading  bool
	issued   uint64
	onChange func()
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithPageSize sets the rows per page; non-positive values are ignored.
func WithPageSize(n int) DirectoryOption {
	return func(d *Directory) {
		if n > 0 {
			d.pageSize = n
		}
	}
}

// WithDebounce sets the search quiet period.
func WithDebounce(window time.Duration) DirectoryOption {
	return func(d *Directory) {
		if window > 0 {
			d.debounce = window
		}
	}
}

// WithLogger sets the logger for search and delete failures.
func WithLogger(logger *zap.Logger) DirectoryOption {
	return func(d *Directory) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDirectory wires the view to its term store. No request is made until
// Start or the first term change.
func NewDirectory(source DoctorSource, terms *TermStore, notifier Notifier, opts ...DirectoryOption) *Directory {
	d := &Directory{
		source:   source,
		terms:    terms,
		notifier: notifier,
		logger:   zap.NewNop(),
		pageSize: DefaultPageSize,
		debounce: DefaultDebounce,
		page:     1,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.notifier == nil {
		d.notifier = LogNotifier{Logger: d.logger}
	}

	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.debouncer = NewDebouncer(d.debounce, d.search)
	d.unsubscribe = terms.Subscribe(d.debouncer.Trigger)
	return d
}

// Start schedules the initial search for the current term. An empty term
// fetches the default listing.
func (d *Directory) Start() {
	d.debouncer.Trigger(d.terms.Get())
}

// SetSearchTerm writes through to the shared term store.
func (d *Directory) SetSearchTerm(term string) {
	d.terms.Set(term)
}

// SearchTerm returns the current term from the store.
func (d *Directory) SearchTerm() string {
	return d.terms.Get()
}

// OnChange registers a callback run after every asynchronous state change.
func (d *Directory) OnChange(fn func()) {
	d.mu.Lock()
	d.onChange = fn
	d.mu.Unlock()
}

// Close cancels pending work and detaches from the term store.
func (d *Directory) Close() {
	d.debouncer.Stop()
	d.unsubscribe()
	d.cancel()
}

func (d *Directory) search(query string) {
	d.mu.Lock()
	d.issued++
	seq := d.issued
	d.loading = true
	d.mu.Unlock()
	d.changed()

	results, err := d.source.SearchDoctors(d.ctx, query)

	d.mu.Lock()
	if seq != d.issued {
		d.mu.Unlock()
		d.logger.Debug("Discarding stale search result", zap.String("query", query), zap.Uint64("seq", seq))
		return
	}
	d.loading = false
	if err != nil {
		d.mu.Unlock()
		d.logger.Error("Error searching doctors", zap.String("query", query), zap.Error(err))
		d.changed()
		return
	}
	if results == nil {
		results = []domain.Doctor{}
	}
	d.doctors = results
	d.page = 1
	d.mu.Unlock()

	d.logger.Debug("Search applied", zap.String("query", query), zap.Int("count", len(results)))
	d.changed()
}

// Delete removes a doctor on the server. On success the row is dropped from
// the local list, with no refetch; on failure the list is untouched. Either
// way the user gets a notification.
func (d *Directory) Delete(ctx context.Context, id string) error {
	if err := d.source.DeleteDoctor(ctx, id); err != nil {
		d.logger.Error("Failed to remove doctor", zap.String("doctor_id", id), zap.Error(err))
		d.notifier.Notify(Notification{Level: LevelError, Message: MsgRemoveFailed})
		return err
	}

	d.mu.Lock()
	d.doctors = slices.DeleteFunc(slices.Clone(d.doctors), func(doc domain.Doctor) bool {
		return doc.ID == id
	})
	d.page = d.pagerLocked().Page
	d.mu.Unlock()

	d.notifier.Notify(Notification{Level: LevelSuccess, Message: MsgRemoved})
	d.changed()
	return nil
}

// Loading reports whether the latest search is still in flight.
func (d *Directory) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

// Doctors returns a copy of the full result list.
func (d *Directory) Doctors() []domain.Doctor {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.doctors)
}

// Visible returns the doctors on the current page.
func (d *Directory) Visible() []domain.Doctor {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(PageOf(d.doctors, d.pagerLocked()))
}

// Empty reports whether the "No doctors found" state applies.
func (d *Directory) Empty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.loading && len(d.doctors) == 0
}

// Pager returns the pagination state of the current list.
func (d *Directory) Pager() Pager {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pagerLocked()
}

func (d *Directory) Page() int { return d.Pager().Page }

func (d *Directory) TotalPages() int { return d.Pager().TotalPages() }

// SetPage moves to page n, clamped to [1, TotalPages].
func (d *Directory) SetPage(n int) {
	d.mu.Lock()
	d.page = d.pagerLocked().Clamp(n)
	d.mu.Unlock()
}

func (d *Directory) NextPage() {
	d.SetPage(d.Page() + 1)
}

func (d *Directory) PrevPage() {
	d.SetPage(d.Page() - 1)
}

func (d *Directory) pagerLocked() Pager {
	return NewPager(len(d.doctors), d.pageSize, d.page)
}

func (d *Directory) changed() {
	d.mu.Lock()
	fn := d.onChange
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}
