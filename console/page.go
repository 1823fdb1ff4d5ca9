// Package console holds the state behind the hostel admin screen: the cached
// student list, the active filter and the notification slot.
package console

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nonsonwune/hostel_admin/filter"
	"github.com/nonsonwune/hostel_admin/importer"
	"github.com/nonsonwune/hostel_admin/models"
)

// ErrClosed is returned by operations attempted after Close.
var ErrClosed = errors.New("page is closed")

// StudentSource is the backend the page reads from and writes decisions to.
type StudentSource interface {
	FetchStudents(ctx context.Context) ([]models.Student, error)
	ManageHostel(ctx context.Context, studentID string, action models.HostelAction) error
}

// Recorder persists decision outcomes. Errors are logged and otherwise
// ignored.
type Recorder interface {
	Record(ctx context.Context, d models.Decision) error
}

type Option func(*Page)

// WithRecorder attaches an audit recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Page) { p.recorder = r }
}

// WithWorkerCount bounds concurrent submissions in ApplyBatch.
func WithWorkerCount(n int) Option {
	return func(p *Page) { p.workers = n }
}

type Page struct {
	source   StudentSource
	notifier *Notifier
	recorder Recorder
	workers  int

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	students []models.Student
	criteria filter.Criteria
	loading  bool
	loadSeq  uint64
	loaded   bool
	lastErr  error
	closed   bool
}

func NewPage(source StudentSource, notifier *Notifier, opts ...Option) *Page {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Page{
		source:   source,
		notifier: notifier,
		workers:  importer.DefaultWorkerCount,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Mount starts the initial load on its own goroutine. The returned channel
// is closed when the load has finished or been dropped.
func (p *Page) Mount() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.load(p.ctx); err != nil && !errors.Is(err, ErrClosed) {
			log.Printf("Initial student load failed: %v", err)
		}
	}()
	return done
}

// Refresh reloads the full student list. On failure the cached list is
// kept and an error notification is shown.
func (p *Page) Refresh(ctx context.Context) error {
	return p.load(ctx)
}

// load is shared by Mount and Refresh. Only the most recently started load
// commits its result and clears the loading flag; results arriving after
// Close or after a newer load started are dropped.
func (p *Page) load(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.loadSeq++
	seq := p.loadSeq
	p.loading = true
	p.mu.Unlock()

	ctx, stop := p.scope(ctx)
	defer stop()

	students, err := p.source.FetchStudents(ctx)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if seq != p.loadSeq {
		p.mu.Unlock()
		if err != nil {
			log.Printf("Superseded student fetch failed: %v", err)
		}
		return err
	}
	p.loading = false
	p.lastErr = err
	if err == nil {
		p.students = students
		p.loaded = true
	}
	p.mu.Unlock()

	if err != nil {
		log.Printf("Error fetching students: %v", err)
		p.notifier.Error("Failed to fetch students")
		return err
	}
	return nil
}

// HandleRequest submits an approve/reject decision. A successful decision
// is followed by a full Refresh rather than a local patch.
func (p *Page) HandleRequest(ctx context.Context, studentID string, action models.HostelAction) error {
	if p.isClosed() {
		return ErrClosed
	}

	callCtx, stop := p.scope(ctx)
	err := p.source.ManageHostel(callCtx, studentID, action)
	p.record(callCtx, studentID, action, err)
	stop()

	if p.isClosed() {
		return ErrClosed
	}
	if err != nil {
		log.Printf("Error trying to %s hostel request for %s: %v", action, studentID, err)
		p.notifier.Error(fmt.Sprintf("Failed to %s request", action))
		return err
	}

	p.notifier.Success(fmt.Sprintf("Request %s successfully", action.PastTense()))
	if err := p.Refresh(ctx); err != nil && !errors.Is(err, ErrClosed) {
		log.Printf("Refresh after %s failed: %v", action, err)
	}
	return nil
}

// ApplyBatch submits many decisions with bounded concurrency, shows one
// summary notification and refreshes once if anything succeeded.
func (p *Page) ApplyBatch(ctx context.Context, decisions []importer.DecisionRow) (importer.Result, error) {
	if p.isClosed() {
		return importer.Result{}, ErrClosed
	}

	ctx, stop := p.scope(ctx)
	defer stop()

	result := importer.Submit(ctx, decisions, p.workers, func(ctx context.Context, row importer.DecisionRow) error {
		err := p.source.ManageHostel(ctx, row.StudentID, row.Action)
		p.record(ctx, row.StudentID, row.Action, err)
		return err
	})

	if p.isClosed() {
		return result, ErrClosed
	}

	switch {
	case len(result.Failures) == 0:
		p.notifier.Success(fmt.Sprintf("%d requests processed successfully", result.Succeeded))
	case result.Succeeded == 0:
		p.notifier.Error(fmt.Sprintf("All %d requests failed", len(result.Failures)))
	default:
		p.notifier.Error(fmt.Sprintf("%d requests processed, %d failed", result.Succeeded, len(result.Failures)))
	}

	if result.Succeeded > 0 {
		if err := p.Refresh(ctx); err != nil && !errors.Is(err, ErrClosed) {
			log.Printf("Refresh after batch failed: %v", err)
		}
	}
	return result, nil
}

// SetSearch replaces the search term and keeps the other criteria.
func (p *Page) SetSearch(term string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.criteria.Term = term
	}
}

func (p *Page) SetCriteria(c filter.Criteria) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.criteria = c
	}
}

func (p *Page) Criteria() filter.Criteria {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.criteria
}

// Visible is the cached list filtered by the current criteria.
func (p *Page) Visible() []models.Student {
	p.mu.Lock()
	defer p.mu.Unlock()
	return filter.Apply(p.students, p.criteria)
}

// Students returns the last successfully fetched list.
func (p *Page) Students() []models.Student {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.students
}

func (p *Page) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Loaded reports whether at least one fetch has succeeded.
func (p *Page) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// LastError is the outcome of the most recent fetch.
func (p *Page) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *Page) Notifier() *Notifier { return p.notifier }

// Close tears the page down: in-flight calls are cancelled, their results
// are dropped and the notification timer is stopped.
func (p *Page) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.loading = false
	p.mu.Unlock()

	p.cancel()
	p.notifier.Close()
}

func (p *Page) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// scope ties ctx to the page lifetime.
func (p *Page) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(p.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (p *Page) record(ctx context.Context, studentID string, action models.HostelAction, err error) {
	if p.recorder == nil {
		return
	}

	d := models.Decision{
		ID:        uuid.New(),
		StudentID: studentID,
		Action:    action,
		Succeeded: err == nil,
		DecidedAt: time.Now().UTC(),
	}
	if err != nil {
		d.Error = err.Error()
	}

	// Cancellation of the action must not lose its audit row.
	if recErr := p.recorder.Record(context.WithoutCancel(ctx), d); recErr != nil {
		log.Printf("Error recording decision for %s: %v", studentID, recErr)
	}
}
