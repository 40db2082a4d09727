// Package reminder schedules local notifications for task dates.
package reminder

import (
	"iter"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/nissyi-gh/taskapp/internal/model"
)

// Request is a reminder keyed by task ID.
type Request struct {
	ID    string
	At    time.Time
	Title string
	Body  string
}

// FromTask builds the reminder for t, firing lead before its date.
func FromTask(t model.Task, lead time.Duration) Request {
	title := t.Title
	if title == "" {
		title = "(no title)"
	}
	body := t.Contents
	if body == "" {
		body = "(no contents)"
	}
	return Request{ID: t.ID, At: t.Date.Add(-lead), Title: title, Body: body}
}

// Options configures a Scheduler.
type Options struct {
	// Notify is called on a timer goroutine when a reminder fires.
	Notify func(Request)

	// Logger receives scheduling events. If nil, logs are discarded.
	Logger *slog.Logger

	// Now returns the current time. If nil, time.Now is used.
	Now func() time.Time
}

type pending struct {
	req   Request
	timer *time.Timer
}

// Scheduler holds at most one pending reminder per task ID.
type Scheduler struct {
	notify func(Request)
	log    *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	pending map[string]*pending
}

// New returns an empty Scheduler.
func New(opts Options) *Scheduler {
	if opts.Notify == nil {
		opts.Notify = func(Request) {}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler{
		notify:  opts.Notify,
		log:     opts.Logger,
		now:     opts.Now,
		pending: make(map[string]*pending),
	}
}

// Schedule replaces any pending reminder for req.ID. Requests whose time has
// already passed only cancel the previous reminder. It reports whether a
// reminder is now pending.
func (s *Scheduler) Schedule(req Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(req.ID)

	d := req.At.Sub(s.now())
	if d <= 0 {
		s.log.Debug("reminder in the past, not scheduled", "id", req.ID, "at", req.At)
		return false
	}

	p := &pending{req: req}
	p.timer = time.AfterFunc(d, func() { s.fire(p) })
	s.pending[req.ID] = p
	s.log.Info("reminder scheduled", "id", req.ID, "at", req.At, "title", req.Title)
	return true
}

// Cancel removes the pending reminder for id. Unknown IDs are ignored.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelLocked(id) {
		s.log.Info("reminder cancelled", "id", id)
	}
	for _, req := range s.pendingLocked() {
		s.log.Debug("pending reminder", "id", req.ID, "at", req.At, "title", req.Title)
	}
}

func (s *Scheduler) cancelLocked(id string) bool {
	p, ok := s.pending[id]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(s.pending, id)
	return true
}

// Pending returns the pending reminders ordered by time.
func (s *Scheduler) Pending() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingLocked()
}

func (s *Scheduler) pendingLocked() []Request {
	reqs := make([]Request, 0, len(s.pending))
	for _, p := range s.pending {
		reqs = append(reqs, p.req)
	}
	slices.SortFunc(reqs, func(a, b Request) int {
		if c := a.At.Compare(b.At); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return reqs
}

// Sync schedules a reminder for every task whose reminder time is in the future
// and returns how many were scheduled.
func (s *Scheduler) Sync(tasks iter.Seq[model.Task], lead time.Duration) int {
	n := 0
	for t := range tasks {
		if s.Schedule(FromTask(t, lead)) {
			n++
		}
	}
	return n
}

// Stop cancels every pending reminder.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.pending {
		s.cancelLocked(id)
	}
}

func (s *Scheduler) fire(p *pending) {
	s.mu.Lock()
	// A replaced or cancelled reminder may still fire if its timer raced Stop.
	if s.pending[p.req.ID] != p {
		s.mu.Unlock()
		return
	}
	delete(s.pending, p.req.ID)
	s.mu.Unlock()

	s.log.Info("reminder fired", "id", p.req.ID, "title", p.req.Title)
	s.notify(p.req)
}
