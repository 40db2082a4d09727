// Package app assembles a session: the store, its views, the presenter and
// the reminder scheduler, wired together for one screen or command.
package app

import (
	"fmt"
	"log/slog"

	"github.com/nissyi-gh/taskapp/internal/config"
	"github.com/nissyi-gh/taskapp/internal/model"
	"github.com/nissyi-gh/taskapp/internal/presenter"
	"github.com/nissyi-gh/taskapp/internal/reminder"
	"github.com/nissyi-gh/taskapp/internal/store"
	"github.com/nissyi-gh/taskapp/internal/view"
)

// Options configures Open.
type Options struct {
	// Config is the loaded configuration. If nil, config.Default is used.
	Config *config.Config

	// DBPath overrides Config.Database.Path when non-empty.
	DBPath string

	// Notify receives fired reminders.
	Notify func(reminder.Request)

	// Logger receives session events. If nil, logs are discarded.
	Logger *slog.Logger
}

// Session owns the store and everything derived from it.
type Session struct {
	Config    *config.Config
	Store     *store.TaskStore
	Sorted    *view.Sorted
	Presenter *presenter.Presenter
	Reminders *reminder.Scheduler
	Log       *slog.Logger

	unsubscribe func()
}

// Open opens the task store and wires views, presenter and reminders.
func Open(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	dbPath := cfg.Database.Path
	if opts.DBPath != "" {
		dbPath = opts.DBPath
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	sorted := view.NewSorted(st.All())
	p := presenter.New(st, sorted)
	sched := reminder.New(reminder.Options{
		Notify: opts.Notify,
		Logger: log.With("component", "reminder"),
	})

	s := &Session{
		Config:    cfg,
		Store:     st,
		Sorted:    sorted,
		Presenter: p,
		Reminders: sched,
		Log:       log,
	}

	s.unsubscribe = st.Subscribe(func(c store.Change) {
		log.Debug("task "+c.Kind.String(), "id", c.Task.ID, "version", c.Version)
	})

	if cfg.Reminder.Enabled {
		lead := cfg.Reminder.Lead
		p.OnSave(func(t model.Task) {
			sched.Schedule(reminder.FromTask(t, lead))
		})
		p.OnDelete(func(t model.Task) {
			sched.Cancel(t.ID)
		})
		n := sched.Sync(sorted.All(), lead)
		log.Info("session opened", "tasks", sorted.Len(), "reminders", n)
	} else {
		log.Info("session opened", "tasks", sorted.Len(), "reminders", "disabled")
	}

	return s, nil
}

// Create stores t as a new task through the presenter so save hooks run.
func (s *Session) Create(t model.Task) (model.Task, error) {
	return s.Presenter.Save(presenter.EditRequest{Task: t, IsNew: true}, presenter.DraftOf(t))
}

// Close stops pending reminders and closes the store.
func (s *Session) Close() error {
	s.unsubscribe()
	s.Reminders.Stop()
	return s.Store.Close()
}
