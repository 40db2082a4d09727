package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/nissyi-gh/taskapp/internal/model"
	_ "modernc.org/sqlite"
)

const dateLayout = time.RFC3339Nano

// ChangeKind identifies the mutation that produced a Change.
type ChangeKind int

const (
	Created ChangeKind = iota
	Updated
	Deleted
)

func (k ChangeKind) String() string {
	switch k {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change describes a committed mutation. For Deleted, Task holds the removed record.
type Change struct {
	Kind    ChangeKind
	Task    model.Task
	Version uint64
}

// TaskStore manages SQLite persistence for tasks and keeps an in-memory
// mirror of the committed rows in insertion order.
//
// The mirror slice is never modified in place once published: readers hold
// a slice header and keep seeing the version they loaded.
type TaskStore struct {
	db *sql.DB

	mu      sync.RWMutex
	tasks   []model.Task
	index   map[string]int
	version uint64

	subMu  sync.Mutex
	subs   map[int]func(Change)
	nextID int
}

// DefaultDBPath returns $XDG_DATA_HOME/taskapp/taskapp.db, creating the directory.
func DefaultDBPath() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	dir := filepath.Join(dataHome, "taskapp")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "taskapp.db"), nil
}

// Open opens (or creates) the SQLite database, ensures the schema exists and
// loads every task into memory.
func Open(dbPath string) (*TaskStore, error) {
	if dbPath == "" {
		var err error
		dbPath, err = DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("determine db path: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS tasks (
		seq   INTEGER PRIMARY KEY AUTOINCREMENT,
		id    TEXT    NOT NULL UNIQUE,
		title TEXT    NOT NULL DEFAULT '',
		date  TEXT    NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	if err := ensureColumn(db, "tasks", "category", "TEXT NOT NULL DEFAULT ''"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate category: %w", err)
	}

	if err := ensureColumn(db, "tasks", "contents", "TEXT NOT NULL DEFAULT ''"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate contents: %w", err)
	}

	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS tasks_date ON tasks (date)"); err != nil {
		db.Close()
		return nil, fmt.Errorf("create date index: %w", err)
	}

	s := &TaskStore{db: db, subs: make(map[int]func(Change))}
	if err := s.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return s, nil
}

// ensureColumn adds column to table if an older schema lacks it.
func ensureColumn(db *sql.DB, table, column, ddl string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return err
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var cid int
		var name, typ string
		var notNull, pk int
		var dfltValue sql.NullString
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &pk); err != nil {
			return err
		}
		if name == column {
			found = true
			break
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	if !found {
		_, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, ddl))
		return err
	}
	return nil
}

func scanTask(scanner interface{ Scan(...any) error }) (model.Task, error) {
	var t model.Task
	var dateStr string
	if err := scanner.Scan(&t.ID, &t.Title, &t.Category, &t.Contents, &dateStr); err != nil {
		return model.Task{}, err
	}
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return model.Task{}, fmt.Errorf("parse date of task %s: %w", t.ID, err)
	}
	t.Date = date.Local()
	return t, nil
}

func (s *TaskStore) load() error {
	rows, err := s.db.Query("SELECT id, title, category, contents, date FROM tasks ORDER BY seq ASC")
	if err != nil {
		return fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	index := make(map[string]int)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return fmt.Errorf("scan task: %w", err)
		}
		index[t.ID] = len(tasks)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.tasks = tasks
	s.index = index
	s.version++
	s.mu.Unlock()
	return nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// Create inserts a new task and returns it. An empty ID is replaced with a
// fresh one and a zero date with the current time.
func (s *TaskStore) Create(t model.Task) (model.Task, error) {
	if t.ID == "" {
		t.ID = model.NewID()
	}
	if t.Date.IsZero() {
		t.Date = time.Now()
	}

	s.mu.Lock()
	if _, ok := s.index[t.ID]; ok {
		s.mu.Unlock()
		return model.Task{}, fmt.Errorf("create task %s: %w", t.ID, ErrExists)
	}

	err := s.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			"INSERT INTO tasks (id, title, category, contents, date) VALUES (?, ?, ?, ?, ?)",
			t.ID, t.Title, t.Category, t.Contents, formatDate(t.Date),
		)
		return err
	})
	if err != nil {
		s.mu.Unlock()
		return model.Task{}, persistErr("create", t.ID, err)
	}

	s.index[t.ID] = len(s.tasks)
	s.tasks = append(s.tasks, t)
	change := s.commit(Created, t)
	s.mu.Unlock()

	s.notify(change)
	return t, nil
}

// Update overwrites the non-nil fields of the task with the given ID and
// returns the updated task.
func (s *TaskStore) Update(id string, f model.Fields) (model.Task, error) {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return model.Task{}, fmt.Errorf("update task %s: %w", id, ErrNotFound)
	}
	if f.Empty() {
		t := s.tasks[i]
		s.mu.Unlock()
		return t, nil
	}

	t := f.Apply(s.tasks[i])
	err := s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			"UPDATE tasks SET title = ?, category = ?, contents = ?, date = ? WHERE id = ?",
			t.Title, t.Category, t.Contents, formatDate(t.Date), id,
		)
		if err != nil {
			return err
		}
		return requireRow(res)
	})
	if err != nil {
		s.mu.Unlock()
		return model.Task{}, s.mutationErr("update", id, err)
	}

	tasks := slices.Clone(s.tasks)
	tasks[i] = t
	s.tasks = tasks
	change := s.commit(Updated, t)
	s.mu.Unlock()

	s.notify(change)
	return t, nil
}

// Delete removes the task with the given ID.
func (s *TaskStore) Delete(id string) error {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("delete task %s: %w", id, ErrNotFound)
	}

	err := s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec("DELETE FROM tasks WHERE id = ?", id)
		if err != nil {
			return err
		}
		return requireRow(res)
	})
	if err != nil {
		s.mu.Unlock()
		return s.mutationErr("delete", id, err)
	}

	removed := s.tasks[i]
	s.tasks = slices.Concat(s.tasks[:i], s.tasks[i+1:])
	delete(s.index, id)
	for j := i; j < len(s.tasks); j++ {
		s.index[s.tasks[j].ID] = j
	}
	change := s.commit(Deleted, removed)
	s.mu.Unlock()

	s.notify(change)
	return nil
}

// Get retrieves a single task by its ID.
func (s *TaskStore) Get(id string) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return model.Task{}, fmt.Errorf("get task %s: %w", id, ErrNotFound)
	}
	return s.tasks[i], nil
}

// All returns a live handle over every task in insertion order.
func (s *TaskStore) All() Results {
	return Results{s: s}
}

// Version returns a counter that increases with every committed mutation.
func (s *TaskStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers fn to be called after every committed mutation, on the
// goroutine that performed it. The returned function removes the subscription.
func (s *TaskStore) Subscribe(fn func(Change)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// Close closes the database connection.
func (s *TaskStore) Close() error {
	return s.db.Close()
}

func (s *TaskStore) withTx(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// commit must be called with s.mu held.
func (s *TaskStore) commit(kind ChangeKind, t model.Task) Change {
	s.version++
	return Change{Kind: kind, Task: t, Version: s.version}
}

func (s *TaskStore) notify(c Change) {
	s.subMu.Lock()
	subs := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(c)
	}
}

func (s *TaskStore) mutationErr(op, id string, err error) error {
	if errors.Is(err, errNoRow) {
		return fmt.Errorf("%s task %s: %w", op, id, ErrNotFound)
	}
	return persistErr(op, id, err)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNoRow
	}
	return nil
}
