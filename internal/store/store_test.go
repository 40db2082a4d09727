package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/nissyi-gh/taskapp/internal/model"
)

func openTestStore(t *testing.T) *TaskStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func titles(r Results) []string {
	var out []string
	for t := range r.All() {
		out = append(out, t.Title)
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func TestCreateAssignsDefaults(t *testing.T) {
	s := openTestStore(t)

	before := time.Now()
	task, err := s.Create(model.Task{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID == "" {
		t.Error("expected an ID to be assigned")
	}
	if task.Date.Before(before) {
		t.Errorf("date %v should default to creation time", task.Date)
	}

	got, err := s.Get(task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != task.ID || got.Title != "" || got.Category != "" || got.Contents != "" {
		t.Errorf("unexpected task %+v", got)
	}
}

func TestCreateDuplicateID(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Create(model.Task{ID: "same"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := s.Create(model.Task{ID: "same"})
	if !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if n := s.All().Len(); n != 1 {
		t.Errorf("expected 1 task, got %d", n)
	}
}

func TestAllIsLive(t *testing.T) {
	s := openTestStore(t)
	all := s.All()

	a, _ := s.Create(model.Task{Title: "A"})
	if _, err := s.Create(model.Task{Title: "B"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := titles(all); !slices.Equal(got, []string{"A", "B"}) {
		t.Fatalf("expected [A B], got %v", got)
	}

	if _, err := s.Update(a.ID, model.Fields{Title: ptr("A2")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := titles(all); !slices.Equal(got, []string{"A2", "B"}) {
		t.Fatalf("expected [A2 B], got %v", got)
	}

	if err := s.Delete(a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := titles(all); !slices.Equal(got, []string{"B"}) {
		t.Fatalf("expected [B], got %v", got)
	}
}

func TestUpdatePreservesIDAndUnsetFields(t *testing.T) {
	s := openTestStore(t)
	task, _ := s.Create(model.Task{Title: "A", Category: "work", Contents: "body"})

	got, err := s.Update(task.ID, model.Fields{Category: ptr("office")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ID != task.ID || got.Title != "A" || got.Contents != "body" || got.Category != "office" {
		t.Errorf("unexpected task after update: %+v", got)
	}
}

func TestUpdateAndDeleteNotFound(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Update("missing", model.Fields{Title: ptr("x")}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Update("missing", model.Fields{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty update: expected ErrNotFound, got %v", err)
	}
	if err := s.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get: expected ErrNotFound, got %v", err)
	}
}

func TestPersistenceErrorLeavesStateUnchanged(t *testing.T) {
	s := openTestStore(t)
	task, _ := s.Create(model.Task{Title: "A"})
	version := s.Version()

	// Closing the database makes every transaction fail to begin.
	s.db.Close()

	var perr *PersistenceError
	if _, err := s.Create(model.Task{Title: "B"}); !errors.As(err, &perr) {
		t.Errorf("create: expected PersistenceError, got %v", err)
	} else if perr.Op != "create" {
		t.Errorf("expected op create, got %q", perr.Op)
	}
	if _, err := s.Update(task.ID, model.Fields{Title: ptr("A2")}); !errors.As(err, &perr) {
		t.Errorf("update: expected PersistenceError, got %v", err)
	}
	if err := s.Delete(task.ID); !errors.As(err, &perr) {
		t.Errorf("delete: expected PersistenceError, got %v", err)
	}

	if got := titles(s.All()); !slices.Equal(got, []string{"A"}) {
		t.Errorf("mirror changed after failed commits: %v", got)
	}
	if s.Version() != version {
		t.Errorf("version advanced after failed commits")
	}
}

func TestReopenPreservesOrderAndFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	date := time.Date(2026, 10, 16, 9, 30, 0, 123, time.UTC)
	first, _ := s.Create(model.Task{Title: "first", Category: "work", Contents: "c", Date: date})
	s.Create(model.Task{Title: "second", Date: date})
	s.Create(model.Task{Title: "third", Date: date})
	s.Delete(first.ID)
	s.Create(model.Task{Title: "fourth", Date: date})
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	if got := titles(s.All()); !slices.Equal(got, []string{"second", "third", "fourth"}) {
		t.Errorf("expected insertion order, got %v", got)
	}
	task, _ := s.All().At(0)
	if !task.Date.Equal(date) {
		t.Errorf("date round trip: got %v, want %v", task.Date, date)
	}
}

func TestMigratesOldSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE tasks (
		seq   INTEGER PRIMARY KEY AUTOINCREMENT,
		id    TEXT    NOT NULL UNIQUE,
		title TEXT    NOT NULL DEFAULT '',
		date  TEXT    NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create old schema: %v", err)
	}
	_, err = db.Exec("INSERT INTO tasks (id, title, date) VALUES ('old', 'legacy', '2026-01-02T03:04:05Z')")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	db.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open migrated: %v", err)
	}
	defer s.Close()

	task, err := s.Get("old")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if task.Title != "legacy" || task.Category != "" || task.Contents != "" {
		t.Errorf("unexpected migrated task %+v", task)
	}
	if _, err := s.Update("old", model.Fields{Category: ptr("work")}); err != nil {
		t.Errorf("update migrated row: %v", err)
	}
}

func TestSubscribe(t *testing.T) {
	s := openTestStore(t)

	var changes []Change
	unsubscribe := s.Subscribe(func(c Change) {
		// Subscribers run after the commit and may read the store.
		if c.Kind != Deleted {
			if _, err := s.Get(c.Task.ID); err != nil {
				t.Errorf("task %s not visible to subscriber: %v", c.Task.ID, err)
			}
		}
		changes = append(changes, c)
	})

	task, _ := s.Create(model.Task{Title: "A"})
	s.Update(task.ID, model.Fields{Title: ptr("B")})
	s.Delete(task.ID)
	s.Delete(task.ID)

	unsubscribe()
	s.Create(model.Task{Title: "C"})

	kinds := make([]ChangeKind, len(changes))
	for i, c := range changes {
		kinds[i] = c.Kind
	}
	if !slices.Equal(kinds, []ChangeKind{Created, Updated, Deleted}) {
		t.Fatalf("unexpected changes %v", kinds)
	}
	if changes[2].Task.Title != "B" {
		t.Errorf("delete change should carry removed task, got %+v", changes[2].Task)
	}
	for i := 1; i < len(changes); i++ {
		if changes[i].Version <= changes[i-1].Version {
			t.Errorf("versions not increasing: %d then %d", changes[i-1].Version, changes[i].Version)
		}
	}
}

func TestResultsAt(t *testing.T) {
	s := openTestStore(t)
	s.Create(model.Task{Title: "A"})

	if _, ok := s.All().At(1); ok {
		t.Error("At(1) should be out of range")
	}
	if _, ok := s.All().At(-1); ok {
		t.Error("At(-1) should be out of range")
	}
	if task, ok := s.All().At(0); !ok || task.Title != "A" {
		t.Errorf("At(0) = %+v, %v", task, ok)
	}
}
