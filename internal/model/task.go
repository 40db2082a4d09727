package model

import (
	"time"

	"github.com/google/uuid"
)

// Task represents a single task stored in the database.
type Task struct {
	ID       string
	Title    string
	Category string
	Contents string
	Date     time.Time
}

// Fields holds a partial update. Nil fields are left unchanged.
type Fields struct {
	Title    *string
	Category *string
	Contents *string
	Date     *time.Time
}

// NewID returns a fresh globally unique task ID.
func NewID() string {
	return uuid.NewString()
}

// New returns a task with a fresh ID, empty text fields and the current time.
func New() Task {
	return Task{ID: NewID(), Date: time.Now()}
}

// Empty reports whether no field is set.
func (f Fields) Empty() bool {
	return f.Title == nil && f.Category == nil && f.Contents == nil && f.Date == nil
}

// Apply returns t with the non-nil fields of f overwritten. The ID is preserved.
func (f Fields) Apply(t Task) Task {
	if f.Title != nil {
		t.Title = *f.Title
	}
	if f.Category != nil {
		t.Category = *f.Category
	}
	if f.Contents != nil {
		t.Contents = *f.Contents
	}
	if f.Date != nil {
		t.Date = *f.Date
	}
	return t
}

// IsPast returns true if the task's date is before now.
func (t Task) IsPast(now time.Time) bool {
	return t.Date.Before(now)
}

// IsToday returns true if the task falls on the same calendar day as now.
func (t Task) IsToday(now time.Time) bool {
	y1, m1, d1 := t.Date.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
