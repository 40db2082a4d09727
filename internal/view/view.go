// Package view provides live, ordered projections over the task store.
//
// A view never holds a snapshot across store mutations: every access checks
// the source version and recomputes its ordering when it has moved.
package view

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/nissyi-gh/taskapp/internal/model"
)

var (
	// ErrIndexOutOfRange indicates a row index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrEmptyTerm is returned by Filter.Apply for an empty search term.
	ErrEmptyTerm = errors.New("empty search term")
)

// Source is a live collection of tasks, such as store.Results.
type Source interface {
	Version() uint64
	All() iter.Seq[model.Task]
}

// List is an ordered live view of tasks.
type List interface {
	Len() int
	At(i int) (model.Task, error)
	All() iter.Seq[model.Task]
	// Snapshot returns a copy of the current rows that later mutations do not affect.
	Snapshot() []model.Task
	Version() uint64
}

// cache holds the rows derived from a source at a given version.
type cache struct {
	mu      sync.Mutex
	valid   bool
	version uint64
	rows    []model.Task
}

// get returns the cached rows, rebuilding them when the source version moved.
func (c *cache) get(version func() uint64, build func() []model.Task) ([]model.Task, uint64) {
	// Read the version before building so a concurrent commit only causes a
	// spurious rebuild on the next access, never a stale cache.
	v := version()
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid || c.version != v {
		c.rows = build()
		c.version = v
		c.valid = true
	}
	return c.rows, c.version
}

func at(rows []model.Task, i int) (model.Task, error) {
	if i < 0 || i >= len(rows) {
		return model.Task{}, fmt.Errorf("row %d of %d: %w", i, len(rows), ErrIndexOutOfRange)
	}
	return rows[i], nil
}

func seq(rows []model.Task) iter.Seq[model.Task] {
	return func(yield func(model.Task) bool) {
		for _, t := range rows {
			if !yield(t) {
				return
			}
		}
	}
}

// Sorted presents a source's tasks in ascending date order. Tasks with equal
// dates keep the source's (insertion) order.
type Sorted struct {
	src   Source
	cache cache
}

// NewSorted returns a date-ascending view over src.
func NewSorted(src Source) *Sorted {
	return &Sorted{src: src}
}

func (s *Sorted) rows() ([]model.Task, uint64) {
	return s.cache.get(s.src.Version, func() []model.Task {
		rows := slices.Collect(s.src.All())
		slices.SortStableFunc(rows, func(a, b model.Task) int {
			return a.Date.Compare(b.Date)
		})
		return rows
	})
}

func (s *Sorted) Len() int {
	rows, _ := s.rows()
	return len(rows)
}

func (s *Sorted) At(i int) (model.Task, error) {
	rows, _ := s.rows()
	return at(rows, i)
}

// All yields the rows current when iteration starts; iterate again to see later changes.
func (s *Sorted) All() iter.Seq[model.Task] {
	return func(yield func(model.Task) bool) {
		rows, _ := s.rows()
		seq(rows)(yield)
	}
}

func (s *Sorted) Snapshot() []model.Task {
	rows, _ := s.rows()
	return slices.Clone(rows)
}

func (s *Sorted) Version() uint64 {
	_, v := s.rows()
	return v
}
