package store

import (
	"iter"

	"github.com/nissyi-gh/taskapp/internal/model"
)

// Results is a live, read-through handle over the store's tasks in insertion
// order. Every call observes the latest committed state; nothing is cached.
type Results struct {
	s *TaskStore
}

func (r Results) current() ([]model.Task, uint64) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.tasks, r.s.version
}

// Len returns the number of stored tasks.
func (r Results) Len() int {
	tasks, _ := r.current()
	return len(tasks)
}

// At returns the i-th task in insertion order.
func (r Results) At(i int) (model.Task, bool) {
	tasks, _ := r.current()
	if i < 0 || i >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[i], true
}

// All yields every task of the version current when iteration starts.
// The sequence may be iterated again to observe later mutations.
func (r Results) All() iter.Seq[model.Task] {
	return func(yield func(model.Task) bool) {
		tasks, _ := r.current()
		for _, t := range tasks {
			if !yield(t) {
				return
			}
		}
	}
}

// Version returns the store version the handle currently observes.
func (r Results) Version() uint64 {
	_, v := r.current()
	return v
}
