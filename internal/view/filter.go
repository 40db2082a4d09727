package view

import (
	"iter"
	"slices"

	"github.com/nissyi-gh/taskapp/internal/model"
)

// Filter derives category-filtered views from a sorted view.
type Filter struct {
	src *Sorted
}

// NewFilter returns a Filter over src.
func NewFilter(src *Sorted) *Filter {
	return &Filter{src: src}
}

// Apply returns a live view of the rows whose category contains term.
// An empty term is rejected; callers show the sorted view instead.
func (f *Filter) Apply(term string) (*Filtered, error) {
	if term == "" {
		return nil, ErrEmptyTerm
	}
	return &Filtered{src: f.src, matcher: NewMatcher(term)}, nil
}

// Filtered is a live subsequence of a Sorted view.
type Filtered struct {
	src     *Sorted
	matcher Matcher
	cache   cache
}

// Term returns the search term the view was built for.
func (f *Filtered) Term() string {
	return f.matcher.Term()
}

func (f *Filtered) rows() ([]model.Task, uint64) {
	return f.cache.get(f.src.Version, func() []model.Task {
		var rows []model.Task
		for t := range f.src.All() {
			if f.matcher.Match(t.Category) {
				rows = append(rows, t)
			}
		}
		return rows
	})
}

func (f *Filtered) Len() int {
	rows, _ := f.rows()
	return len(rows)
}

func (f *Filtered) At(i int) (model.Task, error) {
	rows, _ := f.rows()
	return at(rows, i)
}

func (f *Filtered) All() iter.Seq[model.Task] {
	return func(yield func(model.Task) bool) {
		rows, _ := f.rows()
		seq(rows)(yield)
	}
}

func (f *Filtered) Snapshot() []model.Task {
	rows, _ := f.rows()
	return slices.Clone(rows)
}

func (f *Filtered) Version() uint64 {
	_, v := f.rows()
	return v
}
