// Package presenter decides which task view is displayed and routes row
// actions through it.
package presenter

import (
	"errors"
	"fmt"
	"time"

	"github.com/nissyi-gh/taskapp/internal/model"
	"github.com/nissyi-gh/taskapp/internal/store"
	"github.com/nissyi-gh/taskapp/internal/view"
)

// ErrAlreadyRemoved reports an action on a task that no longer exists.
var ErrAlreadyRemoved = errors.New("task was already removed")

// ErrIndexOutOfRange is returned when a row index does not match the displayed view.
var ErrIndexOutOfRange = view.ErrIndexOutOfRange

// Store is the subset of the task store the presenter mutates.
type Store interface {
	Get(id string) (model.Task, error)
	Create(t model.Task) (model.Task, error)
	Update(id string, f model.Fields) (model.Task, error)
	Delete(id string) error
}

// State is the presenter's search state.
type State int

const (
	Browsing State = iota
	Searching
)

func (s State) String() string {
	if s == Searching {
		return "searching"
	}
	return "browsing"
}

// EditRequest is handed to the edit screen when it opens.
type EditRequest struct {
	Task  model.Task
	IsNew bool
}

// Draft holds the values submitted from the edit screen.
type Draft struct {
	Title    string
	Category string
	Contents string
	Date     time.Time
}

// DraftOf returns a draft initialized from t.
func DraftOf(t model.Task) Draft {
	return Draft{Title: t.Title, Category: t.Category, Contents: t.Contents, Date: t.Date}
}

// Presenter binds either the sorted view (browsing) or a filtered view
// (searching) as the single authoritative list of displayed rows.
type Presenter struct {
	store    Store
	sorted   *view.Sorted
	filter   *view.Filter
	filtered *view.Filtered
	state    State

	onDelete []func(model.Task)
	onSave   []func(model.Task)
}

// New returns a presenter in the Browsing state.
func New(s Store, sorted *view.Sorted) *Presenter {
	return &Presenter{
		store:  s,
		sorted: sorted,
		filter: view.NewFilter(sorted),
		state:  Browsing,
	}
}

// OnDelete registers fn to run after a task has been deleted.
func (p *Presenter) OnDelete(fn func(model.Task)) {
	p.onDelete = append(p.onDelete, fn)
}

// OnSave registers fn to run after a task has been created or updated.
func (p *Presenter) OnSave(fn func(model.Task)) {
	p.onSave = append(p.onSave, fn)
}

// SearchTextChanged switches to Browsing for empty text and to Searching otherwise.
func (p *Presenter) SearchTextChanged(text string) {
	if text == "" {
		p.state = Browsing
		p.filtered = nil
		return
	}
	filtered, err := p.filter.Apply(text)
	if err != nil {
		p.state = Browsing
		p.filtered = nil
		return
	}
	p.state = Searching
	p.filtered = filtered
}

// State returns the current search state.
func (p *Presenter) State() State {
	return p.state
}

// Term returns the active search term, or "" while browsing.
func (p *Presenter) Term() string {
	if p.state != Searching {
		return ""
	}
	return p.filtered.Term()
}

// Active returns the view currently displayed.
func (p *Presenter) Active() view.List {
	if p.state == Searching {
		return p.filtered
	}
	return p.sorted
}

// RowCount returns the number of displayed rows.
func (p *Presenter) RowCount() int {
	return p.Active().Len()
}

// RowAt returns the i-th displayed row.
func (p *Presenter) RowAt(i int) (model.Task, error) {
	return p.Active().At(i)
}

// Rows returns a snapshot of the displayed rows for one render pass.
func (p *Presenter) Rows() []model.Task {
	return p.Active().Snapshot()
}

// IndexOf returns the displayed row index of the task with id, or -1.
func (p *Presenter) IndexOf(id string) int {
	i := 0
	for t := range p.Active().All() {
		if t.ID == id {
			return i
		}
		i++
	}
	return -1
}

// DeleteRow deletes the task displayed at row i and returns it.
func (p *Presenter) DeleteRow(i int) (model.Task, error) {
	t, err := p.RowAt(i)
	if err != nil {
		return model.Task{}, err
	}
	if err := p.Delete(t.ID); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

// Delete deletes the task with id and runs the OnDelete hooks.
func (p *Presenter) Delete(id string) error {
	t, err := p.store.Get(id)
	if err != nil {
		return translate(err)
	}
	if err := p.store.Delete(id); err != nil {
		return translate(err)
	}
	for _, fn := range p.onDelete {
		fn(t)
	}
	return nil
}

// NewRequest returns the handoff for creating a task.
func (p *Presenter) NewRequest() EditRequest {
	return EditRequest{Task: model.New(), IsNew: true}
}

// EditRow returns the handoff for editing the task displayed at row i.
func (p *Presenter) EditRow(i int) (EditRequest, error) {
	t, err := p.RowAt(i)
	if err != nil {
		return EditRequest{}, err
	}
	return EditRequest{Task: t}, nil
}

// EditTask returns the handoff for editing the task with id.
func (p *Presenter) EditTask(id string) (EditRequest, error) {
	t, err := p.store.Get(id)
	if err != nil {
		return EditRequest{}, translate(err)
	}
	return EditRequest{Task: t}, nil
}

// Save creates or updates the task described by req with the values of d,
// then runs the OnSave hooks.
func (p *Presenter) Save(req EditRequest, d Draft) (model.Task, error) {
	var saved model.Task
	var err error
	if req.IsNew {
		t := req.Task
		t.Title, t.Category, t.Contents, t.Date = d.Title, d.Category, d.Contents, d.Date
		saved, err = p.store.Create(t)
	} else {
		saved, err = p.store.Update(req.Task.ID, model.Fields{
			Title:    &d.Title,
			Category: &d.Category,
			Contents: &d.Contents,
			Date:     &d.Date,
		})
	}
	if err != nil {
		return model.Task{}, translate(err)
	}
	for _, fn := range p.onSave {
		fn(saved)
	}
	return saved, nil
}

func translate(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrAlreadyRemoved, err)
	}
	return err
}
