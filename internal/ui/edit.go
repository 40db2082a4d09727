package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nissyi-gh/taskapp/internal/presenter"
)

type editField int

const (
	fieldTitle editField = iota
	fieldCategory
	fieldContents
	fieldDate
	editFieldCount
)

// editForm is the detail/edit screen. It is built from the EditRequest the
// list screen hands over and never looks at the list again.
type editForm struct {
	req      presenter.EditRequest
	title    textinput.Model
	category textinput.Model
	contents textarea.Model
	date     dateInput
	focus    editField
}

func newEditForm(req presenter.EditRequest) editForm {
	title := textinput.New()
	title.Placeholder = "Title..."
	title.CharLimit = 256
	title.SetValue(req.Task.Title)

	category := textinput.New()
	category.Placeholder = "Category..."
	category.CharLimit = 64
	category.SetValue(req.Task.Category)

	contents := textarea.New()
	contents.Placeholder = "Contents..."
	contents.CharLimit = 4096
	contents.SetHeight(6)
	contents.SetValue(req.Task.Contents)

	date := newDateInput()
	date.SetTime(req.Task.Date)

	return editForm{
		req:      req,
		title:    title,
		category: category,
		contents: contents,
		date:     date,
	}
}

func (f *editForm) SetWidth(w int) {
	f.title.Width = w
	f.category.Width = w
	f.contents.SetWidth(w)
}

func (f *editForm) focusField(field editField) tea.Cmd {
	f.focus = field
	f.title.Blur()
	f.category.Blur()
	f.contents.Blur()
	f.date.Blur()

	switch field {
	case fieldTitle:
		return f.title.Focus()
	case fieldCategory:
		return f.category.Focus()
	case fieldContents:
		return f.contents.Focus()
	case fieldDate:
		return f.date.Focus()
	}
	return nil
}

func (f editForm) Update(msg tea.Msg) (editForm, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "tab":
			cmd := f.focusField((f.focus + 1) % editFieldCount)
			return f, cmd
		case "shift+tab":
			cmd := f.focusField((f.focus + editFieldCount - 1) % editFieldCount)
			return f, cmd
		}
	}

	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldCategory:
		f.category, cmd = f.category.Update(msg)
	case fieldContents:
		f.contents, cmd = f.contents.Update(msg)
	case fieldDate:
		f.date, cmd = f.date.Update(msg)
	}
	return f, cmd
}

// Draft returns the entered values. The date fields only hold minutes, so an
// untouched date keeps the task's exact time.
func (f editForm) Draft() (presenter.Draft, error) {
	date, err := f.date.Value()
	if err != nil {
		return presenter.Draft{}, err
	}
	if orig := f.req.Task.Date; !orig.IsZero() && sameMinute(date, orig) {
		date = orig
	}
	return presenter.Draft{
		Title:    strings.TrimSpace(f.title.Value()),
		Category: strings.TrimSpace(f.category.Value()),
		Contents: f.contents.Value(),
		Date:     date,
	}, nil
}

func (f editForm) View() string {
	label := func(field editField, name string) string {
		if f.focus == field {
			return titleStyle.Render("> " + name)
		}
		return statusStyle.Render("  " + name)
	}
	return label(fieldTitle, "title") + "\n" + f.title.View() + "\n\n" +
		label(fieldCategory, "category") + "\n" + f.category.View() + "\n\n" +
		label(fieldContents, "contents") + "\n" + f.contents.View() + "\n\n" +
		label(fieldDate, "date") + "\n" + f.date.View()
}

func sameMinute(a, b time.Time) bool {
	const layout = "2006-01-02 15:04"
	return a.In(time.Local).Format(layout) == b.In(time.Local).Format(layout)
}
