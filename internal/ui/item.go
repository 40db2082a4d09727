package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/dustin/go-humanize"
	"github.com/nissyi-gh/taskapp/internal/model"
)

// TaskItem wraps model.Task to satisfy the list.DefaultItem interface.
type TaskItem struct {
	Task model.Task
	// DateFormat is the time layout for the description row.
	DateFormat string
	// Relative appends "in 3 hours" style text to the date.
	Relative bool
	Now      time.Time
}

func (i TaskItem) Title() string {
	mark := ""
	if i.Task.IsToday(i.Now) && !i.Task.IsPast(i.Now) {
		mark = "📌 "
	}
	title := i.Task.Title
	if title == "" {
		title = "(no title)"
	}
	return mark + title
}

func (i TaskItem) Description() string {
	desc := i.Task.Date.Format(i.DateFormat)
	if i.Relative {
		desc += " (" + humanize.RelTime(i.Task.Date, i.Now, "ago", "from now") + ")"
	}
	if i.Task.Category != "" {
		desc += "  #" + i.Task.Category
	}
	return desc
}

// FilterValue is unused: searching goes through the presenter, not the list.
func (i TaskItem) FilterValue() string {
	return i.Task.Category
}

// BuildItems converts the displayed rows into list items, preserving order.
func BuildItems(tasks []model.Task, dateFormat string, relative bool, now time.Time) []list.Item {
	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = TaskItem{Task: t, DateFormat: dateFormat, Relative: relative, Now: now}
	}
	return items
}
