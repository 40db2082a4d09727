package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/nissyi-gh/taskapp/internal/model"
)

func TestTaskItem(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	later := TaskItem{
		Task:       model.Task{Title: "standup", Category: "work", Date: now.Add(2 * time.Hour)},
		DateFormat: "2006-01-02 15:04",
		Relative:   true,
		Now:        now,
	}
	if got := later.Title(); got != "📌 standup" {
		t.Errorf("Title = %q", got)
	}
	desc := later.Description()
	if !strings.HasPrefix(desc, "2026-10-16 11:00 (") || !strings.Contains(desc, "from now") || !strings.HasSuffix(desc, "#work") {
		t.Errorf("Description = %q", desc)
	}

	past := TaskItem{Task: model.Task{Date: now.Add(-time.Hour)}, DateFormat: "15:04", Now: now}
	if got := past.Title(); got != "(no title)" {
		t.Errorf("Title = %q", got)
	}
	if got := past.Description(); got != "08:00" {
		t.Errorf("Description = %q", got)
	}
}

func TestBuildItemsKeepsOrder(t *testing.T) {
	tasks := []model.Task{{ID: "b"}, {ID: "a"}, {ID: "c"}}
	items := BuildItems(tasks, "15:04", false, time.Now())
	for i, it := range items {
		if id := it.(TaskItem).Task.ID; id != tasks[i].ID {
			t.Errorf("item %d = %s, want %s", i, id, tasks[i].ID)
		}
	}
}
