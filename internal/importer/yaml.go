package importer

import (
	"fmt"
	"io"
	"iter"
	"strings"
	"time"

	"github.com/nissyi-gh/taskapp/internal/model"
	"gopkg.in/yaml.v3"
)

// dateLayouts are tried in order when parsing a task date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// YAMLTask represents a single task in the YAML input.
type YAMLTask struct {
	ID       string `yaml:"id,omitempty"`
	Title    string `yaml:"title"`
	Category string `yaml:"category,omitempty"`
	Contents string `yaml:"contents,omitempty"`
	Date     string `yaml:"date,omitempty"`
}

// YAMLInput represents the root structure of the YAML input.
type YAMLInput struct {
	Tasks []YAMLTask `yaml:"tasks"`
}

// Creator stores a new task.
type Creator interface {
	Create(t model.Task) (model.Task, error)
}

// ParseDate parses s in the local time zone using the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD [HH:MM])", s)
}

// Parse decodes YAML into tasks without storing them. Tasks without a date
// are dated now.
func Parse(yamlStr string) ([]model.Task, error) {
	var input YAMLInput
	if err := yaml.Unmarshal([]byte(yamlStr), &input); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}

	if len(input.Tasks) == 0 {
		return nil, fmt.Errorf("no tasks found in YAML")
	}

	now := time.Now()
	tasks := make([]model.Task, 0, len(input.Tasks))
	for i, yt := range input.Tasks {
		t := model.Task{
			ID:       strings.TrimSpace(yt.ID),
			Title:    yt.Title,
			Category: yt.Category,
			Contents: yt.Contents,
			Date:     now,
		}
		if yt.Date != "" {
			d, err := ParseDate(yt.Date)
			if err != nil {
				return nil, fmt.Errorf("task %d (%q): %w", i+1, yt.Title, err)
			}
			t.Date = d
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Import parses a YAML string and creates the tasks through c.
// Returns the number of tasks created.
func Import(c Creator, yamlStr string) (int, error) {
	tasks, err := Parse(yamlStr)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, t := range tasks {
		if _, err := c.Create(t); err != nil {
			return count, fmt.Errorf("add task %q: %w", t.Title, err)
		}
		count++
	}
	return count, nil
}

// Export writes tasks in the format Import reads.
func Export(w io.Writer, tasks iter.Seq[model.Task]) error {
	out := YAMLInput{Tasks: []YAMLTask{}}
	for t := range tasks {
		out.Tasks = append(out.Tasks, YAMLTask{
			ID:       t.ID,
			Title:    t.Title,
			Category: t.Category,
			Contents: t.Contents,
			Date:     t.Date.Format(time.RFC3339Nano),
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}
	return enc.Close()
}
