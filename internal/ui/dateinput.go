package ui

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const dateFields = 5

type dateInput struct {
	fields [dateFields]textinput.Model // 0:YYYY, 1:MM, 2:DD, 3:HH, 4:mm
	focus  int                         // 現在フォーカス中のフィールドインデックス
	now    func() time.Time
}

func newDateInput() dateInput {
	placeholders := [dateFields]string{"YYYY", "MM", "DD", "HH", "mm"}
	charLimits := [dateFields]int{4, 2, 2, 2, 2}

	var fields [dateFields]textinput.Model
	for i := 0; i < dateFields; i++ {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = charLimits[i]
		ti.Width = charLimits[i] + 2
		ti.Validate = func(s string) error {
			for _, r := range s {
				if !unicode.IsDigit(r) {
					return fmt.Errorf("digits only")
				}
			}
			return nil
		}
		fields[i] = ti
	}

	return dateInput{fields: fields, now: time.Now}
}

func (d *dateInput) Focus() tea.Cmd {
	return d.focusField(0)
}

func (d *dateInput) Blur() {
	for i := range d.fields {
		d.fields[i].Blur()
	}
}

// SetTime fills every field from t.
func (d *dateInput) SetTime(t time.Time) {
	parts := strings.Fields(t.Format("2006 01 02 15 04"))
	for i := range d.fields {
		d.fields[i].SetValue(parts[i])
	}
}

// Value returns the entered time in the local zone. Empty year and month
// default to the current ones; empty hour and minute default to 00.
func (d *dateInput) Value() (time.Time, error) {
	now := d.now()

	yyyy := strings.TrimSpace(d.fields[0].Value())
	mm := strings.TrimSpace(d.fields[1].Value())
	dd := strings.TrimSpace(d.fields[2].Value())
	hh := strings.TrimSpace(d.fields[3].Value())
	mi := strings.TrimSpace(d.fields[4].Value())

	if yyyy == "" {
		yyyy = fmt.Sprintf("%04d", now.Year())
	}
	if mm == "" {
		mm = fmt.Sprintf("%02d", int(now.Month()))
	}
	if dd == "" {
		return time.Time{}, fmt.Errorf("day is required")
	}

	dateStr := fmt.Sprintf("%s-%s-%s %s:%s", yyyy, padLeft(mm, 2), padLeft(dd, 2), padLeft(hh, 2), padLeft(mi, 2))

	t, err := time.ParseInLocation("2006-01-02 15:04", dateStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %s", dateStr)
	}

	return t, nil
}

func padLeft(s string, length int) string {
	for len(s) < length {
		s = "0" + s
	}
	return s
}

func (d *dateInput) focusField(idx int) tea.Cmd {
	d.focus = idx
	var cmds []tea.Cmd
	for i := range d.fields {
		if i == idx {
			cmds = append(cmds, d.fields[i].Focus())
		} else {
			d.fields[i].Blur()
		}
	}
	return tea.Batch(cmds...)
}

func (d dateInput) Update(msg tea.Msg) (dateInput, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "right":
			if d.focus < dateFields-1 {
				cmd := d.focusField(d.focus + 1)
				return d, cmd
			}
			return d, nil
		case "left":
			if d.focus > 0 {
				cmd := d.focusField(d.focus - 1)
				return d, cmd
			}
			return d, nil
		}
	}

	var cmd tea.Cmd
	d.fields[d.focus], cmd = d.fields[d.focus].Update(msg)
	return d, cmd
}

func (d dateInput) View() string {
	return d.fields[0].View() + " - " + d.fields[1].View() + " - " + d.fields[2].View() +
		"   " + d.fields[3].View() + " : " + d.fields[4].View()
}
