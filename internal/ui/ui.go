package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/nissyi-gh/taskapp/internal/app"
	"github.com/nissyi-gh/taskapp/internal/markdown"
	"github.com/nissyi-gh/taskapp/internal/presenter"
	"github.com/nissyi-gh/taskapp/internal/prompt"
	"github.com/nissyi-gh/taskapp/internal/reminder"
)

type appState int

const (
	stateList appState = iota
	stateSearch
	stateEdit
	stateConfirm
)

var (
	appStyle      = lipgloss.NewStyle().Padding(1, 2)
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	confirmStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	reminderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	detailStyle   = lipgloss.NewStyle().
			Padding(1, 2).
			BorderLeft(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241"))
	contentsBoxStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("241"))
)

type extraKeyMap struct {
	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Search key.Binding
	Copy   key.Binding
	Prompt key.Binding
}

func newExtraKeyMap() extraKeyMap {
	return extraKeyMap{
		Add: key.NewBinding(
			key.WithKeys("a", "n"),
			key.WithHelp("a/n", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("enter/e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search category"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy contents"),
		),
		Prompt: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "copy prompt"),
		),
	}
}

func (k extraKeyMap) bindings() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Delete, k.Search, k.Copy, k.Prompt}
}

// ChangedMsg tells the model that the store committed a mutation.
type ChangedMsg struct{}

// ReminderMsg delivers a fired reminder to the model.
type ReminderMsg reminder.Request

// Model is the top-level BubbleTea model for the task list screen.
type Model struct {
	state   appState
	list    list.Model
	search  textinput.Model
	form    editForm
	session *app.Session
	keys    extraKeyMap
	// pendingDelete is the task ID awaiting confirmation.
	pendingDelete  string
	pendingTitle   string
	status         string
	banner         string
	err            error
	width          int
	height         int
	now            func() time.Time
	writeClipboard func(string) error
}

// NewModel creates a new TUI model over the session's presenter.
func NewModel(s *app.Session) Model {
	search := textinput.New()
	search.Placeholder = "Category..."
	search.Prompt = "/ "
	search.CharLimit = 64

	keys := newExtraKeyMap()

	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 0, 0)
	l.Title = "taskapp"
	l.Styles.Title = titleStyle
	l.SetShowHelp(true)
	// Searching is handled by the presenter, which owns the displayed rows.
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("task", "tasks")
	l.AdditionalShortHelpKeys = keys.bindings
	l.AdditionalFullHelpKeys = keys.bindings

	m := Model{
		state:          stateList,
		list:           l,
		search:         search,
		session:        s,
		keys:           keys,
		now:            time.Now,
		writeClipboard: clipboard.WriteAll,
	}
	m.syncRows()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// syncRows renders the presenter's displayed view into the list, keeping the
// selection on the same task when it is still displayed.
func (m *Model) syncRows() {
	selected := ""
	if item, ok := m.list.SelectedItem().(TaskItem); ok {
		selected = item.Task.ID
	}

	cfg := m.session.Config.UI
	rows := m.session.Presenter.Rows()
	m.list.SetItems(BuildItems(rows, cfg.DateFormat, cfg.ShowRelative, m.now()))

	if term := m.session.Presenter.Term(); term != "" {
		m.list.Title = fmt.Sprintf("taskapp · category: %s", term)
	} else {
		m.list.Title = "taskapp"
	}

	for i, t := range rows {
		if t.ID == selected {
			m.list.Select(i)
			return
		}
	}
	if idx := m.list.Index(); idx >= len(rows) && len(rows) > 0 {
		m.list.Select(len(rows) - 1)
	}
}

func (m Model) selected() (TaskItem, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	return item, ok
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h, v := appStyle.GetFrameSize()
		contentWidth := msg.Width - h
		leftWidth := contentWidth * 60 / 100
		m.list.SetSize(leftWidth, msg.Height-v-2)
		m.search.Width = leftWidth - 4
		if m.state == stateEdit {
			m.form.SetWidth(contentWidth - 4)
		}
		return m, nil

	case ChangedMsg:
		m.syncRows()
		return m, nil

	case ReminderMsg:
		m.banner = fmt.Sprintf("⏰ %s: %s", msg.Title, msg.Body)
		m.syncRows()
		return m, nil
	}

	switch m.state {
	case stateList:
		return m.updateList(msg)
	case stateSearch:
		return m.updateSearch(msg)
	case stateEdit:
		return m.updateEdit(msg)
	case stateConfirm:
		return m.updateConfirm(msg)
	}

	return m, nil
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		m.banner = ""
		switch keyMsg.String() {
		case "a", "n":
			return m.openEdit(m.session.Presenter.NewRequest())
		case "enter", "e":
			if item, ok := m.selected(); ok {
				req, err := m.session.Presenter.EditTask(item.Task.ID)
				if err != nil {
					m.showErr(err)
					m.syncRows()
					return m, nil
				}
				return m.openEdit(req)
			}
		case "d":
			if item, ok := m.selected(); ok {
				m.state = stateConfirm
				m.pendingDelete = item.Task.ID
				m.pendingTitle = item.Title()
				return m, nil
			}
		case "/":
			m.state = stateSearch
			cmd := m.search.Focus()
			return m, cmd
		case "esc":
			if m.session.Presenter.State() == presenter.Searching {
				m.search.Reset()
				m.session.Presenter.SearchTextChanged("")
				m.syncRows()
				return m, nil
			}
		case "y":
			if item, ok := m.selected(); ok {
				m.copyText(item.Task.Contents, "contents")
				return m, nil
			}
		case "p":
			text := prompt.GenerateNew()
			if term := m.session.Presenter.Term(); term != "" {
				text = prompt.GenerateForCategory(term, m.session.Presenter.Rows())
			}
			m.copyText(text, "prompt")
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			m.state = stateList
			m.search.Blur()
			return m, nil
		case "esc":
			m.state = stateList
			m.search.Blur()
			m.search.Reset()
			m.session.Presenter.SearchTextChanged("")
			m.syncRows()
			return m, nil
		}
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if text := m.search.Value(); text != before {
		m.session.Presenter.SearchTextChanged(text)
		m.syncRows()
	}
	return m, cmd
}

func (m Model) openEdit(req presenter.EditRequest) (tea.Model, tea.Cmd) {
	m.state = stateEdit
	m.err = nil
	m.form = newEditForm(req)
	h, _ := appStyle.GetFrameSize()
	m.form.SetWidth(m.width - h - 4)
	cmd := m.form.focusField(fieldTitle)
	return m, cmd
}

func (m Model) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "ctrl+s":
			draft, err := m.form.Draft()
			if err != nil {
				m.err = err
				return m, nil
			}
			saved, err := m.session.Presenter.Save(m.form.req, draft)
			if err != nil {
				// Stay on the form so the input is not lost.
				m.showErr(err)
				return m, nil
			}
			m.state = stateList
			m.err = nil
			m.syncRows()
			if i := m.session.Presenter.IndexOf(saved.ID); i >= 0 {
				m.list.Select(i)
			}
			return m, nil
		case "esc":
			m.state = stateList
			m.err = nil
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "y":
			if err := m.session.Presenter.Delete(m.pendingDelete); err != nil {
				m.showErr(err)
			} else {
				m.err = nil
				m.status = "deleted " + m.pendingTitle
			}
			m.state = stateList
			m.pendingDelete = ""
			m.syncRows()
			return m, nil
		case "n", "esc":
			m.state = stateList
			m.pendingDelete = ""
			return m, nil
		}
	}
	return m, nil
}

// showErr surfaces err; a task that is already gone is reported as a status.
func (m *Model) showErr(err error) {
	if errors.Is(err, presenter.ErrAlreadyRemoved) {
		m.err = nil
		m.status = "task was already removed"
		return
	}
	m.err = err
}

func (m *Model) copyText(text, what string) {
	if err := m.writeClipboard(text); err != nil {
		m.err = fmt.Errorf("copy %s: %w", what, err)
		return
	}
	m.err = nil
	m.status = "copied " + what + " to clipboard"
}

func (m Model) renderDetail(width int) string {
	item, ok := m.selected()
	if !ok {
		return statusStyle.Render("no tasks")
	}
	t := item.Task
	now := m.now()

	title := t.Title
	if title == "" {
		title = statusStyle.Render("(no title)")
	}

	category := statusStyle.Render("(no category)")
	if t.Category != "" {
		category = categoryStyle.Render("#" + t.Category)
	}

	wrap := width - 4
	if wrap < 10 {
		wrap = 10
	}
	contents := markdown.Render(wrap, t.Contents)
	if contents == "" {
		contents = statusStyle.Render("(no contents)")
	}

	date := t.Date.Format(m.session.Config.UI.DateFormat) + "  " + humanize.RelTime(t.Date, now, "ago", "from now")
	if t.IsPast(now) {
		date = statusStyle.Render(date)
	}

	return fmt.Sprintf("%s\n%s\n\ndate: %s\n\n%s\n\n%s",
		title,
		category,
		date,
		contentsBoxStyle.Render(contents),
		statusStyle.Render("enter: edit  y: copy contents"),
	)
}

func (m Model) View() string {
	var footer string
	if m.err != nil {
		footer = "\n" + errorStyle.Render("Error: "+m.err.Error())
	} else if m.status != "" {
		footer = "\n" + statusStyle.Render(m.status)
	}

	switch m.state {
	case stateEdit:
		header := "Edit Task"
		if m.form.req.IsNew {
			header = "New Task"
		}
		return appStyle.Render(
			titleStyle.Render(header) + "\n\n" +
				m.form.View() + "\n\n" +
				statusStyle.Render("tab: next field • ←/→: date part • ctrl+s: save • esc: cancel") +
				footer,
		)
	case stateConfirm:
		return appStyle.Render(
			confirmStyle.Render("Delete Task?") + "\n\n" +
				"  " + m.pendingTitle + "\n\n" +
				statusStyle.Render("y: delete • n/esc: cancel") +
				footer,
		)
	default:
		h, v := appStyle.GetFrameSize()
		contentWidth := m.width - h
		contentHeight := m.height - v
		leftWidth := contentWidth * 60 / 100
		rightWidth := contentWidth - leftWidth

		left := m.list.View()
		if m.state == stateSearch || m.session.Presenter.State() == presenter.Searching {
			left = m.search.View() + "\n\n" + left
		}
		right := detailStyle.
			Width(rightWidth).
			Height(contentHeight).
			Render(m.renderDetail(rightWidth))

		content := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
		if m.banner != "" {
			content = reminderStyle.Render(m.banner) + "\n" + content
		}
		return appStyle.Render(content + footer)
	}
}
