// Package tui is the terminal front end of the todo list.
package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"todolist/internal/client"
	"todolist/internal/models"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// API is the subset of *client.Client the UI calls.
type API interface {
	List(ctx context.Context) ([]models.Todo, error)
	Create(ctx context.Context, title string) (models.Todo, error)
	Toggle(ctx context.Context, id int64) (models.Todo, error)
	Delete(ctx context.Context, id int64) (models.Todo, error)
}

type (
	loadedMsg struct {
		todos []models.Todo
		err   error
	}
	createdMsg struct {
		todo models.Todo
		err  error
	}
	toggledMsg struct {
		todo models.Todo
		err  error
	}
	deletedMsg struct {
		todo models.Todo
		err  error
	}
	clearErrorMsg struct {
		seq int
	}
)

type Options struct {
	ErrorTimeout time.Duration
	Styles       client.Styles
	Logger       *log.Logger
}

type Model struct {
	api    API
	state  *client.State
	cursor int

	input   textinput.Model
	adding  bool
	loading bool

	confirming bool
	pendingID  int64

	err        string
	errSeq     int
	errTimeout time.Duration

	keys   keyMap
	help   help.Model
	styles client.Styles
	logger *log.Logger
}

func New(api API, opts Options) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "What needs to be done?"
	input.CharLimit = 500

	if opts.ErrorTimeout <= 0 {
		opts.ErrorTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return Model{
		api:        api,
		state:      client.NewState(),
		input:      input,
		loading:    true,
		errTimeout: opts.ErrorTimeout,
		keys:       defaultKeys(),
		help:       help.New(),
		styles:     opts.Styles,
		logger:     opts.Logger,
	}
}

// State exposes the mirror, mainly for tests.
func (m Model) State() *client.State { return m.state }

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.logger.Error("load todos", "err", msg.err)
			cmd := m.setError("Failed to load todos. Check the connection to the server.")
			return m, cmd
		}
		m.state.Load(msg.todos)
		m.clampCursor()
		return m, nil

	case createdMsg:
		if msg.err != nil {
			m.logger.Error("create todo", "err", msg.err)
			cmd := m.setError("Failed to create todo: " + userMessage(msg.err))
			return m, cmd
		}
		m.state.Add(msg.todo)
		m.cursor = 0
		return m, nil

	case toggledMsg:
		if msg.err != nil {
			m.logger.Error("toggle todo", "err", msg.err)
			cmd := m.setError("Failed to update todo: " + userMessage(msg.err))
			return m, cmd
		}
		m.state.Replace(msg.todo)
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.logger.Error("delete todo", "err", msg.err)
			cmd := m.setError("Failed to delete todo: " + userMessage(msg.err))
			return m, cmd
		}
		m.state.Remove(msg.todo.ID)
		m.clampCursor()
		return m, nil

	case clearErrorMsg:
		if msg.seq == m.errSeq {
			m.err = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.adding:
			return m.updateAdding(msg)
		case m.confirming:
			return m.updateConfirming(msg)
		}
		return m.updateList(msg)
	}

	if m.adding {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.state.Len()-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Add):
		m.adding = true
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Toggle):
		if todo, ok := m.state.At(m.cursor); ok {
			m.err = ""
			return m, m.toggle(todo.ID)
		}

	case key.Matches(msg, m.keys.Delete):
		if todo, ok := m.state.At(m.cursor); ok {
			m.confirming = true
			m.pendingID = todo.ID
		}

	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		m.err = ""
		return m, m.load()
	}

	return m, nil
}

func (m Model) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		title := strings.TrimSpace(m.input.Value())
		if title == "" {
			cmd := m.setError("Enter a title for the todo.")
			return m, cmd
		}
		m.adding = false
		m.input.Blur()
		m.input.SetValue("")
		m.err = ""
		return m, m.create(title)

	case tea.KeyEsc:
		m.adding = false
		m.input.Blur()
		m.input.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirming(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirming = false
	if msg.String() == "y" || msg.String() == "Y" {
		m.err = ""
		return m, m.delete(m.pendingID)
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Todos"))
	b.WriteString("\n\n")

	if m.adding {
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
	}

	if m.loading {
		b.WriteString(m.styles.Muted.Render("Loading..."))
	} else {
		b.WriteString(client.Render(m.state, m.cursor, m.styles))
	}
	b.WriteString("\n")

	if m.confirming {
		if todo, ok := m.state.Find(m.pendingID); ok {
			b.WriteString("\n" + m.styles.Delete.Render("Delete \""+todo.Title+"\"? (y/n)") + "\n")
		}
	}

	if m.err != "" {
		b.WriteString("\n" + m.styles.Error.Render("✖ "+m.err) + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

// setError shows msg and schedules it to disappear. A newer error resets the
// timer by bumping the sequence number.
func (m *Model) setError(msg string) tea.Cmd {
	m.errSeq++
	m.err = msg
	seq := m.errSeq
	return tea.Tick(m.errTimeout, func(time.Time) tea.Msg {
		return clearErrorMsg{seq: seq}
	})
}

func (m *Model) clampCursor() {
	if m.cursor >= m.state.Len() {
		m.cursor = m.state.Len() - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) load() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		todos, err := api.List(context.Background())
		return loadedMsg{todos: todos, err: err}
	}
}

func (m Model) create(title string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		todo, err := api.Create(context.Background(), title)
		return createdMsg{todo: todo, err: err}
	}
}

func (m Model) toggle(id int64) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		todo, err := api.Toggle(context.Background(), id)
		return toggledMsg{todo: todo, err: err}
	}
}

func (m Model) delete(id int64) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		todo, err := api.Delete(context.Background(), id)
		return deletedMsg{todo: todo, err: err}
	}
}

func userMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
