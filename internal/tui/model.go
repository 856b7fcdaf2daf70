// Package tui is an interactive terminal front end asking the food assistant one question at a time.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/askiada/food-assistant/internal/render"
)

const (
	Title       = "Food Assistant"
	WaitMessage = "Cooking up the best answer..."
	placeholder = "Ask about a dish, e.g. pancakes without eggs"
	// rows used by the title, the input, the status line and the help line.
	chromeHeight = 5
)

// Asker answers one query. *pipeline.Pipeline implements it.
type Asker interface {
	Execute(ctx context.Context, query string) (string, error)
}

type answerMsg struct {
	query  string
	answer string
	err    error
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	queryStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
)

// Model is the bubbletea model of the assistant. While a query runs, further input is ignored.
type Model struct {
	ctx      context.Context
	asker    Asker
	renderer *render.Renderer
	keys     keyMap

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	busy  bool
	query string
	err   error
	ready bool
}

// NewModel creates a model sending queries to asker. ctx bounds every query.
func NewModel(ctx context.Context, asker Asker, renderer *render.Renderer) Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.Prompt = "> "
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return Model{
		ctx:      ctx,
		asker:    asker,
		renderer: renderer,
		keys:     defaultKeys,
		input:    input,
		spinner:  spin,
		viewport: viewport.New(render.DefaultWidth, 20),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func ask(ctx context.Context, asker Asker, query string) tea.Cmd {
	return func() tea.Msg {
		answer, err := asker.Execute(ctx, query)

		return answerMsg{query: query, answer: answer, err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.ready = true
		m.input.Width = msg.Width - len(m.input.Prompt) - 1
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 1)

		return m, nil

	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			m.viewport.SetContent("")

			return m, nil
		}
		m.err = nil
		m.viewport.SetContent(m.renderer.Render(msg.answer))
		m.viewport.GotoTop()

		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)

		return m, cmd

	case key.Matches(msg, m.keys.Submit):
		query := strings.TrimSpace(m.input.Value())
		if m.busy || query == "" {
			return m, nil
		}
		m.busy = true
		m.err = nil
		m.query = query
		m.input.SetValue("")

		return m, tea.Batch(m.spinner.Tick, ask(m.ctx, m.asker, query))
	}

	if m.busy {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(Title))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.busy:
		b.WriteString(m.spinner.View() + " " + WaitMessage)
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	case m.query != "":
		b.WriteString(queryStyle.Render(m.query))
	}
	b.WriteString("\n")

	if m.ready {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("enter ask • pgup/pgdown scroll • esc quit"))

	return b.String()
}
