// Package tui provides the interactive terminal chat client.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docqa/internal/domain/entities"
)

// Chatter is the TUI-facing subset of the answer orchestrator.
type Chatter interface {
	Ask(ctx context.Context, userID, question string) (*entities.Answer, error)
}

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type replyMsg struct {
	text string
	err  error
}

// Model is the Bubble Tea model for the chat client.
type Model struct {
	service Chatter
	user    string
	input   textinput.Model
	view    viewport.Model
	lines   []string
	waiting bool
	ready   bool
}

// New creates a chat model bound to the given user id.
func New(service Chatter, user string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your documents"
	ti.Focus()
	ti.CharLimit = 0
	return Model{
		service: service,
		user:    user,
		input:   ti,
		view:    viewport.New(0, 0),
		lines:   []string{statusStyle.Render("Connected. Type a question and press Enter; Ctrl+C quits.")},
	}
}

// Init starts the text input cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.view.Width = msg.Width
		m.view.Height = msg.Height - 3
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.waiting {
				return m, nil
			}
			m.input.SetValue("")
			m.waiting = true
			m.lines = append(m.lines, userStyle.Render("you: ")+question)
			m.refresh()
			return m, m.ask(question)
		}

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.lines = append(m.lines, errorStyle.Render("error: "+msg.err.Error()))
		} else {
			m.lines = append(m.lines, assistantStyle.Render("docqa: ")+msg.text)
		}
		m.refresh()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the conversation above the input line.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	status := ""
	if m.waiting {
		status = statusStyle.Render(" thinking...")
	}
	return fmt.Sprintf("%s\n%s%s", m.view.View(), m.input.View(), status)
}

func (m Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.service.Ask(context.Background(), m.user, question)
		if err != nil {
			return replyMsg{err: err}
		}
		return replyMsg{text: answer.Text}
	}
}

func (m *Model) refresh() {
	m.view.SetContent(strings.Join(m.lines, "\n\n"))
	m.view.GotoBottom()
}

// Run starts the chat TUI and blocks until the user quits.
func Run(service Chatter, user string) error {
	p := tea.NewProgram(New(service, user), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
