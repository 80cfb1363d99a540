package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type (
	promptMsg     string
	fragmentMsg   string
	noticeMsg     string
	errorMsg      struct{ err error }
	beginReplyMsg struct{}
	endReplyMsg   struct{}
)

// Model is the Bubble Tea model for the chat screen. The conversation itself
// runs elsewhere and talks to the model through Console.
type Model struct {
	input    textinput.Model
	viewport viewport.Model
	log      strings.Builder
	status   string
	ready    bool
	awaiting bool

	lines chan<- string
	done  <-chan struct{}
}

func newModel(lines chan<- string, done <-chan struct{}) *Model {
	ti := textinput.New()
	ti.Placeholder = `Type a message, "/service <query>" or "exit"`
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return &Model{input: ti, viewport: vp, lines: lines, done: done, status: "Connecting..."}
}

// Init initializes the model (text input cursor blink).
func (m *Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and conversation output.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, lh := logBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, input line, status
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-lh)
		m.input.Width = max(10, msg.Width-4)
		m.refresh()
		return m, nil
	case promptMsg:
		m.input.Prompt = string(msg)
		m.awaiting = true
		m.status = "Ready."
		return m, nil
	case beginReplyMsg:
		m.log.WriteString(aiLabelStyle.Render("AI:") + " ")
		m.status = "Thinking..."
	case fragmentMsg:
		m.log.WriteString(string(msg))
	case endReplyMsg:
		m.log.WriteString("\n")
	case noticeMsg:
		m.log.WriteString(string(msg) + "\n")
	case errorMsg:
		m.log.WriteString(errorLabelStyle.Render("Error:") + " " + msg.err.Error() + "\n")
		m.status = "Last request failed."
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			return m, m.submit()
		}
	}
	if _, ok := msg.(tea.KeyMsg); !ok {
		m.refresh()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the current input line to the waiting conversation.
func (m *Model) submit() tea.Cmd {
	if !m.awaiting {
		m.status = "Still answering, please wait."
		return nil
	}
	text := m.input.Value()
	m.input.Reset()
	m.awaiting = false
	m.log.WriteString(userLabelStyle.Render(strings.TrimSpace(m.input.Prompt)) + " " + text + "\n")
	m.refresh()
	lines, done := m.lines, m.done
	return func() tea.Msg {
		select {
		case lines <- text:
		case <-done:
		}
		return nil
	}
}

func (m *Model) refresh() {
	content := m.log.String()
	if m.viewport.Width > 0 {
		content = lipgloss.NewStyle().Width(m.viewport.Width).Render(content)
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

// View renders the header, conversation log, input box and status line.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("AI Chatbot")
	body := logBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + body + "\n" + input + "\n" + status
}

var (
	logBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	aiLabelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	userLabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)
