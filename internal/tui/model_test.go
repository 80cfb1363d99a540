package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func newSizedModel(t *testing.T) (*Model, chan string, chan struct{}) {
	t.Helper()
	lines := make(chan string, 1)
	done := make(chan struct{})
	m := newModel(lines, done)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, lines, done
}

func typeText(m *Model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestModel_SubmitSendsLine(t *testing.T) {
	m, lines, _ := newSizedModel(t)
	m.Update(promptMsg("You: "))
	typeText(m, "hello")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command delivering the line")
	}
	cmd()
	if got := <-lines; got != "hello" {
		t.Errorf("line = %q", got)
	}
	if m.input.Value() != "" {
		t.Error("input should be cleared after submit")
	}
	if !strings.Contains(m.log.String(), "hello") {
		t.Errorf("log = %q", m.log.String())
	}
}

func TestModel_EnterIgnoredWhileAnswering(t *testing.T) {
	m, _, _ := newSizedModel(t)
	typeText(m, "too early")
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatal("no line must be sent before a prompt")
	}
	if m.input.Value() != "too early" {
		t.Errorf("input = %q, want it kept", m.input.Value())
	}
}

func TestModel_ReplyRendering(t *testing.T) {
	m, _, _ := newSizedModel(t)
	m.Update(noticeMsg("Welcome"))
	m.Update(beginReplyMsg{})
	m.Update(fragmentMsg("Hel"))
	m.Update(fragmentMsg("lo"))
	m.Update(endReplyMsg{})
	m.Update(errorMsg{err: errors.New("boom")})

	log := m.log.String()
	for _, want := range []string{"Welcome\n", "AI:", "Hello\n", "Error:", "boom"} {
		if !strings.Contains(log, want) {
			t.Errorf("log missing %q: %q", want, log)
		}
	}
	if !strings.Contains(m.View(), "AI Chatbot") {
		t.Error("view missing header")
	}
}

func TestModel_QuitKeys(t *testing.T) {
	m, _, _ := newSizedModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}

func TestModel_SubmitAfterDone(t *testing.T) {
	lines := make(chan string)
	done := make(chan struct{})
	m := newModel(lines, done)
	m.Update(promptMsg("You: "))
	typeText(m, "bye")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	close(done)
	if msg := cmd(); msg != nil {
		t.Errorf("unexpected message %v", msg)
	}
}
