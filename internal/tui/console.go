package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Console forwards conversation output to a running Bubble Tea program and
// receives the lines the user submits in it.
type Console struct {
	program *tea.Program
	lines   <-chan string
	done    <-chan struct{}
}

// ReadLine shows prompt in the input box and waits for the user to submit a
// line. It returns io.EOF once the UI has been closed.
func (c *Console) ReadLine(ctx context.Context, prompt string) (string, error) {
	c.program.Send(promptMsg(prompt))
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.done:
		return "", io.EOF
	case line := <-c.lines:
		return line, nil
	}
}

func (c *Console) Write(fragment string) error {
	c.program.Send(fragmentMsg(fragment))
	return nil
}

func (c *Console) BeginReply()        { c.program.Send(beginReplyMsg{}) }
func (c *Console) EndReply()          { c.program.Send(endReplyMsg{}) }
func (c *Console) Notice(text string) { c.program.Send(noticeMsg(text)) }
func (c *Console) Fail(err error)     { c.program.Send(errorMsg{err: err}) }

// Close is a no-op: the program is torn down by Run.
func (c *Console) Close() error { return nil }

// Run starts the full-screen UI and calls fn with a Console bound to it. The
// UI closes when fn returns; closing the UI first cancels the context passed
// to fn and makes further reads return io.EOF.
func Run(ctx context.Context, fn func(context.Context, *Console) error, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	done := make(chan struct{})
	program := tea.NewProgram(newModel(lines, done), append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)...)
	console := &Console{program: program, lines: lines, done: done}

	errc := make(chan error, 1)
	go func() {
		errc <- fn(ctx, console)
		program.Quit()
	}()

	_, runErr := program.Run()
	close(done)
	cancel()
	fnErr := <-errc

	if errors.Is(runErr, tea.ErrProgramKilled) {
		runErr = nil
	}
	return errors.Join(fnErr, runErr)
}
