// Package console is the plain line-mode terminal front-end of the chat loop.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	aiLabelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	errorLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

type line struct {
	text string
	err  error
}

// Console reads user lines from in and writes replies to out. Errors go to
// errOut. Colour is only used when out is a terminal.
type Console struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	styled bool

	start sync.Once
	lines chan line

	closeOnce sync.Once
	closed    chan struct{}
}

// New returns a Console over the given streams.
func New(in io.Reader, out, errOut io.Writer) *Console {
	return &Console{
		in:     in,
		out:    out,
		errOut: errOut,
		styled: isTerminal(out),
		lines:  make(chan line),
		closed: make(chan struct{}),
	}
}

// Stdio returns a Console on the process standard streams.
func Stdio() *Console {
	return New(os.Stdin, os.Stdout, os.Stderr)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// read scans in on its own goroutine so ReadLine can give up on ctx while a
// read is blocked.
func (c *Console) read() {
	scanner := bufio.NewScanner(c.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case c.lines <- line{text: scanner.Text()}:
		case <-c.closed:
			return
		}
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	select {
	case c.lines <- line{err: err}:
	case <-c.closed:
	}
}

// ReadLine prints prompt on a fresh line and waits for the next input line.
// It returns io.EOF when input ends or the console is closed.
func (c *Console) ReadLine(ctx context.Context, prompt string) (string, error) {
	select {
	case <-c.closed:
		return "", io.EOF
	default:
	}
	c.start.Do(func() { go c.read() })
	fmt.Fprint(c.out, "\n"+prompt)
	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return "", ctx.Err()
	case <-c.closed:
		return "", io.EOF
	case l := <-c.lines:
		if l.err != nil {
			// keep returning the terminal error on later calls
			go func() {
				select {
				case c.lines <- l:
				case <-c.closed:
				}
			}()
			return "", l.err
		}
		return l.text, nil
	}
}

// Write prints a reply fragment as is.
func (c *Console) Write(fragment string) error {
	_, err := io.WriteString(c.out, fragment)
	return err
}

// BeginReply prints the "AI: " label.
func (c *Console) BeginReply() {
	label := "AI:"
	if c.styled {
		label = aiLabelStyle.Render(label)
	}
	fmt.Fprint(c.out, label+" ")
}

// EndReply terminates the reply line.
func (c *Console) EndReply() {
	fmt.Fprintln(c.out)
}

// Notice prints an informational line.
func (c *Console) Notice(text string) {
	fmt.Fprintln(c.out, text)
}

// Fail reports an error line on errOut.
func (c *Console) Fail(err error) {
	label := "Error:"
	if isTerminal(c.errOut) {
		label = errorLabelStyle.Render(label)
	}
	fmt.Fprintln(c.errOut, label, err)
}

// Close stops reading. A closable input is closed as well.
func (c *Console) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		if closer, ok := c.in.(io.Closer); ok && c.in != os.Stdin {
			err = closer.Close()
		}
	})
	return err
}
