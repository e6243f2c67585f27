package ui

import (
	"bufio"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Terminal is the screen control the app loop needs.
type Terminal interface {
	ClearScreen()
	WaitForKeyPress()
}

// ConsoleTerminal drives a real terminal. When stdin is not a TTY it
// never clears the screen and waits for a full line instead of a key.
type ConsoleTerminal struct {
	in     *os.File
	lines  *bufio.Reader
	output *termenv.Output
}

// NewConsoleTerminal creates a terminal over in and out. lines must be the
// same buffered reader the app reads commands from.
func NewConsoleTerminal(in *os.File, lines *bufio.Reader, out io.Writer) *ConsoleTerminal {
	return &ConsoleTerminal{
		in:     in,
		lines:  lines,
		output: termenv.NewOutput(out),
	}
}

// Output returns the termenv output, for color configuration.
func (t *ConsoleTerminal) Output() *termenv.Output {
	return t.output
}

// IsInteractive reports whether stdin is attached to a terminal.
func (t *ConsoleTerminal) IsInteractive() bool {
	return term.IsTerminal(int(t.in.Fd()))
}

func (t *ConsoleTerminal) ClearScreen() {
	if !t.IsInteractive() {
		return
	}
	t.output.ClearScreen()
	t.output.MoveCursor(1, 1)
}

func (t *ConsoleTerminal) WaitForKeyPress() {
	if !t.IsInteractive() {
		_, _ = t.lines.ReadString('\n')
		return
	}

	fd := int(t.in.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		_, _ = t.lines.ReadString('\n')
		return
	}
	defer func() { _ = term.Restore(fd, state) }()

	var buf [1]byte
	_, _ = t.in.Read(buf[:])
}

// LineTerminal is a Terminal for piped input: it never clears and a key
// press is a whole line.
type LineTerminal struct {
	lines *bufio.Reader
}

// NewLineTerminal creates a line terminal over the app's input reader.
func NewLineTerminal(lines *bufio.Reader) *LineTerminal {
	return &LineTerminal{lines: lines}
}

func (t *LineTerminal) ClearScreen() {}

func (t *LineTerminal) WaitForKeyPress() {
	_, _ = t.lines.ReadString('\n')
}
