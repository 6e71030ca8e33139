package console

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// NewTerminalPrompter returns a Prompter for an interactive session. When in
// is a terminal, secrets are read with echo disabled and the terminal state
// is restored if a secret read is interrupted.
func NewTerminalPrompter(in *os.File, out io.Writer) *Prompter {
	p := NewPrompter(in, out)

	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return p
	}
	state, err := term.GetState(fd)
	if err == nil {
		p.interrupted = func() { _ = term.Restore(fd, state) }
	}
	p.secret = func() (string, error) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return string(b), nil
	}
	return p
}
