package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/podserver/console/internal/core/domain"
)

// ErrInputClosed is returned when the input stream ends before a valid
// answer was read.
var ErrInputClosed = errors.New("input closed")

// Decision is the answer to a yes/no question.
type Decision int

const (
	No Decision = iota
	Yes
)

func (d Decision) String() string {
	if d == Yes {
		return "yes"
	}
	return "no"
}

// Prompter reads operator answers line by line. The retry loops are plain
// loops without a retry cap; cancelling ctx is the way out of them.
//
// Reads run on a separate goroutine so a blocked read never holds up
// cancellation. A read abandoned that way may still consume the next line,
// so a Prompter must not be reused after its context is cancelled.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	// secret reads one line without echo. Nil falls back to readLine.
	secret func() (string, error)
	// interrupted runs when a read is abandoned, e.g. to restore the
	// terminal state a secret read changed.
	interrupted func()
}

// NewPrompter returns a Prompter reading from in and writing prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

type readResult struct {
	line string
	err  error
}

// await runs read and waits for it or for ctx, whichever ends first.
func (p *Prompter) await(ctx context.Context, read func() (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	done := make(chan readResult, 1)
	go func() {
		line, err := read()
		done <- readResult{line: line, err: err}
	}()

	select {
	case r := <-done:
		return r.line, r.err
	case <-ctx.Done():
		if p.interrupted != nil {
			p.interrupted()
		}
		fmt.Fprintln(p.out)
		return "", ctx.Err()
	}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line != "" {
				return strings.TrimSpace(line), nil
			}
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompter) readSecret() (string, error) {
	if p.secret == nil {
		return p.readLine()
	}
	return p.secret()
}

// ReadLine prints prompt and returns one trimmed line, which may be empty.
func (p *Prompter) ReadLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprintln(p.out, prompt)
	return p.await(ctx, p.readLine)
}

// ReadRequired prints prompt and keeps reading until a non-blank line arrives.
func (p *Prompter) ReadRequired(ctx context.Context, prompt string) (string, error) {
	for {
		s, err := p.ReadLine(ctx, prompt)
		if err != nil {
			return "", err
		}
		if s != "" {
			return s, nil
		}
	}
}

// ReadSecret is ReadRequired without terminal echo.
func (p *Prompter) ReadSecret(ctx context.Context, prompt string) (string, error) {
	for {
		fmt.Fprintln(p.out, prompt)
		s, err := p.await(ctx, p.readSecret)
		if err != nil {
			return "", err
		}
		if s = strings.TrimSpace(s); s != "" {
			return s, nil
		}
	}
}

// ReadPassword is ReadSecret that also rejects passwords the digest cannot
// hash, so the operator learns about it before anything is confirmed.
func (p *Prompter) ReadPassword(ctx context.Context, prompt string) (string, error) {
	for {
		s, err := p.ReadSecret(ctx, prompt)
		if err != nil {
			return "", err
		}
		if err := domain.ValidatePassword(s); err == nil {
			return s, nil
		}
		fmt.Fprintf(p.out, "Password too long. Use at most %d bytes.\n", domain.MaxPasswordBytes)
	}
}

// ReadRole keeps prompting until the answer names a known role.
func (p *Prompter) ReadRole(ctx context.Context, prompt string) (domain.Role, error) {
	for {
		s, err := p.ReadRequired(ctx, prompt)
		if err != nil {
			return "", err
		}
		role, err := domain.ParseRole(s)
		if err == nil {
			return role, nil
		}
		fmt.Fprintf(p.out, "Role not recognized. Choose one of: %s\n", domain.RoleList())
	}
}

// Confirm asks a single yes/no question. Any answer starting with y or Y is
// Yes; everything else, including an empty line or closed input, is No.
func (p *Prompter) Confirm(ctx context.Context, prompt string) (Decision, error) {
	fmt.Fprintln(p.out, prompt)
	fmt.Fprintln(p.out, "Y[es]/N[o]")
	s, err := p.await(ctx, p.readLine)
	if err != nil {
		if errors.Is(err, ErrInputClosed) {
			return No, nil
		}
		return No, err
	}
	if strings.HasPrefix(strings.ToLower(s), "y") {
		return Yes, nil
	}
	return No, nil
}
