package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads answers from the user. Secrets are read without echo when
// the input is a terminal.
type Prompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, reader: bufio.NewReader(in), out: out}
}

// Line prints label and returns the answer without the line terminator.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Secret prints label and reads an answer without echoing it.
func (p *Prompter) Secret(label string) (string, error) {
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.out, label)
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return string(raw), nil
	}
	return p.Line(label)
}

// NewPassword asks for a password twice until both entries match.
func (p *Prompter) NewPassword() (string, error) {
	for {
		first, err := p.Secret("Password:")
		if err != nil {
			return "", err
		}
		second, err := p.Secret("Retype password:")
		if err != nil {
			return "", err
		}
		if first == second {
			return first, nil
		}
		fmt.Fprintln(p.out, "Passwords don't match, insert again...")
	}
}

// YesNo asks label until the answer is empty, y or n in either case, and
// returns the answer lower-cased.
func (p *Prompter) YesNo(label string) (string, error) {
	for {
		answer, err := p.Line(label + " [Y/N]: ")
		if err != nil {
			return "", err
		}
		switch answer {
		case "", "y", "Y", "n", "N":
			return strings.ToLower(answer), nil
		}
	}
}

// Confirm asks a single Y/N question and reports whether the answer was y.
func (p *Prompter) Confirm(label string) (bool, error) {
	answer, err := p.Line(label)
	if err != nil {
		return false, err
	}
	return answer == "y" || answer == "Y", nil
}
