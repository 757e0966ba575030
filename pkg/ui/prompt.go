package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/stackops/pkg/errors"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Prompter collects operator input
type Prompter interface {
	Confirm(question string, defaultValue bool) (bool, error)
	Input(question string) (string, error)
	Secret(question string) (string, error)
}

// TerminalPrompter prompts on an interactive terminal using pterm, reading
// secrets without echo
type TerminalPrompter struct {
	In  *os.File
	Out io.Writer
}

// NewTerminalPrompter prompts on stdin and stdout
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stdout}
}

// Confirm asks a yes/no question
func (p *TerminalPrompter) Confirm(question string, defaultValue bool) (bool, error) {
	answer, err := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(defaultValue).
		Show(question)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrInvalidInput, "failed to read confirmation")
	}
	return answer, nil
}

// Input asks for a line of text
func (p *TerminalPrompter) Input(question string) (string, error) {
	answer, err := pterm.DefaultInteractiveTextInput.Show(question)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInvalidInput, "failed to read input")
	}
	return strings.TrimSpace(answer), nil
}

// Secret asks for a value without echoing it
func (p *TerminalPrompter) Secret(question string) (string, error) {
	fmt.Fprintf(p.Out, "%s: ", question)
	b, err := term.ReadPassword(int(p.In.Fd()))
	fmt.Fprintln(p.Out)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInvalidInput, "failed to read secret")
	}
	return strings.TrimSpace(string(b)), nil
}

// LinePrompter reads answers line by line from a reader. It serves piped
// input and tests; secrets are read like any other line.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a prompter over in, echoing questions to out
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Confirm accepts y/yes and n/no; an empty answer selects the default
func (p *LinePrompter) Confirm(question string, defaultValue bool) (bool, error) {
	marker := "[y/N]"
	if defaultValue {
		marker = "[Y/n]"
	}
	answer, err := p.ask(fmt.Sprintf("%s %s", question, marker))
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return defaultValue, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Input reads one line
func (p *LinePrompter) Input(question string) (string, error) {
	return p.ask(question)
}

// Secret reads one line
func (p *LinePrompter) Secret(question string) (string, error) {
	return p.ask(question)
}

func (p *LinePrompter) ask(question string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", question)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", errors.Wrap(err, errors.ErrInvalidInput, "failed to read user input")
	}
	return strings.TrimSpace(line), nil
}
