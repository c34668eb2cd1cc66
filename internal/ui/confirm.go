package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompter reads answers to interactive questions. A single Prompter must be
// shared across questions so buffered input is not lost between them.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

var stdPrompter = NewPrompter(os.Stdin, os.Stdout)

// Confirm prompts the user with a yes/no question. Returns true for yes.
func (p *Prompter) Confirm(prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", StyleWarning.Render(prompt))
	return isYes(p.line())
}

// ConfirmDanger is like Confirm but styled with the error color (for
// destructive actions).
func (p *Prompter) ConfirmDanger(prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", StyleError.Render("⚠ "+prompt))
	return isYes(p.line())
}

// Ask prompts for a line of text; an empty answer yields def.
func (p *Prompter) Ask(label, def string) string {
	if def != "" {
		fmt.Fprintf(p.out, "%s %s: ", StyleValue.Render(label), StyleMeta.Render("["+def+"]"))
	} else {
		fmt.Fprintf(p.out, "%s: ", StyleValue.Render(label))
	}
	if answer := p.line(); answer != "" {
		return answer
	}
	return def
}

func (p *Prompter) line() string {
	line, _ := p.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func isYes(s string) bool {
	s = strings.ToLower(s)
	return s == "y" || s == "yes"
}

// Confirm asks a yes/no question on stdin.
func Confirm(prompt string) bool { return stdPrompter.Confirm(prompt) }

// ConfirmDanger asks a destructive yes/no question on stdin.
func ConfirmDanger(prompt string) bool { return stdPrompter.ConfirmDanger(prompt) }

// Ask prompts for text on stdin.
func Ask(label, def string) string { return stdPrompter.Ask(label, def) }
