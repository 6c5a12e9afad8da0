package tui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// Prompter asks yes/no questions, with a bubbletea prompt on a terminal
// and a plain line prompt otherwise
type Prompter struct {
	in          io.Reader
	out         io.Writer
	interactive bool
	reader      *bufio.Reader
}

// NewPrompter creates a prompter on stdin/stdout
func NewPrompter() *Prompter {
	interactive := isTerminal(os.Stdin) && isTerminal(os.Stdout)
	return NewPrompterWith(os.Stdin, os.Stdout, interactive)
}

// NewPrompterWith creates a prompter on the given streams
func NewPrompterWith(in io.Reader, out io.Writer, interactive bool) *Prompter {
	return &Prompter{
		in:          in,
		out:         out,
		interactive: interactive,
		reader:      bufio.NewReader(in),
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Confirm asks prompt and returns the answer. Anything other than an
// explicit yes counts as no.
func (p *Prompter) Confirm(prompt string) bool {
	if p.interactive {
		return p.confirmTUI(prompt)
	}
	return p.confirmLine(prompt)
}

func (p *Prompter) confirmTUI(prompt string) bool {
	model := NewConfirmModel(prompt)
	program := tea.NewProgram(model, tea.WithInput(p.in), tea.WithOutput(p.out))
	final, err := program.Run()
	if err != nil {
		return false
	}
	m, ok := final.(*ConfirmModel)
	return ok && m.Confirmed()
}

func (p *Prompter) confirmLine(prompt string) bool {
	_, _ = fmt.Fprintf(p.out, "%s (y/N): ", prompt)
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		_, _ = fmt.Fprintln(p.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
