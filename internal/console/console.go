// Package console prints the human-readable status lines every pipeline
// step reports: one line per success, skip, or failure and a summary count at
// the end of each batch.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// Printer writes status lines to an output stream. A nil Printer discards output.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
}

// New wraps w.
func New(w io.Writer) *Printer {
	if w == nil {
		w = io.Discard
	}
	return &Printer{out: w}
}

// Discard returns a printer that drops everything.
func Discard() *Printer {
	return New(io.Discard)
}

// Success reports a completed step.
func (p *Printer) Success(format string, args ...any) {
	p.line(okStyle.Render("✓"), format, args...)
}

// Failure reports a step that failed or was skipped because of an error.
func (p *Printer) Failure(format string, args ...any) {
	p.line(failStyle.Render("✗"), format, args...)
}

// Info reports neutral progress.
func (p *Printer) Info(format string, args ...any) {
	p.line(infoStyle.Render("•"), format, args...)
}

// Heading prints a section title.
func (p *Printer) Heading(title string) {
	p.write(headingStyle.Render(title) + "\n")
}

// Plain prints an unstyled line.
func (p *Printer) Plain(format string, args ...any) {
	p.write(strings.TrimRight(fmt.Sprintf(format, args...), "\n") + "\n")
}

// Muted prints a dimmed line.
func (p *Printer) Muted(format string, args ...any) {
	p.write(mutedStyle.Render(fmt.Sprintf(format, args...)) + "\n")
}

// Summary prints the closing count of a batch.
func (p *Printer) Summary(verb string, succeeded, total int, noun string) {
	if total == succeeded {
		p.Success("%s %d %s", verb, succeeded, plural(noun, succeeded))
		return
	}
	p.Failure("%s %d/%d %s", verb, succeeded, total, plural(noun, total))
}

func (p *Printer) line(mark, format string, args ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	p.write(mark + " " + msg + "\n")
}

func (p *Printer) write(s string) {
	if p == nil || p.out == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.out, s)
}

func plural(noun string, n int) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}
