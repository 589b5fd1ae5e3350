// Package console prints the user-facing progress lines of a run.
// Styling degrades to plain text when the writer is not a terminal.
package console

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Semantic colors
var (
	colorSuccess = lipgloss.Color("#8BC34A")
	colorError   = lipgloss.Color("#e53935")
	colorInfo    = lipgloss.Color("#2196F3")
)

// Printer writes progress lines to out.
type Printer struct {
	out     io.Writer
	step    lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	done    lipgloss.Style
}

// New creates a Printer whose color profile is detected from out.
func New(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:     out,
		step:    r.NewStyle().Foreground(colorInfo),
		success: r.NewStyle().Foreground(colorSuccess),
		failure: r.NewStyle().Foreground(colorError).Bold(true),
		done:    r.NewStyle().Foreground(colorSuccess).Bold(true),
	}
}

func (p *Printer) line(style lipgloss.Style, icon, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.out, style.Render(icon+" "+msg))
}

// Step prints a progress step with the given icon.
func (p *Printer) Step(icon, format string, args ...interface{}) {
	p.line(p.step, icon, format, args...)
}

// Success prints a completed step.
func (p *Printer) Success(format string, args ...interface{}) {
	p.line(p.success, "✅", format, args...)
}

// Failure prints an error line.
func (p *Printer) Failure(format string, args ...interface{}) {
	p.line(p.failure, "❌", format, args...)
}

// Done prints the final line of a successful run.
func (p *Printer) Done(format string, args ...interface{}) {
	p.line(p.done, "🎉", format, args...)
}
