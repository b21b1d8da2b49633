// Package ui holds the styled terminal output for user-facing progress.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7C3AED")).
			Bold(true)

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#06B6D4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// Printer writes styled progress lines.
type Printer struct {
	Out io.Writer
}

func (p Printer) Title(format string, args ...any) {
	fmt.Fprintln(p.Out, titleStyle.Render(fmt.Sprintf(format, args...)))
}

func (p Printer) Step(format string, args ...any) {
	fmt.Fprintln(p.Out, stepStyle.Render("==> ")+fmt.Sprintf(format, args...))
}

func (p Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.Out, successStyle.Render("✓ ")+fmt.Sprintf(format, args...))
}

func (p Printer) Error(format string, args ...any) {
	fmt.Fprintln(p.Out, errorStyle.Render("✗ ")+fmt.Sprintf(format, args...))
}

func (p Printer) Dim(format string, args ...any) {
	fmt.Fprintln(p.Out, dimStyle.Render(fmt.Sprintf(format, args...)))
}
