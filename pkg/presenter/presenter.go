// Package presenter provides consistent CLI output for user-facing messages:
// success, error, warning, and informational output with color support and a
// quiet mode for scripting.
package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Presenter renders user-facing CLI messages.
type Presenter struct {
	output      io.Writer
	errorOutput io.Writer
	colored     bool
	quiet       bool
}

// NewPresenter creates a presenter writing to the given streams. Color is
// enabled only when stdout is a terminal.
func NewPresenter(output, errorOutput io.Writer) *Presenter {
	colored := false
	if f, ok := output.(*os.File); ok {
		colored = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Presenter{
		output:      output,
		errorOutput: errorOutput,
		colored:     colored,
	}
}

var defaultPresenter = NewPresenter(os.Stdout, os.Stderr)

// SetQuiet suppresses informational output on the default presenter.
func SetQuiet(quiet bool) { defaultPresenter.quiet = quiet }

// Info prints an informational message.
func Info(message string) { defaultPresenter.Info(message) }

// Success prints a success message.
func Success(message string) { defaultPresenter.Success(message) }

// Warning prints a warning message.
func Warning(message string) { defaultPresenter.Warning(message) }

// Error prints an error with context.
func Error(err error, context string) { defaultPresenter.Error(err, context) }

// Section prints a section header.
func Section(title string) { defaultPresenter.Section(title) }

// Separator prints a horizontal rule.
func Separator() { defaultPresenter.Separator() }

func (p *Presenter) paint(c color.Attribute, message string) string {
	if !p.colored {
		return message
	}
	return color.New(c).Sprint(message)
}

// Info prints an informational message unless quiet mode is on.
func (p *Presenter) Info(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.output, message)
}

// Success prints a success message unless quiet mode is on.
func (p *Presenter) Success(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.output, p.paint(color.FgGreen, "✓ "+message))
}

// Warning prints a warning message. Warnings are shown even in quiet mode.
func (p *Presenter) Warning(message string) {
	fmt.Fprintln(p.errorOutput, p.paint(color.FgYellow, "⚠ "+message))
}

// Error prints an error with context. Errors are shown even in quiet mode.
func (p *Presenter) Error(err error, context string) {
	if err == nil {
		return
	}
	fmt.Fprintln(p.errorOutput, p.paint(color.FgRed, fmt.Sprintf("✗ %s: %v", context, err)))
}

// Section prints a titled section header.
func (p *Presenter) Section(title string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.output, p.paint(color.Bold, title))
	fmt.Fprintln(p.output, strings.Repeat("-", len(title)))
}

// Separator prints a horizontal rule.
func (p *Presenter) Separator() {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.output, strings.Repeat("-", 40))
}
