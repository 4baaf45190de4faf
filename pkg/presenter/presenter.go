// Package presenter provides consistent terminal output for
// user-facing messages: success, warning, error, and informational
// lines with color support and a quiet mode for scripting.
package presenter

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// ColorMode controls whether output is colorized.
type ColorMode int

const (
	// ColorAuto lets the color package detect terminal capabilities.
	ColorAuto ColorMode = iota
	// ColorAlways forces color output.
	ColorAlways
	// ColorNever disables color output.
	ColorNever
)

// Presenter renders user-facing CLI output.
type Presenter struct {
	out    io.Writer
	errOut io.Writer
	quiet  bool
}

// New creates a Presenter writing to stdout/stderr with color mode
// detected from the environment (NO_COLOR and SKILLSYNC_COLOR).
func New() *Presenter {
	return NewWithOptions(os.Stdout, os.Stderr, detectColorMode())
}

// NewWithOptions creates a Presenter with explicit writers and color
// mode; tests pass buffers and ColorNever.
func NewWithOptions(out, errOut io.Writer, mode ColorMode) *Presenter {
	switch mode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	}
	return &Presenter{out: out, errOut: errOut}
}

func detectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}
	switch os.Getenv("SKILLSYNC_COLOR") {
	case "always", "force":
		return ColorAlways
	case "never", "off":
		return ColorNever
	default:
		return ColorAuto
	}
}

// SetQuiet suppresses everything except errors.
func (p *Presenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// Error reports an error with optional context, always shown even in
// quiet mode.
func (p *Presenter) Error(err error, context string) {
	if err == nil {
		return
	}
	c := color.New(color.FgRed, color.Bold)
	if context != "" {
		c.Fprintf(p.errOut, "[ERROR] %s: %v\n", context, err)
		return
	}
	c.Fprintf(p.errOut, "[ERROR] %v\n", err)
}

// Success reports a completed operation.
func (p *Presenter) Success(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgGreen).Fprintf(p.out, "✓ %s\n", message)
}

// Warning reports a non-fatal problem.
func (p *Presenter) Warning(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgYellow).Fprintf(p.out, "⚠ %s\n", message)
}

// Info prints an informational line.
func (p *Presenter) Info(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, message)
}

// Section prints a bold section header.
func (p *Presenter) Section(title string) {
	if p.quiet {
		return
	}
	color.New(color.Bold).Fprintf(p.out, "\n%s\n", title)
}
