// Package ui prints human-facing status lines with optional color.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
)

// ColorMode determines when to use colored output.
type ColorMode int

const (
	// ColorAuto detects color support from the terminal.
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output.
	ColorAlways
	// ColorNever disables all colored output.
	ColorNever
)

type contextKey struct{}

// UI writes status messages to a diagnostic stream, normally stderr,
// leaving stdout for table data.
type UI struct {
	out   *termenv.Output
	color ColorMode
	quiet bool
}

// New creates a UI writing to w. A nil w means os.Stderr.
// NO_COLOR in the environment forces ColorNever.
func New(w io.Writer, mode ColorMode) *UI {
	if w == nil {
		w = os.Stderr
	}
	if os.Getenv("NO_COLOR") != "" {
		mode = ColorNever
	}

	var profile termenv.Profile
	switch mode {
	case ColorNever:
		profile = termenv.Ascii
	case ColorAlways:
		profile = termenv.ANSI256
	default:
		profile = termenv.NewOutput(w).EnvColorProfile()
	}

	return &UI{
		out:   termenv.NewOutput(w, termenv.WithProfile(profile)),
		color: mode,
	}
}

// SetQuiet suppresses Success and Info messages. Warnings and errors still print.
func (u *UI) SetQuiet(quiet bool) { u.quiet = quiet }

// ColorEnabled reports whether messages carry ANSI color.
func (u *UI) ColorEnabled() bool {
	return u.out.Profile != termenv.Ascii
}

// WithUI returns a new context with the UI attached.
func WithUI(ctx context.Context, u *UI) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext returns the UI from ctx, or a stderr UI in ColorAuto mode.
func FromContext(ctx context.Context) *UI {
	if u, ok := ctx.Value(contextKey{}).(*UI); ok {
		return u
	}
	return New(nil, ColorAuto)
}

// Success prints a green status line.
func (u *UI) Success(format string, args ...any) {
	if u.quiet {
		return
	}
	u.line("✓ ", termenv.ANSIGreen, format, args...)
}

// Info prints a blue status line.
func (u *UI) Info(format string, args ...any) {
	if u.quiet {
		return
	}
	u.line("ℹ ", termenv.ANSIBlue, format, args...)
}

// Warning prints a yellow status line.
func (u *UI) Warning(format string, args ...any) {
	u.line("⚠ ", termenv.ANSIYellow, format, args...)
}

// Error prints a red status line.
func (u *UI) Error(format string, args ...any) {
	u.line("✗ ", termenv.ANSIRed, format, args...)
}

func (u *UI) line(prefix string, c termenv.ANSIColor, format string, args ...any) {
	msg := prefix + fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(u.out, u.out.String(msg).Foreground(c))
}

// Writer returns the underlying writer.
func (u *UI) Writer() io.Writer {
	return u.out
}
