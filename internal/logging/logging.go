// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options controls the default logger.
type Options struct {
	// Debug lowers the level to Debug; otherwise only warnings and errors are logged.
	Debug bool
	// JSON selects slog's JSON handler instead of the text handler.
	JSON bool
	// Writer receives log lines. Defaults to os.Stderr.
	Writer io.Writer
}

// Setup installs a logger built from opts as the slog default and returns it.
// Diagnostic output never goes to stdout, which carries table data.
func Setup(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelWarn
	if opts.Debug {
		level = slog.LevelDebug
	}
	ho := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, ho)
	} else {
		handler = slog.NewTextHandler(w, ho)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseHandler reports whether name selects the JSON handler.
// Accepted values are "", "text" and "json".
func ParseHandler(name string) (json bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text":
		return false, true
	case "json":
		return true, true
	default:
		return false, false
	}
}
