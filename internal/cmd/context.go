package cmd

import (
	"context"
	"io"

	"github.com/salmonumbrella/utilisation-cli/internal/config"
)

type (
	errorFormatKey struct{}
	configKey      struct{}
	stdoutKey      struct{}
	stderrKey      struct{}
)

// WithErrorFormat stores the error format in the context.
func WithErrorFormat(ctx context.Context, format string) context.Context {
	return context.WithValue(ctx, errorFormatKey{}, format)
}

// ErrorFormatFromContext retrieves the error format from context.
func ErrorFormatFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(errorFormatKey{}).(string); ok {
		return v
	}
	return ""
}

// WithConfig stores loaded CLI config in context for downstream helpers.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// ConfigFromContext retrieves CLI config from context.
// It never returns nil.
func ConfigFromContext(ctx context.Context) *config.Config {
	if v, ok := ctx.Value(configKey{}).(*config.Config); ok && v != nil {
		return v
	}
	return &config.Config{}
}

func withIO(ctx context.Context, stdout, stderr io.Writer) context.Context {
	if stdout != nil {
		ctx = context.WithValue(ctx, stdoutKey{}, stdout)
	}
	if stderr != nil {
		ctx = context.WithValue(ctx, stderrKey{}, stderr)
	}
	return ctx
}
