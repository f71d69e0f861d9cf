// Package logger builds configured log/slog loggers plus a few typed
// attribute helpers used across the security packages. Defaults are
// production-safe (JSON, INFO); tests and development pass WithFormat and
// WithOutput to redirect.
package logger
