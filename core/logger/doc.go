// Package logger provides slog attribute helpers with consistent keys
// across the gateway. Helpers return an empty Attr for zero values, which
// slog drops silently, so call sites stay free of nil checks.
package logger
