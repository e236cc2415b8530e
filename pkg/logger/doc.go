// Package logger builds the application's slog loggers: JSON output to
// stdout, optional Sentry forwarding for warnings and errors, and
// context-extracted attributes (request IDs and the like) injected per log
// call via a handler decorator.
package logger
