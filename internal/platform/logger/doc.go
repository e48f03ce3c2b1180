// Package logger configures the process-wide JSON slog logger from the
// server configuration and carries request-scoped loggers (with trace and
// user ids attached) through the context.
package logger
