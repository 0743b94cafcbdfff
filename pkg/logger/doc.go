// Package logger builds the application's structured slog logger: JSON in
// production, human-readable text elsewhere, with a configurable level.
package logger
