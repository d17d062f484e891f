// Package logging builds the slog loggers used across the pipeline and
// standardizes the structured field names nodes attach to log records.
package logging
