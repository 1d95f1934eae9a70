// Package logging provides a simple leveled logging interface for vid2pdf.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information (per-frame decisions)
//   - INFO: Stage progress and run summary
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The initial level comes from the LOG_LEVEL environment variable (DEBUG=1
// forces debug) and can be overridden with SetLevel. Messages are rendered by
// a tint slog handler on stderr.
package logging
