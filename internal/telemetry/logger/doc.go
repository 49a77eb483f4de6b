// Package logger provides structured logging for tokfactory.
//
// It wraps the standard library log/slog:
//
//   - logger.go: Logger interface, configuration and the global default
//   - context.go: Context-aware logging with request ID and caller
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering with runtime adjustment (SetLevel)
//   - Context propagation for request correlation
package logger
