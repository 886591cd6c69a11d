package logging

import "log/slog"

// EnableTrace turns on per-command and per-frame debug lines. Set by level "TRACE".
var EnableTrace = false

// Trace logs a message at DEBUG level, but only if EnableTrace is true.
func Trace(logger *slog.Logger, msg string, args ...any) {
	if EnableTrace {
		logger.Debug(msg, args...)
	}
}
