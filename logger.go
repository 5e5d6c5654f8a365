package voiper

// Logger defines the interface for framework logging.
// The framework uses structured logging with key-value pairs so that module assembly,
// bundle lookups and wiring faults appear consistently in the host application's logs.
//
// The Logger interface uses variadic arguments in key-value pairs:
//
//	logger.Info("message", "key1", "value1", "key2", "value2")
//
// *slog.Logger satisfies this interface directly.
type Logger interface {
	// Info logs an informational message, e.g. a module was assembled.
	Info(msg string, args ...any)

	// Error logs an error message. Wiring faults are logged here right before the panic.
	Error(msg string, args ...any)

	// Warn logs a warning message, e.g. a manifest reload that was skipped.
	Warn(msg string, args ...any)

	// Debug logs a debug message. Every construction and every link is logged at this level.
	Debug(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
