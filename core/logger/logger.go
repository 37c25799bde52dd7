package logger

// Logger exposes logging methods for common severity levels. Implementations
// tag every entry with the component that created the logger.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// StructuredLogger can log structured debug information, such as per-robot
// command traces.
type StructuredLogger interface {
	Debugw(msg string, fields map[string]any)
}
