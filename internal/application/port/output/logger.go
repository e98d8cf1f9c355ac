package output

// LoggerPort is a leveled key/value logger. args alternate key, value; a run
// scopes its logger with WithField("run_id", id).
type LoggerPort interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	WithField(key string, value any) LoggerPort
	WithFields(fields map[string]any) LoggerPort

	// Close flushes buffered entries and releases the log file.
	Close() error
}
