package ports

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug covers per-frame and per-process details.
	LevelDebug LogLevel = iota
	// LevelInfo covers run milestones and encoder progress.
	LevelInfo
	// LevelWarn covers problems that do not fail the run.
	LevelWarn
	// LevelError covers problems that fail the run.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a string into a LogLevel. Unknown names map to info.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "quiet":
		return LevelQuiet
	default:
		return LevelInfo
	}
}

// Logger abstracts logging. Messages are lexicon keys: implementations
// translate msg before formatting it with args.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with the
	// component name, e.g. "[ffmpeg]".
	WithComponent(component string) Logger
}
