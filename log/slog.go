package log

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	// slogLevelTrace sits below 'slog.LevelDebug' since slog has no native trace level.
	slogLevelTrace = slog.LevelDebug - 4

	// slogLevelPanic sits above 'slog.LevelError' since slog has no native panic level.
	slogLevelPanic = slog.LevelError + 4
)

// SlogLogger adapts a '*slog.Logger' so that it may be used as a 'Logger'.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger returns a Logger which formats messages and forwards them to the given slog logger, a <nil> logger
// results in 'slog.Default' being used.
func NewSlogLogger(logger *slog.Logger) SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}

	return SlogLogger{logger: logger}
}

// Log formats the message and logs it at the slog level equivalent to the given level.
func (s SlogLogger) Log(level Level, format string, args ...any) {
	lvl := toSlogLevel(level)

	if !s.logger.Enabled(context.Background(), lvl) {
		return
	}

	s.logger.Log(context.Background(), lvl, fmt.Sprintf(format, args...))
}

// toSlogLevel converts our levels into the slog equivalent.
func toSlogLevel(level Level) slog.Level {
	switch level {
	case LevelTrace:
		return slogLevelTrace
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	}

	return slogLevelPanic
}

// UserDataValue is a string that should be treated as user data, and therefore tagged as such in the logs.
type UserDataValue string

func (u UserDataValue) LogValue() slog.Value {
	return slog.StringValue(u.String())
}

// String tags the value so that it's also redacted when formatted using the 'Logger' interface.
func (u UserDataValue) String() string {
	return fmt.Sprintf("<ud>%s</ud>", string(u))
}

// UserData returns an Attr for a string value that should be treated as user data.
func UserData(key, value string) slog.Attr {
	return slog.Attr{Key: key, Value: UserDataValue(value).LogValue()}
}

var (
	_ Logger = SlogLogger{}
	_ Logger = (*StdoutLogger)(nil)
	_ Logger = nopLogger{}
)
