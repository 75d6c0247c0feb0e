package log

// Level is a type alias which is used to indicate the verbosity of an log statement.
type Level uint8

const (
	// LevelTrace is the most verbose log level, it's used for per-operation events such as individual heap moves.
	LevelTrace Level = iota

	// LevelDebug includes fine-grained informational events such as backing array growth.
	LevelDebug

	// LevelInfo includes informational messages that highlight the progress of long running consumers.
	LevelInfo

	// LevelWarning includes expected but potentially harmful/interesting events, for example the use of a stale handle.
	LevelWarning

	// LevelError includes error events which may still allow the library to continue running.
	LevelError

	// LevelPanic includes errors events which should lead to a panic. This level will only be used in the most severe
	// of cases.
	LevelPanic
)

// String returns the four character prefix used when rendering the level.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRAC"
	case LevelDebug:
		return "DEBU"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARN"
	case LevelError:
		return "ERRO"
	case LevelPanic:
		return "PNIC"
	}

	return "UNKN"
}
