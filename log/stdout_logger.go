package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// StdoutLogger is the standard output logger for printing all logs into the commandline.
//
// NOTE: The zero value writes to 'os.Stdout' and logs every level.
type StdoutLogger struct {
	// Out is where log lines are written, defaults to 'os.Stdout'.
	Out io.Writer

	// MinLevel filters out any log lines below the given level.
	MinLevel Level

	lock sync.Mutex
}

// Log method for the StdoutLogger which adds prefix dependant on the level and prints message inputted to terminal.
func (s *StdoutLogger) Log(level Level, msg string, args ...any) {
	if level < s.MinLevel {
		return
	}

	out := s.Out
	if out == nil {
		out = os.Stdout
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	fmt.Fprintln(out, time.Now().Format(time.RFC3339Nano)+" "+level.String()+": "+fmt.Sprintf(msg, args...))
}
