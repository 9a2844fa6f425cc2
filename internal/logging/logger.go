package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kingrea/taskflow/internal/config"
)

// LogName is the diagnostic log file inside .taskflow/logs.
const LogName = "taskflow.log"

// Logger appends timestamped diagnostic lines to .taskflow/logs/taskflow.log
// so failures can be inspected after a long-running watcher exits. Loggers
// derived with With share the file and prefix every line with their scope.
type Logger struct {
	sink  *sink
	scope string
}

type sink struct {
	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// Option customizes a Logger.
type Option func(*sink)

// WithClock overrides the clock used for line timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *sink) {
		if clock != nil {
			s.now = clock
		}
	}
}

// New creates (or reuses) the log file for the project directory.
func New(projectDir string, opts ...Option) (*Logger, error) {
	logDir := filepath.Join(projectDir, config.ToolDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(logDir, LogName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	s := &sink{file: f, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return &Logger{sink: s}, nil
}

// With returns a logger writing to the same file whose lines carry scope,
// e.g. the run ID of one orchestrator sweep. Scopes nest.
func (l *Logger) With(scope string) *Logger {
	if l == nil {
		return nil
	}
	scope = strings.TrimSpace(scope)
	if l.scope != "" && scope != "" {
		scope = l.scope + " " + scope
	} else if scope == "" {
		scope = l.scope
	}
	return &Logger{sink: l.sink, scope: scope}
}

// Close releases the file handle. Derived loggers stop writing as well.
func (l *Logger) Close() error {
	if l == nil || l.sink == nil {
		return nil
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.file == nil {
		return nil
	}
	err := l.sink.file.Close()
	l.sink.file = nil
	return err
}

// Printf writes one timestamped line per line of the formatted message.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.sink == nil {
		return
	}
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.file == nil {
		return
	}
	stamp := l.sink.now().Format(time.RFC3339)
	for _, line := range strings.Split(msg, "\n") {
		if l.scope != "" {
			fmt.Fprintf(l.sink.file, "[%s] [%s] %s\n", stamp, l.scope, line)
			continue
		}
		fmt.Fprintf(l.sink.file, "[%s] %s\n", stamp, line)
	}
}
