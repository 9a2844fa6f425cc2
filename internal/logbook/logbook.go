// Package logbook maintains the activity log: the shared Dashboard document
// whose "## Recent Activity" section collects one timestamped line per
// pipeline transition.
package logbook

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/kingrea/taskflow/internal/artifact"
)

// SectionMarker heads the section that entries are appended to.
const SectionMarker = "## Recent Activity"

const (
	entryIndent     = "   "
	entryTimeLayout = "2006-01-02 15:04"
)

var (
	// ErrMissingLog indicates the log document does not exist.
	ErrMissingLog = errors.New("logbook: log document missing")
	// ErrMissingSection indicates the document lacks the section marker.
	ErrMissingSection = errors.New("logbook: missing " + SectionMarker + " section")
)

var entryPattern = regexp.MustCompile(`^\s*[-*] \[(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}[^\]]*)\] ?(.*)$`)

// Entry is one activity line.
type Entry struct {
	Timestamp string
	Message   string
}

// Logbook appends activity entries to a markdown document. Appends from this
// process are serialized; appends from other processes are not.
type Logbook struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// Option customizes a Logbook.
type Option func(*Logbook)

// WithClock overrides the clock used for entry timestamps.
func WithClock(clock func() time.Time) Option {
	return func(l *Logbook) {
		if clock != nil {
			l.now = clock
		}
	}
}

// New creates a logbook that writes to the provided path. The document itself
// is not created; callers seed it with the section marker.
func New(path string, opts ...Option) (*Logbook, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("logbook: path is required")
	}
	book := &Logbook{path: path, now: time.Now}
	for _, opt := range opts {
		opt(book)
	}
	return book, nil
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append inserts one entry after the last existing entry of the activity
// section, or directly under the marker when the section is empty. When the
// document or marker is missing the document is left untouched.
func (l *Logbook) Append(message string) error {
	if l == nil {
		return ErrMissingLog
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingLog, l.path)
		}
		return fmt.Errorf("logbook: read %s: %w", l.path, err)
	}
	lines := strings.Split(string(data), "\n")
	marker := findMarker(lines)
	if marker < 0 {
		return fmt.Errorf("%w: %s", ErrMissingSection, l.path)
	}
	insertAt := marker + 1
	for i := marker + 1; i < len(lines); i++ {
		switch {
		case isEntry(lines[i]):
			insertAt = i + 1
			continue
		case strings.TrimSpace(lines[i]) == "":
			continue
		}
		break
	}
	entry := FormatEntry(l.now(), message)
	updated := make([]string, 0, len(lines)+1)
	updated = append(updated, lines[:insertAt]...)
	updated = append(updated, entry)
	updated = append(updated, lines[insertAt:]...)
	if err := artifact.WriteFileAtomic(l.path, []byte(strings.Join(updated, "\n")), 0o644); err != nil {
		return fmt.Errorf("logbook: write %s: %w", l.path, err)
	}
	return nil
}

// Appendf formats and appends one entry.
func (l *Logbook) Appendf(format string, args ...any) error {
	return l.Append(fmt.Sprintf(format, args...))
}

// Tail returns up to limit of the most recent activity entries and the total
// number of entries in the section.
func (l *Logbook) Tail(limit int) ([]Entry, int) {
	if l == nil {
		return nil, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, 0
	}
	lines := strings.Split(string(data), "\n")
	marker := findMarker(lines)
	if marker < 0 {
		return nil, 0
	}
	var entries []Entry
	for _, line := range lines[marker+1:] {
		if strings.HasPrefix(strings.TrimSpace(line), "## ") {
			break
		}
		if m := entryPattern.FindStringSubmatch(line); m != nil {
			entries = append(entries, Entry{Timestamp: m[1], Message: m[2]})
		}
	}
	total := len(entries)
	if limit > 0 && total > limit {
		entries = entries[total-limit:]
	}
	return entries, total
}

// FormatEntry renders one activity line.
func FormatEntry(t time.Time, message string) string {
	return fmt.Sprintf("%s- [%s] %s", entryIndent, t.Format(entryTimeLayout), message)
}

func findMarker(lines []string) int {
	for i, line := range lines {
		if strings.TrimSpace(line) == SectionMarker {
			return i
		}
	}
	return -1
}

func isEntry(line string) bool {
	return entryPattern.MatchString(line)
}
