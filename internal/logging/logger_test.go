package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func readLog(t *testing.T, dir string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, ".taskflow", "logs", LogName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestPrintfAppendsTimestampedLines(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Printf("watch started on %s\n", "Inbox")
	logger.Printf("copied %d file(s)", 2)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	lines := readLog(t, dir)
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "[") || !strings.HasSuffix(lines[0], "] watch started on Inbox") {
		t.Fatalf("unexpected line %q", lines[0])
	}
}

func TestScopedLinesCarryRunID(t *testing.T) {
	dir := t.TempDir()
	stamp := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	logger, err := New(dir, WithClock(func() time.Time { return stamp }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	run := logger.With("run 1234")
	run.Printf("create-plan: claimed %s", "a.md")
	run.With("close-plan").Printf("first\nsecond")
	logger.Printf("loop stopped")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	run.Printf("after close")

	want := []string{
		"[2026-05-06T07:08:09Z] [run 1234] create-plan: claimed a.md",
		"[2026-05-06T07:08:09Z] [run 1234 close-plan] first",
		"[2026-05-06T07:08:09Z] [run 1234 close-plan] second",
		"[2026-05-06T07:08:09Z] loop stopped",
	}
	lines := readLog(t, dir)
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("log =\n%s\nwant\n%s", strings.Join(lines, "\n"), strings.Join(want, "\n"))
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Printf("ignored")
	logger.With("run").Printf("ignored")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close on nil: %v", err)
	}
}
