package logbook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2026, 3, 9, 14, 5, 0, 0, time.Local) }
}

func writeDashboard(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Dashboard.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("seed dashboard: %v", err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestAppendIntoEmptySection(t *testing.T) {
	path := writeDashboard(t, "# Dashboard\n\n## Recent Activity\n")
	book, err := New(path, WithClock(fixedClock()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := book.Append("Created plan for report.txt"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	want := "# Dashboard\n\n## Recent Activity\n   - [2026-03-09 14:05] Created plan for report.txt\n"
	if got := readFile(t, path); got != want {
		t.Fatalf("dashboard = %q, want %q", got, want)
	}
}

func TestAppendAfterLastEntryKeepsTrailingSections(t *testing.T) {
	content := strings.Join([]string{
		"# Dashboard",
		"## Recent Activity",
		"   - [2026-03-08 09:00] first",
		"",
		"   - [2026-03-08 10:00] second",
		"",
		"## Notes",
		"keep me",
		"",
	}, "\n")
	path := writeDashboard(t, content)
	book, _ := New(path, WithClock(fixedClock()))
	if err := book.Append("third"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got := readFile(t, path)
	want := strings.Join([]string{
		"# Dashboard",
		"## Recent Activity",
		"   - [2026-03-08 09:00] first",
		"",
		"   - [2026-03-08 10:00] second",
		"   - [2026-03-09 14:05] third",
		"",
		"## Notes",
		"keep me",
		"",
	}, "\n")
	if got != want {
		t.Fatalf("dashboard =\n%s\nwant\n%s", got, want)
	}
}

func TestAppendBeforeUnrelatedText(t *testing.T) {
	path := writeDashboard(t, "## Recent Activity\nSomething else\n")
	book, _ := New(path, WithClock(fixedClock()))
	if err := book.Append("entry"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	want := "## Recent Activity\n   - [2026-03-09 14:05] entry\nSomething else\n"
	if got := readFile(t, path); got != want {
		t.Fatalf("dashboard = %q, want %q", got, want)
	}
}

func TestAppendWithoutSectionLeavesDocumentUnchanged(t *testing.T) {
	original := "# Dashboard\n\n## Status\nall good\n"
	path := writeDashboard(t, original)
	book, _ := New(path)
	err := book.Append("ignored")
	if !errors.Is(err, ErrMissingSection) {
		t.Fatalf("Append error = %v, want ErrMissingSection", err)
	}
	if got := readFile(t, path); got != original {
		t.Fatalf("dashboard modified: %q", got)
	}
}

func TestAppendMissingDocument(t *testing.T) {
	book, _ := New(filepath.Join(t.TempDir(), "Dashboard.md"))
	if err := book.Append("x"); !errors.Is(err, ErrMissingLog) {
		t.Fatalf("Append error = %v, want ErrMissingLog", err)
	}
}

func TestMarkerIsNeverDuplicated(t *testing.T) {
	path := writeDashboard(t, "## Recent Activity\n")
	book, _ := New(path, WithClock(fixedClock()))
	for i := 0; i < 3; i++ {
		if err := book.Appendf("entry-%d", i); err != nil {
			t.Fatalf("Appendf: %v", err)
		}
	}
	got := readFile(t, path)
	if strings.Count(got, SectionMarker) != 1 {
		t.Fatalf("marker count != 1: %q", got)
	}
	for i := 0; i < 3; i++ {
		if !strings.Contains(got, fmt.Sprintf("entry-%d", i)) {
			t.Fatalf("missing entry-%d in %q", i, got)
		}
	}
	if strings.Index(got, "entry-0") > strings.Index(got, "entry-2") {
		t.Fatalf("entries out of order: %q", got)
	}
}

func TestTailReturnsRecentEntriesAndTotal(t *testing.T) {
	path := writeDashboard(t, "## Recent Activity\n")
	book, _ := New(path, WithClock(fixedClock()))
	for i := 0; i < 5; i++ {
		if err := book.Appendf("entry-%d", i); err != nil {
			t.Fatalf("Appendf: %v", err)
		}
	}
	entries, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total entries = %d, want 5", total)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if entries[idx].Message != want {
			t.Fatalf("entry %d = %+v, want %s", idx, entries[idx], want)
		}
		if entries[idx].Timestamp != "2026-03-09 14:05" {
			t.Fatalf("entry %d timestamp = %q", idx, entries[idx].Timestamp)
		}
	}
}
