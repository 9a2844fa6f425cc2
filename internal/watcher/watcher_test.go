package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kingrea/taskflow/internal/artifact"
	"github.com/kingrea/taskflow/internal/config"
	"github.com/kingrea/taskflow/internal/console"
)

var fixedNow = time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

func newTestWatcher(t *testing.T, opts ...Option) (*Watcher, *config.Config) {
	t.Helper()
	root := t.TempDir()
	if err := config.InitProjectDir(root); err != nil {
		t.Fatalf("InitProjectDir: %v", err)
	}
	cfg, err := config.NewConfig(root)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	base := []Option{WithSettleDelay(0), WithClock(func() time.Time { return fixedNow })}
	return New(cfg, artifact.NewStore(cfg.Layout()), append(base, opts...)...), cfg
}

func drop(t *testing.T, cfg *config.Config, name, content string) string {
	t.Helper()
	path := filepath.Join(cfg.InboxDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("drop %s: %v", name, err)
	}
	return path
}

func TestHandleMaterializesDroppedFile(t *testing.T) {
	var states []State
	w, cfg := newTestWatcher(t, WithObserver(func(_ string, s State) { states = append(states, s) }))
	src := drop(t, cfg, "report.txt", "0123456789")

	record, err := w.Handle(context.Background(), src)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if record != filepath.Join(cfg.NeedsActionDir(), "FILE_report.txt.md") {
		t.Fatalf("record = %s", record)
	}
	data, err := os.ReadFile(filepath.Join(cfg.NeedsActionDir(), "FILE_report.txt"))
	if err != nil || string(data) != "0123456789" {
		t.Fatalf("copy = %q, %v", data, err)
	}
	doc, err := artifact.NewStore(cfg.Layout()).ReadDocument(record)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	meta := artifact.TaskMetaFrom(doc.Header)
	want := artifact.TaskMeta{
		Type:         artifact.TypeFileDrop,
		OriginalName: "report.txt",
		SizeBytes:    10,
		DetectedAt:   "2026-05-06T07:08:09Z",
		Status:       artifact.StatusPending,
	}
	if meta != want {
		t.Fatalf("meta = %+v, want %+v", meta, want)
	}
	if !strings.Contains(doc.Body, "Copied to: FILE_report.txt") {
		t.Fatalf("body = %q", doc.Body)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("inbox original touched: %v", err)
	}
	wantStates := []State{StateFileDetected, StateSettling, StateMaterialized, StateIdle}
	if len(states) != len(wantStates) {
		t.Fatalf("states = %v, want %v", states, wantStates)
	}
	for i := range wantStates {
		if states[i] != wantStates[i] {
			t.Fatalf("states = %v, want %v", states, wantStates)
		}
	}
}

func TestDuplicateDropsGetDistinctRecords(t *testing.T) {
	w, cfg := newTestWatcher(t)
	src := drop(t, cfg, "report.txt", "first")
	if _, err := w.Handle(context.Background(), src); err != nil {
		t.Fatalf("first Handle: %v", err)
	}
	drop(t, cfg, "report.txt", "second drop")
	record, err := w.Handle(context.Background(), src)
	if err != nil {
		t.Fatalf("second Handle: %v", err)
	}
	if filepath.Base(record) != "FILE_report_1.txt.md" {
		t.Fatalf("second record = %s", record)
	}
	first, _ := os.ReadFile(filepath.Join(cfg.NeedsActionDir(), "FILE_report.txt"))
	second, _ := os.ReadFile(filepath.Join(cfg.NeedsActionDir(), "FILE_report_1.txt"))
	if string(first) != "first" || string(second) != "second drop" {
		t.Fatalf("copies = %q, %q", first, second)
	}
}

func TestHandleIgnoresHiddenAndTransientFiles(t *testing.T) {
	w, cfg := newTestWatcher(t)
	for _, name := range []string{".DS_Store", "upload.txt.tmp"} {
		src := drop(t, cfg, name, "x")
		record, err := w.Handle(context.Background(), src)
		if err != nil || record != "" {
			t.Fatalf("Handle(%s) = %q, %v", name, record, err)
		}
	}
	entries, _ := os.ReadDir(cfg.NeedsActionDir())
	if len(entries) != 0 {
		t.Fatalf("Needs_Action not empty: %v", entries)
	}
}

func TestHandleSkipsDirectoriesAndVanishedFiles(t *testing.T) {
	w, cfg := newTestWatcher(t)
	dir := filepath.Join(cfg.InboxDir(), "folder")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if record, err := w.Handle(context.Background(), dir); err != nil || record != "" {
		t.Fatalf("Handle(dir) = %q, %v", record, err)
	}
	_, err := w.Handle(context.Background(), filepath.Join(cfg.InboxDir(), "gone.txt"))
	if !errors.Is(err, artifact.ErrNotFound) {
		t.Fatalf("vanished err = %v", err)
	}
}

func TestHandleCancelledWhileSettling(t *testing.T) {
	w, cfg := newTestWatcher(t, WithSettleDelay(time.Hour))
	src := drop(t, cfg, "slow.bin", "partial")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := w.Handle(ctx, src); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	entries, _ := os.ReadDir(cfg.NeedsActionDir())
	if len(entries) != 0 {
		t.Fatalf("Needs_Action not empty: %v", entries)
	}
}

func TestLocalTimestampPolicy(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, config.ToolDir), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := "version: 1\nwatcher:\n  timestamp_policy: local\n"
	if err := os.WriteFile(filepath.Join(root, config.ToolDir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := config.InitProjectDir(root); err != nil {
		t.Fatalf("InitProjectDir: %v", err)
	}
	cfg, err := config.NewConfig(root)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	w := New(cfg, artifact.NewStore(cfg.Layout()), WithSettleDelay(0), WithClock(func() time.Time { return fixedNow }))
	record, err := w.Handle(context.Background(), drop(t, cfg, "a.txt", "a"))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	doc, _ := artifact.NewStore(cfg.Layout()).ReadDocument(record)
	if got, want := doc.Header.Value(artifact.KeyDetectedAt), fixedNow.Local().Format(time.RFC3339); got != want {
		t.Fatalf("detected_at = %q, want %q", got, want)
	}
}

// readyWriter closes ready on its first write.
type readyWriter struct {
	once  sync.Once
	ready chan struct{}
}

func (r *readyWriter) Write(p []byte) (int, error) {
	r.once.Do(func() { close(r.ready) })
	return len(p), nil
}

func TestRunPicksUpNewFiles(t *testing.T) {
	signal := &readyWriter{ready: make(chan struct{})}
	w, cfg := newTestWatcher(t, WithOutput(console.New(signal)))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-signal.ready:
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatalf("watcher did not start")
	}
	drop(t, cfg, "live.txt", "hello")

	record := filepath.Join(cfg.NeedsActionDir(), "FILE_live.txt.md")
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(record); err == nil {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("record %s not created", record)
		}
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
}
