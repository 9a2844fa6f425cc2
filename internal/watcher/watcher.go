// Package watcher turns files dropped into Inbox/ into pending task records.
//
// Every new Inbox entry goes through Idle → FileDetected → Settling →
// Materialized: the watcher waits the settle delay, copies the file into
// Needs_Action/ as FILE_<name> and writes a FILE_<name>.md record beside it.
// The Inbox original is never modified.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kingrea/taskflow/internal/artifact"
	"github.com/kingrea/taskflow/internal/config"
	"github.com/kingrea/taskflow/internal/console"
	"github.com/kingrea/taskflow/internal/logging"
)

// State is a step of the per-file lifecycle.
type State int

const (
	StateIdle State = iota
	StateFileDetected
	StateSettling
	StateMaterialized
)

func (s State) String() string {
	switch s {
	case StateFileDetected:
		return "file-detected"
	case StateSettling:
		return "settling"
	case StateMaterialized:
		return "materialized"
	default:
		return "idle"
	}
}

// Watcher observes an Inbox directory.
type Watcher struct {
	store           *artifact.Store
	settle          time.Duration
	transientSuffix string
	localTime       bool

	out      *console.Printer
	logger   *logging.Logger
	now      func() time.Time
	observer func(path string, state State)
}

// Option customizes a Watcher.
type Option func(*Watcher)

// WithClock overrides the clock used for detected_at.
func WithClock(clock func() time.Time) Option {
	return func(w *Watcher) {
		if clock != nil {
			w.now = clock
		}
	}
}

// WithSettleDelay overrides the configured settle delay.
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.settle = d
		}
	}
}

// WithOutput sets the status line printer.
func WithOutput(out *console.Printer) Option {
	return func(w *Watcher) {
		w.out = out
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *logging.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithObserver registers a callback invoked on every state transition.
func WithObserver(fn func(path string, state State)) Option {
	return func(w *Watcher) {
		w.observer = fn
	}
}

// New builds a watcher for the project described by cfg.
func New(cfg *config.Config, store *artifact.Store, opts ...Option) *Watcher {
	w := &Watcher{
		store:           store,
		settle:          cfg.SettleDelay(),
		transientSuffix: cfg.TransientSuffix(),
		localTime:       cfg.LocalTimestamps(),
		out:             console.Discard(),
		now:             time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Run watches Inbox/ until ctx is cancelled. Entries already present when Run
// starts are not processed. A failure on one entry is reported and watching
// continues.
func (w *Watcher) Run(ctx context.Context) error {
	inbox := w.store.Layout().Inbox
	if err := os.MkdirAll(inbox, 0o755); err != nil {
		return fmt.Errorf("watcher: ensure inbox: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(inbox); err != nil {
		return fmt.Errorf("watcher: watch %s: %w", inbox, err)
	}
	w.out.Info("Watching: %s", inbox)
	w.out.Info("Output:   %s", w.store.Layout().NeedsAction)
	w.logger.Printf("watcher: started on %s", inbox)

	for {
		select {
		case <-ctx.Done():
			w.logger.Printf("watcher: stopped")
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if _, err := w.Handle(ctx, event.Name); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				w.out.Failure("Error processing %s: %v", filepath.Base(event.Name), err)
				w.logger.Printf("watcher: %s: %v", event.Name, err)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Printf("watcher: notification error: %v", err)
		}
	}
}

// Ignored reports whether an Inbox entry name is skipped: hidden files and
// files still carrying the transient suffix.
func (w *Watcher) Ignored(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return w.transientSuffix != "" && strings.HasSuffix(name, w.transientSuffix)
}

// Handle materializes one Inbox entry and returns the task record path. An
// ignored entry or a directory returns "" and no error.
func (w *Watcher) Handle(ctx context.Context, path string) (string, error) {
	name := filepath.Base(path)
	if w.Ignored(name) {
		return "", nil
	}
	w.transition(path, StateFileDetected)
	defer w.transition(path, StateIdle)

	w.transition(path, StateSettling)
	if err := sleep(ctx, w.settle); err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("watcher: %s vanished before it settled: %w", name, artifact.ErrNotFound)
		}
		return "", fmt.Errorf("watcher: stat %s: %w", name, err)
	}
	if info.IsDir() {
		return "", nil
	}

	record, err := w.materialize(ctx, path, info)
	if err != nil {
		return "", err
	}
	w.transition(path, StateMaterialized)
	return record, nil
}

func (w *Watcher) materialize(ctx context.Context, path string, info fs.FileInfo) (string, error) {
	needsAction := w.store.Layout().NeedsAction
	if err := os.MkdirAll(needsAction, 0o755); err != nil {
		return "", fmt.Errorf("watcher: ensure %s: %w", needsAction, err)
	}
	original := filepath.Base(path)
	copyName, recordName := freeNames(needsAction, original)

	copyPath := filepath.Join(needsAction, copyName)
	if err := w.store.Copy(ctx, path, copyPath); err != nil {
		return "", err
	}
	w.out.Success("Copied: %s -> %s", original, copyName)

	meta := artifact.TaskMeta{
		Type:         artifact.TypeFileDrop,
		OriginalName: original,
		SizeBytes:    info.Size(),
		DetectedAt:   w.timestamp(),
		Status:       artifact.StatusPending,
	}
	body := fmt.Sprintf("## Dropped File\nOriginal: %s\nCopied to: %s\n\nNew item ready for processing.\n", original, copyName)
	recordPath := filepath.Join(needsAction, recordName)
	if err := w.store.WriteFile(recordPath, []byte(artifact.Render(meta.Header(), body))); err != nil {
		return "", err
	}
	w.out.Success("Created metadata: %s", recordName)
	w.logger.Printf("watcher: %s -> %s (%d bytes)", path, recordPath, info.Size())
	return recordPath, nil
}

// freeNames picks the first attempt whose copy and record names are both unused.
func freeNames(dir, original string) (string, string) {
	for attempt := 0; ; attempt++ {
		copyName, recordName := artifact.TaskNamesFor(original, attempt)
		if !exists(filepath.Join(dir, copyName)) && !exists(filepath.Join(dir, recordName)) {
			return copyName, recordName
		}
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func (w *Watcher) timestamp() string {
	now := w.now()
	if w.localTime {
		return now.Local().Format(time.RFC3339)
	}
	return artifact.ISOTimestamp(now)
}

func (w *Watcher) transition(path string, state State) {
	if w.observer != nil {
		w.observer(path, state)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
