package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"
)

var (
	// ErrNotFound indicates a named record is absent from every search location.
	ErrNotFound = errors.New("artifact: not found")
	// ErrPermission indicates the filesystem refused a read, write, or move.
	ErrPermission = errors.New("artifact: permission denied")
	// ErrCollision indicates the destination name is already occupied.
	ErrCollision = errors.New("artifact: destination exists")
)

// PathError reports a failed store operation. It matches both its taxonomy
// kind (ErrNotFound, ErrPermission, ...) and the underlying error with errors.Is.
type PathError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("artifact: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes the kind and the cause.
func (e *PathError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

// Classify maps a filesystem error onto the store's error taxonomy.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, ErrPermission), errors.Is(err, fs.ErrPermission):
		return ErrPermission
	case errors.Is(err, ErrCollision), errors.Is(err, fs.ErrExist):
		return ErrCollision
	default:
		return nil
	}
}

func pathError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PathError
	if errors.As(err, &pe) {
		return err
	}
	return &PathError{Op: op, Path: path, Kind: Classify(err), Err: err}
}

// CollisionPolicy decides what Move does when the destination name is taken.
type CollisionPolicy int

const (
	// CollisionFail refuses to replace an existing destination.
	CollisionFail CollisionPolicy = iota
	// CollisionOverwrite replaces the destination.
	CollisionOverwrite
	// CollisionNumericSuffix picks the first free name_1, name_2, ... variant.
	CollisionNumericSuffix
)

// Layout names the pipeline directories. Every path is absolute.
type Layout struct {
	Root        string
	Inbox       string
	NeedsAction string
	Plans       string
	Done        string
	Archive     string
}

// Store moves records between the pipeline directories.
type Store struct {
	layout Layout
	now    func() time.Time
}

// StoreOption customizes a Store during construction.
type StoreOption func(*Store)

// WithClock overrides the clock used for archive names and timestamps.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewStore builds a store over a directory layout.
func NewStore(layout Layout, opts ...StoreOption) *Store {
	store := &Store{
		layout: layout,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Layout returns the directories the store operates on.
func (s *Store) Layout() Layout {
	return s.layout
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// PlanDir returns Plans/ when it exists, otherwise the project root. The check
// runs on every call so a Plans directory created later is picked up.
func (s *Store) PlanDir() string {
	if info, err := os.Stat(s.layout.Plans); err == nil && info.IsDir() {
		return s.layout.Plans
	}
	return s.layout.Root
}

// List returns the regular, non-hidden files in dir whose names match pattern,
// sorted by name. A missing directory yields no entries.
func (s *Store) List(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, pathError("list", dir, err)
	}
	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		ok, err := filepath.Match(pattern, name)
		if err != nil {
			return nil, fmt.Errorf("artifact: bad pattern %q: %w", pattern, err)
		}
		if ok {
			out = append(out, filepath.Join(dir, name))
		}
	}
	sort.Strings(out)
	return out, nil
}

// ListPlans returns plan records from Plans/ followed by any in the project root.
func (s *Store) ListPlans() ([]string, error) {
	plans, err := s.List(s.layout.Plans, PlanPattern)
	if err != nil {
		return nil, err
	}
	if filepath.Clean(s.layout.Plans) == filepath.Clean(s.layout.Root) {
		return plans, nil
	}
	rootPlans, err := s.List(s.layout.Root, PlanPattern)
	if err != nil {
		return nil, err
	}
	return append(plans, rootPlans...), nil
}

// ListTasks returns task records waiting in Needs_Action. A markdown file that
// is itself the raw copy of another record (FILE_x.md next to FILE_x.md.md) is
// an attachment, not a task. A FILE_ markdown file whose header names neither a
// type nor a status is a raw copy whose record has not been written yet, and is
// skipped until it has one.
func (s *Store) ListTasks() ([]string, error) {
	candidates, err := s.List(s.layout.NeedsAction, TaskPattern)
	if err != nil {
		return nil, err
	}
	present := make(map[string]struct{}, len(candidates))
	for _, path := range candidates {
		present[path] = struct{}{}
	}
	tasks := candidates[:0:0]
	for _, path := range candidates {
		if _, isAttachment := present[path+MarkdownExt]; isAttachment {
			continue
		}
		if strings.HasPrefix(filepath.Base(path), TaskPrefix) && !hasTaskHeader(path) {
			continue
		}
		tasks = append(tasks, path)
	}
	return tasks, nil
}

func hasTaskHeader(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	header := Parse(string(data)).Header
	return header.Value(KeyType) != "" || header.Value(KeyStatus) != ""
}

// Resolve finds name in primary and then in the project root.
func (s *Store) Resolve(name, primary string) (string, error) {
	if strings.TrimSpace(name) == "" || filepath.Base(name) != name {
		return "", &PathError{Op: "resolve", Path: name, Kind: ErrNotFound, Err: fmt.Errorf("invalid record name %q", name)}
	}
	for _, dir := range []string{primary, s.layout.Root} {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", pathError("resolve", path, err)
		}
	}
	return "", &PathError{Op: "resolve", Path: name, Kind: ErrNotFound, Err: fmt.Errorf("not in %s or %s", primary, s.layout.Root)}
}

// UniqueName returns name, or the first name_N variant that does not exist in
// any of dirs.
func (s *Store) UniqueName(name string, dirs ...string) string {
	candidate := name
	for n := 1; ; n++ {
		if !existsIn(candidate, dirs) {
			return candidate
		}
		candidate = withSuffix(name, n)
	}
}

func existsIn(name string, dirs []string) bool {
	for _, dir := range dirs {
		if _, err := os.Lstat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// Move relocates src into dstDir, creating dstDir when missing. newName
// defaults to src's name. The rename is atomic on one filesystem; across
// filesystems the file is copied via a temp file and the source removed.
func (s *Store) Move(src, dstDir, newName string, policy CollisionPolicy) (string, error) {
	if newName == "" {
		newName = filepath.Base(src)
	}
	if _, err := os.Stat(src); err != nil {
		return "", pathError("move", src, err)
	}
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", pathError("move", dstDir, err)
	}
	switch policy {
	case CollisionNumericSuffix:
		newName = s.UniqueName(newName, dstDir)
	case CollisionFail:
		if existsIn(newName, []string{dstDir}) {
			dst := filepath.Join(dstDir, newName)
			return "", &PathError{Op: "move", Path: dst, Kind: ErrCollision, Err: fs.ErrExist}
		}
	}
	dst := filepath.Join(dstDir, newName)
	if err := os.Rename(src, dst); err != nil {
		if !isCrossDevice(err) {
			return "", pathError("move", src, err)
		}
		if err := s.Copy(context.Background(), src, dst); err != nil {
			return "", err
		}
		if err := os.Remove(src); err != nil {
			return "", pathError("move", src, err)
		}
	}
	return dst, nil
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	return errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV)
}

// Copy duplicates src to dst preserving mode and modification time. The data
// lands in a hidden temp file beside dst and is renamed into place, so dst is
// either absent or complete. Cancelling ctx aborts the copy and removes the
// temp file.
func (s *Store) Copy(ctx context.Context, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return pathError("copy", src, err)
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return pathError("copy", src, err)
	}
	if info.IsDir() {
		return &PathError{Op: "copy", Path: src, Err: fmt.Errorf("is a directory")}
	}
	err = writeAtomic(dst, info.Mode().Perm(), func(w io.Writer) error {
		_, err := io.Copy(w, contextReader{ctx: ctx, r: in})
		return err
	}, info.ModTime())
	return pathError("copy", dst, err)
}

// WriteFile replaces path with data through a temp file and rename.
func (s *Store) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return pathError("write", path, err)
	}
	return pathError("write", path, WriteFileAtomic(path, data, 0o644))
}

// ReadDocument loads and parses a record.
func (s *Store) ReadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, pathError("read", path, err)
	}
	return Parse(string(data)), nil
}

// WriteFileAtomic writes data to a hidden temp file beside path and renames it
// over path, so readers see either the old or the new content.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	return writeAtomic(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}, time.Time{})
}

func writeAtomic(path string, perm os.FileMode, fill func(io.Writer) error, modTime time.Time) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, "."+base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()
	if err := fill(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if !modTime.IsZero() {
		if err := os.Chtimes(tmpName, modTime, modTime); err != nil {
			return err
		}
	}
	return os.Rename(tmpName, path)
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
