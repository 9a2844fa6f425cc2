// Package artifact defines the records that move through the task pipeline
// (task records, plan records, archived plans), the frontmatter codec they
// share, and the Store that relocates them between the pipeline directories.

package artifact

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Filename conventions.
const (
	TaskPrefix     = "FILE_"
	PlanPrefix     = "Plan_"
	MarkdownExt    = ".md"
	CompletedInfix = "_completed_"

	// TaskPattern matches task records in Needs_Action.
	TaskPattern = "*" + MarkdownExt
	// PlanPattern matches plan records in Plans/ and the project root.
	PlanPattern = PlanPrefix + "*" + MarkdownExt

	archiveStampLayout = "20060102_150405"
	isoLayout          = "2006-01-02T15:04:05Z"
)

// Header keys recognised by the pipeline.
const (
	KeyType         = "type"
	KeyOriginalName = "original_name"
	KeySizeBytes    = "size_bytes"
	KeyDetectedAt   = "detected_at"
	KeyStatus       = "status"
	KeyTaskOrigin   = "task_origin"
	KeyTask         = "task"
	KeyCreated      = "created"
	KeyCompleted    = "completed"
)

// Status values written by the pipeline. Any other text is preserved as-is.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// TypeFileDrop marks task records produced by the inbox watcher.
const TypeFileDrop = "file_drop"

// PlanNameFor derives the plan filename for a task record: the task name
// without its extension, prefixed with Plan_.
func PlanNameFor(taskName string) string {
	base := filepath.Base(taskName)
	return PlanPrefix + strings.TrimSuffix(base, filepath.Ext(base)) + MarkdownExt
}

// ArchiveNameFor derives the archived filename of a plan closed at t.
func ArchiveNameFor(planName string, t time.Time) string {
	base := filepath.Base(planName)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return stem + CompletedInfix + t.Format(archiveStampLayout) + ext
}

// TaskNamesFor returns the raw-copy and companion record names for a dropped
// file. attempt > 0 inserts a numeric suffix before the extension.
func TaskNamesFor(originalName string, attempt int) (copyName, recordName string) {
	copyName = TaskPrefix + originalName
	if attempt > 0 {
		copyName = withSuffix(copyName, attempt)
	}
	return copyName, copyName + MarkdownExt
}

// DisplayName turns a record filename into the short task name used in the
// activity log, e.g. "Plan_FILE_quarterly_report.txt.md" -> "quarterly report.txt".
func DisplayName(name string) string {
	name = strings.TrimSuffix(filepath.Base(name), MarkdownExt)
	name = strings.TrimPrefix(name, PlanPrefix)
	name = strings.TrimPrefix(name, TaskPrefix)
	name = strings.ReplaceAll(name, "_", " ")
	return strings.TrimSpace(name)
}

// ISOTimestamp renders t as an ISO-8601 UTC timestamp with a Z suffix.
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// ParseISOTimestamp parses timestamps written by ISOTimestamp or any RFC3339 value.
func ParseISOTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(isoLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

func withSuffix(name string, n int) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + strconv.Itoa(n) + ext
}

// TaskMeta is the header of a task record.
type TaskMeta struct {
	Type         string
	OriginalName string
	SizeBytes    int64
	DetectedAt   string
	Status       string
}

// Header renders the task metadata in its canonical key order.
func (m TaskMeta) Header() Header {
	return NewHeader(
		Field{KeyType, m.Type},
		Field{KeyOriginalName, m.OriginalName},
		Field{KeySizeBytes, strconv.FormatInt(m.SizeBytes, 10)},
		Field{KeyDetectedAt, m.DetectedAt},
		Field{KeyStatus, m.Status},
	)
}

// TaskMetaFrom reads task metadata from a parsed header. Missing or
// unparseable fields are left zero.
func TaskMetaFrom(h Header) TaskMeta {
	size, _ := strconv.ParseInt(h.Value(KeySizeBytes), 10, 64)
	return TaskMeta{
		Type:         h.Value(KeyType),
		OriginalName: h.Value(KeyOriginalName),
		SizeBytes:    size,
		DetectedAt:   h.Value(KeyDetectedAt),
		Status:       h.Value(KeyStatus),
	}
}

// PlanMeta is the header of a plan record.
type PlanMeta struct {
	TaskOrigin string
	Created    string
	Status     string
	Completed  string
}

// Header renders plan metadata; Completed is omitted while empty.
func (m PlanMeta) Header() Header {
	h := NewHeader(
		Field{KeyTaskOrigin, m.TaskOrigin},
		Field{KeyCreated, m.Created},
		Field{KeyStatus, m.Status},
	)
	if m.Completed != "" {
		h.Set(KeyCompleted, m.Completed)
	}
	return h
}

// PlanMetaFrom reads plan metadata, accepting the older `task` key as origin.
func PlanMetaFrom(h Header) PlanMeta {
	origin, ok := h.Get(KeyTaskOrigin)
	if !ok {
		origin = h.Value(KeyTask)
	}
	return PlanMeta{
		TaskOrigin: origin,
		Created:    h.Value(KeyCreated),
		Status:     h.Value(KeyStatus),
		Completed:  h.Value(KeyCompleted),
	}
}
