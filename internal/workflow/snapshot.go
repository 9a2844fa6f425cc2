package workflow

import (
	"path/filepath"
	"strings"

	"github.com/kingrea/taskflow/internal/artifact"
)

// Record is one task or plan as seen on disk.
type Record struct {
	Name   string
	Path   string
	Status string
	Stage  Stage
	// Unreadable is set when the record vanished or could not be read after
	// it was listed.
	Unreadable bool
}

// Snapshot lists the records still in flight.
type Snapshot struct {
	Tasks []Record
	Plans []Record
}

// Open counts plans that have not been completed.
func (s Snapshot) Open() int {
	n := 0
	for _, plan := range s.Plans {
		if plan.Stage == StagePlanned {
			n++
		}
	}
	return n
}

// Detect reads the pending tasks in Needs_Action and every plan in Plans/ and
// the project root.
func Detect(store *artifact.Store) (Snapshot, error) {
	var snap Snapshot
	tasks, err := store.ListTasks()
	if err != nil {
		return snap, err
	}
	for _, path := range tasks {
		snap.Tasks = append(snap.Tasks, readRecord(store, path, LocationNeedsAction))
	}
	plans, err := store.ListPlans()
	if err != nil {
		return snap, err
	}
	for _, path := range plans {
		snap.Plans = append(snap.Plans, readRecord(store, path, LocationPlans))
	}
	return snap, nil
}

func readRecord(store *artifact.Store, path string, loc Location) Record {
	rec := Record{Name: filepath.Base(path), Path: path}
	doc, err := store.ReadDocument(path)
	if err != nil {
		rec.Unreadable = true
		rec.Stage = StageOf("", loc)
		return rec
	}
	rec.Status = strings.TrimSpace(doc.Header.Value(artifact.KeyStatus))
	rec.Stage = StageOf(rec.Status, loc)
	return rec
}
