// internal/workflow/stage.go
//
// Lifecycle stages of the task pipeline. A record's stage is derived from the
// directory it sits in and its header status, so the state on disk is the only
// source of truth.

package workflow

import (
	"strings"

	"github.com/kingrea/taskflow/internal/artifact"
)

// Stage represents where a record is in the pipeline.
type Stage int

const (
	StageUnknown Stage = iota
	StagePending
	StagePlanned
	StageCompleted
	StageArchived
)

// Location names the pipeline directory a record was found in.
type Location int

const (
	LocationNeedsAction Location = iota
	LocationPlans
	LocationDone
	LocationArchive
)

// String returns the stage keyword.
func (s Stage) String() string {
	switch s {
	case StagePending:
		return "pending"
	case StagePlanned:
		return "planned"
	case StageCompleted:
		return "completed"
	case StageArchived:
		return "archived"
	default:
		return "unknown"
	}
}

// FriendlyName returns a short label suitable for list display.
func (s Stage) FriendlyName() string {
	switch s {
	case StagePending:
		return "Waiting for a plan"
	case StagePlanned:
		return "Plan in progress"
	case StageCompleted:
		return "Plan completed"
	case StageArchived:
		return "Archived"
	default:
		return "Unknown"
	}
}

// StageOf classifies a record from its header status and location.
func StageOf(status string, loc Location) Stage {
	status = strings.ToLower(strings.TrimSpace(status))
	switch loc {
	case LocationNeedsAction:
		return StagePending
	case LocationPlans:
		if status == artifact.StatusCompleted {
			return StageCompleted
		}
		return StagePlanned
	case LocationDone:
		return StageCompleted
	case LocationArchive:
		return StageArchived
	default:
		return StageUnknown
	}
}
