// Package skill defines the unit of pipeline work (a skill), the registry the
// CLI and orchestrator resolve skills from, and the context that carries the
// project's store, activity log, and output streams into every run.
package skill

import (
	"fmt"
	"strings"
)

// Info describes a skill's identity and intent.
type Info struct {
	ID          string
	Name        string
	Description string
	Version     string
}

// Validate ensures the info block is well-formed.
func (i Info) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return fmt.Errorf("skill: id is required")
	}
	if i.Name == "" {
		return fmt.Errorf("skill: name is required for %s", i.ID)
	}
	if i.Version == "" {
		return fmt.Errorf("skill: version is required for %s", i.ID)
	}
	return nil
}

// Result captures the outcome of a skill execution. Processed and Failed count
// the records the run handled.
type Result struct {
	Status    Status
	Message   string
	Processed int
	Failed    int
}

// Status enumerates skill run outcomes.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusNoOp      Status = "no-op"
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
)

// OK reports whether the run should count as a success for exit status.
func (r Result) OK() bool {
	return r.Status == StatusCompleted || r.Status == StatusNoOp
}

// Summarize derives the batch status from record counts.
func Summarize(processed, failed int, message string) Result {
	res := Result{Processed: processed, Failed: failed, Message: message}
	switch {
	case processed == 0 && failed == 0:
		res.Status = StatusNoOp
	case failed == 0:
		res.Status = StatusCompleted
	case processed == 0:
		res.Status = StatusFailed
	default:
		res.Status = StatusPartial
	}
	return res
}

// Skill is implemented by every pipeline step. args optionally name the
// records to process; empty args mean every eligible record.
type Skill interface {
	Info() Info
	Run(ctx *Context, args []string) (Result, error)
}
