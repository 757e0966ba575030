package types

import (
	"time"

	"github.com/arthur-debert/stackops/pkg/errors"
)

// Run statuses
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// ExecutionResult is the outcome of running one stage script.
// A failed result always carries Err; Stderr holds whatever the
// script wrote before exiting.
type ExecutionResult struct {
	// Stage is the name of the stage the script belongs to
	Stage string

	// ScriptID identifies the payload that was run
	ScriptID string

	// Succeeded is true when the script exited 0 or was skipped
	Succeeded bool

	// Skipped is set when no process was spawned but the stage still counts as
	// a success (optional stage without input, platform without a POSIX shell)
	Skipped bool

	// Stdout and Stderr are the captured output streams
	Stdout string
	Stderr string

	// Err is a coded error (SCRIPT_NOT_FOUND, SCRIPT_EXECUTION) for failures
	Err error

	StartedAt time.Time
	Duration  time.Duration
}

// Outcome returns a short label used in logs and history records
func (r ExecutionResult) Outcome() string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Succeeded:
		return "succeeded"
	default:
		return "failed"
	}
}

// RunReport aggregates the results of one orchestrator run
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	// Results holds one entry per stage that was attempted, in order
	Results []ExecutionResult

	// FailedStage names the stage that aborted the run, empty on success
	FailedStage string

	// Err is set when the run did not complete, either because a stage
	// failed or because the workspace could not be prepared
	Err error
}

// Succeeded reports whether every attempted stage succeeded
func (r *RunReport) Succeeded() bool {
	return r.Err == nil
}

// Duration returns the wall time of the run
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Status classifies a finished run as succeeded, failed or cancelled
func (r *RunReport) Status() string {
	switch {
	case r.Err == nil:
		return StatusSucceeded
	case errors.IsErrorCode(r.Err, errors.ErrCancelled):
		return StatusCancelled
	default:
		return StatusFailed
	}
}
