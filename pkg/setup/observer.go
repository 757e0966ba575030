package setup

import (
	"github.com/arthur-debert/stackops/pkg/types"
)

// Observer is notified as a run progresses. Errors returned by observers
// are logged and never change the outcome of a run.
type Observer interface {
	RunStarted(report *types.RunReport) error
	StageFinished(runID string, result types.ExecutionResult) error
	RunFinished(report *types.RunReport) error
}
