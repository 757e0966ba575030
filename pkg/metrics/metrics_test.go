package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/stackops/pkg/errors"
	"github.com/arthur-debert/stackops/pkg/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_StageResults(t *testing.T) {
	r := NewRecorder(nil, "")

	require.NoError(t, r.StageFinished("run-1", types.ExecutionResult{Stage: "initial_hardening", Succeeded: true, Duration: 3 * time.Second}))
	require.NoError(t, r.StageFinished("run-1", types.ExecutionResult{Stage: "container_runtime", Err: errors.New(errors.ErrScriptExecution, "boom")}))
	require.NoError(t, r.StageFinished("run-1", types.ExecutionResult{Stage: "ci_runner", Succeeded: true, Skipped: true}))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.stageResults.WithLabelValues("initial_hardening", "succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.stageResults.WithLabelValues("container_runtime", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.stageResults.WithLabelValues("ci_runner", "skipped")))

	// skipped stages have no duration sample
	assert.Equal(t, 2, testutil.CollectAndCount(r.stageDuration))
}

func TestRecorder_RunFinishedWritesTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "textfile_collector", "stackops.prom")
	r := NewRecorder(nil, path)

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	report := &types.RunReport{RunID: "run-1", StartedAt: start, FinishedAt: start.Add(90 * time.Second)}
	require.NoError(t, r.RunStarted(report))
	require.NoError(t, r.RunFinished(report))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runOutcome.WithLabelValues("succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.lastRunOK))
	assert.Equal(t, float64(start.Add(90*time.Second).Unix()), testutil.ToFloat64(r.lastRunTime))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `stackops_run_outcomes_total{outcome="succeeded"} 1`)
	assert.Contains(t, string(data), "stackops_last_run_success 1")
}

func TestRecorder_FailedRun(t *testing.T) {
	r := NewRecorder(nil, "")
	report := &types.RunReport{
		RunID:       "run-2",
		StartedAt:   time.Now(),
		FinishedAt:  time.Now(),
		FailedStage: "container_runtime",
		Err:         errors.New(errors.ErrStageFailed, "stage container_runtime failed"),
	}
	require.NoError(t, r.RunFinished(report))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runOutcome.WithLabelValues("failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.lastRunOK))
}

func TestRecorder_TextfileError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	r := NewRecorder(nil, filepath.Join(blocker, "stackops.prom"))
	err := r.RunFinished(&types.RunReport{StartedAt: time.Now(), FinishedAt: time.Now()})
	assert.True(t, errors.IsErrorCode(err, errors.ErrFilesystem))
}
