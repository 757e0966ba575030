package setup

import (
	"context"
	"time"

	"github.com/arthur-debert/stackops/pkg/errors"
	"github.com/arthur-debert/stackops/pkg/filesystem"
	"github.com/arthur-debert/stackops/pkg/logging"
	"github.com/arthur-debert/stackops/pkg/paths"
	"github.com/arthur-debert/stackops/pkg/runner"
	"github.com/arthur-debert/stackops/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Materializer writes the script payloads into a directory
type Materializer interface {
	Materialize(targetDir string) error
	Paths(dir string) []string
}

// EnvironmentVerifier checks preconditions after the workspace is reset
type EnvironmentVerifier interface {
	Verify(dirs, scriptPaths []string) error
}

// Options contains the collaborators of an Orchestrator
type Options struct {
	Workspace  *paths.Workspace
	FS         types.FS
	Repository Materializer
	Verifier   EnvironmentVerifier
	Runner     runner.Runner
	Logger     zerolog.Logger
	Observers  []Observer

	// Stages overrides DefaultStages
	Stages []Stage

	// NewRunID defaults to uuid.NewString
	NewRunID func() string

	// Now defaults to time.Now
	Now func() time.Time
}

// Orchestrator owns the stage table and drives one run at a time. Concurrent
// runs against the same workspace are not supported.
type Orchestrator struct {
	workspace  *paths.Workspace
	fs         types.FS
	repository Materializer
	verifier   EnvironmentVerifier
	runner     runner.Runner
	logger     zerolog.Logger
	observers  []Observer
	stages     []Stage
	newRunID   func() string
	now        func() time.Time
}

// New creates an orchestrator
func New(opts Options) *Orchestrator {
	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	stages := opts.Stages
	if stages == nil {
		stages = DefaultStages()
	}
	newRunID := opts.NewRunID
	if newRunID == nil {
		newRunID = uuid.NewString
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Orchestrator{
		workspace:  opts.Workspace,
		fs:         fsys,
		repository: opts.Repository,
		verifier:   opts.Verifier,
		runner:     opts.Runner,
		logger:     logging.Component(opts.Logger, "setup"),
		observers:  opts.Observers,
		stages:     stages,
		newRunID:   newRunID,
		now:        now,
	}
}

// Stages returns a copy of the stage table
func (o *Orchestrator) Stages() []Stage {
	stages := make([]Stage, len(o.stages))
	copy(stages, o.stages)
	return stages
}

// Prepare resets the workspace: it deletes the logs and scripts directories
// left by a previous run, recreates them, materializes the scripts and
// verifies the result. Verification problems are logged as warnings.
func (o *Orchestrator) Prepare() error {
	defer logging.LogOperationStart(o.logger, "prepare")()

	dirs := o.workspace.Dirs()
	for _, dir := range dirs {
		if err := o.fs.RemoveAll(dir); err != nil {
			return errors.Wrapf(err, errors.ErrFilesystem, "failed to remove %s", dir).
				WithDetail("path", dir)
		}
		o.logger.Debug().Str("path", dir).Msg("Removed previous run directory")
	}
	for _, dir := range dirs {
		if err := o.fs.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrFilesystem, "failed to create %s", dir).
				WithDetail("path", dir)
		}
	}

	scriptsDir := o.workspace.ScriptsDir()
	if err := o.repository.Materialize(scriptsDir); err != nil {
		return err
	}

	if o.verifier != nil {
		if err := o.verifier.Verify(dirs, o.repository.Paths(scriptsDir)); err != nil {
			o.logger.Warn().Err(err).Msg("Environment verification failed")
		}
	}

	o.logger.Info().Str("base_dir", o.workspace.BaseDir()).Msg("Workspace prepared")
	return nil
}

// Run resets the workspace and executes the stages in order, stopping at
// the first failure. The report is always returned; the run succeeded iff
// the error is nil.
func (o *Orchestrator) Run(ctx context.Context, rc RunContext) (*types.RunReport, error) {
	report := &types.RunReport{
		RunID:     o.newRunID(),
		StartedAt: o.now(),
	}
	logger := o.logger.With().Str("run_id", report.RunID).Logger()

	if err := rc.Validate(); err != nil {
		return o.finish(logger, report, err)
	}

	logger.Info().
		Str("domain", rc.Domain).
		Bool("runner", rc.HasRunnerToken()).
		Msg("Starting server setup")
	o.notify(logger, func(obs Observer) error { return obs.RunStarted(report) })

	if err := o.Prepare(); err != nil {
		logger.Error().Err(err).Msg("Workspace reset failed")
		return o.finish(logger, report, err)
	}

	for _, stage := range o.stages {
		if err := ctx.Err(); err != nil {
			logger.Warn().Str("stage", stage.Name).Msg("Setup cancelled")
			return o.finish(logger, report,
				errors.Wrapf(err, errors.ErrCancelled, "setup cancelled before stage %s", stage.Name).
					WithDetail("stage", stage.Name))
		}

		result := o.runStage(logger, stage, rc)
		report.Results = append(report.Results, result)
		o.notify(logger, func(obs Observer) error { return obs.StageFinished(report.RunID, result) })

		if !result.Succeeded {
			report.FailedStage = stage.Name
			return o.finish(logger, report, stageError(stage, result))
		}
	}

	return o.finish(logger, report, nil)
}

func (o *Orchestrator) runStage(logger zerolog.Logger, stage Stage, rc RunContext) types.ExecutionResult {
	logger = logger.With().Str("stage", stage.Name).Str("script", stage.ScriptID).Logger()

	if !stage.enabled(rc) {
		logger.Info().Str("outcome", "skipped").Msg("Stage skipped")
		return types.ExecutionResult{
			Stage:     stage.Name,
			ScriptID:  stage.ScriptID,
			Succeeded: true,
			Skipped:   true,
			StartedAt: o.now(),
		}
	}

	logger.Info().Msg("Stage started")
	result := o.runner.Run(stage.ScriptID, stage.environment(rc))
	result.Stage = stage.Name
	result.ScriptID = stage.ScriptID

	if result.Succeeded {
		logger.Info().
			Str("outcome", result.Outcome()).
			Dur("duration", result.Duration).
			Msg("Stage completed")
	} else {
		event := logger.Error().Str("outcome", result.Outcome())
		if result.Err != nil {
			event = event.Err(result.Err)
		}
		event.Msg("Stage failed")
	}
	return result
}

func (o *Orchestrator) finish(logger zerolog.Logger, report *types.RunReport, err error) (*types.RunReport, error) {
	report.FinishedAt = o.now()
	report.Err = err

	if err == nil {
		logger.Info().Dur("duration", report.Duration()).Msg("Server setup completed successfully")
	} else {
		logger.Error().Err(err).Str("failed_stage", report.FailedStage).Msg("Server setup failed")
	}

	o.notify(logger, func(obs Observer) error { return obs.RunFinished(report) })

	if err != nil {
		return report, err
	}
	return report, nil
}

func (o *Orchestrator) notify(logger zerolog.Logger, fn func(Observer) error) {
	for _, obs := range o.observers {
		if err := fn(obs); err != nil {
			logger.Warn().Err(err).Msg("Run observer failed")
		}
	}
}

func stageError(stage Stage, result types.ExecutionResult) error {
	var err *errors.OpsError
	if result.Err != nil {
		err = errors.Wrapf(result.Err, errors.ErrStageFailed, "stage %s failed", stage.Name)
	} else {
		err = errors.Newf(errors.ErrStageFailed, "stage %s failed", stage.Name)
	}
	return err.WithDetail("stage", stage.Name).
		WithDetail("script", stage.ScriptID).
		WithDetail("stderr", result.Stderr)
}
