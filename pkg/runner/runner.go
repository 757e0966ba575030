package runner

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/stackops/pkg/errors"
	"github.com/arthur-debert/stackops/pkg/filesystem"
	"github.com/arthur-debert/stackops/pkg/logging"
	"github.com/arthur-debert/stackops/pkg/scripts"
	"github.com/arthur-debert/stackops/pkg/types"
	"github.com/rs/zerolog"
)

// Defaults for the privilege escalation wrapper
const (
	DefaultShell = "bash"
)

// DefaultEscalation is prepended to every script invocation
var DefaultEscalation = []string{"sudo"}

// Runner executes one named script and reports the outcome
type Runner interface {
	Run(scriptID string, extraEnv map[string]string) types.ExecutionResult
}

// Options contains configuration for the script runner
type Options struct {
	// ScriptsDir is where materialized scripts live
	ScriptsDir string

	// Escalation is the privilege escalation command, e.g. ["sudo"] or
	// ["sudo", "-E"]. An empty slice runs the shell directly. Nil means
	// DefaultEscalation.
	Escalation []string

	// Shell interprets the script. Empty means DefaultShell.
	Shell string

	FS     types.FS
	Logger zerolog.Logger

	// GOOS overrides runtime.GOOS
	GOOS string

	// Environ returns the base environment. Defaults to os.Environ.
	Environ func() []string

	// CommandFunc builds the subprocess. Defaults to exec.Command.
	CommandFunc func(name string, args ...string) *exec.Cmd
}

// ScriptRunner runs materialized scripts as local subprocesses through the
// escalation wrapper. Calls block until the script exits; there is no
// timeout.
type ScriptRunner struct {
	scriptsDir string
	escalation []string
	shell      string
	fs         types.FS
	logger     zerolog.Logger
	goos       string
	environ    func() []string
	command    func(name string, args ...string) *exec.Cmd
}

// New creates a script runner
func New(opts Options) *ScriptRunner {
	escalation := opts.Escalation
	if escalation == nil {
		escalation = DefaultEscalation
	}
	shell := opts.Shell
	if shell == "" {
		shell = DefaultShell
	}
	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	environ := opts.Environ
	if environ == nil {
		environ = os.Environ
	}
	command := opts.CommandFunc
	if command == nil {
		command = exec.Command
	}

	return &ScriptRunner{
		scriptsDir: opts.ScriptsDir,
		escalation: escalation,
		shell:      shell,
		fs:         fsys,
		logger:     logging.Component(opts.Logger, "runner"),
		goos:       goos,
		environ:    environ,
		command:    command,
	}
}

// Run executes scriptID with the current environment overlaid by extraEnv.
// It never returns an error; failures are reported in the result.
func (r *ScriptRunner) Run(scriptID string, extraEnv map[string]string) types.ExecutionResult {
	start := time.Now()
	result := types.ExecutionResult{ScriptID: scriptID, StartedAt: start}
	path := scripts.Path(r.scriptsDir, scriptID)

	if _, err := r.fs.Stat(path); err != nil {
		r.logger.Error().Str("script", scriptID).Str("path", path).Msg("Script not found")
		result.Err = errors.Wrapf(err, errors.ErrScriptNotFound, "script not found: %s", path).
			WithDetail("script", scriptID).
			WithDetail("path", path)
		result.Duration = time.Since(start)
		return result
	}

	if r.goos == "windows" {
		r.logger.Warn().Str("script", scriptID).Msg("No POSIX shell on this platform - skipping script execution")
		result.Succeeded = true
		result.Skipped = true
		result.Duration = time.Since(start)
		return result
	}

	argv := r.Command(path, extraEnv)
	r.logger.Info().
		Str("script", scriptID).
		Strs("env", envKeys(extraEnv)).
		Msg("Running script")
	r.logger.Debug().Strs("argv", argv).Msg("Executing command")

	cmd := r.command(argv[0], argv[1:]...)
	cmd.Env = MergeEnv(r.environ(), extraEnv)
	cmd.Dir = r.scriptsDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	result.Duration = time.Since(start)

	if err != nil {
		opsErr := errors.Wrapf(err, errors.ErrScriptExecution, "script %s failed", scriptID).
			WithDetails(map[string]interface{}{
				"script": scriptID,
				"stderr": result.Stderr,
			})
		if exitErr, ok := err.(*exec.ExitError); ok {
			opsErr.WithDetail("exit_code", exitErr.ExitCode())
			r.logger.Error().
				Str("script", scriptID).
				Int("exit_code", exitErr.ExitCode()).
				Str("stderr", strings.TrimSpace(result.Stderr)).
				Msg("Script failed")
		} else {
			r.logger.Error().Err(err).Str("script", scriptID).Msg("Error running script")
		}
		result.Err = opsErr
		return result
	}

	result.Succeeded = true
	r.logger.Info().
		Str("script", scriptID).
		Dur("duration", result.Duration).
		Msg("Script completed")
	r.logger.Debug().Str("script", scriptID).Str("stdout", result.Stdout).Msg("Script output")

	return result
}

// Command returns the argv used to run the script at path. sudo resets
// the environment of its child, so the stage variables are named in a
// --preserve-env list; only keys appear in argv, never values.
func (r *ScriptRunner) Command(path string, extraEnv map[string]string) []string {
	argv := make([]string, 0, len(r.escalation)+3)
	argv = append(argv, r.escalation...)
	if len(r.escalation) > 0 && filepath.Base(r.escalation[0]) == "sudo" && len(extraEnv) > 0 {
		argv = append(argv, "--preserve-env="+strings.Join(envKeys(extraEnv), ","))
	}
	argv = append(argv, r.shell, path)
	return argv
}

// MergeEnv overlays extra onto base, a slice of KEY=VALUE entries. Keys in
// extra replace any existing entry.
func MergeEnv(base []string, extra map[string]string) []string {
	merged := make([]string, 0, len(base)+len(extra))
	for _, kv := range base {
		key := kv
		if i := strings.IndexByte(kv, '='); i >= 0 {
			key = kv[:i]
		}
		if _, overridden := extra[key]; overridden {
			continue
		}
		merged = append(merged, kv)
	}
	for _, key := range envKeys(extra) {
		merged = append(merged, key+"="+extra[key])
	}
	return merged
}

// envKeys returns the sorted keys of env; values may be secrets and are
// never logged
func envKeys(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
