package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/stackops/pkg/errors"
)

// Environment variable names
const (
	// EnvBaseDir overrides the workspace base directory
	EnvBaseDir = "STACKOPS_BASE_DIR"

	// EnvStateDir overrides the state directory holding run history
	EnvStateDir = "STACKOPS_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Workspace layout. These names are part of the on-disk contract that
// operators inspect after a run and are not configurable.
const (
	// AppDirName is the directory name for stackops-specific files
	AppDirName = "stackops"

	// SystemBaseDir is the base directory used when running as root
	SystemBaseDir = "/var/lib/stackops"

	// ScriptsDirName is the subdirectory for materialized scripts
	ScriptsDirName = "scripts"

	// LogsDirName is the subdirectory for run logs
	LogsDirName = "logs"

	// LogFileName is the name of the log file
	LogFileName = "setup.log"

	// HistoryFileName is the SQLite run ledger inside the state directory
	HistoryFileName = "history.db"
)

// Workspace resolves the directories owned by a single setup run
type Workspace struct {
	baseDir string
}

// New creates a workspace rooted at baseDir. An empty baseDir resolves to
// DefaultBaseDir().
func New(baseDir string) (*Workspace, error) {
	if baseDir == "" {
		baseDir = DefaultBaseDir()
	}

	abs, err := filepath.Abs(expandHome(baseDir))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFilesystem, "failed to get absolute path for base directory %s", baseDir)
	}

	return &Workspace{baseDir: abs}, nil
}

// BaseDir returns the workspace root
func (w *Workspace) BaseDir() string {
	return w.baseDir
}

// ScriptsDir returns <base>/scripts
func (w *Workspace) ScriptsDir() string {
	return filepath.Join(w.baseDir, ScriptsDirName)
}

// LogsDir returns <base>/logs
func (w *Workspace) LogsDir() string {
	return filepath.Join(w.baseDir, LogsDirName)
}

// LogFile returns <base>/logs/setup.log
func (w *Workspace) LogFile() string {
	return filepath.Join(w.LogsDir(), LogFileName)
}

// Dirs returns the directories purged and recreated on every run
func (w *Workspace) Dirs() []string {
	return []string{w.LogsDir(), w.ScriptsDir()}
}

// DefaultBaseDir returns the base directory used when none is configured:
// $STACKOPS_BASE_DIR, then /var/lib/stackops for root, then
// $XDG_DATA_HOME/stackops.
func DefaultBaseDir() string {
	if dir := os.Getenv(EnvBaseDir); dir != "" {
		return expandHome(dir)
	}
	if os.Geteuid() == 0 {
		return SystemBaseDir
	}
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, AppDirName)
	}
	return filepath.Join(xdg.DataHome, AppDirName)
}

// StateDir returns the directory for data that must survive the workspace
// purge. XDG_STATE_HOME is read directly so tests can override it.
func StateDir() string {
	if dir := os.Getenv(EnvStateDir); dir != "" {
		return expandHome(dir)
	}
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		return filepath.Join(stateHome, AppDirName)
	}
	return filepath.Join(xdg.StateHome, AppDirName)
}

// HistoryPath returns the location of the run ledger
func HistoryPath() string {
	return filepath.Join(StateDir(), HistoryFileName)
}

// expandHome expands ~ to the user's home directory
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home := os.Getenv(EnvHome)
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil {
				return path
			}
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
