package stackops

import (
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/stackops/internal/version"
	"github.com/arthur-debert/stackops/pkg/config"
	"github.com/arthur-debert/stackops/pkg/errors"
	"github.com/arthur-debert/stackops/pkg/history"
	"github.com/arthur-debert/stackops/pkg/logging"
	"github.com/arthur-debert/stackops/pkg/metrics"
	"github.com/arthur-debert/stackops/pkg/paths"
	"github.com/arthur-debert/stackops/pkg/runner"
	"github.com/arthur-debert/stackops/pkg/scripts"
	"github.com/arthur-debert/stackops/pkg/setup"
	"github.com/arthur-debert/stackops/pkg/ui"
	"github.com/arthur-debert/stackops/pkg/ui/styles"
	"github.com/arthur-debert/stackops/pkg/verify"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Deps are the collaborators the commands use to reach the outside world.
// Zero values select the real implementations.
type Deps struct {
	// Prompter collects operator input. Defaults to a pterm prompter on a
	// terminal and a line reader on stdin otherwise.
	Prompter ui.Prompter

	// Runner executes stage scripts. Defaults to runner.ScriptRunner.
	Runner runner.Runner

	// Interactive reports whether stdin is a terminal
	Interactive func() bool

	// Geteuid and Probe are passed to the environment verifier
	Geteuid func() int
	Probe   func() (verify.HostFacts, error)
}

// app holds the state shared by the commands of one invocation
type app struct {
	deps Deps

	verbosity  int
	configFile string
	baseDir    string
	noColor    bool

	cfg       *config.Config
	workspace *paths.Workspace
	logger    zerolog.Logger
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithDeps(Deps{})
}

// NewRootCmdWithDeps creates the root command over the given collaborators
func NewRootCmdWithDeps(deps Deps) *cobra.Command {
	if deps.Interactive == nil {
		deps.Interactive = func() bool { return ui.IsTerminal(os.Stdin) }
	}
	if deps.Probe == nil {
		deps.Probe = verify.ProbeHost
	}

	a := &app{deps: deps}

	rootCmd := &cobra.Command{
		Use:     "stackops",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			a.logger.Debug().Str("command", cmd.Name()).Msg("Command started")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// If we get here, no subcommand was provided
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVar(&a.baseDir, "base-dir", "", MsgFlagBaseDir)
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, MsgFlagNoColor)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})

	rootCmd.AddCommand(newSetupCmd(a))
	rootCmd.AddCommand(newScriptsCmd(a))
	rootCmd.AddCommand(newVerifyCmd(a))
	rootCmd.AddCommand(newHistoryCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	return rootCmd
}

// load reads the configuration, resolves the workspace and builds the
// console logger
func (a *app) load(cmd *cobra.Command) error {
	overrides := map[string]interface{}{}
	if a.baseDir != "" {
		overrides["workspace.base"] = a.baseDir
	}

	cfg, err := config.Load(config.LoadOptions{File: a.configFile, Overrides: overrides})
	if err != nil {
		return err
	}
	a.cfg = cfg

	if cfg.UI.Styles != "" {
		if err := styles.LoadStyles(cfg.UI.Styles); err != nil {
			return errors.Wrapf(err, errors.ErrConfigLoad, "failed to load styles from %s", cfg.UI.Styles).
				WithDetail("path", cfg.UI.Styles)
		}
	}

	ws, err := paths.New(cfg.Workspace.Base)
	if err != nil {
		return err
	}
	a.workspace = ws

	if !a.styled(cmd.OutOrStdout()) {
		pterm.DisableStyling()
	}
	a.logger = a.newLogger(cmd.ErrOrStderr(), "")
	return nil
}

// newLogger builds a logger on the console and, when logFile is set, on the
// append-only log file
func (a *app) newLogger(console io.Writer, logFile string) zerolog.Logger {
	return logging.New(logging.Options{
		Verbosity: a.verbosity,
		Console:   console,
		NoColor:   a.noColor || !a.styled(console),
		LogFile:   logFile,
	})
}

// styled reports whether w is a color capable terminal
func (a *app) styled(w io.Writer) bool {
	return !a.noColor && ui.DetectFormat(w) == ui.FormatTerminal
}

func (a *app) prompter() ui.Prompter {
	if a.deps.Prompter != nil {
		return a.deps.Prompter
	}
	if a.deps.Interactive() {
		return ui.NewTerminalPrompter()
	}
	return ui.NewLinePrompter(os.Stdin, os.Stdout)
}

func (a *app) repository(logger zerolog.Logger) *scripts.Repository {
	return scripts.NewRepository(scripts.Options{Logger: logger})
}

func (a *app) verifier(logger zerolog.Logger) *verify.Verifier {
	return verify.New(verify.Options{
		Logger:      logger,
		Geteuid:     a.deps.Geteuid,
		Probe:       a.deps.Probe,
		MinMemoryMB: a.cfg.Preflight.Memory,
		MinDiskMB:   a.cfg.Preflight.Disk,
	})
}

func (a *app) runner(logger zerolog.Logger) runner.Runner {
	if a.deps.Runner != nil {
		return a.deps.Runner
	}
	return runner.New(runner.Options{
		ScriptsDir: a.workspace.ScriptsDir(),
		// Copied so an explicitly empty list disables escalation
		Escalation: append([]string{}, a.cfg.Exec.Escalation...),
		Shell:      a.cfg.Exec.Shell,
		Logger:     logger,
	})
}

// historyPath returns the configured ledger location
func (a *app) historyPath() string {
	if a.cfg.History.Path != "" {
		return a.cfg.History.Path
	}
	return paths.HistoryPath()
}

// openHistory opens the run ledger, or returns nil when history is
// disabled or unavailable
func (a *app) openHistory(logger zerolog.Logger) *history.Store {
	if !a.cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(a.historyPath())
	if err != nil {
		logger.Warn().Err(err).Msg("Run history unavailable")
		return nil
	}
	return store
}

// newOrchestrator wires the setup pipeline. The returned cleanup closes the
// history store.
func (a *app) newOrchestrator(logger zerolog.Logger, progress setup.Observer) (*setup.Orchestrator, func()) {
	var observers []setup.Observer
	if progress != nil {
		observers = append(observers, progress)
	}

	cleanup := func() {}
	if store := a.openHistory(logger); store != nil {
		observers = append(observers, store)
		cleanup = func() { _ = store.Close() }
	}
	if a.cfg.Metrics.Textfile != "" {
		observers = append(observers, metrics.NewRecorder(nil, a.cfg.Metrics.Textfile))
	}

	o := setup.New(setup.Options{
		Workspace:  a.workspace,
		Repository: a.repository(logger),
		Verifier:   a.verifier(logger),
		Runner:     a.runner(logger),
		Logger:     logger,
		Observers:  observers,
	})
	return o, cleanup
}
