package stackops

import (
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/stackops/internal/version"
	"github.com/arthur-debert/stackops/pkg/errors"
	"github.com/arthur-debert/stackops/pkg/setup"
	"github.com/arthur-debert/stackops/pkg/ui"
	"github.com/joho/godotenv"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type setupOptions struct {
	domain  string
	email   string
	token   string
	envFile string
	yes     bool
	noClear bool
}

func newSetupCmd(a *app) *cobra.Command {
	opts := &setupOptions{}

	cmd := &cobra.Command{
		Use:     "setup",
		Short:   MsgSetupShort,
		Long:    MsgSetupLong,
		Example: MsgSetupExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSetup(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.domain, "domain", "", MsgFlagDomain)
	cmd.Flags().StringVar(&opts.email, "email", "", MsgFlagEmail)
	cmd.Flags().StringVar(&opts.token, "github-token", "", MsgFlagToken)
	cmd.Flags().StringVar(&opts.envFile, "env-file", "", MsgFlagEnvFile)
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, MsgFlagYes)
	cmd.Flags().BoolVar(&opts.noClear, "no-clear", false, MsgFlagNoClear)

	return cmd
}

// setupSession carries one interactive setup through its steps
type setupSession struct {
	app      *app
	opts     *setupOptions
	out      io.Writer
	prompter ui.Prompter
	styled   bool
}

func (a *app) runSetup(cmd *cobra.Command, opts *setupOptions) error {
	out := cmd.OutOrStdout()
	unattended := opts.domain != "" && opts.email != ""
	interactive := a.deps.Interactive()

	if !unattended && !interactive {
		return errors.New(errors.ErrInvalidInput, MsgErrNotInteractive)
	}

	var overrides map[string]string
	if opts.envFile != "" {
		env, err := godotenv.Read(opts.envFile)
		if err != nil {
			return errors.Wrapf(err, errors.ErrConfigLoad, "failed to read env file %s", opts.envFile).
				WithDetail("path", opts.envFile)
		}
		overrides = env
	}

	s := &setupSession{
		app:      a,
		opts:     opts,
		out:      out,
		prompter: a.prompter(),
		styled:   a.styled(out),
	}

	if s.styled && interactive && !opts.noClear {
		clearScreen(out)
	}
	fmt.Fprint(out, ui.Welcome(version.Version, s.styled))

	ok, err := s.confirm(MsgConfirmReset, false)
	if err != nil {
		return err
	}
	if !ok {
		pterm.Warning.WithWriter(out).Println(MsgSetupCancelled)
		return errors.New(errors.ErrCancelled, MsgSetupCancelled)
	}

	logger := a.newLogger(cmd.ErrOrStderr(), a.workspace.LogFile())
	progress := ui.NewProgress(out, len(setup.DefaultStages()))
	orchestrator, cleanup := a.newOrchestrator(logger, progress)
	defer cleanup()

	if err := orchestrator.Prepare(); err != nil {
		pterm.Error.WithWriter(out).Println(MsgInstallFailed)
		return err
	}

	rc := setup.RunContext{
		Domain:      opts.domain,
		Email:       opts.email,
		GitHubToken: opts.token,
		Env:         overrides,
	}
	if !unattended {
		if err := s.collect(&rc); err != nil {
			return err
		}
	}

	renderer := ui.NewMarkdownRenderer(s.styled)
	fmt.Fprint(out, renderer.Render(ui.SetupSummary{
		Domain:    rc.Domain,
		Email:     rc.Email,
		Runner:    rc.HasRunnerToken(),
		BaseDir:   a.workspace.BaseDir(),
		EnvFile:   opts.envFile,
		Overrides: len(overrides),
	}.Markdown()))

	ok, err = s.confirm(MsgConfirmRun, true)
	if err != nil {
		return err
	}
	if !ok {
		pterm.Warning.WithWriter(out).Println(MsgSetupCancelled)
		return errors.New(errors.ErrCancelled, MsgSetupCancelled)
	}

	report, err := orchestrator.Run(cmd.Context(), rc)
	fmt.Fprint(out, renderer.Render(ui.ReportMarkdown(report)))
	if err != nil {
		pterm.Error.WithWriter(out).Printfln(MsgSetupFailed, a.workspace.LogFile())
		return err
	}
	pterm.Success.WithWriter(out).Println(MsgSetupSucceeded)
	return nil
}

// collect prompts for the values not given as flags
func (s *setupSession) collect(rc *setup.RunContext) error {
	var err error
	if rc.Domain == "" {
		if rc.Domain, err = s.ask(MsgPromptDomain, setup.ValidateDomain); err != nil {
			return err
		}
	}
	if rc.Email == "" {
		if rc.Email, err = s.ask(MsgPromptEmail, setup.ValidateEmail); err != nil {
			return err
		}
	}
	if rc.GitHubToken != "" {
		return nil
	}

	wantRunner, err := s.confirm(MsgConfirmRunner, false)
	if err != nil || !wantRunner {
		return err
	}
	rc.GitHubToken, err = s.prompter.Secret(MsgPromptToken)
	return err
}

// ask prompts until the answer passes validate
func (s *setupSession) ask(question string, validate func(string) error) (string, error) {
	for {
		answer, err := s.prompter.Input(question)
		if err != nil {
			return "", err
		}
		if err := validate(answer); err != nil {
			pterm.Warning.WithWriter(s.out).Printfln(MsgInvalidAnswer, err)
			continue
		}
		return answer, nil
	}
}

func (s *setupSession) confirm(question string, defaultValue bool) (bool, error) {
	if s.opts.yes {
		return true, nil
	}
	return s.prompter.Confirm(question, defaultValue)
}

func clearScreen(w io.Writer) {
	f, ok := w.(*os.File)
	if !ok {
		return
	}
	output := termenv.NewOutput(f)
	output.ClearScreen()
}
