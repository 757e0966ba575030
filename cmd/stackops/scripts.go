package stackops

import (
	"fmt"

	"github.com/arthur-debert/stackops/pkg/errors"
	"github.com/arthur-debert/stackops/pkg/filesystem"
	"github.com/arthur-debert/stackops/pkg/logging"
	"github.com/arthur-debert/stackops/pkg/scripts"
	"github.com/arthur-debert/stackops/pkg/setup"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newScriptsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "scripts",
		Short:   MsgScriptsShort,
		Long:    MsgScriptsLong,
		GroupID: "core",
	}

	cmd.AddCommand(newScriptsListCmd(a))
	cmd.AddCommand(newScriptsShowCmd(a))
	cmd.AddCommand(newScriptsInstallCmd(a))
	return cmd
}

func newScriptsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: MsgScriptsListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := a.repository(a.logger)

			stageOf := make(map[string]string)
			for _, stage := range setup.DefaultStages() {
				stageOf[stage.ScriptID] = stage.Name
			}

			data := pterm.TableData{{"SCRIPT", "FILE", "STAGE", "BYTES"}}
			for _, id := range repo.IDs() {
				payload, _ := repo.Get(id)
				data = append(data, []string{
					id,
					scripts.FileName(id),
					stageOf[id],
					fmt.Sprint(len(payload.Body)),
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithWriter(cmd.OutOrStdout()).WithData(data).Render()
		},
	}
}

func newScriptsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <script>",
		Short: MsgScriptsShowShort,
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return a.repository(logging.Nop()).IDs(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, ok := a.repository(a.logger).Get(args[0])
			if !ok {
				return errors.Newf(errors.ErrScriptNotFound, MsgErrUnknownScript, args[0]).
					WithDetail("script", args[0])
			}
			_, err := cmd.OutOrStdout().Write(payload.Body)
			return err
		},
	}
}

func newScriptsInstallCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "install [dir]",
		Short: MsgScriptsInstallShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.workspace.ScriptsDir()
			if len(args) == 1 {
				dir = args[0]
			}

			fsys := filesystem.NewOS()
			if dryRun {
				fsys = filesystem.NewMemory()
			}
			repo := scripts.NewRepository(scripts.Options{
				FS:     fsys,
				Logger: logging.Component(a.logger, "scripts"),
			})
			if err := repo.Materialize(dir); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				pterm.Info.WithWriter(out).Printfln(MsgScriptsDryRun, len(repo.IDs()), dir)
			} else {
				pterm.Success.WithWriter(out).Printfln(MsgScriptsInstalled, len(repo.IDs()), dir)
			}
			for _, path := range repo.Paths(dir) {
				fmt.Fprintln(out, "  "+path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)
	return cmd
}
