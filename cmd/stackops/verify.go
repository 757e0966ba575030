package stackops

import (
	"os"

	"github.com/arthur-debert/stackops/pkg/logging"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "verify",
		Short:   MsgVerifyShort,
		Long:    MsgVerifyLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			logger := logging.Component(a.logger, "verify")

			repo := a.repository(logger)
			verifier := a.verifier(logger)
			if err := verifier.Verify(a.workspace.Dirs(), repo.Paths(a.workspace.ScriptsDir())); err != nil {
				return err
			}

			if a.isRoot() {
				pterm.Success.WithWriter(out).Println(MsgVerifyRoot)
			} else {
				pterm.Warning.WithWriter(out).Println(MsgVerifyNotRoot)
			}
			pterm.Success.WithWriter(out).Printfln(MsgVerifyWorkspace, a.workspace.BaseDir())
			return nil
		},
	}
}

// isRoot reports whether the process is privileged. Platforms without an
// effective uid count as privileged.
func (a *app) isRoot() bool {
	geteuid := a.deps.Geteuid
	if geteuid == nil {
		geteuid = os.Geteuid
	}
	euid := geteuid()
	return euid <= 0
}
