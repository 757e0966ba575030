package stackops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/stackops/pkg/config"
	"github.com/arthur-debert/stackops/pkg/errors"
	"github.com/arthur-debert/stackops/pkg/filesystem"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		GroupID: "core",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: MsgConfigShowShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Marshal(a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: MsgConfigInitShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := config.GenerateConfigContent()
			if len(args) == 0 {
				fmt.Fprint(cmd.OutOrStdout(), content)
				return nil
			}

			path := args[0]
			fsys := filesystem.NewOS()
			if _, err := fsys.Stat(path); err == nil && !force {
				return errors.Newf(errors.ErrInvalidInput, MsgErrFileExists, path).
					WithDetail("path", path)
			} else if err != nil && !os.IsNotExist(err) {
				return errors.Wrapf(err, errors.ErrFilesystem, "cannot inspect %s", path)
			}

			if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return errors.Wrapf(err, errors.ErrFilesystem, "failed to create %s", filepath.Dir(path))
			}
			if err := fsys.WriteFile(path, []byte(content), 0644); err != nil {
				return errors.Wrapf(err, errors.ErrFilesystem, "failed to write %s", path)
			}
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln(MsgConfigWritten, path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, MsgFlagForce)
	return cmd
}
