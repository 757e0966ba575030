package stackops

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/arthur-debert/stackops/pkg/history"
	"github.com/arthur-debert/stackops/pkg/ui"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// runView is the JSON shape of a recorded run
type runView struct {
	ID          string      `json:"id"`
	StartedAt   time.Time   `json:"started_at"`
	FinishedAt  *time.Time  `json:"finished_at,omitempty"`
	Status      string      `json:"status"`
	FailedStage string      `json:"failed_stage,omitempty"`
	Error       string      `json:"error,omitempty"`
	DurationMS  int64       `json:"duration_ms"`
	Stages      []stageView `json:"stages"`
}

type stageView struct {
	Stage      string `json:"stage"`
	Script     string `json:"script"`
	Outcome    string `json:"outcome"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

func newRunView(run history.Run) runView {
	view := runView{
		ID:          run.ID,
		StartedAt:   run.StartedAt,
		Status:      run.Status,
		FailedStage: run.FailedStage,
		Error:       run.Error,
		DurationMS:  run.Duration().Milliseconds(),
		Stages:      make([]stageView, 0, len(run.Stages)),
	}
	if !run.FinishedAt.IsZero() {
		finished := run.FinishedAt
		view.FinishedAt = &finished
	}
	for _, s := range run.Stages {
		view.Stages = append(view.Stages, stageView{
			Stage:      s.Stage,
			Script:     s.ScriptID,
			Outcome:    s.Outcome,
			DurationMS: s.Duration.Milliseconds(),
			Error:      s.Error,
		})
	}
	return view
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:     "history",
		Short:   MsgHistoryShort,
		Long:    MsgHistoryLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			f, err := outputFormat(format, out)
			if err != nil {
				return err
			}

			store, err := a.historyStore(out)
			if store == nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if f == ui.FormatJSON {
				views := make([]runView, 0, len(runs))
				for _, run := range runs {
					views = append(views, newRunView(run))
				}
				return writeJSON(out, views)
			}

			if len(runs) == 0 {
				fmt.Fprintln(out, MsgNoHistory)
				return nil
			}
			data := pterm.TableData{{"RUN", "STARTED", "STATUS", "DURATION", "FAILED STAGE"}}
			for _, run := range runs {
				data = append(data, []string{
					run.ID,
					run.StartedAt.Local().Format(time.DateTime),
					run.Status,
					run.Duration().Round(time.Second).String(),
					run.FailedStage,
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithWriter(out).WithData(data).Render()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, MsgFlagLimit)
	cmd.PersistentFlags().StringVarP(&format, "format", "f", "auto", MsgFlagFormat)
	cmd.AddCommand(newHistoryShowCmd(a, &format))
	return cmd
}

func newHistoryShowCmd(a *app, format *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: MsgHistoryShowShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			f, err := outputFormat(*format, out)
			if err != nil {
				return err
			}

			store, err := a.historyStore(out)
			if store == nil {
				return err
			}
			defer func() { _ = store.Close() }()

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if f == ui.FormatJSON {
				return writeJSON(out, newRunView(*run))
			}

			fmt.Fprintf(out, "Run %s: %s\n", run.ID, run.Status)
			if run.Error != "" {
				fmt.Fprintf(out, "Error: %s\n", run.Error)
			}
			data := pterm.TableData{{"STAGE", "SCRIPT", "OUTCOME", "DURATION"}}
			for _, s := range run.Stages {
				data = append(data, []string{s.Stage, s.ScriptID, s.Outcome, s.Duration.Round(time.Millisecond).String()})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithWriter(out).WithData(data).Render(); err != nil {
				return err
			}
			for _, s := range run.Stages {
				if s.Stderr != "" {
					fmt.Fprintf(out, "\n%s stderr:\n%s\n", s.Stage, s.Stderr)
				}
			}
			return nil
		},
	}
}

// historyStore opens the ledger for reading. A nil store with a nil error
// means history is disabled and the notice was printed.
func (a *app) historyStore(out io.Writer) (*history.Store, error) {
	if !a.cfg.History.Enabled {
		fmt.Fprintln(out, MsgHistoryDisabled)
		return nil, nil
	}
	return history.Open(a.historyPath())
}

// outputFormat resolves the --format flag for out
func outputFormat(value string, out io.Writer) (ui.Format, error) {
	f, err := ui.ParseFormat(value)
	if err != nil {
		return f, err
	}
	return ui.Resolve(f, out), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
