package ui

import (
	"io"
	"time"

	"github.com/arthur-debert/stackops/pkg/types"
	"github.com/pterm/pterm"
)

// Progress prints one line per finished stage. It implements the run
// observer interface of package setup.
type Progress struct {
	out   io.Writer
	total int
	done  int
}

// NewProgress creates a progress printer for a run of total stages
func NewProgress(out io.Writer, total int) *Progress {
	return &Progress{out: out, total: total}
}

// RunStarted prints the run header
func (p *Progress) RunStarted(report *types.RunReport) error {
	p.done = 0
	pterm.Info.WithWriter(p.out).Printfln("Setting up server (%d stages, run %s)", p.total, report.RunID)
	return nil
}

// StageFinished prints the stage outcome
func (p *Progress) StageFinished(_ string, result types.ExecutionResult) error {
	p.done++
	switch {
	case result.Skipped:
		pterm.Info.WithWriter(p.out).Printfln("[%d/%d] %s skipped", p.done, p.total, result.Stage)
	case result.Succeeded:
		pterm.Success.WithWriter(p.out).Printfln("[%d/%d] %s (%s)", p.done, p.total, result.Stage, result.Duration.Round(time.Second))
	default:
		pterm.Error.WithWriter(p.out).Printfln("[%d/%d] %s failed", p.done, p.total, result.Stage)
	}
	return nil
}

// RunFinished is a no-op; the command prints the final report
func (p *Progress) RunFinished(*types.RunReport) error {
	return nil
}
