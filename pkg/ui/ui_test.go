package ui_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/stackops/pkg/errors"
	"github.com/arthur-debert/stackops/pkg/types"
	"github.com/arthur-debert/stackops/pkg/ui"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWelcome(t *testing.T) {
	plain := ui.Welcome("v1.2.0", false)
	assert.Contains(t, plain, "StackOps v1.2.0")
	assert.Contains(t, plain, "• Docker installation")
	assert.NotContains(t, plain, "\x1b[")

	styled := ui.Welcome("v1.2.0", true)
	assert.Contains(t, styled, "StackOps v1.2.0")
	assert.Contains(t, styled, "╭", "banner is boxed")
}

func TestSetupSummary_Markdown(t *testing.T) {
	md := ui.SetupSummary{
		Domain:    "example.com",
		Email:     "ops@example.com",
		Runner:    true,
		BaseDir:   "/var/lib/stackops",
		EnvFile:   "/root/stack.env",
		Overrides: 2,
	}.Markdown()

	assert.Contains(t, md, "| Domain | example.com |")
	assert.Contains(t, md, "| Email | ops@example.com |")
	assert.Contains(t, md, "| GitHub Runner | Yes |")
	assert.Contains(t, md, "`/root/stack.env` (2 variables)")

	noRunner := ui.SetupSummary{Domain: "example.com", Email: "ops@example.com"}.Markdown()
	assert.Contains(t, noRunner, "| GitHub Runner | No |")
	assert.NotContains(t, noRunner, "Env file")
}

func TestReportMarkdown(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		report := &types.RunReport{
			RunID:      "run-1",
			StartedAt:  start,
			FinishedAt: start.Add(3 * time.Minute),
			Results: []types.ExecutionResult{
				{Stage: "initial_hardening", ScriptID: "initial_setup", Succeeded: true, Duration: time.Minute},
				{Stage: "ci_runner", ScriptID: "runner-setup", Succeeded: true, Skipped: true},
			},
		}
		md := ui.ReportMarkdown(report)
		assert.Contains(t, md, "# Setup completed")
		assert.Contains(t, md, "Run `run-1` took 3m0s.")
		assert.Contains(t, md, "| ci_runner | runner-setup | skipped |")
	})

	t.Run("failure shows stderr", func(t *testing.T) {
		report := &types.RunReport{
			RunID:       "run-2",
			StartedAt:   start,
			FinishedAt:  start.Add(time.Minute),
			FailedStage: "container_runtime",
			Err:         errors.New(errors.ErrStageFailed, "stage container_runtime failed"),
			Results: []types.ExecutionResult{
				{Stage: "initial_hardening", ScriptID: "initial_setup", Succeeded: true},
				{Stage: "container_runtime", ScriptID: "docker_setup", Stderr: "E: Unable to locate package docker-ce\n"},
			},
		}
		md := ui.ReportMarkdown(report)
		assert.Contains(t, md, "# Setup failed")
		assert.Contains(t, md, "| container_runtime | docker_setup | failed |")
		assert.Contains(t, md, "E: Unable to locate package docker-ce")
		assert.Contains(t, md, "STAGE_FAILED")
	})
}

func TestMarkdownRenderer_Plain(t *testing.T) {
	r := ui.NewMarkdownRenderer(false)
	out := r.Render("# Setup Summary\n\nDomain is **example.com**\n")
	assert.Contains(t, out, "Setup Summary")
	assert.Contains(t, out, "example.com")
}

func TestMarkdownRenderer_BadStyleFallsBack(t *testing.T) {
	r := &ui.MarkdownRenderer{Style: "/does/not/exist.json"}
	content := "# Title\n"
	assert.Equal(t, content, r.Render(content))
}

func TestLinePrompter(t *testing.T) {
	var out bytes.Buffer
	p := ui.NewLinePrompter(strings.NewReader("\nn\n example.com \nyes\nghp_token"), &out)

	ok, err := p.Confirm("This will clear any previous setup. Continue?", true)
	require.NoError(t, err)
	assert.True(t, ok, "empty answer selects the default")

	ok, err = p.Confirm("Set up runner?", true)
	require.NoError(t, err)
	assert.False(t, ok)

	domain, err := p.Input("Enter your domain name")
	require.NoError(t, err)
	assert.Equal(t, "example.com", domain)

	ok, err = p.Confirm("Proceed?", false)
	require.NoError(t, err)
	assert.True(t, ok)

	token, err := p.Secret("Enter your GitHub token")
	require.NoError(t, err)
	assert.Equal(t, "ghp_token", token, "last line without newline is accepted")

	_, err = p.Input("More?")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	assert.Contains(t, out.String(), "Continue? [Y/n]: ")
	assert.Contains(t, out.String(), "Proceed? [y/N]: ")
}

func TestProgress(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	var out bytes.Buffer
	p := ui.NewProgress(&out, 4)

	require.NoError(t, p.RunStarted(&types.RunReport{RunID: "run-1"}))
	require.NoError(t, p.StageFinished("run-1", types.ExecutionResult{Stage: "initial_hardening", Succeeded: true, Duration: 2 * time.Second}))
	require.NoError(t, p.StageFinished("run-1", types.ExecutionResult{Stage: "container_runtime"}))
	require.NoError(t, p.RunFinished(&types.RunReport{}))

	text := out.String()
	assert.Contains(t, text, "Setting up server (4 stages, run run-1)")
	assert.Contains(t, text, "[1/4] initial_hardening (2s)")
	assert.Contains(t, text, "[2/4] container_runtime failed")
}
