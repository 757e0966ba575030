package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/arthur-debert/stackops/pkg/types"
	"github.com/charmbracelet/glamour"
)

// SetupSummary is what the operator confirms before the run starts
type SetupSummary struct {
	Domain    string
	Email     string
	Runner    bool
	BaseDir   string
	EnvFile   string
	Overrides int
}

// Markdown renders the summary as a markdown document
func (s SetupSummary) Markdown() string {
	runner := "No"
	if s.Runner {
		runner = "Yes"
	}

	var b strings.Builder
	b.WriteString("# Setup Summary\n\n")
	b.WriteString("| Setting | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Domain | %s |\n", s.Domain)
	fmt.Fprintf(&b, "| Email | %s |\n", s.Email)
	fmt.Fprintf(&b, "| GitHub Runner | %s |\n", runner)
	if s.BaseDir != "" {
		fmt.Fprintf(&b, "| Workspace | `%s` |\n", s.BaseDir)
	}
	if s.EnvFile != "" {
		fmt.Fprintf(&b, "| Env file | `%s` (%d variables) |\n", s.EnvFile, s.Overrides)
	}
	b.WriteString("\n> Existing `logs/` and `scripts/` in the workspace will be deleted.\n")
	return b.String()
}

// ReportMarkdown renders a finished run as a markdown document
func ReportMarkdown(report *types.RunReport) string {
	var b strings.Builder
	if report.Succeeded() {
		b.WriteString("# Setup completed\n\n")
	} else {
		b.WriteString("# Setup failed\n\n")
	}
	fmt.Fprintf(&b, "Run `%s` took %s.\n\n", report.RunID, report.Duration().Round(time.Second))

	if len(report.Results) > 0 {
		b.WriteString("| Stage | Script | Outcome | Duration |\n|---|---|---|---|\n")
		for _, r := range report.Results {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", r.Stage, r.ScriptID, r.Outcome(), r.Duration.Round(time.Millisecond))
		}
		b.WriteString("\n")
	}

	if report.Err != nil {
		fmt.Fprintf(&b, "**Error:** %s\n", report.Err)
	}
	if report.FailedStage != "" {
		last := report.Results[len(report.Results)-1]
		if stderr := strings.TrimSpace(last.Stderr); stderr != "" {
			b.WriteString("\n```\n" + stderr + "\n```\n")
		}
	}
	return b.String()
}

// MarkdownRenderer renders markdown for the terminal through glamour
type MarkdownRenderer struct {
	Style string // Style name: "dark", "light", "notty", "auto", or path to custom style
	Width int    // Word wrap width (0 = glamour default)
}

// NewMarkdownRenderer returns a renderer that auto-detects the terminal
// style when styled, and renders plain text otherwise
func NewMarkdownRenderer(styled bool) *MarkdownRenderer {
	style := "auto"
	if !styled {
		style = "notty"
	}
	return &MarkdownRenderer{Style: style, Width: 80}
}

// Render converts markdown to terminal output, falling back to the source
// text when rendering fails
func (r *MarkdownRenderer) Render(content string) string {
	var options []glamour.TermRendererOption

	switch r.Style {
	case "", "auto":
		options = append(options, glamour.WithAutoStyle())
	case "dark", "light", "notty", "ascii", "dracula", "pink", "tokyo-night":
		options = append(options, glamour.WithStandardStyle(r.Style))
	default:
		options = append(options, glamour.WithStylePath(r.Style))
	}

	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
