// Package ui renders stackops terminal output: the welcome banner, the
// setup summary and run report (markdown through glamour), per-stage
// progress lines (pterm) and operator prompts.
//
// Output adapts to the terminal: FormatAuto resolves to plain text when
// NO_COLOR is set or the output is not a TTY.
package ui
