// Package types defines the shared types used across stackops packages:
// the workspace filesystem interface and the result types produced by
// script execution and orchestrator runs.
package types
