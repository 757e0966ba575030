// Package runner executes materialized stage scripts.
//
// Each script runs synchronously as `<escalation...> <shell> <path>` with
// the process environment overlaid by stage variables. Output is captured,
// not streamed. Outcomes are returned as types.ExecutionResult values whose
// Err carries a coded error: SCRIPT_NOT_FOUND when the payload is missing
// (no process is spawned) and SCRIPT_EXECUTION for a nonzero exit or a
// failure to spawn.
package runner
