// Package setup orchestrates the provisioning stages.
//
// An Orchestrator resets the workspace (purges and recreates the logs and
// scripts directories, materializes the embedded scripts, verifies the
// environment) and then runs the stages of DefaultStages strictly in order.
// The first failing stage aborts the run. There are no retries and no
// resume: a failed run is repeated from scratch.
//
// Cancellation is honored between stages only; a script that is already
// running is left to finish.
package setup
