// Package paths provides centralized path handling for stackops.
//
// A Workspace is rooted at a base directory and owns two subdirectories
// that every run purges and recreates:
//
//   - <base>/scripts: materialized stage scripts (mode 0755)
//   - <base>/logs: setup.log, the append-only run log
//
// Data that must outlive the purge, such as the run history ledger, lives in
// the state directory instead.
//
// # Environment Variables
//
//   - STACKOPS_BASE_DIR: workspace base (default: /var/lib/stackops for root,
//     $XDG_DATA_HOME/stackops otherwise)
//   - STACKOPS_STATE_DIR: state directory (default: $XDG_STATE_HOME/stackops)
package paths
