// Package history keeps a SQLite ledger of setup runs and their stage
// results. The ledger lives in the state directory, outside the workspace
// that every run purges, so past outcomes stay inspectable with
// `stackops history`.
//
// Store implements the run observer interface of package setup.
package history
