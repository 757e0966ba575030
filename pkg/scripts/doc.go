// Package scripts is the static table of stage scripts and the code that
// materializes them onto disk.
//
// Script bodies are embedded at build time from assets/ and are opaque to
// the rest of stackops: nothing depends on their content beyond the exit
// status they produce when run.
package scripts
