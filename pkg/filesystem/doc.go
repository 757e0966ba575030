// Package filesystem provides filesystem implementations for stackops.
//
// This package contains implementations of the types.FS interface,
// including the standard OS filesystem and afero-backed filesystems
// used for dry runs and tests.
package filesystem
