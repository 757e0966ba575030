package scripts

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/stackops/pkg/errors"
	"github.com/arthur-debert/stackops/pkg/filesystem"
	"github.com/arthur-debert/stackops/pkg/logging"
	"github.com/arthur-debert/stackops/pkg/types"
	"github.com/rs/zerolog"
)

// Script identifiers, in stage order
const (
	InitialSetup = "initial_setup"
	DockerSetup  = "docker_setup"
	ProxySetup   = "setup"
	RunnerSetup  = "runner-setup"
)

// FileExt is appended to a script id to form its file name
const FileExt = ".sh"

// ExecutableMode is rwxr-xr-x
const ExecutableMode fs.FileMode = 0755

//go:embed assets/*.sh
var assets embed.FS

// registry lists the embedded payloads in stage order
var registry = []string{InitialSetup, DockerSetup, ProxySetup, RunnerSetup}

// Payload is one immutable script body keyed by id
type Payload struct {
	ID   string
	Body []byte
}

// FileName returns the on-disk name for a script id
func FileName(id string) string {
	return id + FileExt
}

// Path returns the location of a script inside dir
func Path(dir, id string) string {
	return filepath.Join(dir, FileName(id))
}

// Embedded returns the built-in payload table. It panics if an asset is
// missing, which can only happen with a broken build.
func Embedded() []Payload {
	payloads := make([]Payload, 0, len(registry))
	for _, id := range registry {
		body, err := assets.ReadFile("assets/" + FileName(id))
		if err != nil {
			panic(fmt.Sprintf("embedded script %s missing: %v", id, err))
		}
		payloads = append(payloads, Payload{ID: id, Body: body})
	}
	return payloads
}

// Options contains configuration for the repository
type Options struct {
	// FS is where scripts are materialized. Nil means the OS filesystem.
	FS types.FS

	// Payloads overrides the embedded table
	Payloads []Payload

	Logger zerolog.Logger
}

// Repository holds the fixed set of script payloads and writes them to disk
type Repository struct {
	fs       types.FS
	payloads []Payload
	logger   zerolog.Logger
}

// NewRepository creates a repository over the given options
func NewRepository(opts Options) *Repository {
	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	payloads := opts.Payloads
	if payloads == nil {
		payloads = Embedded()
	}

	return &Repository{
		fs:       fsys,
		payloads: payloads,
		logger:   logging.Component(opts.Logger, "scripts"),
	}
}

// IDs returns the payload identifiers in registry order
func (r *Repository) IDs() []string {
	ids := make([]string, len(r.payloads))
	for i, p := range r.payloads {
		ids[i] = p.ID
	}
	return ids
}

// Get returns the payload with the given id
func (r *Repository) Get(id string) (Payload, bool) {
	for _, p := range r.payloads {
		if p.ID == id {
			return p, true
		}
	}
	return Payload{}, false
}

// Paths returns where each payload lives once materialized into dir
func (r *Repository) Paths(dir string) []string {
	paths := make([]string, len(r.payloads))
	for i, p := range r.payloads {
		paths[i] = Path(dir, p.ID)
	}
	return paths
}

// Materialize writes every payload to targetDir/<id>.sh with mode 0755,
// overwriting existing files and creating targetDir if needed. The first
// failure aborts; files written before it are left in place.
func (r *Repository) Materialize(targetDir string) error {
	if err := r.fs.MkdirAll(targetDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "failed to create scripts directory %s", targetDir).
			WithDetail("path", targetDir)
	}

	for _, p := range r.payloads {
		path := Path(targetDir, p.ID)

		if err := r.fs.WriteFile(path, p.Body, ExecutableMode); err != nil {
			return errors.Wrapf(err, errors.ErrFilesystem, "failed to write script %s", p.ID).
				WithDetail("script", p.ID).
				WithDetail("path", path)
		}

		// WriteFile keeps the mode of an existing file and is subject to umask
		if err := r.fs.Chmod(path, ExecutableMode); err != nil {
			return errors.Wrapf(err, errors.ErrFilesystem, "failed to make script %s executable", p.ID).
				WithDetail("script", p.ID).
				WithDetail("path", path)
		}

		r.logger.Debug().
			Str("script", p.ID).
			Str("path", path).
			Int("bytes", len(p.Body)).
			Msg("Script materialized")
	}

	r.logger.Info().
		Str("dir", targetDir).
		Int("count", len(r.payloads)).
		Msg("Scripts installed")

	return nil
}
