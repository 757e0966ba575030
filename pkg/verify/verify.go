package verify

import (
	"os"

	"github.com/arthur-debert/stackops/pkg/errors"
	"github.com/arthur-debert/stackops/pkg/filesystem"
	"github.com/arthur-debert/stackops/pkg/logging"
	"github.com/arthur-debert/stackops/pkg/scripts"
	"github.com/arthur-debert/stackops/pkg/types"
	"github.com/rs/zerolog"
)

// Minimum host resources below which a warning is logged
const (
	DefaultMinMemoryMB = 512
	DefaultMinDiskMB   = 2048
)

// Options contains configuration for the verifier
type Options struct {
	FS     types.FS
	Logger zerolog.Logger

	// Geteuid reports the effective user id; -1 means it cannot be checked.
	// Defaults to os.Geteuid.
	Geteuid func() int

	// Probe collects host facts. Nil disables the preflight.
	Probe func() (HostFacts, error)

	MinMemoryMB uint64
	MinDiskMB   uint64
}

// Verifier checks run preconditions and repairs what it can
type Verifier struct {
	fs          types.FS
	logger      zerolog.Logger
	geteuid     func() int
	probe       func() (HostFacts, error)
	minMemoryMB uint64
	minDiskMB   uint64
}

// New creates a verifier
func New(opts Options) *Verifier {
	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	geteuid := opts.Geteuid
	if geteuid == nil {
		geteuid = os.Geteuid
	}
	minMem := opts.MinMemoryMB
	if minMem == 0 {
		minMem = DefaultMinMemoryMB
	}
	minDisk := opts.MinDiskMB
	if minDisk == 0 {
		minDisk = DefaultMinDiskMB
	}

	return &Verifier{
		fs:          fsys,
		logger:      logging.Component(opts.Logger, "verify"),
		geteuid:     geteuid,
		probe:       opts.Probe,
		minMemoryMB: minMem,
		minDiskMB:   minDisk,
	}
}

// Verify checks privileges (warning only), creates every missing directory
// in dirs, and gives every existing script in scriptPaths mode 0755 when it
// is not executable. Only a failing filesystem operation returns an error.
func (v *Verifier) Verify(dirs, scriptPaths []string) error {
	v.CheckPrivileges()
	v.Preflight()

	for _, dir := range dirs {
		if _, err := v.fs.Stat(dir); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrVerification, "cannot inspect directory %s", dir).
				WithDetail("path", dir)
		}

		if err := v.fs.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrVerification, "cannot create directory %s", dir).
				WithDetail("path", dir)
		}
		v.logger.Debug().Str("path", dir).Msg("Created missing directory")
	}

	for _, path := range scriptPaths {
		info, err := v.fs.Stat(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return errors.Wrapf(err, errors.ErrVerification, "cannot inspect script %s", path).
				WithDetail("path", path)
		}

		if info.Mode().Perm()&0111 == 0111 {
			continue
		}
		if err := v.fs.Chmod(path, scripts.ExecutableMode); err != nil {
			return errors.Wrapf(err, errors.ErrVerification, "cannot make %s executable", path).
				WithDetail("path", path)
		}
		v.logger.Warn().
			Str("path", path).
			Str("was", info.Mode().Perm().String()).
			Msg("Fixed script permissions")
	}

	v.logger.Debug().Int("dirs", len(dirs)).Int("scripts", len(scriptPaths)).Msg("Environment verified")
	return nil
}

// CheckPrivileges logs a warning when the process is not root and reports
// whether it is. Platforms without an effective uid are treated as
// privileged.
func (v *Verifier) CheckPrivileges() bool {
	euid := v.geteuid()
	if euid < 0 {
		v.logger.Debug().Msg("Privilege level cannot be checked on this platform")
		return true
	}
	if euid != 0 {
		v.logger.Warn().Int("euid", euid).Msg("Not running with root privileges. Some operations may fail.")
		return false
	}
	return true
}

// Preflight logs host facts and warns about low memory or disk space
func (v *Verifier) Preflight() {
	if v.probe == nil {
		return
	}

	facts, err := v.probe()
	if err != nil {
		v.logger.Warn().Err(err).Msg("Could not collect host facts")
		return
	}

	v.logger.Info().
		Str("host", facts.Hostname).
		Str("platform", facts.Platform).
		Uint64("memory_mb", facts.TotalMemoryMB()).
		Uint64("disk_free_mb", facts.FreeDiskMB()).
		Msg("Host preflight")

	if facts.TotalMemory > 0 && facts.TotalMemoryMB() < v.minMemoryMB {
		v.logger.Warn().
			Uint64("memory_mb", facts.TotalMemoryMB()).
			Uint64("minimum_mb", v.minMemoryMB).
			Msg("Host memory is below the recommended minimum")
	}
	if facts.FreeDisk > 0 && facts.FreeDiskMB() < v.minDiskMB {
		v.logger.Warn().
			Uint64("disk_free_mb", facts.FreeDiskMB()).
			Uint64("minimum_mb", v.minDiskMB).
			Msg("Free disk space is below the recommended minimum")
	}
}
