package verify

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	opserrors "github.com/arthur-debert/stackops/pkg/errors"
	"github.com/arthur-debert/stackops/pkg/filesystem"
	"github.com/arthur-debert/stackops/pkg/types"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVerifier(fsys types.FS, euid int, buf *bytes.Buffer) *Verifier {
	return New(Options{
		FS:      fsys,
		Logger:  zerolog.New(buf),
		Geteuid: func() int { return euid },
	})
}

func TestVerify_CreatesMissingDirectories(t *testing.T) {
	base := t.TempDir()
	dirs := []string{filepath.Join(base, "logs"), filepath.Join(base, "scripts")}

	var buf bytes.Buffer
	v := newTestVerifier(filesystem.NewOS(), 0, &buf)
	require.NoError(t, v.Verify(dirs, nil))

	for _, dir := range dirs {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestVerify_FixesScriptPermissions(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "setup.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/bash\n"), 0644))
	missing := filepath.Join(dir, "runner-setup.sh")

	var buf bytes.Buffer
	v := newTestVerifier(filesystem.NewOS(), 0, &buf)
	require.NoError(t, v.Verify([]string{dir}, []string{script, missing}))

	info, err := os.Stat(script)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	_, err = os.Stat(missing)
	assert.True(t, os.IsNotExist(err), "verify must not create missing scripts")
	assert.Contains(t, buf.String(), "Fixed script permissions")
}

func TestVerify_LeavesExecutableScriptsAlone(t *testing.T) {
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.MkdirAll("/w/scripts", 0755))
	require.NoError(t, fsys.WriteFile("/w/scripts/setup.sh", []byte("x"), 0755))

	var buf bytes.Buffer
	v := newTestVerifier(fsys, 0, &buf)
	require.NoError(t, v.Verify(nil, []string{"/w/scripts/setup.sh"}))
	assert.NotContains(t, buf.String(), "Fixed script permissions")
}

func TestVerify_NonRootOnlyWarns(t *testing.T) {
	var buf bytes.Buffer
	v := newTestVerifier(filesystem.NewMemory(), 1000, &buf)

	require.NoError(t, v.Verify([]string{"/w/logs"}, nil))
	assert.Contains(t, buf.String(), "Not running with root privileges")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestCheckPrivileges(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, newTestVerifier(nil, 0, &buf).CheckPrivileges())
	assert.False(t, newTestVerifier(nil, 501, &buf).CheckPrivileges())
	assert.True(t, newTestVerifier(nil, -1, &buf).CheckPrivileges(), "unknown privilege level is not a failure")
}

func TestVerify_FilesystemFailureIsReported(t *testing.T) {
	ro := filesystem.NewAferoFS(afero.NewReadOnlyFs(afero.NewMemMapFs()))

	var buf bytes.Buffer
	v := newTestVerifier(ro, 0, &buf)
	err := v.Verify([]string{"/w/logs"}, nil)
	require.Error(t, err)
	assert.True(t, opserrors.IsErrorCode(err, opserrors.ErrVerification))
}

func TestPreflight(t *testing.T) {
	t.Run("warns on small hosts", func(t *testing.T) {
		var buf bytes.Buffer
		v := New(Options{
			FS:     filesystem.NewMemory(),
			Logger: zerolog.New(&buf),
			Probe: func() (HostFacts, error) {
				return HostFacts{Hostname: "web-1", Platform: "ubuntu", TotalMemory: 256 << 20, FreeDisk: 1 << 30}, nil
			},
		})
		v.Preflight()

		out := buf.String()
		assert.Contains(t, out, "Host preflight")
		assert.Contains(t, out, `"memory_mb":256`)
		assert.Contains(t, out, "Host memory is below the recommended minimum")
		assert.Contains(t, out, "Free disk space is below the recommended minimum")
	})

	t.Run("probe errors are warnings", func(t *testing.T) {
		var buf bytes.Buffer
		v := New(Options{
			FS:     filesystem.NewMemory(),
			Logger: zerolog.New(&buf),
			Probe:  func() (HostFacts, error) { return HostFacts{}, errors.New("no /proc") },
		})
		require.NoError(t, v.Verify(nil, nil))
		assert.Contains(t, buf.String(), "Could not collect host facts")
	})
}

func TestHostFactsUnits(t *testing.T) {
	f := HostFacts{TotalMemory: 2 << 30, FreeDisk: 10 << 30}
	assert.Equal(t, uint64(2048), f.TotalMemoryMB())
	assert.Equal(t, uint64(10240), f.FreeDiskMB())
}
