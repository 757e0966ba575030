package scripts_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/stackops/pkg/errors"
	"github.com/arthur-debert/stackops/pkg/filesystem"
	"github.com/arthur-debert/stackops/pkg/scripts"
	"github.com/arthur-debert/stackops/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedded(t *testing.T) {
	payloads := scripts.Embedded()
	require.Len(t, payloads, 4)

	wantIDs := []string{"initial_setup", "docker_setup", "setup", "runner-setup"}
	for i, p := range payloads {
		assert.Equal(t, wantIDs[i], p.ID)
		assert.True(t, strings.HasPrefix(string(p.Body), "#!/bin/bash"), "payload %s needs a shebang", p.ID)
	}
}

func TestRepository_Lookup(t *testing.T) {
	repo := scripts.NewRepository(scripts.Options{FS: filesystem.NewMemory()})

	assert.Equal(t, []string{"initial_setup", "docker_setup", "setup", "runner-setup"}, repo.IDs())

	p, ok := repo.Get(scripts.ProxySetup)
	require.True(t, ok)
	assert.Contains(t, string(p.Body), "DOMAIN")

	_, ok = repo.Get("nonexistent")
	assert.False(t, ok)

	assert.Equal(t, []string{
		"/srv/scripts/initial_setup.sh",
		"/srv/scripts/docker_setup.sh",
		"/srv/scripts/setup.sh",
		"/srv/scripts/runner-setup.sh",
	}, repo.Paths("/srv/scripts"))
}

func TestMaterialize_WritesExecutableScripts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "scripts")
	repo := scripts.NewRepository(scripts.Options{})

	require.NoError(t, repo.Materialize(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	for _, path := range repo.Paths(dir) {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0755), info.Mode().Perm(), path)
	}
}

func TestMaterialize_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "setup.sh")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0600))

	repo := scripts.NewRepository(scripts.Options{})
	require.NoError(t, repo.Materialize(dir))

	content, err := os.ReadFile(stale)
	require.NoError(t, err)
	p, _ := repo.Get(scripts.ProxySetup)
	assert.Equal(t, p.Body, content)

	info, err := os.Stat(stale)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestMaterialize_InMemory(t *testing.T) {
	fsys := filesystem.NewMemory()
	repo := scripts.NewRepository(scripts.Options{
		FS: fsys,
		Payloads: []scripts.Payload{
			{ID: "only", Body: []byte("#!/bin/sh\nexit 0\n")},
		},
	})

	require.NoError(t, repo.Materialize("/work/scripts"))

	body, err := fsys.ReadFile("/work/scripts/only.sh")
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\nexit 0\n", string(body))
}

func TestMaterialize_FailureIsFilesystemError(t *testing.T) {
	ro := filesystem.NewAferoFS(afero.NewReadOnlyFs(afero.NewMemMapFs()))
	repo := scripts.NewRepository(scripts.Options{FS: ro})

	err := repo.Materialize("/work/scripts")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFilesystem))
}

// failingFS fails WriteFile for a single path
type failingFS struct {
	types.FS
	failPath string
}

func (f failingFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if name == f.failPath {
		return fs.ErrPermission
	}
	return f.FS.WriteFile(name, data, perm)
}

func TestMaterialize_PartialWritesRemain(t *testing.T) {
	mem := filesystem.NewMemory()
	repo := scripts.NewRepository(scripts.Options{
		FS: failingFS{FS: mem, failPath: "/work/scripts/second.sh"},
		Payloads: []scripts.Payload{
			{ID: "first", Body: []byte("1")},
			{ID: "second", Body: []byte("2")},
			{ID: "third", Body: []byte("3")},
		},
	})

	err := repo.Materialize("/work/scripts")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFilesystem))
	assert.Equal(t, "second", errors.GetErrorDetails(err)["script"])

	_, err = mem.Stat("/work/scripts/first.sh")
	assert.NoError(t, err)
	_, err = mem.Stat("/work/scripts/third.sh")
	assert.True(t, os.IsNotExist(err))
}
