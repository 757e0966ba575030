package runner

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	opserrors "github.com/arthur-debert/stackops/pkg/errors"
	"github.com/arthur-debert/stackops/pkg/scripts"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript places an executable script named id.sh in dir
func writeScript(t *testing.T, dir, id, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(scripts.Path(dir, id), []byte(body), 0755))
}

// newTestRunner runs scripts with plain sh and no escalation
func newTestRunner(dir string, buf *bytes.Buffer) *ScriptRunner {
	return New(Options{
		ScriptsDir: dir,
		Escalation: []string{},
		Shell:      "sh",
		Logger:     zerolog.New(buf),
		GOOS:       "linux",
	})
}

func TestRun_Success(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "setup", "echo \"$DOMAIN $EMAIL\"\necho warming up >&2\n")

	var buf bytes.Buffer
	r := newTestRunner(dir, &buf)
	result := r.Run("setup", map[string]string{"DOMAIN": "example.com", "EMAIL": "admin@example.com"})

	require.NoError(t, result.Err)
	assert.True(t, result.Succeeded)
	assert.False(t, result.Skipped)
	assert.Equal(t, "setup", result.ScriptID)
	assert.Equal(t, "example.com admin@example.com\n", result.Stdout)
	assert.Equal(t, "warming up\n", result.Stderr)
	assert.False(t, result.StartedAt.IsZero())
	assert.Contains(t, buf.String(), "Script completed")
}

func TestRun_ExtraEnvOverridesProcessEnv(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "setup", "echo \"$DOMAIN|$KEEP\"\n")

	var buf bytes.Buffer
	r := New(Options{
		ScriptsDir: dir,
		Escalation: []string{},
		Shell:      "sh",
		Logger:     zerolog.New(&buf),
		GOOS:       "linux",
		Environ: func() []string {
			return []string{"PATH=" + os.Getenv("PATH"), "DOMAIN=stale.example", "KEEP=yes"}
		},
	})

	result := r.Run("setup", map[string]string{"DOMAIN": "example.com"})
	require.NoError(t, result.Err)
	assert.Equal(t, "example.com|yes\n", result.Stdout)
}

func TestRun_NonZeroExit(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "docker_setup", "echo partial\necho 'apt-get failed' >&2\nexit 3\n")

	var buf bytes.Buffer
	r := newTestRunner(dir, &buf)
	result := r.Run("docker_setup", nil)

	assert.False(t, result.Succeeded)
	require.Error(t, result.Err)
	assert.True(t, opserrors.IsErrorCode(result.Err, opserrors.ErrScriptExecution))
	assert.Equal(t, "partial\n", result.Stdout)
	assert.Equal(t, "apt-get failed\n", result.Stderr)

	details := opserrors.GetErrorDetails(result.Err)
	assert.Equal(t, "apt-get failed\n", details["stderr"])
	assert.Equal(t, 3, details["exit_code"])
	assert.Contains(t, buf.String(), "Script failed")
}

func TestRun_ScriptNotFoundSpawnsNothing(t *testing.T) {
	dir := t.TempDir()
	spawned := 0

	var buf bytes.Buffer
	r := New(Options{
		ScriptsDir: dir,
		Escalation: []string{},
		Shell:      "sh",
		Logger:     zerolog.New(&buf),
		GOOS:       "linux",
		CommandFunc: func(name string, args ...string) *exec.Cmd {
			spawned++
			return exec.Command(name, args...)
		},
	})

	result := r.Run("initial_setup", nil)
	assert.False(t, result.Succeeded)
	assert.True(t, opserrors.IsErrorCode(result.Err, opserrors.ErrScriptNotFound))
	assert.Equal(t, 0, spawned)
	assert.Equal(t, filepath.Join(dir, "initial_setup.sh"), opserrors.GetErrorDetails(result.Err)["path"])
}

func TestRun_SpawnFailure(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "initial_setup", "exit 0\n")

	var buf bytes.Buffer
	r := New(Options{
		ScriptsDir: dir,
		Escalation: []string{},
		Shell:      filepath.Join(dir, "no-such-shell"),
		Logger:     zerolog.New(&buf),
		GOOS:       "linux",
	})

	result := r.Run("initial_setup", nil)
	assert.False(t, result.Succeeded)
	assert.True(t, opserrors.IsErrorCode(result.Err, opserrors.ErrScriptExecution))
	assert.NotContains(t, opserrors.GetErrorDetails(result.Err), "exit_code")
	assert.Contains(t, result.Err.Error(), "no-such-shell")
}

func TestRun_WindowsSkips(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "initial_setup", "exit 1\n")

	var buf bytes.Buffer
	r := New(Options{ScriptsDir: dir, Logger: zerolog.New(&buf), GOOS: "windows"})

	result := r.Run("initial_setup", nil)
	require.NoError(t, result.Err)
	assert.True(t, result.Succeeded)
	assert.True(t, result.Skipped)
	assert.Contains(t, buf.String(), "skipping script execution")
}

func TestRun_DoesNotLogEnvValues(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "runner-setup", "test -n \"$GITHUB_TOKEN\"\n")

	var buf bytes.Buffer
	r := New(Options{
		ScriptsDir: dir,
		Escalation: []string{},
		Shell:      "sh",
		Logger:     zerolog.New(&buf).Level(zerolog.TraceLevel),
		GOOS:       "linux",
	})

	result := r.Run("runner-setup", map[string]string{"GITHUB_TOKEN": "ghp_secretvalue"})
	require.NoError(t, result.Err)
	assert.Contains(t, buf.String(), "GITHUB_TOKEN")
	assert.NotContains(t, buf.String(), "ghp_secretvalue")
}

func TestCommand(t *testing.T) {
	stageEnv := map[string]string{"EMAIL": "ops@example.com", "DOMAIN": "example.com"}

	tests := []struct {
		name string
		opts Options
		env  map[string]string
		want []string
	}{
		{
			name: "defaults",
			opts: Options{},
			want: []string{"sudo", "bash", "/srv/scripts/setup.sh"},
		},
		{
			name: "sudo keeps stage variables",
			opts: Options{},
			env:  stageEnv,
			want: []string{"sudo", "--preserve-env=DOMAIN,EMAIL", "bash", "/srv/scripts/setup.sh"},
		},
		{
			name: "sudo by absolute path",
			opts: Options{Escalation: []string{"/usr/bin/sudo", "-n"}},
			env:  map[string]string{"GITHUB_TOKEN": "ghp_x"},
			want: []string{"/usr/bin/sudo", "-n", "--preserve-env=GITHUB_TOKEN", "bash", "/srv/scripts/setup.sh"},
		},
		{
			name: "other wrappers are left alone",
			opts: Options{Escalation: []string{"doas"}},
			env:  stageEnv,
			want: []string{"doas", "bash", "/srv/scripts/setup.sh"},
		},
		{
			name: "no escalation",
			opts: Options{Escalation: []string{}, Shell: "sh"},
			env:  stageEnv,
			want: []string{"sh", "/srv/scripts/setup.sh"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.opts)
			assert.Equal(t, tt.want, r.Command("/srv/scripts/setup.sh", tt.env))
		})
	}
}

func TestRun_StageVariablesCrossSudo(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "setup", "exit 0\n")

	var argv []string
	var buf bytes.Buffer
	r := New(Options{
		ScriptsDir: dir,
		Logger:     zerolog.New(&buf).Level(zerolog.TraceLevel),
		GOOS:       "linux",
		CommandFunc: func(name string, args ...string) *exec.Cmd {
			argv = append([]string{name}, args...)
			return exec.Command("true")
		},
	})

	result := r.Run("setup", map[string]string{"DOMAIN": "example.com", "EMAIL": "ops@example.com"})
	require.NoError(t, result.Err)

	require.NotEmpty(t, argv)
	assert.Equal(t, "sudo", argv[0])
	assert.Contains(t, argv, "--preserve-env=DOMAIN,EMAIL")
	assert.NotContains(t, buf.String(), "example.com")
}

func TestMergeEnv(t *testing.T) {
	base := []string{"PATH=/usr/bin", "DOMAIN=old", "MALFORMED"}
	merged := MergeEnv(base, map[string]string{"DOMAIN": "example.com", "EMAIL": "a@b.c"})

	assert.Equal(t, []string{"PATH=/usr/bin", "MALFORMED", "DOMAIN=example.com", "EMAIL=a@b.c"}, merged)
	assert.Equal(t, base, MergeEnv(base, nil))
}
