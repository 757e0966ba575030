package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForVerbosity(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default info level", 0, zerolog.InfoLevel},
		{"debug level", 1, zerolog.DebugLevel},
		{"trace level", 2, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLevel, LevelForVerbosity(tt.verbosity))
		})
	}
}

func TestNew_FileSinkFormat(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "setup.log")
	var console bytes.Buffer

	logger := New(Options{Console: &console, NoColor: true, LogFile: logFile})
	setupLogger := Component(logger, "setup")
	setupLogger.Info().Str("script", "docker_setup").Msg("Stage failed")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	pattern := regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} - setup - INFO - Stage failed script=docker_setup$`)
	assert.Regexp(t, pattern, line)

	assert.Contains(t, console.String(), "Stage failed")
	assert.NotContains(t, console.String(), "component=")
}

func TestNew_FileAlwaysRecordsInfo(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "setup.log")
	var console bytes.Buffer

	logger := New(Options{Console: &console, NoColor: true, LogFile: logFile})
	logger.Debug().Msg("hidden detail")
	logger.Info().Msg("visible progress")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden detail")
	assert.Contains(t, string(data), "visible progress")
	assert.Contains(t, string(data), " - stackops - INFO - ")
}

func TestNew_VerboseReachesFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "setup.log")
	var console bytes.Buffer

	logger := New(Options{Verbosity: 1, Console: &console, NoColor: true, LogFile: logFile})
	logger.Debug().Msg("debug detail")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DEBUG - debug detail")
	assert.Contains(t, console.String(), "debug detail")
}

func TestNew_WithoutFileSink(t *testing.T) {
	var console bytes.Buffer
	logger := New(Options{Console: &console, NoColor: true})
	logger.Warn().Msg("not running as root")
	assert.Contains(t, console.String(), "not running as root")
}

func TestAppendFile_SurvivesDirectoryRemoval(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	f := &AppendFile{Path: filepath.Join(dir, "setup.log")}

	_, err := f.Write([]byte("first\n"))
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(dir))

	_, err = f.Write([]byte("second\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	done := LogOperationStart(logger, "materialize")
	done()

	out := buf.String()
	assert.Contains(t, out, `"operation":"materialize"`)
	assert.Contains(t, out, "Operation started")
	assert.Contains(t, out, "Operation completed")
}
