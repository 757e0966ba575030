package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// ComponentField is the field carrying the emitting component's name
	ComponentField = "component"

	// DefaultComponent is attached to the root logger
	DefaultComponent = "stackops"

	// FileTimeFormat is the timestamp layout used in the log file
	FileTimeFormat = "2006-01-02 15:04:05"
)

// Options configures the sinks of a logger built by New
type Options struct {
	// Verbosity is the -v count from the command line
	Verbosity int

	// Console receives human readable output. Nil means os.Stderr.
	Console io.Writer

	// NoColor disables ANSI colors on the console sink
	NoColor bool

	// LogFile is the path of the append-only log file. Empty disables the
	// file sink.
	LogFile string
}

// New builds a logger writing to a console sink and, when configured, to an
// append-only log file. The file always records INFO and above regardless of
// verbosity; the console follows the verbosity level.
func New(opts Options) zerolog.Logger {
	consoleLevel := LevelForVerbosity(opts.Verbosity)
	fileLevel := zerolog.InfoLevel
	if consoleLevel < fileLevel {
		fileLevel = consoleLevel
	}

	out := opts.Console
	if out == nil {
		out = os.Stderr
	}

	writers := []io.Writer{
		levelFilter{
			w: zerolog.ConsoleWriter{
				Out:           out,
				TimeFormat:    time.Kitchen,
				NoColor:       opts.NoColor,
				FieldsExclude: []string{ComponentField},
			},
			min: consoleLevel,
		},
	}

	minLevel := consoleLevel
	if opts.LogFile != "" {
		writers = append(writers, levelFilter{w: NewFileWriter(opts.LogFile), min: fileLevel})
		if fileLevel < minLevel {
			minLevel = fileLevel
		}
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(minLevel).
		With().
		Timestamp().
		Str(ComponentField, DefaultComponent).
		Logger()

	// Add caller information for debug and trace levels
	if opts.Verbosity >= 2 {
		logger = logger.With().Caller().Logger()
	}

	return logger
}

// LevelForVerbosity maps the -v count to a console level
func LevelForVerbosity(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.InfoLevel
	case verbosity == 1:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// Component returns a contextualized logger with the given component name
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str(ComponentField, name).Logger()
}

// Nop returns a disabled logger, the default for constructors given none
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// NewFileWriter returns a writer producing lines of the form
// "<timestamp> - <component> - <level> - <message> key=value..." appended to path.
func NewFileWriter(path string) io.Writer {
	return zerolog.ConsoleWriter{
		Out:             &AppendFile{Path: path},
		NoColor:         true,
		PartsOrder:      []string{zerolog.TimestampFieldName, ComponentField, zerolog.LevelFieldName, zerolog.MessageFieldName},
		FieldsExclude:   []string{ComponentField},
		FormatTimestamp: formatFileTimestamp,
		FormatLevel: func(i interface{}) string {
			return fmt.Sprintf("- %s -", strings.ToUpper(fmt.Sprint(i)))
		},
	}
}

func formatFileTimestamp(i interface{}) string {
	s := fmt.Sprint(i)
	if ts, err := time.Parse(zerolog.TimeFieldFormat, s); err == nil {
		s = ts.Local().Format(FileTimeFormat)
	}
	return s + " -"
}

// AppendFile is an io.Writer that opens Path in append mode for every write.
// The workspace reset deletes the logs directory mid-process, so holding a
// descriptor across writes would send lines to an unlinked file.
type AppendFile struct {
	Path string

	mu sync.Mutex
}

// Write appends p to the file, creating parent directories as needed
func (f *AppendFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(f.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	n, err := file.Write(p)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// levelFilter drops events below min before handing them to w
type levelFilter struct {
	w   io.Writer
	min zerolog.Level
}

func (l levelFilter) Write(p []byte) (int, error) {
	return l.w.Write(p)
}

func (l levelFilter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < l.min {
		return len(p), nil
	}
	return l.w.Write(p)
}

// LogOperationStart logs the start of an operation and returns a function to log its completion
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().
		Str("operation", operation).
		Msg("Operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
