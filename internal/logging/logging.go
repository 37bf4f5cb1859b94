// Package logging sets up zerolog for the command line tool and adapts it to arrivals.Logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logFileName = "hipfracture-sim.log"

// Options configures Init.
type Options struct {
	// Level is a zerolog level name; empty means info.
	Level string

	// Folder enables the rotating log file when not empty.
	Folder string

	// Console receives the human-readable output, os.Stderr when nil.
	Console io.Writer
}

// Init builds the logger, installs it as the global zerolog logger and returns it together with
// a closer for the log file, which is a no-op when no folder was configured.
func Init(opts Options) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("parse log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	console := opts.Console
	noColor := true
	if console == nil {
		console = os.Stderr
		noColor = !(isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
	}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}}

	var closer io.Closer = nopCloser{}

	if opts.Folder != "" {
		if err := os.MkdirAll(opts.Folder, 0o755); err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("create log directory %q: %w", opts.Folder, err)
		}

		fileWriter := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Folder, logFileName),
			MaxSize:    16, // megabytes
			MaxBackups: 8,
			MaxAge:     90, // days
			Compress:   true,
		}
		writers = append(writers, fileWriter)
		closer = fileWriter
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	log.Logger = logger

	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
