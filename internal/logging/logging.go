// Package logging builds the zerolog logger used by the CLI and server.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julienpequegnot/topicrank/internal/config"
)

// New returns a logger writing human-readable lines to stderr and, when
// cfg.File is set, JSON lines to a rotating file. The returned closer
// releases the file and is never nil.
func New(cfg config.LogConfig, verbose bool) (zerolog.Logger, io.Closer) {
	return newWithConsole(cfg, verbose, os.Stderr)
}

func newWithConsole(cfg config.LogConfig, verbose bool, console io.Writer) (zerolog.Logger, io.Closer) {
	zerolog.TimeFieldFormat = time.RFC3339

	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339}}
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0750); err == nil {
			rotator := &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    5,
				MaxBackups: 3,
				MaxAge:     30,
				Compress:   true,
			}
			writers = append(writers, rotator)
			closer = rotator
		}
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(Level(cfg.Level, verbose)).
		With().Timestamp().Logger()
	return logger, closer
}

// Level maps a config level name to a zerolog level; verbose forces debug.
// Unknown names fall back to info.
func Level(name string, verbose bool) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
