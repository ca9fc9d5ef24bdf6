package slogutil

import (
	"io"
	"log/slog"

	"fpm/internal/config"
	"fpm/internal/paths"
)

// Setup builds the process logger from the logging configuration.
//
// Records go to stderr and, when cfg.File is set, to the registry's
// rotating log file as well. A non-nil override (from -v or -q) replaces the
// configured stderr level; the file always logs at the configured level.
// The returned closer releases the log file and is never nil.
func Setup(stderr io.Writer, cfg config.LoggingConfig, layout paths.Layout, override *slog.Level) (*slog.Logger, io.Closer, error) {
	configured := LevelFromString(cfg.Level)
	level := configured
	if override != nil {
		level = *override
	}

	console := NewFormatHandler(stderr, cfg.Format, level)
	if !cfg.File {
		return slog.New(console), nopCloser{}, nil
	}

	maxSize, err := ParseSize(cfg.MaxSize)
	if err != nil {
		return nil, nil, err
	}
	file, err := OpenRotatingFile(layout.LogPath(), maxSize, cfg.MaxBackups)
	if err != nil {
		return nil, nil, err
	}

	handler := NewTeeHandler(console, NewFormatHandler(file, cfg.Format, configured))
	return slog.New(handler), file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
