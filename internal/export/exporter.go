package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fpm/internal/modules"
	"fpm/internal/paths"
	"fpm/internal/project"
	"fpm/internal/slogutil"
	"fpm/internal/storage"
)

// Source is the part of the record store an export reads
type Source interface {
	Layout() paths.Layout
	Projects() []*project.Project
	Modules() []*modules.Module
}

// Exporter writes snapshots and archives of one database
type Exporter struct {
	source Source
	logger *slog.Logger
}

// NewExporter creates an exporter. A nil logger discards output.
func NewExporter(source Source, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Exporter{source: source, logger: logger}
}

// SQLite writes a snapshot of the loaded records to the database at path,
// replacing the previous snapshot stored there.
func (e *Exporter) SQLite(ctx context.Context, path string) (*storage.Snapshot, error) {
	db, err := storage.Open(path, e.logger)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return db.WriteSnapshot(ctx, e.source.Layout().Root, e.source.Projects(), e.source.Modules())
}

// Archive writes a zstd-compressed tar archive of the record files to path.
// The archive is written to a temporary file next to path and renamed into
// place once complete.
func (e *Exporter) Archive(ctx context.Context, path string) (_ *ArchiveResult, err error) {
	start := time.Now()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".fpm-archive-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp archive: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	result, err := WriteArchive(ctx, e.source.Layout(), tmp)
	if err != nil {
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("closing temp archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("moving archive into place: %w", err)
	}

	result.Path = path
	e.logger.Info("Wrote archive",
		"path", path,
		"files", result.Files(),
		"bytes", result.Bytes,
		"elapsed", time.Since(start),
	)
	return result, nil
}
