// Package testutil provides fixtures for tests that need a database on disk.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"fpm/internal/codec"
	"fpm/internal/modules"
	"fpm/internal/paths"
	"fpm/internal/project"
)

// Database is a temporary database root with its directories created.
type Database struct {
	t      *testing.T
	Layout paths.Layout
}

// NewDatabase creates an empty database under t.TempDir().
func NewDatabase(t *testing.T) *Database {
	t.Helper()

	layout := paths.NewLayout(filepath.Join(t.TempDir(), "db"))
	if err := layout.Ensure(); err != nil {
		t.Fatalf("Failed to create database directories: %v", err)
	}
	return &Database{t: t, Layout: layout}
}

// WriteProject encodes p into its record file and returns the path.
func (d *Database) WriteProject(p *project.Project) string {
	d.t.Helper()

	data, err := codec.EncodeProject(p)
	if err != nil {
		d.t.Fatalf("Failed to encode project %s: %v", p.ID, err)
	}
	return d.write(d.Layout.ProjectPath(p.ID), data)
}

// WriteModule encodes m into the file named after its fingerprint and
// returns the fingerprint.
func (d *Database) WriteModule(m *modules.Module) string {
	d.t.Helper()

	fingerprint, err := m.Fingerprint()
	if err != nil {
		d.t.Fatalf("Failed to fingerprint module %s: %v", m.Name(), err)
	}
	data, err := codec.EncodeModule(m)
	if err != nil {
		d.t.Fatalf("Failed to encode module %s: %v", m.Name(), err)
	}
	d.write(d.Layout.ModulePath(fingerprint), data)
	return fingerprint
}

// WriteRaw writes content to rel, relative to the database root, and
// returns the absolute path.
func (d *Database) WriteRaw(rel, content string) string {
	d.t.Helper()
	return d.write(filepath.Join(d.Layout.Root, filepath.FromSlash(rel)), []byte(content))
}

func (d *Database) write(path string, data []byte) string {
	d.t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		d.t.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		d.t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// ReadFile returns the content of path, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}
