// Package paths describes the on-disk layout of the registry and enumerates
// record files under it.
package paths

import (
	"io/fs"
	"os"
	"path/filepath"
)

const (
	// ProjectsSubdir holds one file per project, named by project ID
	ProjectsSubdir = "projects"
	// ModulesSubdir holds one file per module, named by content fingerprint
	ModulesSubdir = "modules"
	// ManifestsSubdir is reserved for imported manifests
	ManifestsSubdir = "manifests"
	// LogsSubdir holds the optional log file
	LogsSubdir = "logs"

	// RecordExt is the extension used when writing record files
	RecordExt = ".yaml"

	// DefaultDirName is the database directory created under $HOME
	DefaultDirName = ".fpm-db"
)

// recordExts are the extensions recognized as record documents
var recordExts = []string{".yaml", ".yml"}

// skippedDirs are version-control and build-cache directories never descended into
var skippedDirs = map[string]bool{
	".git":             true,
	".hg":              true,
	".svn":             true,
	".bzr":             true,
	".flatpak-builder": true,
	".cache":           true,
	"__pycache__":      true,
	"node_modules":     true,
}

// Layout resolves every location of a registry rooted at Root.
type Layout struct {
	Root string
}

// NewLayout returns a layout for root, cleaned.
func NewLayout(root string) Layout {
	return Layout{Root: filepath.Clean(root)}
}

// ProjectsDir returns <root>/projects
func (l Layout) ProjectsDir() string {
	return filepath.Join(l.Root, ProjectsSubdir)
}

// ModulesDir returns <root>/modules
func (l Layout) ModulesDir() string {
	return filepath.Join(l.Root, ModulesSubdir)
}

// ManifestsDir returns <root>/manifests
func (l Layout) ManifestsDir() string {
	return filepath.Join(l.Root, ManifestsSubdir)
}

// LogsDir returns <root>/logs
func (l Layout) LogsDir() string {
	return filepath.Join(l.Root, LogsSubdir)
}

// LogPath returns the path of the registry log file
func (l Layout) LogPath() string {
	return filepath.Join(l.LogsDir(), "fpm.log")
}

// ProjectPath returns the file path of the project with the given ID
func (l Layout) ProjectPath(id string) string {
	return filepath.Join(l.ProjectsDir(), id+RecordExt)
}

// ModulePath returns the file path of the module with the given fingerprint
func (l Layout) ModulePath(fingerprint string) string {
	return filepath.Join(l.ModulesDir(), fingerprint+RecordExt)
}

// Ensure creates the root and the record subdirectories.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.ProjectsDir(), l.ManifestsDir(), l.ModulesDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// DefaultRoot returns $HOME/.fpm-db, or .fpm-db when no home directory is known.
func DefaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DefaultDirName
	}
	return filepath.Join(home, DefaultDirName)
}

// IsRecordFile reports whether path carries a record document extension.
// Extensions match case-sensitively.
func IsRecordFile(path string) bool {
	ext := filepath.Ext(path)
	for _, recordExt := range recordExts {
		if ext == recordExt {
			return true
		}
	}
	return false
}

// IsSkippedDir reports whether a directory with this base name is never enumerated
func IsSkippedDir(name string) bool {
	return skippedDirs[name]
}

// ListFiles returns every regular file under root, recursively, in lexical
// order, without descending into version-control or build-cache directories.
// An unreadable root is an error; unreadable subdirectories are skipped.
func ListFiles(root string) ([]string, error) {
	if _, err := os.ReadDir(root); err != nil {
		return nil, err
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && IsSkippedDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
			return nil
		}
		// Symlinks count when they resolve to a regular file
		if d.Type()&fs.ModeSymlink != 0 {
			if info, statErr := os.Stat(path); statErr == nil && info.Mode().IsRegular() {
				files = append(files, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// NormalizePath normalizes a path by converting backslashes to forward slashes
func NormalizePath(path string) string {
	return filepath.ToSlash(path)
}

// RelativeTo returns path relative to root with forward slashes.
func RelativeTo(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return NormalizePath(rel), nil
}
