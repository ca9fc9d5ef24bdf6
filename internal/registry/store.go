// Package registry keeps the project and module records of an fpm database
// in memory, backed by one YAML file per record.
package registry

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"fpm/internal/codec"
	"fpm/internal/errors"
	"fpm/internal/modules"
	"fpm/internal/paths"
	"fpm/internal/project"
	"fpm/internal/slogutil"
)

// Warning is a record that was skipped while loading.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Path, w.Err)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store is the in-memory index over the record files of one database root.
// It is not safe for concurrent use.
type Store struct {
	layout paths.Layout
	logger *slog.Logger

	projects map[string]*project.Project
	modules  []*modules.Module
	warnings []Warning

	// file each indexed project was loaded from or written to
	files map[string]string

	// bytes of record data read by the last Load plus what was written since
	recordBytes int64
}

// Open creates the database directories under layout.Root when missing and
// loads every record.
func Open(layout paths.Layout, opts ...Option) (*Store, error) {
	s := &Store{
		layout:   layout,
		logger:   slogutil.NewDiscardLogger(),
		projects: make(map[string]*project.Project),
		files:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := layout.Ensure(); err != nil {
		return nil, errors.New(errors.StorageInit, "failed to create database directories under "+layout.Root, err)
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load rebuilds the index from disk.
//
// A module file that cannot be read or decoded is skipped with a warning.
// A project file that cannot be read or decoded aborts the load, as do two
// project files declaring the same ID.
func (s *Store) Load() error {
	start := time.Now()

	s.projects = make(map[string]*project.Project)
	s.files = make(map[string]string)
	s.modules = nil
	s.warnings = nil
	s.recordBytes = 0

	for _, path := range s.listRecords(s.layout.ProjectsDir()) {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.New(errors.ProjectDecodeFailed, "failed to read project file "+path, err)
		}
		p, err := codec.DecodeProject(data)
		if err != nil {
			return errors.New(errors.ProjectDecodeFailed, "failed to decode project file "+path, err)
		}
		if previous, ok := s.files[p.ID]; ok {
			return errors.Newf(errors.DuplicateProject, "project %s is declared by both %s and %s", p.ID, previous, path).
				WithDetails(map[string]string{"id": p.ID, "first": previous, "second": path})
		}
		s.files[p.ID] = path
		s.projects[p.ID] = p
		s.recordBytes += int64(len(data))
	}

	for _, path := range s.listRecords(s.layout.ModulesDir()) {
		data, err := os.ReadFile(path)
		if err != nil {
			s.warn(path, fmt.Errorf("failed to read module file: %w", err))
			continue
		}
		m, err := codec.DecodeModule(data)
		if err != nil {
			s.warn(path, err)
			continue
		}
		s.modules = append(s.modules, m)
		s.recordBytes += int64(len(data))
	}

	s.logger.Info("Loaded database",
		"root", s.layout.Root,
		"projects", len(s.projects),
		"modules", len(s.modules),
		"skipped", len(s.warnings),
		"elapsed", formatElapsed(time.Since(start)),
	)
	return nil
}

// listRecords returns the record files under dir. An unreadable directory
// is a warning and yields nothing.
func (s *Store) listRecords(dir string) []string {
	files, err := paths.ListFiles(dir)
	if err != nil {
		s.warn(dir, err)
		return nil
	}
	records := files[:0]
	for _, path := range files {
		if paths.IsRecordFile(path) {
			records = append(records, path)
		}
	}
	return records
}

func (s *Store) warn(path string, err error) {
	s.warnings = append(s.warnings, Warning{Path: path, Err: err})
	s.logger.Warn("Skipping record", "path", path, "error", err)
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// Layout returns the storage layout of the database
func (s *Store) Layout() paths.Layout {
	return s.layout
}

// Warnings returns the records skipped by the last Load
func (s *Store) Warnings() []Warning {
	return append([]Warning(nil), s.warnings...)
}

// HasProject reports whether id is indexed
func (s *Store) HasProject(id string) bool {
	_, ok := s.projects[id]
	return ok
}

// GetProject returns a copy of the indexed project.
func (s *Store) GetProject(id string) (*project.Project, bool) {
	p, ok := s.projects[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Projects returns copies of every project, ordered by ID.
func (s *Store) Projects() []*project.Project {
	out := make([]*project.Project, 0, len(s.projects))
	for _, id := range s.projectIDs() {
		out = append(out, s.projects[id].Clone())
	}
	return out
}

// Modules returns copies of every module in load order.
func (s *Store) Modules() []*modules.Module {
	out := make([]*modules.Module, 0, len(s.modules))
	for _, m := range s.modules {
		out = append(out, m.Clone())
	}
	return out
}

func (s *Store) projectIDs() []string {
	ids := make([]string, 0, len(s.projects))
	for id := range s.projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SearchProjects returns the projects whose name, main VCS URL or any other
// VCS URL contains term, case-sensitively. Each project appears once,
// ordered by ID.
func (s *Store) SearchProjects(term string) []*project.Project {
	var found []*project.Project
	for _, id := range s.projectIDs() {
		p := s.projects[id]
		if projectMatches(p, term) {
			found = append(found, p.Clone())
		}
	}
	return found
}

func projectMatches(p *project.Project, term string) bool {
	if strings.Contains(p.Name, term) || strings.Contains(p.VCSURL, term) {
		return true
	}
	for url := range p.VCSURLs {
		if strings.Contains(url, term) {
			return true
		}
	}
	return false
}

// SearchModules returns the modules whose name contains term, ignoring
// case, in load order.
func (s *Store) SearchModules(term string) []*modules.Module {
	term = strings.ToLower(term)
	var found []*modules.Module
	for _, m := range s.modules {
		if strings.Contains(strings.ToLower(m.Name()), term) {
			found = append(found, m.Clone())
		}
	}
	return found
}

// AddProject stores a new project. When the project is already indexed, or
// its file already exists, the call is an UpdateProject instead.
func (s *Store) AddProject(p *project.Project) error {
	if err := project.ValidateID(p.ID); err != nil {
		return err
	}

	path := s.layout.ProjectPath(p.ID)
	if s.HasProject(p.ID) || fileExists(path) {
		s.logger.Debug("Project exists, merging", "id", p.ID)
		return s.UpdateProject(p)
	}

	stored := p.Clone()
	stored.Normalize()
	if err := stored.Validate(); err != nil {
		return err
	}
	if err := s.writeProject(path, stored); err != nil {
		return err
	}
	s.projects[stored.ID] = stored
	s.files[stored.ID] = path
	s.logger.Info("Added project", "id", stored.ID)
	return nil
}

// UpdateProject merges p into the indexed project with the same ID and
// rewrites its file. The index only changes once the file was written.
func (s *Store) UpdateProject(p *project.Project) error {
	if err := project.ValidateID(p.ID); err != nil {
		return err
	}

	current, ok := s.projects[p.ID]
	if !ok {
		return errors.Newf(errors.ProjectNotFound, "project %s is not in the database", p.ID)
	}
	path := s.projectFile(p.ID)
	if !fileExists(path) {
		return errors.Newf(errors.ProjectFileMissing, "project %s has no file at %s", p.ID, path)
	}

	merged := current.Clone()
	if err := merged.Merge(p); err != nil {
		return err
	}
	if err := merged.Validate(); err != nil {
		return err
	}
	if err := s.writeProject(path, merged); err != nil {
		return err
	}
	s.projects[p.ID] = merged
	s.logger.Debug("Updated project", "id", p.ID)
	return nil
}

// projectFile returns the file the project was loaded from, or its
// canonical path when it was never loaded.
func (s *Store) projectFile(id string) string {
	if path, ok := s.files[id]; ok {
		return path
	}
	return s.layout.ProjectPath(id)
}

func (s *Store) writeProject(path string, p *project.Project) error {
	data, err := codec.EncodeProject(p)
	if err != nil {
		return errors.New(errors.EncodeFailed, "failed to encode project "+p.ID, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.WriteFailed, "failed to write project file "+path, err)
	}
	s.recordBytes += int64(len(data))
	return nil
}

// AddModule stores m under its fingerprint and returns the fingerprint.
// Storing a module whose file already exists does nothing.
func (s *Store) AddModule(m *modules.Module) (string, error) {
	fingerprint, err := m.Fingerprint()
	if err != nil {
		return "", errors.New(errors.EncodeFailed, "failed to fingerprint module "+m.Name(), err)
	}

	path := s.layout.ModulePath(fingerprint)
	if fileExists(path) {
		s.logger.Debug("Module already stored", "name", m.Name(), "fingerprint", fingerprint)
		return fingerprint, nil
	}

	data, err := codec.EncodeModule(m)
	if err != nil {
		return "", errors.New(errors.EncodeFailed, "failed to encode module "+m.Name(), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.New(errors.WriteFailed, "failed to write module file "+path, err)
	}
	s.modules = append(s.modules, m.Clone())
	s.recordBytes += int64(len(data))
	s.logger.Info("Added module", "name", m.Name(), "fingerprint", fingerprint)
	return fingerprint, nil
}

// RemoveModule is not supported: modules are shared between projects.
func (s *Store) RemoveModule(fingerprint string) error {
	return errors.Newf(errors.Unsupported, "removing module %s is not supported", fingerprint)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
