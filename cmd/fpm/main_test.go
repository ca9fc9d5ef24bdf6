package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fpm/internal/codec"
	"fpm/internal/config"
	"fpm/internal/errors"
	"fpm/internal/modules"
	"fpm/internal/paths"
	"fpm/internal/registry"
	"fpm/internal/testutil"
)

// run executes the root command with a fresh flag state and returns stdout
func run(t *testing.T, dbDir string, args ...string) (string, error) {
	t.Helper()

	configPath, verbosity, quiet = "", 0, false
	projectGetJSON, projectSearchJSON, defaultModulesAdd = false, false, false
	moduleSearchJSON, moduleProject = false, ""
	statsJSON, siblingsJSON = false, false
	configFormat = "toml"

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--db-dir", dbDir}, args...))
	defer closeLog()

	err := rootCmd.Execute()
	return stdout.String(), err
}

func isolateEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for _, key := range []string{config.EnvDBDir, config.EnvLogLevel, config.EnvLogFormat} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeRecord(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCLI_ProjectLifecycle(t *testing.T) {
	isolateEnv(t)
	dbDir := filepath.Join(t.TempDir(), "db")

	p := testutil.SampleProject("org.example.App", "r1")
	p.BuildSystems.Add("meson")
	data, err := codec.EncodeProject(p)
	if err != nil {
		t.Fatal(err)
	}
	file := writeRecord(t, "app.yaml", data)

	out, err := run(t, dbDir, "project", "add", file)
	if err != nil {
		t.Fatalf("project add: %v", err)
	}
	if out != "Added project org.example.App\n" {
		t.Errorf("project add = %q", out)
	}

	out, err = run(t, dbDir, "project", "add", file)
	if err != nil || out != "Updated project org.example.App\n" {
		t.Errorf("second project add = %q, %v", out, err)
	}

	out, err = run(t, dbDir, "project", "get", "org.example.App")
	if err != nil {
		t.Fatal(err)
	}
	if out != string(data) {
		t.Errorf("project get =\n%s\nwant\n%s", out, data)
	}

	out, err = run(t, dbDir, "project", "get", "--json", "org.example.App")
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil || decoded["id"] != "org.example.App" {
		t.Errorf("project get --json = %s (%v)", out, err)
	}

	out, err = run(t, dbDir, "project", "search", "example.org/org.example")
	if err != nil || !strings.Contains(out, "org.example.App") {
		t.Errorf("project search = %q, %v", out, err)
	}

	if _, err := run(t, dbDir, "project", "get", "org.example.Missing"); !errors.HasCode(err, errors.ProjectNotFound) {
		t.Errorf("project get of an unknown ID = %v, want PROJECT_NOT_FOUND", err)
	}
	if _, err := run(t, dbDir, "project", "get", "../escape"); !errors.HasCode(err, errors.InvalidID) {
		t.Errorf("project get ../escape = %v, want INVALID_ID", err)
	}

	out, err = run(t, dbDir, "project", "default-modules", "--add", "org.example.App")
	if err != nil || !strings.HasPrefix(out, "Added module org.example.App") {
		t.Errorf("default-modules --add = %q, %v", out, err)
	}

	store, err := registry.Open(paths.NewLayout(dbDir))
	if err != nil {
		t.Fatal(err)
	}
	mods := store.Modules()
	if len(mods) != 1 || mods[0].FlatpakModule.BuildSystem != modules.BuildSystemMeson {
		t.Errorf("stored modules = %+v", mods)
	}
}

func TestCLI_ModuleAdd(t *testing.T) {
	isolateEnv(t)
	dbDir := filepath.Join(t.TempDir(), "db")

	data, err := codec.EncodeModule(testutil.SampleModule("zlib"))
	if err != nil {
		t.Fatal(err)
	}
	file := writeRecord(t, "zlib.yaml", data)

	if _, err := run(t, dbDir, "module", "add", "--project", "org.example.Nope", file); !errors.HasCode(err, errors.ProjectNotFound) {
		t.Errorf("module add with an unknown project = %v", err)
	}

	out, err := run(t, dbDir, "module", "add", file)
	if err != nil || !strings.HasPrefix(out, "Module zlib stored as ") {
		t.Fatalf("module add = %q, %v", out, err)
	}
	out, err = run(t, dbDir, "module", "search", "ZLIB")
	if err != nil || !strings.Contains(out, "1 module\n") {
		t.Errorf("module search = %q, %v", out, err)
	}
}

func TestCLI_StatsAndSiblings(t *testing.T) {
	isolateEnv(t)
	db := testutil.NewDatabase(t)
	db.WriteProject(testutil.SampleProject("a", "h1"))
	db.WriteProject(testutil.SampleProject("b", "h1"))
	db.WriteProject(testutil.SampleProject("c"))

	out, err := run(t, db.Layout.Root, "siblings", "detect", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var report struct {
		Groups  []struct{ Members []string } `json:"groups"`
		Updated int                          `json:"updated"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("siblings detect --json = %s: %v", out, err)
	}
	if report.Updated != 2 || len(report.Groups) != 1 {
		t.Errorf("report = %+v", report)
	}

	out, err = run(t, db.Layout.Root, "stats", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var stats registry.Stats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Projects != 3 || stats.WithSiblings != 2 || stats.Unmined != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCLI_ExportArchive(t *testing.T) {
	isolateEnv(t)
	db := testutil.NewDatabase(t)
	db.WriteProject(testutil.SampleProject("a", "h1"))
	archive := filepath.Join(t.TempDir(), "backup.tar.zst")

	out, err := run(t, db.Layout.Root, "export", "archive", archive)
	if err != nil || !strings.HasPrefix(out, "Archived 1 file") {
		t.Fatalf("export archive = %q, %v", out, err)
	}

	out, err = run(t, db.Layout.Root, "export", "list", archive)
	if err != nil || !strings.Contains(out, "projects/a.yaml") {
		t.Errorf("export list = %q, %v", out, err)
	}

	restored := filepath.Join(t.TempDir(), "restored")
	if _, err := run(t, restored, "export", "restore", archive); err != nil {
		t.Fatalf("export restore: %v", err)
	}
	if _, err := os.Stat(filepath.Join(restored, "projects", "a.yaml")); err != nil {
		t.Errorf("restored record missing: %v", err)
	}
}

func TestCLI_ConfigShow(t *testing.T) {
	isolateEnv(t)
	dbDir := filepath.Join(t.TempDir(), "db")

	out, err := run(t, dbDir, "config", "show", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var cfg config.Config
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.DBDir != dbDir {
		t.Errorf("dbDir = %q, want the --db-dir value %q", cfg.DBDir, dbDir)
	}

	if _, err := run(t, dbDir, "config", "show", "--format", "xml"); err == nil {
		t.Error("config show --format xml should fail")
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, errors.Newf(errors.DuplicateProject, "duplicate project a"))
	got := buf.String()
	if !strings.HasPrefix(got, "Error: ") || !strings.Contains(got, "Hint: ") {
		t.Errorf("printError() = %q", got)
	}

	buf.Reset()
	printError(&buf, os.ErrNotExist)
	if strings.Contains(buf.String(), "Hint") {
		t.Errorf("untyped errors have no hint: %q", buf.String())
	}
}
