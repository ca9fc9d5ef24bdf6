package main

import (
	"bytes"
	"strings"
	"testing"

	"fpm/internal/export"
	"fpm/internal/modules"
	"fpm/internal/project"
	"fpm/internal/registry"
	"fpm/internal/siblings"
)

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, map[string]int{"projects": 3}); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "{\n  \"projects\": 3\n}\n"; got != want {
		t.Errorf("writeJSON() = %q, want %q", got, want)
	}
}

func TestFormatStats(t *testing.T) {
	stats := registry.Stats{
		Modules:          1200,
		UpdatableModules: 3,
		Projects:         4,
		Unmined:          1,
		Inaccessible:     1,
		WithBuildSystem:  2,
		BuildSystems:     map[string]int{"meson": 2, "cmake": 1},
		SupportsFlatpak:  2,
		RootSignatures:   2,
		WithSiblings:     2,
		RecordBytes:      2048,
	}

	got := formatStats(stats)
	for _, want := range []string{
		"Modules: 1,200\n",
		"Projects: 4\n",
		"Record data: 2.0 KiB\n",
		"Unmined:                    25.00% (1/4)\n",
		"With siblings:              50.00% (2/4)\n",
		"  cmake                     25.00% (1)\n",
		"Unique root signatures: 2\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("formatStats() missing %q in:\n%s", want, got)
		}
	}
	if strings.Index(got, "cmake") > strings.Index(got, "meson") {
		t.Error("build systems should be sorted")
	}
}

func TestFormatStats_Empty(t *testing.T) {
	got := formatStats(registry.Stats{BuildSystems: map[string]int{}})
	if strings.Contains(got, "NaN") {
		t.Errorf("formatStats() on an empty database:\n%s", got)
	}
	if strings.Contains(got, "Build systems:") {
		t.Error("no build system section expected")
	}
}

func TestFormatProjects(t *testing.T) {
	if got := formatProjects(nil); got != "No projects found.\n" {
		t.Errorf("formatProjects(nil) = %q", got)
	}

	got := formatProjects([]*project.Project{
		project.New("org.example.App", "https://example.org/app.git", "App"),
	})
	lines := strings.Split(got, "\n")
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[1], "https://example.org/app.git") {
		t.Errorf("formatProjects() =\n%s", got)
	}
	if !strings.HasSuffix(got, "1 project\n") {
		t.Errorf("formatProjects() should end with the count:\n%s", got)
	}
}

func TestFormatModules(t *testing.T) {
	withProject := modules.NewModule(modules.Description{Name: "zlib", BuildSystem: "cmake"}, "org.example.App")
	bare := modules.NewModule(modules.Description{Name: "data"}, "")

	got, err := formatModules([]*modules.Module{withProject, bare})
	if err != nil {
		t.Fatal(err)
	}
	fingerprint, _ := withProject.Fingerprint()
	if !strings.Contains(got, fingerprint[:16]) || strings.Contains(got, fingerprint) {
		t.Errorf("fingerprints should be shortened:\n%s", got)
	}
	if !strings.Contains(got, "org.example.App") {
		t.Errorf("missing project:\n%s", got)
	}
	if !strings.HasSuffix(got, "2 modules\n") {
		t.Errorf("formatModules() should end with the count:\n%s", got)
	}
}

func TestFormatSiblings(t *testing.T) {
	report := &siblings.Report{
		Groups: []siblings.Group{{
			Signature: "0123456789abcdef0123456789abcdef",
			Members:   []string{"a", "b"},
		}},
		Updated: 2,
	}
	want := "0123456789abcdef\n  a\n  b\n\n1 group, 2 projects updated\n"
	if got := formatSiblings(report); got != want {
		t.Errorf("formatSiblings() = %q, want %q", got, want)
	}

	if got := formatSiblings(&siblings.Report{}); !strings.HasPrefix(got, "No sibling projects found.") {
		t.Errorf("formatSiblings(empty) = %q", got)
	}
}

func TestFormatEntries(t *testing.T) {
	got := formatEntries([]export.Entry{
		{Path: "projects/a.yaml", Size: 100},
		{Path: "modules/b.yaml", Size: 1024},
	})
	if !strings.Contains(got, "   100 B  projects/a.yaml\n") {
		t.Errorf("formatEntries() =\n%s", got)
	}
	if !strings.HasSuffix(got, "2 files, 1.1 KiB\n") {
		t.Errorf("formatEntries() total:\n%s", got)
	}
}

func TestShortHash(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"abc", "abc"},
		{"0123456789abcdef", "0123456789abcdef"},
		{"0123456789abcdefXYZ", "0123456789abcdef"},
	}
	for _, tt := range tests {
		if got := shortHash(tt.in); got != tt.want {
			t.Errorf("shortHash(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
