package modules

import (
	"reflect"
	"testing"
)

func sampleDescription() Description {
	return Description{
		Name:        "libfoo",
		BuildSystem: BuildSystemMeson,
		ConfigOpts:  []string{"-Ddocs=false"},
		Sources: []Source{
			{
				Type:   SourceArchive,
				URL:    "https://example.org/libfoo-1.0.tar.xz",
				SHA256: "0123456789abcdef",
				XCheckerData: map[string]interface{}{
					"type":       "anitya",
					"project-id": 1234,
					"versions":   map[string]interface{}{"<": "2.0"},
				},
			},
		},
	}
}

func TestNewModule(t *testing.T) {
	m := NewModule(sampleDescription(), "org.example.Foo")
	if m.ProjectID == nil || *m.ProjectID != "org.example.Foo" {
		t.Errorf("ProjectID = %v, want org.example.Foo", m.ProjectID)
	}
	if m.Name() != "libfoo" {
		t.Errorf("Name() = %q, want libfoo", m.Name())
	}

	anonymous := NewModule(sampleDescription(), "")
	if anonymous.ProjectID != nil {
		t.Errorf("ProjectID should be unset, got %q", *anonymous.ProjectID)
	}
}

func TestModule_UsesExternalDataChecker(t *testing.T) {
	tests := []struct {
		name        string
		description Description
		expected    bool
	}{
		{"checker on source", sampleDescription(), true},
		{"no sources", Description{Name: "empty"}, false},
		{
			"checker on nested module",
			Description{
				Name:    "outer",
				Modules: []Description{sampleDescription()},
			},
			true,
		},
		{
			"plain git source",
			Description{
				Name:    "plain",
				Sources: []Source{{Type: SourceGit, URL: "https://example.org/plain.git"}},
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Module{FlatpakModule: tt.description}
			if got := m.UsesExternalDataChecker(); got != tt.expected {
				t.Errorf("UsesExternalDataChecker() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestModule_Clone(t *testing.T) {
	original := NewModule(sampleDescription(), "org.example.Foo")
	original.FlatpakModule.Modules = []Description{{Name: "nested", Cleanup: []string{"/include"}}}

	clone := original.Clone()
	if !reflect.DeepEqual(original, clone) {
		t.Fatalf("Clone() differs from original:\n%#v\n%#v", original, clone)
	}

	*clone.ProjectID = "changed"
	clone.FlatpakModule.ConfigOpts[0] = "changed"
	clone.FlatpakModule.Sources[0].XCheckerData["type"] = "changed"
	clone.FlatpakModule.Sources[0].XCheckerData["versions"].(map[string]interface{})["<"] = "9"
	clone.FlatpakModule.Modules[0].Cleanup[0] = "changed"

	if *original.ProjectID != "org.example.Foo" {
		t.Error("clone shares ProjectID")
	}
	if original.FlatpakModule.ConfigOpts[0] != "-Ddocs=false" {
		t.Error("clone shares ConfigOpts")
	}
	if original.FlatpakModule.Sources[0].XCheckerData["type"] != "anitya" {
		t.Error("clone shares x-checker-data")
	}
	if original.FlatpakModule.Sources[0].XCheckerData["versions"].(map[string]interface{})["<"] != "2.0" {
		t.Error("clone shares nested x-checker-data")
	}
	if original.FlatpakModule.Modules[0].Cleanup[0] != "/include" {
		t.Error("clone shares nested modules")
	}
}

func TestModule_CloneNil(t *testing.T) {
	var m *Module
	if m.Clone() != nil {
		t.Error("Clone() of nil should be nil")
	}
}

func TestParseBuildSystem(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"meson", "meson", true},
		{"CMake", "cmake", true},
		{" cmake-ninja ", "cmake-ninja", true},
		{"autotools", "autotools", true},
		{"qmake", "qmake", true},
		{"simple", "simple", true},
		{"cargo", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseBuildSystem(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseBuildSystem(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}
