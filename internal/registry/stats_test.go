package registry

import (
	"reflect"
	"testing"

	"fpm/internal/modules"
	"fpm/internal/project"
	"fpm/internal/testutil"
)

func TestStats(t *testing.T) {
	db := testutil.NewDatabase(t)

	unmined := testutil.SampleProject("org.example.Unmined")
	unmined.BuildSystems.Add("meson")
	db.WriteProject(unmined)

	inaccessible := testutil.SampleProject("org.example.Gone")
	inaccessible.LastUpdated = project.StringPtr("2024-01-01T00:00:00Z")
	db.WriteProject(inaccessible)

	first := testutil.SampleProject("org.example.First", "h1", "h2")
	first.Siblings = project.NewSet("org.example.First", "org.example.Second")
	first.BuildSystems.Add("meson")
	first.BuildSystems.Add("cmake")
	first.FlatpakAppManifests.Add("org.example.First.json")
	db.WriteProject(first)

	second := testutil.SampleProject("org.example.Second", "h1", "h2")
	second.Siblings = project.NewSet("org.example.First", "org.example.Second")
	db.WriteProject(second)

	// Empty sibling set: counted as having none
	loner := testutil.SampleProject("org.example.Loner", "h3")
	loner.Siblings = project.NewSet()
	db.WriteProject(loner)

	db.WriteModule(testutil.SampleModule("plain"))
	updatable := testutil.SampleModule("checked")
	updatable.FlatpakModule.Modules = []modules.Description{{
		Name: "nested",
		Sources: []modules.Source{{
			Type:         modules.SourceArchive,
			URL:          "https://example.org/nested.tar.gz",
			XCheckerData: map[string]interface{}{"type": "anitya"},
		}},
	}}
	db.WriteModule(updatable)

	s := openStore(t, db)
	stats := s.Stats()

	want := Stats{
		Modules:          2,
		UpdatableModules: 1,
		Projects:         5,
		Unmined:          1,
		Inaccessible:     1,
		WithBuildSystem:  2,
		BuildSystems:     map[string]int{"meson": 2, "cmake": 1},
		SupportsFlatpak:  1,
		RootSignatures:   2,
		WithSiblings:     2,
		RecordBytes:      stats.RecordBytes,
	}
	if !reflect.DeepEqual(stats, want) {
		t.Errorf("Stats() =\n%+v\nwant\n%+v", stats, want)
	}
	if stats.RecordBytes <= 0 {
		t.Error("RecordBytes should count the loaded files")
	}
	if got := stats.Percent(stats.Unmined); got != 20 {
		t.Errorf("Percent(unmined) = %v, want 20", got)
	}
}

func TestStats_Empty(t *testing.T) {
	s := openStore(t, testutil.NewDatabase(t))
	stats := s.Stats()

	if stats.Projects != 0 || stats.Modules != 0 || len(stats.BuildSystems) != 0 {
		t.Errorf("Stats() = %+v, want zeros", stats)
	}
	if stats.Percent(0) != 0 {
		t.Error("Percent() on an empty database should be 0")
	}
}
