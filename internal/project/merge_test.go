package project

import (
	"reflect"
	"testing"

	"fpm/internal/errors"
)

func sampleProject() *Project {
	p := New("org.gnome.Builder", "https://gitlab.gnome.org/GNOME/gnome-builder.git", "GNOME Builder")
	p.Description = StringPtr("An IDE for GNOME")
	p.WebURLs.Add("https://apps.gnome.org/Builder")
	p.VCSURLs.Add("https://gitlab.gnome.org/GNOME/gnome-builder.git")
	p.FlatpakAppManifests.Add("org.gnome.Builder.json")
	p.Tags.Add("gnome-gitlab")
	p.BuildSystems.Add("meson")
	p.MainBranch = StringPtr("main")
	p.LastKnownCommit = StringPtr("aaa111")
	p.LastUpdated = StringPtr("2024-03-01T10:00:00Z")
	p.RootHashes = []string{"r1", "r2"}
	return p
}

func TestMerge_Idempotent(t *testing.T) {
	p := sampleProject()
	want := p.Clone()

	if err := p.Merge(p); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("merge(p, p) changed p:\ngot  %#v\nwant %#v", p, want)
	}

	// Merging an equal copy is just as neutral
	if err := p.Merge(want.Clone()); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("merge(p, copy) changed p:\ngot  %#v\nwant %#v", p, want)
	}
}

func TestMerge_UnionsSets(t *testing.T) {
	p := sampleProject()
	other := New(p.ID, p.VCSURL, "ignored")
	other.WebURLs.Add("https://builder.example.org")
	other.VCSURLs.Add("https://github.com/GNOME/gnome-builder.git")
	other.FlatpakModuleManifests.Add("build-aux/modules.json")
	other.FlatpakSourcesManifests.Add("build-aux/sources.json")
	other.Tags.Add("flathub")
	other.BuildSystems.Add("cmake")
	other.FlatpakAppManifests.Add("org.gnome.Builder.json") // duplicate

	if err := p.Merge(other); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	checks := []struct {
		name string
		got  Set
		want []string
	}{
		{"web_urls", p.WebURLs, []string{"https://apps.gnome.org/Builder", "https://builder.example.org"}},
		{"vcs_urls", p.VCSURLs, []string{"https://github.com/GNOME/gnome-builder.git", "https://gitlab.gnome.org/GNOME/gnome-builder.git"}},
		{"app manifests", p.FlatpakAppManifests, []string{"org.gnome.Builder.json"}},
		{"module manifests", p.FlatpakModuleManifests, []string{"build-aux/modules.json"}},
		{"sources manifests", p.FlatpakSourcesManifests, []string{"build-aux/sources.json"}},
		{"tags", p.Tags, []string{"flathub", "gnome-gitlab"}},
		{"build systems", p.BuildSystems, []string{"cmake", "meson"}},
	}
	for _, c := range checks {
		if got := c.got.Sorted(); !reflect.DeepEqual(got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, got, c.want)
		}
	}

	if p.Name != "GNOME Builder" {
		t.Errorf("Name changed to %q", p.Name)
	}
}

func TestMerge_AssociativeOnSets(t *testing.T) {
	first := New("a", "https://example.org/a.git", "A")
	first.Tags.Add("t1")
	first.WebURLs.Add("w1")
	first.BuildSystems.Add("meson")

	second := New("a", "https://example.org/a.git", "A")
	second.Tags.Add("t2")
	second.WebURLs.Add("w1")
	second.VCSURLs.Add("v2")

	combined := New("a", "https://example.org/a.git", "A")
	combined.Tags = first.Tags.Clone().Union(second.Tags)
	combined.WebURLs = first.WebURLs.Clone().Union(second.WebURLs)
	combined.VCSURLs = first.VCSURLs.Clone().Union(second.VCSURLs)
	combined.BuildSystems = first.BuildSystems.Clone().Union(second.BuildSystems)

	stepwise := New("a", "https://example.org/a.git", "A")
	stepwise.Tags.Add("t0")
	once := stepwise.Clone()

	if err := stepwise.Merge(first); err != nil {
		t.Fatal(err)
	}
	if err := stepwise.Merge(second); err != nil {
		t.Fatal(err)
	}
	if err := once.Merge(combined); err != nil {
		t.Fatal(err)
	}

	pairs := []struct {
		name string
		a, b Set
	}{
		{"tags", stepwise.Tags, once.Tags},
		{"web_urls", stepwise.WebURLs, once.WebURLs},
		{"vcs_urls", stepwise.VCSURLs, once.VCSURLs},
		{"build_systems", stepwise.BuildSystems, once.BuildSystems},
		{"app manifests", stepwise.FlatpakAppManifests, once.FlatpakAppManifests},
	}
	for _, pair := range pairs {
		if !pair.a.Equal(pair.b) {
			t.Errorf("%s: stepwise %v != combined %v", pair.name, pair.a.Sorted(), pair.b.Sorted())
		}
	}
}

func TestMerge_IdentityGuard(t *testing.T) {
	tests := []struct {
		name  string
		other *Project
	}{
		{"different id", New("org.other.App", "https://gitlab.gnome.org/GNOME/gnome-builder.git", "Other")},
		{"different vcs url", New("org.gnome.Builder", "https://github.com/fork/gnome-builder.git", "Fork")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := sampleProject()
			before := p.Clone()
			tt.other.Tags.Add("new-tag")
			tt.other.Description = StringPtr("changed")
			otherBefore := tt.other.Clone()

			err := p.Merge(tt.other)
			if !errors.HasCode(err, errors.IdentityMismatch) {
				t.Fatalf("Merge() error = %v, want IDENTITY_MISMATCH", err)
			}
			if !reflect.DeepEqual(p, before) {
				t.Error("Merge() mutated the receiver on identity mismatch")
			}
			if !reflect.DeepEqual(tt.other, otherBefore) {
				t.Error("Merge() mutated the argument on identity mismatch")
			}
		})
	}
}

func TestMerge_ScalarsLastWriterWins(t *testing.T) {
	p := sampleProject()
	other := New(p.ID, p.VCSURL, p.Name)
	other.Description = StringPtr("new description")
	other.MainBranch = StringPtr("develop")
	other.LastKnownCommit = StringPtr("bbb222")
	// Older than the current value: still wins
	other.LastUpdated = StringPtr("2020-01-01T00:00:00Z")

	if err := p.Merge(other); err != nil {
		t.Fatal(err)
	}

	if *p.Description != "new description" {
		t.Errorf("Description = %q", *p.Description)
	}
	if *p.MainBranch != "develop" {
		t.Errorf("MainBranch = %q", *p.MainBranch)
	}
	if *p.LastKnownCommit != "bbb222" {
		t.Errorf("LastKnownCommit = %q", *p.LastKnownCommit)
	}
	if *p.LastUpdated != "2020-01-01T00:00:00Z" {
		t.Errorf("LastUpdated = %q", *p.LastUpdated)
	}

	// Absent scalars leave the current values alone
	if err := p.Merge(New(p.ID, p.VCSURL, p.Name)); err != nil {
		t.Fatal(err)
	}
	if p.Description == nil || *p.Description != "new description" {
		t.Error("absent description cleared the current one")
	}
}

func TestMerge_RootHashesSetOnce(t *testing.T) {
	p := New("a", "u", "A")
	other := New("a", "u", "A")
	other.RootHashes = []string{"h1", "h2"}

	if err := p.Merge(other); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p.RootHashes, []string{"h1", "h2"}) {
		t.Fatalf("RootHashes = %v, want adopted", p.RootHashes)
	}

	// Adopted hashes are a copy
	other.RootHashes[0] = "mutated"
	if p.RootHashes[0] != "h1" {
		t.Error("RootHashes shares storage with the merged record")
	}

	replacement := New("a", "u", "A")
	replacement.RootHashes = []string{"h3"}
	if err := p.Merge(replacement); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p.RootHashes, []string{"h1", "h2"}) {
		t.Errorf("RootHashes = %v, existing hashes must never be replaced", p.RootHashes)
	}
}

func TestMerge_SiblingsSetOnce(t *testing.T) {
	p := New("a", "u", "A")
	other := New("a", "u", "A")
	other.Siblings = NewSet("a", "b")

	if err := p.Merge(other); err != nil {
		t.Fatal(err)
	}
	if !p.Siblings.Equal(NewSet("a", "b")) {
		t.Fatalf("Siblings = %v, want [a b]", p.Siblings.Sorted())
	}

	again := New("a", "u", "A")
	again.Siblings = NewSet("a", "c")
	if err := p.Merge(again); err != nil {
		t.Fatal(err)
	}
	if !p.Siblings.Equal(NewSet("a", "b")) {
		t.Errorf("Siblings = %v, existing siblings must not be replaced", p.Siblings.Sorted())
	}

	// Unset siblings on the incoming record keep the receiver unset
	fresh := New("z", "u", "Z")
	if err := fresh.Merge(New("z", "u", "Z")); err != nil {
		t.Fatal(err)
	}
	if fresh.Siblings != nil {
		t.Error("Siblings should stay unset")
	}
}

func TestMerge_NilCollectionsOnReceiver(t *testing.T) {
	p := &Project{ID: "a", VCSURL: "u"}
	other := New("a", "u", "A")
	other.Tags.Add("t")

	if err := p.Merge(other); err != nil {
		t.Fatal(err)
	}
	if !p.Tags.Has("t") {
		t.Error("Merge() into nil sets should allocate them")
	}
}
