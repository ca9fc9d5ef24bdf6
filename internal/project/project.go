// Package project defines the project record and its merge rules.
package project

import (
	"strings"

	"fpm/internal/errors"
)

// Project is one tracked software codebase.
type Project struct {
	// ID uses reverse DNS notation, derived either from a manifest found in
	// the project or from the URL of its main repository. It names the
	// project's file and never changes.
	ID string `yaml:"id" json:"id"`

	// VCSURL is the main repository URL, the one the ID was derived from
	VCSURL string `yaml:"vcs_url" json:"vcs_url"`

	Name        string  `yaml:"name" json:"name"`
	Description *string `yaml:"description,omitempty" json:"description,omitempty"`

	WebURLs Set `yaml:"web_urls" json:"web_urls"`
	VCSURLs Set `yaml:"vcs_urls" json:"vcs_urls"`

	// Siblings holds the IDs of every project sharing this project's root
	// signature, this project included. Only sibling detection sets it.
	Siblings Set `yaml:"siblings,omitempty" json:"siblings,omitempty"`

	// Paths of Flatpak manifests found in the project's repository
	FlatpakAppManifests     Set `yaml:"flatpak_app_manifests" json:"flatpak_app_manifests"`
	FlatpakModuleManifests  Set `yaml:"flatpak_module_manifests" json:"flatpak_module_manifests"`
	FlatpakSourcesManifests Set `yaml:"flatpak_sources_manifests" json:"flatpak_sources_manifests"`

	// Tags record where the project was discovered, among other things
	Tags Set `yaml:"tags" json:"tags"`

	BuildSystems Set `yaml:"build_systems" json:"build_systems"`

	MainBranch *string `yaml:"main_branch,omitempty" json:"main_branch,omitempty"`

	// LastKnownCommit is the head of the main branch at the last update
	LastKnownCommit *string `yaml:"last_known_commit,omitempty" json:"last_known_commit,omitempty"`

	// LastUpdated is when the main branch was last updated in the local
	// checkout, as an ISO 8601 date or date-time
	LastUpdated *string `yaml:"last_updated,omitempty" json:"last_updated,omitempty"`

	// RootHashes are the root commits of the repository. A slice rather than
	// a set: two ancestries may share a hash.
	RootHashes []string `yaml:"root_hashes" json:"root_hashes"`
}

// New returns a project with every collection initialized.
func New(id, vcsURL, name string) *Project {
	p := &Project{ID: id, VCSURL: vcsURL, Name: name}
	p.Normalize()
	return p
}

// Normalize allocates the non-optional collections that are nil, so that a
// decoded project and a constructed one compare equal. Siblings stays as is.
func (p *Project) Normalize() {
	p.WebURLs = p.WebURLs.Union(nil)
	p.VCSURLs = p.VCSURLs.Union(nil)
	p.FlatpakAppManifests = p.FlatpakAppManifests.Union(nil)
	p.FlatpakModuleManifests = p.FlatpakModuleManifests.Union(nil)
	p.FlatpakSourcesManifests = p.FlatpakSourcesManifests.Union(nil)
	p.Tags = p.Tags.Union(nil)
	p.BuildSystems = p.BuildSystems.Union(nil)
	if p.RootHashes == nil {
		p.RootHashes = []string{}
	}
}

// ValidateID checks that id is non-empty and usable as a file name.
func ValidateID(id string) error {
	if id == "" {
		return errors.New(errors.EmptyID, "project has no id", nil)
	}
	if id == "." || id == ".." || strings.ContainsAny(id, "/\\\x00") {
		return errors.Newf(errors.InvalidID, "project id %q cannot be used as a file name", id)
	}
	return nil
}

// Validate checks the invariants a stored project must satisfy.
func (p *Project) Validate() error {
	if err := ValidateID(p.ID); err != nil {
		return err
	}
	if p.LastUpdated != nil {
		if _, err := ParseTimestamp(*p.LastUpdated); err != nil {
			return errors.New(errors.InvalidTimestamp, "last_updated of project "+p.ID+" is not an ISO 8601 timestamp", err)
		}
	}
	return nil
}

// MainVCSURL returns the URL the project ID was derived from
func (p *Project) MainVCSURL() string {
	return p.VCSURL
}

// RootSignature concatenates the root hashes in order. Projects without root
// hashes have an empty signature.
func (p *Project) RootSignature() string {
	return strings.Join(p.RootHashes, "")
}

// SupportsFlatpak reports whether any Flatpak manifest is known for the project
func (p *Project) SupportsFlatpak() bool {
	return p.FlatpakAppManifests.Len() != 0 ||
		p.FlatpakModuleManifests.Len() != 0 ||
		p.FlatpakSourcesManifests.Len() != 0
}

// HasSiblings reports whether sibling detection found other projects with
// the same root signature
func (p *Project) HasSiblings() bool {
	return p.Siblings.Len() != 0
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	return &Project{
		ID:                      p.ID,
		VCSURL:                  p.VCSURL,
		Name:                    p.Name,
		Description:             cloneString(p.Description),
		WebURLs:                 p.WebURLs.Clone(),
		VCSURLs:                 p.VCSURLs.Clone(),
		Siblings:                p.Siblings.Clone(),
		FlatpakAppManifests:     p.FlatpakAppManifests.Clone(),
		FlatpakModuleManifests:  p.FlatpakModuleManifests.Clone(),
		FlatpakSourcesManifests: p.FlatpakSourcesManifests.Clone(),
		Tags:                    p.Tags.Clone(),
		BuildSystems:            p.BuildSystems.Clone(),
		MainBranch:              cloneString(p.MainBranch),
		LastKnownCommit:         cloneString(p.LastKnownCommit),
		LastUpdated:             cloneString(p.LastUpdated),
		RootHashes:              cloneStrings(p.RootHashes),
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string{}, values...)
}

// StringPtr returns a pointer to s, for filling optional fields
func StringPtr(s string) *string {
	return &s
}
