package project

import (
	"fpm/internal/errors"
)

// Merge folds newly observed data from other into p.
//
// Set fields are unioned. Optional scalars present on other overwrite p's
// value, last writer wins, without comparing timestamps. Root hashes and
// siblings are only adopted while p has none. ID, name and main VCS URL are
// never touched.
//
// Both records must share ID and main VCS URL; otherwise Merge returns an
// IDENTITY_MISMATCH error and leaves p unchanged.
func (p *Project) Merge(other *Project) error {
	if p.ID != other.ID {
		return errors.Newf(errors.IdentityMismatch, "cannot merge projects with different ids: %s != %s", p.ID, other.ID)
	}
	if p.VCSURL != other.VCSURL {
		return errors.Newf(errors.IdentityMismatch, "cannot merge projects with different vcs urls: %s != %s", p.VCSURL, other.VCSURL)
	}

	p.WebURLs = p.WebURLs.Union(other.WebURLs)
	p.VCSURLs = p.VCSURLs.Union(other.VCSURLs)
	p.BuildSystems = p.BuildSystems.Union(other.BuildSystems)
	p.FlatpakAppManifests = p.FlatpakAppManifests.Union(other.FlatpakAppManifests)
	p.FlatpakModuleManifests = p.FlatpakModuleManifests.Union(other.FlatpakModuleManifests)
	p.FlatpakSourcesManifests = p.FlatpakSourcesManifests.Union(other.FlatpakSourcesManifests)
	p.Tags = p.Tags.Union(other.Tags)

	if len(p.RootHashes) == 0 {
		p.RootHashes = append([]string{}, other.RootHashes...)
	}
	if p.Siblings == nil && other.Siblings != nil {
		p.Siblings = other.Siblings.Clone()
	}

	if other.Description != nil {
		p.Description = cloneString(other.Description)
	}
	if other.LastKnownCommit != nil {
		p.LastKnownCommit = cloneString(other.LastKnownCommit)
	}
	if other.MainBranch != nil {
		p.MainBranch = cloneString(other.MainBranch)
	}
	// TODO keep the most recent of the two timestamps instead.
	if other.LastUpdated != nil {
		p.LastUpdated = cloneString(other.LastUpdated)
	}

	return nil
}
