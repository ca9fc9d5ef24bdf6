// Package siblings finds projects that share their repository history.
//
// Two projects are siblings when their root signatures, the concatenation
// of their root commit hashes, are equal and non-empty: typically a fork and
// its upstream, or one repository mirrored under two IDs.
package siblings

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"fpm/internal/project"
	"fpm/internal/slogutil"
)

// Store is the part of the record store detection needs.
type Store interface {
	Projects() []*project.Project
	GetProject(id string) (*project.Project, bool)
	UpdateProject(p *project.Project) error
}

// Group is a set of projects sharing one root signature.
type Group struct {
	Signature string   `json:"signature"`
	Members   []string `json:"members"`
}

// Report describes one detection pass.
type Report struct {
	PassID  string  `json:"passId"`
	Groups  []Group `json:"groups"`
	Updated int     `json:"updated"`
}

// Option configures Detect.
type Option func(*detector)

// WithLogger sets the logger used for the pass.
func WithLogger(logger *slog.Logger) Option {
	return func(d *detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

type detector struct {
	logger *slog.Logger
}

// Detect groups the store's projects by root signature and records, on every
// member of a group of two or more, the IDs of the whole group, itself
// included. Projects without root hashes never take part.
//
// Updates go through store.UpdateProject one at a time, so a project that
// already has siblings keeps them. The first failing update stops the pass;
// updates issued before it stay.
func Detect(store Store, opts ...Option) (*Report, error) {
	d := &detector{logger: slogutil.NewDiscardLogger()}
	for _, opt := range opts {
		opt(d)
	}

	start := time.Now()
	report := &Report{PassID: uuid.NewString()}
	logger := d.logger.With("pass", report.PassID)

	report.Groups = Groups(store.Projects())
	logger.Info("Detecting siblings", "groups", len(report.Groups))

	for _, group := range report.Groups {
		members := project.NewSet(group.Members...)
		for _, id := range group.Members {
			p, ok := store.GetProject(id)
			if !ok {
				return report, fmt.Errorf("sibling detection failed on project %s: project disappeared from the store", id)
			}
			p.Siblings = members.Clone()
			if err := store.UpdateProject(p); err != nil {
				return report, fmt.Errorf("sibling detection failed on project %s: %w", id, err)
			}
			report.Updated++
		}
		logger.Debug("Recorded siblings", "signature", group.Signature, "members", len(group.Members))
	}

	logger.Info("Sibling detection done", "updated", report.Updated, "elapsed", time.Since(start))
	return report, nil
}

// Groups returns the sibling groups among projects, ordered by signature,
// each with its member IDs sorted. Signatures shared by a single project
// are left out.
func Groups(projects []*project.Project) []Group {
	bySignature := make(map[string]project.Set)
	for _, p := range projects {
		signature := p.RootSignature()
		if signature == "" {
			continue
		}
		if bySignature[signature] == nil {
			bySignature[signature] = project.NewSet()
		}
		bySignature[signature].Add(p.ID)
	}

	groups := make([]Group, 0, len(bySignature))
	for signature, members := range bySignature {
		if members.Len() < 2 {
			continue
		}
		groups = append(groups, Group{Signature: signature, Members: members.Sorted()})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Signature < groups[j].Signature
	})
	return groups
}
