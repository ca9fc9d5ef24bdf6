package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"fpm/internal/export"
	"fpm/internal/modules"
	"fpm/internal/project"
	"fpm/internal/registry"
	"fpm/internal/siblings"
)

// writeJSON writes v as indented JSON followed by a newline
func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func formatStats(stats registry.Stats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Modules: %s\n", humanize.Comma(int64(stats.Modules)))
	fmt.Fprintf(&b, "Modules supporting updates: %s\n", humanize.Comma(int64(stats.UpdatableModules)))
	fmt.Fprintf(&b, "Projects: %s\n", humanize.Comma(int64(stats.Projects)))
	fmt.Fprintf(&b, "Record data: %s\n", humanize.IBytes(uint64(stats.RecordBytes)))
	b.WriteString("\n")

	ratio := func(label string, n int) {
		fmt.Fprintf(&b, "%-26s %6.2f%% (%d/%d)\n", label+":", stats.Percent(n), n, stats.Projects)
	}
	ratio("Unmined", stats.Unmined)
	ratio("Inaccessible", stats.Inaccessible)
	ratio("With a build system", stats.WithBuildSystem)
	ratio("Supporting Flatpak", stats.SupportsFlatpak)
	ratio("With siblings", stats.WithSiblings)

	if len(stats.BuildSystems) > 0 {
		b.WriteString("\nBuild systems:\n")
		names := make([]string, 0, len(stats.BuildSystems))
		for name := range stats.BuildSystems {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			n := stats.BuildSystems[name]
			fmt.Fprintf(&b, "  %-24s %6.2f%% (%d)\n", name, stats.Percent(n), n)
		}
	}

	fmt.Fprintf(&b, "\nUnique root signatures: %d\n", stats.RootSignatures)
	return b.String()
}

func formatProjects(projects []*project.Project) string {
	if len(projects) == 0 {
		return "No projects found.\n"
	}

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tREPOSITORY")
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.VCSURL)
	}
	_ = tw.Flush()
	fmt.Fprintf(&b, "\n%s\n", plural(len(projects), "project"))
	return b.String()
}

func formatModules(mods []*modules.Module) (string, error) {
	if len(mods) == 0 {
		return "No modules found.\n", nil
	}

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tBUILD SYSTEM\tPROJECT\tFINGERPRINT")
	for _, m := range mods {
		fingerprint, err := m.Fingerprint()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			m.Name(), orDash(m.FlatpakModule.BuildSystem), orDash(deref(m.ProjectID)), shortHash(fingerprint))
	}
	_ = tw.Flush()
	fmt.Fprintf(&b, "\n%s\n", plural(len(mods), "module"))
	return b.String(), nil
}

func formatSiblings(report *siblings.Report) string {
	var b strings.Builder
	if len(report.Groups) == 0 {
		b.WriteString("No sibling projects found.\n")
	}
	for _, group := range report.Groups {
		fmt.Fprintf(&b, "%s\n", shortHash(group.Signature))
		for _, member := range group.Members {
			fmt.Fprintf(&b, "  %s\n", member)
		}
	}
	fmt.Fprintf(&b, "\n%s, %s updated\n", plural(len(report.Groups), "group"), plural(report.Updated, "project"))
	return b.String()
}

func formatEntries(entries []export.Entry) string {
	var b strings.Builder
	var total int64
	for _, entry := range entries {
		fmt.Fprintf(&b, "%10s  %s\n", humanize.IBytes(uint64(entry.Size)), entry.Path)
		total += entry.Size
	}
	fmt.Fprintf(&b, "\n%s, %s\n", plural(len(entries), "file"), humanize.IBytes(uint64(total)))
	return b.String()
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// shortHash truncates long hashes and signatures for display
func shortHash(s string) string {
	if len(s) > 16 {
		return s[:16]
	}
	return s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
