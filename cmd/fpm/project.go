package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fpm/internal/codec"
	"fpm/internal/errors"
	"fpm/internal/modules"
	"fpm/internal/project"
	"fpm/internal/registry"
)

var (
	projectGetJSON    bool
	projectSearchJSON bool
	defaultModulesAdd bool
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Inspect and add projects",
}

var projectGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print a project record",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectGet,
}

var projectSearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search projects by name or repository URL",
	Long: `Search projects whose name, main repository URL or any other repository
URL contains the term. Matching is case-sensitive.`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectSearch,
}

var projectAddCmd = &cobra.Command{
	Use:   "add <file.yaml>",
	Short: "Add a project, or merge it into the existing record",
	Long: `Add the project described by a YAML file. When a project with the same ID
already exists, the new record is merged into it: collections are unioned and
optional fields take the new value when it is set.

Examples:
  fpm project add org.gnome.Podcasts.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectAdd,
}

var projectDefaultModulesCmd = &cobra.Command{
	Use:   "default-modules <id>",
	Short: "Derive build modules from a project's build systems",
	Long: `Print one module per build system of the project that Flatpak can build
directly, sourced from the project's main repository.

Examples:
  fpm project default-modules org.gnome.Podcasts
  fpm project default-modules org.gnome.Podcasts --add   # store them too`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectDefaultModules,
}

func init() {
	projectGetCmd.Flags().BoolVar(&projectGetJSON, "json", false, "Output JSON instead of YAML")
	projectSearchCmd.Flags().BoolVar(&projectSearchJSON, "json", false, "Output JSON")
	projectDefaultModulesCmd.Flags().BoolVar(&defaultModulesAdd, "add", false, "Add the derived modules to the database")

	projectCmd.AddCommand(projectGetCmd, projectSearchCmd, projectAddCmd, projectDefaultModulesCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectGet(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	p, err := lookupProject(store, args[0])
	if err != nil {
		return err
	}

	if projectGetJSON {
		return writeJSON(cmd.OutOrStdout(), p)
	}
	data, err := codec.EncodeProject(p)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runProjectSearch(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	results := store.SearchProjects(args[0])
	if projectSearchJSON {
		return writeJSON(cmd.OutOrStdout(), results)
	}
	fmt.Fprint(cmd.OutOrStdout(), formatProjects(results))
	return nil
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	p, err := codec.DecodeProject(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	existed := store.HasProject(p.ID)
	if err := store.AddProject(p); err != nil {
		return err
	}

	if existed {
		fmt.Fprintf(cmd.OutOrStdout(), "Updated project %s\n", p.ID)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Added project %s\n", p.ID)
	}
	return nil
}

func runProjectDefaultModules(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	p, err := lookupProject(store, args[0])
	if err != nil {
		return err
	}

	descriptions := p.DefaultModules()
	if len(descriptions) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No Flatpak-supported build system recorded for %s\n", p.ID)
		return nil
	}

	out := cmd.OutOrStdout()
	for _, description := range descriptions {
		m := modules.NewModule(description, p.ID)
		if defaultModulesAdd {
			fingerprint, err := store.AddModule(m)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Added module %s (%s)\n", m.Name(), fingerprint)
			continue
		}
		data, err := codec.EncodeModule(m)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "---\n%s", data)
	}
	return nil
}

func lookupProject(store *registry.Store, id string) (*project.Project, error) {
	if err := project.ValidateID(id); err != nil {
		return nil, err
	}
	p, ok := store.GetProject(id)
	if !ok {
		return nil, errors.Newf(errors.ProjectNotFound, "project %s not found", id)
	}
	return p, nil
}
