package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fpm/internal/codec"
)

var (
	moduleSearchJSON bool
	moduleProject    string
)

var moduleCmd = &cobra.Command{
	Use:   "module",
	Short: "Search and add build modules",
}

var moduleSearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search modules by name (case-insensitive)",
	Args:  cobra.ExactArgs(1),
	RunE:  runModuleSearch,
}

var moduleAddCmd = &cobra.Command{
	Use:   "add <file.yaml>",
	Short: "Add a module to the shared pool",
	Long: `Add the module described by a YAML file. Modules are stored by the
fingerprint of their description: adding a module that is already stored
does nothing.

Examples:
  fpm module add libhandy.yaml
  fpm module add libhandy.yaml --project org.gnome.Podcasts`,
	Args: cobra.ExactArgs(1),
	RunE: runModuleAdd,
}

func init() {
	moduleSearchCmd.Flags().BoolVar(&moduleSearchJSON, "json", false, "Output JSON")
	moduleAddCmd.Flags().StringVar(&moduleProject, "project", "", "ID of the project the module was found in")

	moduleCmd.AddCommand(moduleSearchCmd, moduleAddCmd)
	rootCmd.AddCommand(moduleCmd)
}

func runModuleSearch(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	results := store.SearchModules(args[0])
	if moduleSearchJSON {
		return writeJSON(cmd.OutOrStdout(), results)
	}
	out, err := formatModules(results)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func runModuleAdd(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	m, err := codec.DecodeModule(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	if moduleProject != "" {
		p, err := lookupProject(store, moduleProject)
		if err != nil {
			return err
		}
		m.ProjectID = &p.ID
	}

	fingerprint, err := store.AddModule(m)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Module %s stored as %s\n", m.Name(), fingerprint)
	return nil
}
