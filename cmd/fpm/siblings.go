package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fpm/internal/siblings"
)

var siblingsJSON bool

var siblingsCmd = &cobra.Command{
	Use:   "siblings",
	Short: "Work with sibling projects",
}

var siblingsDetectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Group projects that share their root commits",
	Long: `Group projects by root signature, the concatenation of their root commit
hashes, and record every group on its members. Projects that already have
siblings recorded keep them.`,
	Args: cobra.NoArgs,
	RunE: runSiblingsDetect,
}

func init() {
	siblingsDetectCmd.Flags().BoolVar(&siblingsJSON, "json", false, "Output JSON")

	siblingsCmd.AddCommand(siblingsDetectCmd)
	rootCmd.AddCommand(siblingsCmd)
}

func runSiblingsDetect(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	report, err := siblings.Detect(store, siblings.WithLogger(logger))
	if err != nil {
		return err
	}

	if siblingsJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	fmt.Fprint(cmd.OutOrStdout(), formatSiblings(report))
	return nil
}
