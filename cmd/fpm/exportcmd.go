package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"fpm/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export, back up and restore the database",
}

var exportSQLiteCmd = &cobra.Command{
	Use:   "sqlite <out.db>",
	Short: "Write a SQLite snapshot of the database",
	Long: `Write every loaded project and module to a SQLite database for ad-hoc
queries. The previous snapshot in that file is replaced.

Examples:
  fpm export sqlite fpm.db
  sqlite3 fpm.db "SELECT id FROM projects WHERE supports_flatpak"`,
	Args: cobra.ExactArgs(1),
	RunE: runExportSQLite,
}

var exportArchiveCmd = &cobra.Command{
	Use:   "archive <out.tar.zst>",
	Short: "Back up the record files to a zstd-compressed tar archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportArchive,
}

var exportListCmd = &cobra.Command{
	Use:   "list <archive.tar.zst>",
	Short: "List the files of an archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportList,
}

var exportRestoreCmd = &cobra.Command{
	Use:   "restore <archive.tar.zst>",
	Short: "Restore an archive into the database directory",
	Long: `Extract an archive into the database directory. Existing record files
are never overwritten: restoring into a database that already holds one of
the archived files fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runExportRestore,
}

func init() {
	exportCmd.AddCommand(exportSQLiteCmd, exportArchiveCmd, exportListCmd, exportRestoreCmd)
	rootCmd.AddCommand(exportCmd)
}

func runExportSQLite(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	snapshot, err := export.NewExporter(store, logger).SQLite(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s: %d projects, %d modules written to %s\n",
		snapshot.RunID, snapshot.Projects, snapshot.Modules, args[0])
	return nil
}

func runExportArchive(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	result, err := export.NewExporter(store, logger).Archive(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("writing archive: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Archived %s (%s) to %s\n",
		plural(result.Files(), "file"), humanize.IBytes(uint64(result.Bytes)), result.Path)
	return nil
}

func runExportList(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	entries, err := export.ListArchive(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	fmt.Fprint(cmd.OutOrStdout(), formatEntries(entries))
	return nil
}

func runExportRestore(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := export.RestoreArchive(cmd.Context(), f, layout())
	if err != nil {
		return fmt.Errorf("restoring %s: %w", args[0], err)
	}
	logger.Info("Restored archive", "archive", args[0], "files", result.Files())
	fmt.Fprintf(cmd.OutOrStdout(), "Restored %s (%s) into %s\n",
		plural(result.Files(), "file"), humanize.IBytes(uint64(result.Bytes)), layout().Root)
	return nil
}
