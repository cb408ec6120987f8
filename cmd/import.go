package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
	"github.com/kidoz/zabbix-cli-go/internal/export"
)

var (
	importDryRun         bool
	importCreateMissing  bool
	importUpdateExisting bool
	importDeleteMissing  bool
	importIgnoreErrors   bool
)

var importCmd = &cobra.Command{
	Use:   "import-configuration [file|directory|glob]",
	Short: "Import Zabbix configuration from files",
	Long: `Import Zabbix configuration from a file, directory or glob pattern.

Directories are walked recursively. The import format is derived from
each file's extension; only json, yaml and xml files are importable.
Defaults to the configured export directory when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := cfg.App.ExportDirectory
		if len(args) > 0 {
			target = args[0]
		}

		files, err := export.ResolveFiles(target)
		if err != nil {
			return err
		}

		importer, client, err := initImporter(cfg, log)
		if err != nil {
			return err
		}

		opts := export.ImportOptions{
			Files:          files,
			CreateMissing:  importCreateMissing,
			UpdateExisting: importUpdateExisting,
			DeleteMissing:  importDeleteMissing,
			DryRun:         importDryRun,
			IgnoreErrors:   importIgnoreErrors,
		}

		if importDryRun {
			result, err := importer.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			for _, f := range result.Imported {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Found %d files to import\n", len(result.Imported))
			return nil
		}

		if len(export.FilterImportable(files)) == 0 {
			return errs.New(errs.ErrCLI, "no files found to import matching: %s", target)
		}

		if _, err := connect(cmd.Context(), client); err != nil {
			return err
		}

		result, err := importer.Run(cmd.Context(), opts)
		if result != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Imported %d files", len(result.Imported))
			if len(result.Failed) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), ", failed to import %d files", len(result.Failed))
			}
			fmt.Fprintln(cmd.ErrOrStderr())
		}
		return err
	},
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dryrun", false, "preview files to import without importing")
	importCmd.Flags().BoolVar(&importCreateMissing, "create-missing", true, "create missing objects")
	importCmd.Flags().BoolVar(&importUpdateExisting, "update-existing", true, "update existing objects")
	importCmd.Flags().BoolVar(&importDeleteMissing, "delete-missing", false, "delete objects missing from the import")
	importCmd.Flags().BoolVar(&importIgnoreErrors, "ignore-errors", false, "log failed files and continue")
	rootCmd.AddCommand(importCmd)
}
