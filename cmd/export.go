package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kidoz/zabbix-cli-go/internal/export"
	"github.com/kidoz/zabbix-cli-go/internal/zabbix"
)

var (
	exportDirectory       string
	exportTypes           []string
	exportNames           []string
	exportFormat          string
	exportLegacyFilenames bool
	exportPretty          bool
	exportIgnoreErrors    bool
	exportConcurrency     int
)

var exportCmd = &cobra.Command{
	Use:   "export-configuration",
	Short: "Export Zabbix configuration objects to files",
	Long: `Export Zabbix configuration for one or more object types.

Files are written as DIRECTORY/TYPE/NAME_ID.FORMAT. Name filters are
glob patterns; no filter exports every object of the selected types.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		types, err := export.ParseTypes(exportTypes)
		if err != nil {
			return err
		}

		directory := exportDirectory
		if directory == "" {
			directory = cfg.App.ExportDirectory
		}
		formatName := exportFormat
		if formatName == "" {
			formatName = cfg.App.ExportFormat
		}
		format, err := zabbix.ParseExportFormat(formatName)
		if err != nil {
			return err
		}

		exporter, client, err := initExporter(cfg, log)
		if err != nil {
			return err
		}
		if _, err := connect(cmd.Context(), client); err != nil {
			return err
		}

		paths, err := exporter.Run(cmd.Context(), export.Options{
			Types:           types,
			Names:           exportNames,
			Directory:       directory,
			Format:          format,
			LegacyFilenames: exportLegacyFilenames,
			Timestamps:      cfg.App.ExportTimestamps,
			Pretty:          exportPretty,
			IgnoreErrors:    exportIgnoreErrors,
			Concurrency:     exportConcurrency,
		})
		if err != nil {
			return err
		}

		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d files to %s\n", len(paths), directory)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDirectory, "directory", "", "directory to export to (default from config)")
	exportCmd.Flags().StringArrayVar(&exportTypes, "type", nil, "object type(s) to export; repeatable, default all")
	exportCmd.Flags().StringArrayVar(&exportNames, "name", nil, "object name filter(s); glob patterns, repeatable")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "export format: json, yaml, xml or php (default from config)")
	exportCmd.Flags().BoolVar(&exportLegacyFilenames, "legacy-filenames", false, "use the legacy filename scheme")
	exportCmd.Flags().BoolVar(&exportPretty, "pretty", false, "pretty-print output (not supported for XML)")
	exportCmd.Flags().BoolVar(&exportIgnoreErrors, "ignore-errors", false, "log failed objects and continue")
	exportCmd.Flags().IntVar(&exportConcurrency, "concurrency", 1, "parallel export requests (max 8)")
	rootCmd.AddCommand(exportCmd)
}
