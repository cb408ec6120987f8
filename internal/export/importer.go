package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kidoz/zabbix-cli-go/internal/config"
	"github.com/kidoz/zabbix-cli-go/internal/errs"
	"github.com/kidoz/zabbix-cli-go/internal/zabbix"
)

// ImportOptions control one import run.
type ImportOptions struct {
	// Files are the candidate paths; non-importable entries are
	// filtered out before anything runs.
	Files []string

	CreateMissing  bool
	UpdateExisting bool
	DeleteMissing  bool

	// DryRun lists the files that would be imported without making any
	// server calls.
	DryRun bool
	// IgnoreErrors logs per-file failures and continues.
	IgnoreErrors bool
}

// ImportResult accounts for one import run.
type ImportResult struct {
	Imported []string
	Failed   []string
	// DryRun is set when no server calls were made.
	DryRun bool
}

// Importer feeds serialized configuration files to the server.
type Importer struct {
	client *zabbix.Client
	cfg    *config.Config
	log    *zap.Logger
}

// NewImporter creates an importer.
func NewImporter(client *zabbix.Client, cfg *config.Config, log *zap.Logger) *Importer {
	return &Importer{client: client, cfg: cfg, log: log}
}

// ResolveFiles expands an import argument into candidate files: an
// existing directory is walked recursively, an existing file is taken
// as-is, anything else is treated as a glob pattern.
func ResolveFiles(arg string) ([]string, error) {
	info, err := os.Stat(arg)
	if err == nil {
		if !info.IsDir() {
			return []string{arg}, nil
		}
		var files []string
		err := filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, errs.Wrap(errs.ErrCLI, err, "failed to walk %s", arg)
		}
		return files, nil
	}

	matches, err := filepath.Glob(arg)
	if err != nil {
		return nil, errs.Wrap(errs.ErrConfig, err, "invalid glob pattern %q", arg)
	}
	return matches, nil
}

// FilterImportable keeps regular files whose extension is an importable
// format (json, yaml, xml).
func FilterImportable(files []string) []string {
	var valid []string
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil || info.IsDir() {
			continue
		}
		format, err := formatFromExtension(f)
		if err != nil || !format.Importable() {
			continue
		}
		valid = append(valid, f)
	}
	return valid
}

func formatFromExtension(path string) (zabbix.ExportFormat, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return zabbix.ParseExportFormat(ext)
}

// Run imports every importable file, recording successes and failures
// separately. The first failure aborts the run unless IgnoreErrors is
// set; files already imported stay imported either way.
func (i *Importer) Run(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	files := FilterImportable(opts.Files)

	if opts.DryRun {
		return &ImportResult{Imported: files, DryRun: true}, nil
	}

	result := &ImportResult{}
	for _, file := range files {
		if err := i.importFile(ctx, file, opts); err != nil {
			result.Failed = append(result.Failed, file)
			if opts.IgnoreErrors {
				i.log.Error("failed to import file", zap.String("file", file), zap.Error(err))
				continue
			}
			return result, errs.Wrap(errs.ErrAPICall, err, "failed to import %s", file)
		}
		result.Imported = append(result.Imported, file)
		i.log.Info("imported file", zap.String("file", file))
	}
	return result, nil
}

// importFile reads one file and feeds it to configuration.import with
// the rule set derived from the run's directives.
func (i *Importer) importFile(ctx context.Context, file string, opts ImportOptions) error {
	format, err := formatFromExtension(file)
	if err != nil {
		return err
	}
	source, err := os.ReadFile(file)
	if err != nil {
		return errs.Wrap(errs.ErrCLI, err, "failed to read %s", file)
	}
	return i.client.ImportConfiguration(ctx, format, string(source), zabbix.ImportDirectives{
		CreateMissing:  opts.CreateMissing,
		UpdateExisting: opts.UpdateExisting,
		DeleteMissing:  opts.DeleteMissing,
	})
}
