// Package export implements bulk serialization of Zabbix configuration
// objects into a filesystem tree, and the reverse import from files.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kidoz/zabbix-cli-go/internal/config"
	"github.com/kidoz/zabbix-cli-go/internal/errs"
	"github.com/kidoz/zabbix-cli-go/internal/zabbix"
)

// Type is an exportable object class. The value doubles as the
// per-class subdirectory name in the export tree.
type Type string

const (
	TypeHostGroups     Type = "host_groups"
	TypeTemplateGroups Type = "template_groups"
	TypeHosts          Type = "hosts"
	TypeImages         Type = "images"
	TypeMaps           Type = "maps"
	TypeTemplates      Type = "templates"
	TypeMediaTypes     Type = "mediaTypes"
)

// AllTypes returns every exportable type, sorted.
func AllTypes() []Type {
	return []Type{
		TypeHostGroups,
		TypeHosts,
		TypeImages,
		TypeMaps,
		TypeMediaTypes,
		TypeTemplateGroups,
		TypeTemplates,
	}
}

// ParseTypes parses type names, deduplicates and sorts them. Empty
// input selects every type. "groups" is accepted as a legacy alias for
// host_groups.
func ParseTypes(names []string) ([]Type, error) {
	if len(names) == 0 {
		return AllTypes(), nil
	}
	seen := map[Type]bool{}
	for _, name := range names {
		if name == "#all#" {
			return AllTypes(), nil
		}
		if name == "groups" {
			name = string(TypeHostGroups)
		}
		t := Type(name)
		switch t {
		case TypeHostGroups, TypeTemplateGroups, TypeHosts, TypeImages, TypeMaps, TypeTemplates, TypeMediaTypes:
			seen[t] = true
		default:
			return nil, errs.New(errs.ErrConfig, "invalid export type %q", name)
		}
	}
	types := make([]Type, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types, nil
}

// maxConcurrentExports bounds in-flight configuration.export requests.
const maxConcurrentExports = 8

// Options control one export run.
type Options struct {
	Types []Type
	// Names filter objects per type; wildcard patterns are allowed.
	// Empty selects every object.
	Names     []string
	Directory string
	Format    zabbix.ExportFormat
	// LegacyFilenames uses the zabbix_export_{type}_{name}_{id} stem.
	LegacyFilenames bool
	// Timestamps appends _YYYY-MM-DDTHHMMSS to every stem.
	Timestamps bool
	Pretty     bool
	// IgnoreErrors logs single-object failures and continues instead of
	// aborting the run.
	IgnoreErrors bool
	// Concurrency is the number of parallel export requests, capped at
	// 8. Zero means sequential.
	Concurrency int
}

// Exporter serializes Zabbix objects into files.
type Exporter struct {
	client *zabbix.Client
	cfg    *config.Config
	log    *zap.Logger
}

// NewExporter creates an exporter.
func NewExporter(client *zabbix.Client, cfg *config.Config, log *zap.Logger) *Exporter {
	return &Exporter{client: client, cfg: cfg, log: log}
}

// exportJob is one object to serialize.
type exportJob struct {
	typ  Type
	name string
	id   string
}

// Run exports every matching object and returns the list of written
// paths in deterministic (type, enumeration) order. Partial results are
// kept on failure and cancellation.
func (e *Exporter) Run(ctx context.Context, opts Options) ([]string, error) {
	if err := e.checkTypes(ctx, opts.Types); err != nil {
		return nil, err
	}

	var jobs []exportJob
	for _, t := range opts.Types {
		typeJobs, err := e.enumerate(ctx, t, opts.Names)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, typeJobs...)
	}

	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}
	if limit > maxConcurrentExports {
		limit = maxConcurrentExports
	}

	// Results are collected by index so output ordering stays
	// deterministic regardless of completion order.
	written := make([]string, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, job := range jobs {
		g.Go(func() error {
			path, err := e.exportOne(gctx, job, opts)
			if err != nil {
				msg := fmt.Sprintf("failed to export %s %q (%s)", job.typ, job.name, job.id)
				if opts.IgnoreErrors {
					e.log.Error(msg, zap.Error(err))
					return nil
				}
				return errs.Wrap(errs.ErrAPICall, err, "%s", msg)
			}
			written[i] = path
			return nil
		})
	}
	err := g.Wait()

	paths := make([]string, 0, len(written))
	for _, p := range written {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths, err
}

// checkTypes validates the requested types against the server version.
func (e *Exporter) checkTypes(ctx context.Context, types []Type) error {
	traits, err := e.client.Traits(ctx)
	if err != nil {
		return err
	}
	for _, t := range types {
		if t == TypeTemplateGroups && !traits.SplitTemplateGroups {
			return errs.New(errs.ErrConfig,
				"template group exports are not supported in Zabbix versions < 6.2")
		}
	}
	return nil
}

// enumerate fetches the matching objects of one type as export jobs.
func (e *Exporter) enumerate(ctx context.Context, t Type, names []string) ([]exportJob, error) {
	var jobs []exportJob
	add := func(name, id string) {
		jobs = append(jobs, exportJob{typ: t, name: name, id: id})
	}

	switch t {
	case TypeHostGroups:
		groups, err := e.client.GetHostGroups(ctx, names, zabbix.HostGroupGetOptions{Search: true})
		if err != nil {
			return nil, err
		}
		for _, g := range groups {
			add(g.Name, g.GroupID)
		}
	case TypeTemplateGroups:
		groups, err := e.client.GetTemplateGroups(ctx, names, zabbix.TemplateGroupGetOptions{Search: true})
		if err != nil {
			return nil, err
		}
		for _, g := range groups {
			add(g.Name, g.GroupID)
		}
	case TypeHosts:
		hosts, err := e.client.GetHosts(ctx, names, zabbix.HostGetOptions{Search: true})
		if err != nil {
			return nil, err
		}
		for _, h := range hosts {
			add(h.Host, h.HostID)
		}
	case TypeImages:
		images, err := e.client.GetImages(ctx, names, false)
		if err != nil {
			return nil, err
		}
		for _, img := range images {
			add(img.Name, img.ImageID)
		}
	case TypeMaps:
		maps, err := e.client.GetMaps(ctx, names)
		if err != nil {
			return nil, err
		}
		for _, m := range maps {
			add(m.Name, m.SysmapID)
		}
	case TypeTemplates:
		templates, err := e.client.GetTemplates(ctx, names, zabbix.TemplateGetOptions{Search: true})
		if err != nil {
			return nil, err
		}
		for _, tpl := range templates {
			add(tpl.Host, tpl.TemplateID)
		}
	case TypeMediaTypes:
		mts, err := e.client.GetMediaTypes(ctx, names)
		if err != nil {
			return nil, err
		}
		for _, mt := range mts {
			add(mt.Name, mt.MediaTypeID)
		}
	default:
		return nil, errs.New(errs.ErrConfig, "no exporter available for type %q", t)
	}
	return jobs, nil
}

// exportOne serializes a single object and writes it to its target
// path.
func (e *Exporter) exportOne(ctx context.Context, job exportJob, opts Options) (string, error) {
	exportOpts := zabbix.ExportOptions{Format: opts.Format, Pretty: opts.Pretty}
	ids := []string{job.id}
	switch job.typ {
	case TypeHostGroups:
		exportOpts.HostGroupIDs = ids
	case TypeTemplateGroups:
		exportOpts.TemplateGroupIDs = ids
	case TypeHosts:
		exportOpts.HostIDs = ids
	case TypeImages:
		exportOpts.ImageIDs = ids
	case TypeMaps:
		exportOpts.MapIDs = ids
	case TypeTemplates:
		exportOpts.TemplateIDs = ids
	case TypeMediaTypes:
		exportOpts.MediaTypeIDs = ids
	}

	payload, _, err := e.client.ExportConfiguration(ctx, exportOpts)
	if err != nil {
		return "", err
	}

	path := e.filename(job, opts)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errs.Wrap(errs.ErrCLI, err, "failed to create directory %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		return "", errs.Wrap(errs.ErrCLI, err, "failed to write %s", path)
	}
	e.log.Debug("exported object",
		zap.String("type", string(job.typ)), zap.String("name", job.name), zap.String("path", path))
	return path, nil
}

// filename computes <dir>/<type>/<stem>.<format> with a sanitized stem.
func (e *Exporter) filename(job exportJob, opts Options) string {
	stem := fmt.Sprintf("%s_%s", job.name, job.id)
	if opts.LegacyFilenames {
		stem = fmt.Sprintf("zabbix_export_%s_%s_%s", job.typ, job.name, job.id)
	}
	if opts.Timestamps {
		stem = fmt.Sprintf("%s_%s", stem, time.Now().Format("2006-01-02T150405"))
	}
	stem = SanitizeFilename(stem)
	return filepath.Join(opts.Directory, string(job.typ), stem+"."+string(opts.Format))
}
