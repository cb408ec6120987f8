package zabbix

import (
	"context"
	"fmt"
	"strings"

	"github.com/kidoz/zabbix-cli-go/internal/compat"
	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

// ExportFormat is a configuration.export serialization format.
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatYAML ExportFormat = "yaml"
	FormatXML  ExportFormat = "xml"
	// FormatPHP is export-only; it cannot be imported.
	FormatPHP ExportFormat = "php"
)

// ParseExportFormat parses a format name case-insensitively.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatXML, FormatPHP:
		return f, nil
	default:
		return "", errs.New(errs.ErrConfig, "invalid export format %q", s)
	}
}

// Importable reports whether files of this format can be imported.
func (f ExportFormat) Importable() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatXML:
		return true
	}
	return false
}

// ExportOptions name the objects to serialize, by ID per class.
type ExportOptions struct {
	HostGroupIDs     []string
	TemplateGroupIDs []string
	HostIDs          []string
	ImageIDs         []string
	MapIDs           []string
	TemplateIDs      []string
	MediaTypeIDs     []string

	Format ExportFormat
	Pretty bool
}

// ExportConfiguration serializes the named objects via
// configuration.export and returns the payload. Pretty-printing is
// downgraded with a warning for XML and for servers older than 5.4; the
// warnings are returned for the front-end to display.
func (c *Client) ExportConfiguration(ctx context.Context, opts ExportOptions) (string, []string, error) {
	version, err := c.APIVersion(ctx)
	if err != nil {
		return "", nil, err
	}

	params := Params{"format": string(opts.Format)}
	var warnings []string
	if opts.Pretty {
		switch {
		case !version.AtLeast(5, 4, 0):
			warnings = append(warnings, fmt.Sprintf("pretty-printing is not supported in Zabbix versions < 5.4.0 (server is %s)", version))
		case opts.Format == FormatXML:
			warnings = append(warnings, "pretty-printing is not supported for XML")
		default:
			params["prettyprint"] = true
		}
		for _, w := range warnings {
			c.log.Warn(w)
		}
	}

	options := Params{}
	if len(opts.HostGroupIDs) > 0 {
		options["host_groups"] = opts.HostGroupIDs
	}
	if len(opts.TemplateGroupIDs) > 0 {
		options["template_groups"] = opts.TemplateGroupIDs
	}
	if len(opts.HostIDs) > 0 {
		options["hosts"] = opts.HostIDs
	}
	if len(opts.ImageIDs) > 0 {
		options["images"] = opts.ImageIDs
	}
	if len(opts.MapIDs) > 0 {
		options["maps"] = opts.MapIDs
	}
	if len(opts.TemplateIDs) > 0 {
		options["templates"] = opts.TemplateIDs
	}
	if len(opts.MediaTypeIDs) > 0 {
		options["mediaTypes"] = opts.MediaTypeIDs
	}
	if len(options) > 0 {
		params["options"] = options
	}

	raw, err := c.call(ctx, "configuration.export", params)
	if err != nil {
		return "", warnings, errs.Wrap(errs.ErrAPICall, err, "failed to export configuration")
	}
	var payload string
	if err := bind(raw, &payload); err != nil {
		return "", warnings, err
	}
	return payload, warnings, nil
}

// ImportDirectives are the caller-facing toggles of an import run.
type ImportDirectives struct {
	CreateMissing  bool
	UpdateExisting bool
	DeleteMissing  bool
}

// ImportConfiguration imports a serialized configuration via
// configuration.import. The format must be importable (json, yaml or
// xml); php is export-only.
func (c *Client) ImportConfiguration(ctx context.Context, format ExportFormat, source string, d ImportDirectives) error {
	if !format.Importable() {
		return errs.New(errs.ErrConfig, "format %q cannot be imported", format)
	}
	version, err := c.APIVersion(ctx)
	if err != nil {
		return err
	}

	params := Params{
		"format": string(format),
		"source": source,
		"rules":  buildImportRules(version, d),
	}
	if _, err := c.call(ctx, "configuration.import", params); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to import configuration")
	}
	return nil
}

// buildImportRules composes the per-object-class rule set for
// configuration.import. Each class supports a fixed subset of the
// create/update/delete flags; group classes are version dependent.
func buildImportRules(version compat.Version, d ImportDirectives) Params {
	// The three flag combinations shared by most classes.
	cu := Params{"createMissing": d.CreateMissing, "updateExisting": d.UpdateExisting}
	cd := Params{"createMissing": d.CreateMissing, "deleteMissing": d.DeleteMissing}
	cud := Params{
		"createMissing":  d.CreateMissing,
		"updateExisting": d.UpdateExisting,
		"deleteMissing":  d.DeleteMissing,
	}

	rules := Params{
		"hosts":              cu,
		"httptests":          cu,
		"images":             cu,
		"mediaTypes":         cu,
		"maps":               cu,
		"templates":          cu,
		"templateLinkage":    cd,
		"discoveryRules":     cud,
		"graphs":             cud,
		"items":              cud,
		"triggers":           cud,
		"valueMaps":          cud,
		"templateDashboards": cud,
	}

	if version.AtLeast(6, 2, 0) {
		rules["host_groups"] = cu
		rules["template_groups"] = cu
	} else {
		rules["groups"] = Params{"createMissing": d.CreateMissing}
	}

	if !version.AtLeast(6, 0, 0) {
		rules["applications"] = cd
		rules["screens"] = cu
		rules["templateScreens"] = cud
	}

	return rules
}
