package zabbix

import (
	"context"
	"strings"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

// TemplateGetOptions controls template.get requests.
type TemplateGetOptions struct {
	Search          bool
	SelectHosts     bool
	SelectTemplates bool
	SelectParents   bool
	SortField       string
	SortOrder       string
	Limit           int
}

// GetTemplate fetches a single template by name or ID.
func (c *Client) GetTemplate(ctx context.Context, nameOrID string, opts TemplateGetOptions) (*Template, error) {
	templates, err := c.GetTemplates(ctx, []string{nameOrID}, opts)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, errs.New(errs.ErrNotFound, "template %q not found", nameOrID)
	}
	return &templates[0], nil
}

// GetTemplates fetches templates by names or IDs.
func (c *Client) GetTemplates(ctx context.Context, namesOrIDs []string, opts TemplateGetOptions) ([]Template, error) {
	params := Params{"output": "extend"}
	nameOrIDParams(params, namesOrIDs, "host", "templateids", opts.Search)

	if opts.SelectHosts {
		params["selectHosts"] = "extend"
	}
	if opts.SelectTemplates {
		params["selectTemplates"] = "extend"
	}
	if opts.SelectParents {
		params["selectParentTemplates"] = "extend"
	}
	commonParams(params, opts.SortField, opts.SortOrder, opts.Limit)

	raw, err := c.call(ctx, "template.get", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to fetch templates")
	}
	var templates []Template
	if err := bind(raw, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// LinkTemplatesToHosts links templates to hosts via template.massadd.
func (c *Client) LinkTemplatesToHosts(ctx context.Context, templates []Template, hosts []Host) error {
	params := Params{
		"templates": idRefs("templateid", templateIDs(templates)),
		"hosts":     idRefs("hostid", hostIDs(hosts)),
	}
	if _, err := c.call(ctx, "template.massadd", params); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to link templates %s", templateNames(templates))
	}
	return nil
}

// UnlinkTemplatesFromHosts unlinks templates from hosts. When clear is
// set, the templated entities (items, triggers) are removed from the
// hosts as well via templateids_clear.
func (c *Client) UnlinkTemplatesFromHosts(ctx context.Context, templates []Template, hosts []Host, clear bool) error {
	key := "templateids"
	if clear {
		key = "templateids_clear"
	}
	params := Params{
		"hostids": hostIDs(hosts),
		key:       templateIDs(templates),
	}
	if _, err := c.call(ctx, "host.massremove", params); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to unlink templates %s", templateNames(templates))
	}
	return nil
}

// LinkTemplates links source templates to destination templates, so the
// destinations inherit the sources' entities.
func (c *Client) LinkTemplates(ctx context.Context, sources, destinations []Template) error {
	params := Params{
		"templates":      idRefs("templateid", templateIDs(destinations)),
		"templates_link": idRefs("templateid", templateIDs(sources)),
	}
	if _, err := c.call(ctx, "template.massadd", params); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to link templates %s", templateNames(sources))
	}
	return nil
}

// UnlinkTemplates unlinks source templates from destination templates.
// When clear is set the templated entities are removed too.
func (c *Client) UnlinkTemplates(ctx context.Context, sources, destinations []Template, clear bool) error {
	key := "templateids_link"
	if clear {
		key = "templateids_clear"
	}
	params := Params{
		"templateids": templateIDs(destinations),
		key:           templateIDs(sources),
	}
	if _, err := c.call(ctx, "template.massremove", params); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to unlink templates %s", templateNames(sources))
	}
	return nil
}

// AddTemplatesToGroups adds templates to template groups (host groups
// before 6.2) via template.massadd.
func (c *Client) AddTemplatesToGroups(ctx context.Context, templates []Template, groupIDs []string) error {
	params := Params{
		"templates": idRefs("templateid", templateIDs(templates)),
		"groups":    idRefs("groupid", groupIDs),
	}
	if _, err := c.call(ctx, "template.massadd", params); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to add templates %s to groups", templateNames(templates))
	}
	return nil
}

// RemoveTemplatesFromGroups removes templates from template groups
// (host groups before 6.2) via template.massremove.
func (c *Client) RemoveTemplatesFromGroups(ctx context.Context, templates []Template, groupIDs []string) error {
	params := Params{
		"templateids": templateIDs(templates),
		"groupids":    groupIDs,
	}
	if _, err := c.call(ctx, "template.massremove", params); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to remove templates %s from groups", templateNames(templates))
	}
	return nil
}

func templateIDs(templates []Template) []string {
	ids := make([]string, len(templates))
	for i, t := range templates {
		ids[i] = t.TemplateID
	}
	return ids
}

func templateNames(templates []Template) string {
	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.Host
	}
	return strings.Join(names, ", ")
}
