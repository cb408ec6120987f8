package zabbix

import (
	"context"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

// Template groups are a distinct entity from Zabbix 6.2. On older
// servers every operation here routes to the hostgroup.* endpoints,
// where templates still live.

// TemplateGroupGetOptions controls templategroup.get requests.
type TemplateGroupGetOptions struct {
	Search          bool
	SelectTemplates bool
	SortField       string
	SortOrder       string
	Limit           int
}

// GetTemplateGroup fetches a single template group by name or ID.
func (c *Client) GetTemplateGroup(ctx context.Context, nameOrID string, opts TemplateGroupGetOptions) (*TemplateGroup, error) {
	groups, err := c.GetTemplateGroups(ctx, []string{nameOrID}, opts)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, errs.New(errs.ErrNotFound, "template group %q not found", nameOrID)
	}
	return &groups[0], nil
}

// GetTemplateGroups fetches template groups by names or IDs. On servers
// older than 6.2 this queries host groups instead.
func (c *Client) GetTemplateGroups(ctx context.Context, namesOrIDs []string, opts TemplateGroupGetOptions) ([]TemplateGroup, error) {
	traits, err := c.Traits(ctx)
	if err != nil {
		return nil, err
	}

	params := Params{"output": "extend"}
	nameOrIDParams(params, namesOrIDs, "name", "groupids", opts.Search)
	if opts.SelectTemplates {
		params["selectTemplates"] = "extend"
	}
	commonParams(params, opts.SortField, opts.SortOrder, opts.Limit)

	endpoint := "templategroup.get"
	if !traits.SplitTemplateGroups {
		endpoint = "hostgroup.get"
	}

	raw, err := c.call(ctx, endpoint, params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to fetch template groups")
	}
	var groups []TemplateGroup
	if err := bind(raw, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// CreateTemplateGroup creates a template group and returns its ID. On
// servers older than 6.2 a host group is created instead.
func (c *Client) CreateTemplateGroup(ctx context.Context, name string) (string, error) {
	traits, err := c.Traits(ctx)
	if err != nil {
		return "", err
	}
	endpoint := "templategroup.create"
	if !traits.SplitTemplateGroups {
		endpoint = "hostgroup.create"
	}
	raw, err := c.call(ctx, endpoint, Params{"name": name})
	if err != nil {
		return "", errs.Wrap(errs.ErrAPICall, err, "failed to create template group %q", name)
	}
	ids, err := returnedList(raw, "groupids", endpoint)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", errs.New(errs.ErrAPICall, "%s returned no group IDs", endpoint)
	}
	return ids[0], nil
}

// DeleteTemplateGroup deletes a template group by ID.
func (c *Client) DeleteTemplateGroup(ctx context.Context, groupID string) error {
	traits, err := c.Traits(ctx)
	if err != nil {
		return err
	}
	endpoint := "templategroup.delete"
	if !traits.SplitTemplateGroups {
		endpoint = "hostgroup.delete"
	}
	if _, err := c.call(ctx, endpoint, []string{groupID}); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to delete template group with ID %s", groupID)
	}
	return nil
}
