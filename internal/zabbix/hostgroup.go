package zabbix

import (
	"context"
	"strings"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

// HostGroupGetOptions controls hostgroup.get requests.
type HostGroupGetOptions struct {
	// Search matches names as wildcard patterns instead of exact
	// filter values.
	Search bool
	// SelectHosts fetches the hosts of each group.
	SelectHosts bool
	// SelectTemplates fetches templates of each group. Only meaningful
	// before 6.2, where templates still live in host groups.
	SelectTemplates bool
	SortField       string
	SortOrder       string
	Limit           int
}

// GetHostGroup fetches a single host group by name or ID. Returns a
// not-found error if no group matches.
func (c *Client) GetHostGroup(ctx context.Context, nameOrID string, opts HostGroupGetOptions) (*HostGroup, error) {
	groups, err := c.GetHostGroups(ctx, []string{nameOrID}, opts)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, errs.New(errs.ErrNotFound, "host group %q not found", nameOrID)
	}
	return &groups[0], nil
}

// GetHostGroups fetches host groups by names or IDs. Numeric arguments
// are IDs; empty input or "*" matches all groups.
func (c *Client) GetHostGroups(ctx context.Context, namesOrIDs []string, opts HostGroupGetOptions) ([]HostGroup, error) {
	params := Params{"output": "extend"}
	nameOrIDParams(params, namesOrIDs, "name", "groupids", opts.Search)

	if opts.SelectHosts {
		params["selectHosts"] = "extend"
	}
	if opts.SelectTemplates {
		traits, err := c.Traits(ctx)
		if err != nil {
			return nil, err
		}
		if !traits.SplitTemplateGroups {
			params["selectTemplates"] = "extend"
		}
	}
	commonParams(params, opts.SortField, opts.SortOrder, opts.Limit)

	raw, err := c.call(ctx, "hostgroup.get", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to fetch host groups")
	}
	var groups []HostGroup
	if err := bind(raw, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// CreateHostGroup creates a host group and returns its ID.
func (c *Client) CreateHostGroup(ctx context.Context, name string) (string, error) {
	raw, err := c.call(ctx, "hostgroup.create", Params{"name": name})
	if err != nil {
		return "", errs.Wrap(errs.ErrAPICall, err, "failed to create host group %q", name)
	}
	ids, err := returnedList(raw, "groupids", "hostgroup.create")
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", errs.New(errs.ErrAPICall, "hostgroup.create returned no group IDs")
	}
	return ids[0], nil
}

// DeleteHostGroup deletes a host group by ID.
func (c *Client) DeleteHostGroup(ctx context.Context, groupID string) error {
	if _, err := c.call(ctx, "hostgroup.delete", []string{groupID}); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to delete host group with ID %s", groupID)
	}
	return nil
}

// AddHostsToHostGroups adds hosts to one or more host groups via
// hostgroup.massadd.
func (c *Client) AddHostsToHostGroups(ctx context.Context, hosts []Host, groups []HostGroup) error {
	groupRefs := make([]Params, len(groups))
	for i, g := range groups {
		groupRefs[i] = Params{"groupid": g.GroupID}
	}
	hostRefs := make([]Params, len(hosts))
	for i, h := range hosts {
		hostRefs[i] = Params{"hostid": h.HostID}
	}
	params := Params{"groups": groupRefs, "hosts": hostRefs}
	if _, err := c.call(ctx, "hostgroup.massadd", params); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to add hosts to %s", groupNames(groups))
	}
	return nil
}

// RemoveHostsFromHostGroups removes hosts from one or more host groups
// via hostgroup.massremove.
func (c *Client) RemoveHostsFromHostGroups(ctx context.Context, hosts []Host, groups []HostGroup) error {
	groupIDs := make([]string, len(groups))
	for i, g := range groups {
		groupIDs[i] = g.GroupID
	}
	hostIDs := make([]string, len(hosts))
	for i, h := range hosts {
		hostIDs[i] = h.HostID
	}
	params := Params{"groupids": groupIDs, "hostids": hostIDs}
	if _, err := c.call(ctx, "hostgroup.massremove", params); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to remove hosts from %s", groupNames(groups))
	}
	return nil
}

// HostGroupExists reports whether a host group with the given name or
// ID exists.
func (c *Client) HostGroupExists(ctx context.Context, nameOrID string) (bool, error) {
	groups, err := c.GetHostGroups(ctx, []string{nameOrID}, HostGroupGetOptions{Limit: 1})
	if err != nil {
		return false, err
	}
	return len(groups) > 0, nil
}

func groupNames(groups []HostGroup) string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	return strings.Join(names, ", ")
}
