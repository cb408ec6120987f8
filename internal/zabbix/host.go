package zabbix

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

// HostGetOptions controls host.get requests.
type HostGetOptions struct {
	Search           bool
	SelectGroups     bool
	SelectTemplates  bool
	SelectInterfaces bool
	SelectMacros     bool
	SelectInventory  bool
	// GroupIDs restricts the result to hosts in the given host groups.
	GroupIDs []string
	// ProxyIDs restricts the result to hosts monitored by the given
	// proxies.
	ProxyIDs  []string
	SortField string
	SortOrder string
	Limit     int
}

// GetHost fetches a single host by name or ID.
func (c *Client) GetHost(ctx context.Context, nameOrID string, opts HostGetOptions) (*Host, error) {
	hosts, err := c.GetHosts(ctx, []string{nameOrID}, opts)
	if err != nil {
		return nil, err
	}
	if len(hosts) == 0 {
		return nil, errs.New(errs.ErrNotFound, "host %q not found", nameOrID)
	}
	return &hosts[0], nil
}

// GetHosts fetches hosts by names or IDs. Numeric arguments are IDs;
// empty input or "*" matches all hosts.
func (c *Client) GetHosts(ctx context.Context, namesOrIDs []string, opts HostGetOptions) ([]Host, error) {
	traits, err := c.Traits(ctx)
	if err != nil {
		return nil, err
	}

	params := Params{"output": "extend"}
	nameOrIDParams(params, namesOrIDs, "host", "hostids", opts.Search)

	if opts.SelectGroups {
		params[traits.HostGroupsSelect] = "extend"
	}
	if opts.SelectTemplates {
		params["selectParentTemplates"] = "extend"
	}
	if opts.SelectInterfaces {
		params["selectInterfaces"] = "extend"
	}
	if opts.SelectMacros {
		params["selectMacros"] = "extend"
	}
	if opts.SelectInventory {
		params["selectInventory"] = "extend"
	}
	if len(opts.GroupIDs) > 0 {
		params["groupids"] = opts.GroupIDs
	}
	if len(opts.ProxyIDs) > 0 {
		params["proxyids"] = opts.ProxyIDs
	}
	commonParams(params, opts.SortField, opts.SortOrder, opts.Limit)

	raw, err := c.call(ctx, "host.get", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to fetch hosts")
	}
	var hosts []Host
	if err := bind(raw, &hosts); err != nil {
		return nil, err
	}
	c.normalizeHosts(hosts)
	return hosts, nil
}

// normalizeHosts substitutes a placeholder for empty technical names.
// An empty host name is a data error on the server side; the
// substitution is surfaced as a warning rather than silently applied.
func (c *Client) normalizeHosts(hosts []Host) {
	for i := range hosts {
		if hosts[i].Host == "" {
			hosts[i].Host = fmt.Sprintf("Unknown (ID: %s)", hosts[i].HostID)
			c.log.Warn("server returned host with empty technical name",
				zap.String("hostid", hosts[i].HostID))
		}
	}
}

// CreateHostParams are the inputs to CreateHost.
type CreateHostParams struct {
	Host        string
	VisibleName string
	Description string
	GroupIDs    []string
	TemplateIDs []string
	Interfaces  []HostInterface
	// ProxyID assigns the host to a proxy. The parameter name is
	// version dependent.
	ProxyID string
	// Status is "0" monitored, "1" unmonitored.
	Status string
	// InventoryMode is "-1" disabled, "0" manual, "1" automatic.
	InventoryMode string
	Inventory     map[string]string
}

// CreateHost creates a host and returns its ID.
func (c *Client) CreateHost(ctx context.Context, p CreateHostParams) (string, error) {
	traits, err := c.Traits(ctx)
	if err != nil {
		return "", err
	}

	params := Params{
		"host":   p.Host,
		"groups": idRefs("groupid", p.GroupIDs),
	}
	if p.VisibleName != "" {
		params["name"] = p.VisibleName
	}
	if p.Description != "" {
		params["description"] = p.Description
	}
	if len(p.TemplateIDs) > 0 {
		params["templates"] = idRefs("templateid", p.TemplateIDs)
	}
	if len(p.Interfaces) > 0 {
		params["interfaces"] = p.Interfaces
	}
	if p.ProxyID != "" {
		params[traits.HostProxyIDField] = p.ProxyID
	}
	if p.Status != "" {
		params["status"] = p.Status
	}
	if p.InventoryMode != "" {
		params["inventory_mode"] = p.InventoryMode
	}
	if len(p.Inventory) > 0 {
		params["inventory"] = p.Inventory
	}

	raw, err := c.call(ctx, "host.create", params)
	if err != nil {
		return "", errs.Wrap(errs.ErrAPICall, err, "failed to create host %q", p.Host)
	}
	ids, err := returnedList(raw, "hostids", "host.create")
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", errs.New(errs.ErrAPICall, "host.create returned no host IDs")
	}
	return ids[0], nil
}

// UpdateHost applies arbitrary host.update parameters to a host.
func (c *Client) UpdateHost(ctx context.Context, hostID string, changes Params) error {
	params := Params{"hostid": hostID}
	for k, v := range changes {
		params[k] = v
	}
	if _, err := c.call(ctx, "host.update", params); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to update host with ID %s", hostID)
	}
	return nil
}

// DeleteHost deletes a host by ID.
func (c *Client) DeleteHost(ctx context.Context, hostID string) error {
	if _, err := c.call(ctx, "host.delete", []string{hostID}); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to delete host with ID %s", hostID)
	}
	return nil
}

// HostExists reports whether a host with the given name or ID exists.
func (c *Client) HostExists(ctx context.Context, nameOrID string) (bool, error) {
	hosts, err := c.GetHosts(ctx, []string{nameOrID}, HostGetOptions{Limit: 1})
	if err != nil {
		return false, err
	}
	return len(hosts) > 0, nil
}

// UpdateHostStatus sets the monitoring status of a host. Status is "0"
// for monitored and "1" for unmonitored.
func (c *Client) UpdateHostStatus(ctx context.Context, host *Host, status string) error {
	if err := c.UpdateHost(ctx, host.HostID, Params{"status": status}); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to set status %s on host %q", status, host.Host)
	}
	return nil
}

// UpdateHostProxy assigns a host to a proxy.
func (c *Client) UpdateHostProxy(ctx context.Context, host *Host, proxy *Proxy) error {
	traits, err := c.Traits(ctx)
	if err != nil {
		return err
	}
	params := Params{
		"hostid":                host.HostID,
		traits.HostProxyIDField: proxy.ProxyID,
	}
	if _, err := c.call(ctx, "host.update", params); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to assign host %q to proxy %q", host.Host, proxy.Name)
	}
	return nil
}

// UpdateHostsProxy assigns multiple hosts to a proxy via
// host.massupdate and returns the IDs of the updated hosts.
func (c *Client) UpdateHostsProxy(ctx context.Context, hosts []Host, proxy *Proxy) ([]string, error) {
	traits, err := c.Traits(ctx)
	if err != nil {
		return nil, err
	}
	params := Params{
		"hosts":                 idRefs("hostid", hostIDs(hosts)),
		traits.HostProxyIDField: proxy.ProxyID,
	}
	raw, err := c.call(ctx, "host.massupdate", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to move hosts to proxy %q", proxy.Name)
	}
	return returnedList(raw, "hostids", "host.massupdate")
}

// ClearHostProxies detaches the given hosts from their proxies and
// returns the IDs of the updated hosts.
func (c *Client) ClearHostProxies(ctx context.Context, hosts []Host) ([]string, error) {
	traits, err := c.Traits(ctx)
	if err != nil {
		return nil, err
	}
	params := Params{
		"hosts":                 idRefs("hostid", hostIDs(hosts)),
		traits.HostProxyIDField: "0",
	}
	raw, err := c.call(ctx, "host.massupdate", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to clear proxies from hosts")
	}
	return returnedList(raw, "hostids", "host.massupdate")
}

// UpdateHostInventory sets inventory fields on a host.
func (c *Client) UpdateHostInventory(ctx context.Context, host *Host, inventory map[string]string) error {
	params := Params{"hostid": host.HostID, "inventory": inventory}
	if _, err := c.call(ctx, "host.update", params); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to update inventory for host %q", host.Host)
	}
	return nil
}

func hostIDs(hosts []Host) []string {
	ids := make([]string, len(hosts))
	for i, h := range hosts {
		ids[i] = h.HostID
	}
	return ids
}
