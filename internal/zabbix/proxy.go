package zabbix

import (
	"context"

	"go.uber.org/zap"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

// GetProxy fetches a single proxy by name or ID.
func (c *Client) GetProxy(ctx context.Context, nameOrID string, opts ProxyGetOptions) (*Proxy, error) {
	proxies, err := c.GetProxies(ctx, []string{nameOrID}, opts)
	if err != nil {
		return nil, err
	}
	if len(proxies) == 0 {
		return nil, errs.New(errs.ErrNotFound, "proxy %q not found", nameOrID)
	}
	return &proxies[0], nil
}

// ProxyGetOptions controls proxy.get requests.
type ProxyGetOptions struct {
	Search      bool
	SelectHosts bool
	SortField   string
	SortOrder   string
	Limit       int
}

// GetProxies fetches proxies by names or IDs. The name parameter is
// "host" before 7.0 and "name" from 7.0 on.
func (c *Client) GetProxies(ctx context.Context, namesOrIDs []string, opts ProxyGetOptions) ([]Proxy, error) {
	traits, err := c.Traits(ctx)
	if err != nil {
		return nil, err
	}

	params := Params{"output": "extend"}
	nameOrIDParams(params, namesOrIDs, traits.ProxyNameField, "proxyids", opts.Search)
	if opts.SelectHosts {
		params["selectHosts"] = "extend"
	}
	commonParams(params, opts.SortField, opts.SortOrder, opts.Limit)

	raw, err := c.call(ctx, "proxy.get", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to fetch proxies")
	}
	var proxies []Proxy
	if err := bind(raw, &proxies); err != nil {
		return nil, err
	}
	return proxies, nil
}

// GetProxyGroup fetches a single proxy group by name or ID. Requires
// Zabbix 7.0.
func (c *Client) GetProxyGroup(ctx context.Context, nameOrID string) (*ProxyGroup, error) {
	groups, err := c.GetProxyGroups(ctx, []string{nameOrID})
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, errs.New(errs.ErrNotFound, "proxy group %q not found", nameOrID)
	}
	return &groups[0], nil
}

// GetProxyGroups fetches proxy groups by names or IDs. Requires Zabbix
// 7.0.
func (c *Client) GetProxyGroups(ctx context.Context, namesOrIDs []string) ([]ProxyGroup, error) {
	traits, err := c.Traits(ctx)
	if err != nil {
		return nil, err
	}
	if !traits.ProxyGroups {
		return nil, errs.New(errs.ErrAPICall, "proxy groups require Zabbix 7.0 or later")
	}

	params := Params{"output": "extend", "selectProxies": "extend"}
	nameOrIDParams(params, namesOrIDs, "name", "proxy_groupids", false)

	raw, err := c.call(ctx, "proxygroup.get", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to fetch proxy groups")
	}
	var groups []ProxyGroup
	if err := bind(raw, &groups); err != nil {
		return nil, err
	}
	c.normalizeProxyGroups(groups)
	return groups, nil
}

// normalizeProxyGroups coerces out-of-range min_online values to 1.
// The API documents min_online as 1-1000 but some servers return a
// non-numeric string.
func (c *Client) normalizeProxyGroups(groups []ProxyGroup) {
	for i := range groups {
		if groups[i].MinOnline < 1 || groups[i].MinOnline > 1000 {
			c.log.Warn("invalid min_online value for proxy group, defaulting to 1",
				zap.String("proxy_groupid", groups[i].ProxyGroupID))
			groups[i].MinOnline = 1
		}
	}
}

// AddProxyToGroup adds a proxy to a proxy group. Requires Zabbix 7.0.
func (c *Client) AddProxyToGroup(ctx context.Context, proxy *Proxy, group *ProxyGroup) error {
	params := Params{
		"proxyid":       proxy.ProxyID,
		"proxy_groupid": group.ProxyGroupID,
		// Group proxies must have an address for active agents.
		"local_address": proxy.Address,
		"local_port":    proxy.Port,
	}
	if _, err := c.call(ctx, "proxy.update", params); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to add proxy %q to group %q", proxy.Name, group.Name)
	}
	return nil
}

// RemoveProxyFromGroup removes a proxy from its proxy group. Requires
// Zabbix 7.0.
func (c *Client) RemoveProxyFromGroup(ctx context.Context, proxy *Proxy) error {
	params := Params{"proxyid": proxy.ProxyID, "proxy_groupid": "0"}
	if _, err := c.call(ctx, "proxy.update", params); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to remove proxy %q from its group", proxy.Name)
	}
	return nil
}

// AddHostsToProxyGroup assigns hosts to a proxy group and returns the
// IDs of the updated hosts. Requires Zabbix 7.0.
func (c *Client) AddHostsToProxyGroup(ctx context.Context, hosts []Host, group *ProxyGroup) ([]string, error) {
	params := Params{
		"hosts":         idRefs("hostid", hostIDs(hosts)),
		"monitored_by":  "2", // proxy group
		"proxy_groupid": group.ProxyGroupID,
	}
	raw, err := c.call(ctx, "host.massupdate", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to add hosts to proxy group %q", group.Name)
	}
	return returnedList(raw, "hostids", "host.massupdate")
}
