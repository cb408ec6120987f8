package zabbix

import (
	"context"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

// GetMacro fetches a single host-scoped macro.
func (c *Client) GetMacro(ctx context.Context, host *Host, macroName string) (*Macro, error) {
	macros, err := c.GetMacros(ctx, MacroGetOptions{HostIDs: []string{host.HostID}, Macro: macroName})
	if err != nil {
		return nil, err
	}
	if len(macros) == 0 {
		return nil, errs.New(errs.ErrNotFound, "macro %q not found for host %q", macroName, host.Host)
	}
	return &macros[0], nil
}

// MacroGetOptions controls usermacro.get requests.
type MacroGetOptions struct {
	HostIDs []string
	// Macro filters on the {$NAME} token.
	Macro string
	// SelectHosts fetches the hosts of each macro.
	SelectHosts bool
	SortField   string
	SortOrder   string
	Limit       int
}

// GetMacros fetches host-scoped macros.
func (c *Client) GetMacros(ctx context.Context, opts MacroGetOptions) ([]Macro, error) {
	params := Params{"output": "extend"}
	if len(opts.HostIDs) > 0 {
		params["hostids"] = opts.HostIDs
	}
	if opts.Macro != "" {
		params["search"] = Params{"macro": opts.Macro}
		params["searchWildcardsEnabled"] = true
	}
	if opts.SelectHosts {
		params["selectHosts"] = "extend"
	}
	commonParams(params, opts.SortField, opts.SortOrder, opts.Limit)

	raw, err := c.call(ctx, "usermacro.get", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to fetch macros")
	}
	var macros []Macro
	if err := bind(raw, &macros); err != nil {
		return nil, err
	}
	return macros, nil
}

// GetHostsWithMacro fetches all hosts that carry the given macro.
func (c *Client) GetHostsWithMacro(ctx context.Context, macroName string) ([]Host, error) {
	macros, err := c.GetMacros(ctx, MacroGetOptions{Macro: macroName, SelectHosts: true})
	if err != nil {
		return nil, err
	}
	var hosts []Host
	for _, m := range macros {
		hosts = append(hosts, m.Hosts...)
	}
	return hosts, nil
}

// CreateMacro creates a macro on a host and returns its ID.
func (c *Client) CreateMacro(ctx context.Context, host *Host, macroName, value string) (string, error) {
	params := Params{"hostid": host.HostID, "macro": macroName, "value": value}
	raw, err := c.call(ctx, "usermacro.create", params)
	if err != nil {
		return "", errs.Wrap(errs.ErrAPICall, err, "failed to create macro %q on host %q", macroName, host.Host)
	}
	ids, err := returnedList(raw, "hostmacroids", "usermacro.create")
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", errs.New(errs.ErrAPICall, "usermacro.create returned no macro IDs")
	}
	return ids[0], nil
}

// UpdateMacro sets a new value on a host macro and returns its ID.
func (c *Client) UpdateMacro(ctx context.Context, macroID, value string) (string, error) {
	params := Params{"hostmacroid": macroID, "value": value}
	raw, err := c.call(ctx, "usermacro.update", params)
	if err != nil {
		return "", errs.Wrap(errs.ErrAPICall, err, "failed to update macro with ID %s", macroID)
	}
	ids, err := returnedList(raw, "hostmacroids", "usermacro.update")
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", errs.New(errs.ErrAPICall, "usermacro.update returned no macro IDs")
	}
	return ids[0], nil
}

// DeleteMacro deletes a host macro by ID.
func (c *Client) DeleteMacro(ctx context.Context, macroID string) error {
	if _, err := c.call(ctx, "usermacro.delete", []string{macroID}); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to delete macro with ID %s", macroID)
	}
	return nil
}

// GetGlobalMacro fetches a single global macro by its {$NAME} token.
func (c *Client) GetGlobalMacro(ctx context.Context, macroName string) (*GlobalMacro, error) {
	macros, err := c.GetGlobalMacros(ctx)
	if err != nil {
		return nil, err
	}
	for i := range macros {
		if macros[i].Macro == macroName {
			return &macros[i], nil
		}
	}
	return nil, errs.New(errs.ErrNotFound, "global macro %q not found", macroName)
}

// GetGlobalMacros fetches all global macros.
func (c *Client) GetGlobalMacros(ctx context.Context) ([]GlobalMacro, error) {
	params := Params{"output": "extend", "globalmacro": true}
	raw, err := c.call(ctx, "usermacro.get", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to fetch global macros")
	}
	var macros []GlobalMacro
	if err := bind(raw, &macros); err != nil {
		return nil, err
	}
	return macros, nil
}

// CreateGlobalMacro creates a global macro and returns its ID.
func (c *Client) CreateGlobalMacro(ctx context.Context, macroName, value string) (string, error) {
	params := Params{"macro": macroName, "value": value}
	raw, err := c.call(ctx, "usermacro.createglobal", params)
	if err != nil {
		return "", errs.Wrap(errs.ErrAPICall, err, "failed to create global macro %q", macroName)
	}
	ids, err := returnedList(raw, "globalmacroids", "usermacro.createglobal")
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", errs.New(errs.ErrAPICall, "usermacro.createglobal returned no macro IDs")
	}
	return ids[0], nil
}

// UpdateGlobalMacro sets a new value on a global macro.
func (c *Client) UpdateGlobalMacro(ctx context.Context, macroID, value string) error {
	params := Params{"globalmacroid": macroID, "value": value}
	if _, err := c.call(ctx, "usermacro.updateglobal", params); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to update global macro with ID %s", macroID)
	}
	return nil
}

// DeleteGlobalMacro deletes a global macro by ID.
func (c *Client) DeleteGlobalMacro(ctx context.Context, macroID string) error {
	if _, err := c.call(ctx, "usermacro.deleteglobal", []string{macroID}); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to delete global macro with ID %s", macroID)
	}
	return nil
}
