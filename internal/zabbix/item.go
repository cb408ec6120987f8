package zabbix

import (
	"context"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

// ItemGetOptions controls item.get requests.
type ItemGetOptions struct {
	ItemIDs []string
	HostIDs []string
	// Name filters items by visible name (wildcard search).
	Name string
	// Key filters items by item key (wildcard search).
	Key         string
	SelectHosts bool
	SortField   string
	SortOrder   string
	Limit       int
}

// GetItems fetches items.
func (c *Client) GetItems(ctx context.Context, opts ItemGetOptions) ([]Item, error) {
	params := Params{"output": "extend"}
	if len(opts.ItemIDs) > 0 {
		params["itemids"] = opts.ItemIDs
	}
	if len(opts.HostIDs) > 0 {
		params["hostids"] = opts.HostIDs
	}
	search := Params{}
	if opts.Name != "" {
		search["name"] = opts.Name
	}
	if opts.Key != "" {
		search["key_"] = opts.Key
	}
	if len(search) > 0 {
		params["search"] = search
		params["searchWildcardsEnabled"] = true
	}
	if opts.SelectHosts {
		params["selectHosts"] = "extend"
	}
	commonParams(params, opts.SortField, opts.SortOrder, opts.Limit)

	raw, err := c.call(ctx, "item.get", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to fetch items")
	}
	var items []Item
	if err := bind(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}
