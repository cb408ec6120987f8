package zabbix

import (
	"context"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

// TriggerGetOptions controls trigger.get requests.
type TriggerGetOptions struct {
	TriggerIDs []string
	HostIDs    []string
	GroupIDs   []string
	// Description filters triggers by description (wildcard search).
	Description string
	// MinSeverity restricts to triggers at or above the severity.
	MinSeverity string
	// OnlyProblems restricts to triggers in problem state.
	OnlyProblems bool
	SelectHosts  bool
	SortField    string
	SortOrder    string
	Limit        int
}

// GetTriggers fetches triggers.
func (c *Client) GetTriggers(ctx context.Context, opts TriggerGetOptions) ([]Trigger, error) {
	params := Params{"output": "extend"}
	if len(opts.TriggerIDs) > 0 {
		params["triggerids"] = opts.TriggerIDs
	}
	if len(opts.HostIDs) > 0 {
		params["hostids"] = opts.HostIDs
	}
	if len(opts.GroupIDs) > 0 {
		params["groupids"] = opts.GroupIDs
	}
	if opts.Description != "" {
		params["search"] = Params{"description": opts.Description}
		params["searchWildcardsEnabled"] = true
	}
	if opts.MinSeverity != "" {
		params["min_severity"] = opts.MinSeverity
	}
	if opts.OnlyProblems {
		params["filter"] = Params{"value": "1"}
	}
	if opts.SelectHosts {
		params["selectHosts"] = "extend"
	}
	commonParams(params, opts.SortField, opts.SortOrder, opts.Limit)

	raw, err := c.call(ctx, "trigger.get", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to fetch triggers")
	}
	var triggers []Trigger
	if err := bind(raw, &triggers); err != nil {
		return nil, err
	}
	return triggers, nil
}
