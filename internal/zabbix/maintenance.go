package zabbix

import (
	"context"
	"strconv"
	"time"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

// GetMaintenance fetches a single maintenance window by ID.
func (c *Client) GetMaintenance(ctx context.Context, maintenanceID string) (*Maintenance, error) {
	ms, err := c.GetMaintenances(ctx, MaintenanceGetOptions{MaintenanceIDs: []string{maintenanceID}})
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return nil, errs.New(errs.ErrNotFound, "maintenance with ID %s not found", maintenanceID)
	}
	return &ms[0], nil
}

// MaintenanceGetOptions controls maintenance.get requests.
type MaintenanceGetOptions struct {
	MaintenanceIDs []string
	HostIDs        []string
	GroupIDs       []string
	// Name filters maintenance windows by name (wildcard search).
	Name string
}

// GetMaintenances fetches maintenance windows with hosts, groups and
// time periods selected.
func (c *Client) GetMaintenances(ctx context.Context, opts MaintenanceGetOptions) ([]Maintenance, error) {
	traits, err := c.Traits(ctx)
	if err != nil {
		return nil, err
	}

	groupsSelect := "selectHostGroups"
	if !traits.SplitTemplateGroups {
		groupsSelect = "selectGroups"
	}
	params := Params{
		"output":            "extend",
		"selectHosts":       "extend",
		groupsSelect:        "extend",
		"selectTimeperiods": "extend",
	}
	if len(opts.MaintenanceIDs) > 0 {
		params["maintenanceids"] = opts.MaintenanceIDs
	}
	if len(opts.HostIDs) > 0 {
		params["hostids"] = opts.HostIDs
	}
	if len(opts.GroupIDs) > 0 {
		params["groupids"] = opts.GroupIDs
	}
	if opts.Name != "" {
		params["search"] = Params{"name": opts.Name}
		params["searchWildcardsEnabled"] = true
	}

	raw, err := c.call(ctx, "maintenance.get", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to fetch maintenance windows")
	}
	var ms []Maintenance
	if err := bind(raw, &ms); err != nil {
		return nil, err
	}
	return ms, nil
}

// CreateMaintenanceParams are the inputs to CreateMaintenance.
type CreateMaintenanceParams struct {
	Name        string
	Description string
	ActiveSince time.Time
	ActiveTill  time.Time
	// DataCollection keeps collecting data during the window.
	DataCollection bool
	Hosts          []Host
	HostGroups     []HostGroup
	// TimePeriods defaults to one one-time period spanning the active
	// interval when empty.
	TimePeriods []TimePeriod
}

// CreateMaintenance creates a maintenance window and returns its ID.
func (c *Client) CreateMaintenance(ctx context.Context, p CreateMaintenanceParams) (string, error) {
	maintenanceType := "1" // no data collection
	if p.DataCollection {
		maintenanceType = "0"
	}

	periods := p.TimePeriods
	if len(periods) == 0 {
		periods = []TimePeriod{{
			TimePeriodType: "0", // one-time
			StartDate:      formatEpoch(p.ActiveSince),
			Period:         formatSeconds(p.ActiveTill.Sub(p.ActiveSince)),
		}}
	}

	params := Params{
		"name":             p.Name,
		"active_since":     formatEpoch(p.ActiveSince),
		"active_till":      formatEpoch(p.ActiveTill),
		"maintenance_type": maintenanceType,
		"timeperiods":      periods,
	}
	if p.Description != "" {
		params["description"] = p.Description
	}
	if len(p.Hosts) > 0 {
		params["hosts"] = idRefs("hostid", hostIDs(p.Hosts))
	}
	if len(p.HostGroups) > 0 {
		ids := make([]string, len(p.HostGroups))
		for i, g := range p.HostGroups {
			ids[i] = g.GroupID
		}
		params["groups"] = idRefs("groupid", ids)
	}

	raw, err := c.call(ctx, "maintenance.create", params)
	if err != nil {
		return "", errs.Wrap(errs.ErrAPICall, err, "failed to create maintenance %q", p.Name)
	}
	ids, err := returnedList(raw, "maintenanceids", "maintenance.create")
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", errs.New(errs.ErrAPICall, "maintenance.create returned no maintenance IDs")
	}
	return ids[0], nil
}

// DeleteMaintenances deletes maintenance windows and returns the IDs of
// the deleted windows.
func (c *Client) DeleteMaintenances(ctx context.Context, maintenanceIDs ...string) ([]string, error) {
	raw, err := c.call(ctx, "maintenance.delete", maintenanceIDs)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to delete maintenance windows")
	}
	return returnedList(raw, "maintenanceids", "maintenance.delete")
}

func formatEpoch(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatInt(int64(d/time.Second), 10)
}
