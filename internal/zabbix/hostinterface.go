package zabbix

import (
	"context"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

// GetHostInterface fetches a single interface by ID.
func (c *Client) GetHostInterface(ctx context.Context, interfaceID string) (*HostInterface, error) {
	ifaces, err := c.GetHostInterfaces(ctx, HostInterfaceGetOptions{InterfaceIDs: []string{interfaceID}})
	if err != nil {
		return nil, err
	}
	if len(ifaces) == 0 {
		return nil, errs.New(errs.ErrNotFound, "host interface with ID %s not found", interfaceID)
	}
	return &ifaces[0], nil
}

// HostInterfaceGetOptions controls hostinterface.get requests.
type HostInterfaceGetOptions struct {
	InterfaceIDs []string
	HostIDs      []string
	Limit        int
}

// GetHostInterfaces fetches host interfaces.
func (c *Client) GetHostInterfaces(ctx context.Context, opts HostInterfaceGetOptions) ([]HostInterface, error) {
	params := Params{"output": "extend"}
	if len(opts.InterfaceIDs) > 0 {
		params["interfaceids"] = opts.InterfaceIDs
	}
	if len(opts.HostIDs) > 0 {
		params["hostids"] = opts.HostIDs
	}
	commonParams(params, "", "", opts.Limit)

	raw, err := c.call(ctx, "hostinterface.get", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to fetch host interfaces")
	}
	var ifaces []HostInterface
	if err := bind(raw, &ifaces); err != nil {
		return nil, err
	}
	return ifaces, nil
}

// CreateHostInterface creates an interface on a host and returns its ID.
// The HostID field of the interface must be set.
func (c *Client) CreateHostInterface(ctx context.Context, iface HostInterface) (string, error) {
	raw, err := c.call(ctx, "hostinterface.create", iface)
	if err != nil {
		return "", errs.Wrap(errs.ErrAPICall, err, "failed to create interface on host with ID %s", iface.HostID)
	}
	ids, err := returnedList(raw, "interfaceids", "hostinterface.create")
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", errs.New(errs.ErrAPICall, "hostinterface.create returned no interface IDs")
	}
	return ids[0], nil
}

// UpdateHostInterface applies changes to an interface by ID.
func (c *Client) UpdateHostInterface(ctx context.Context, interfaceID string, changes Params) error {
	params := Params{"interfaceid": interfaceID}
	for k, v := range changes {
		params[k] = v
	}
	if _, err := c.call(ctx, "hostinterface.update", params); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to update interface with ID %s", interfaceID)
	}
	return nil
}

// DeleteHostInterface deletes an interface by ID.
func (c *Client) DeleteHostInterface(ctx context.Context, interfaceID string) error {
	if _, err := c.call(ctx, "hostinterface.delete", []string{interfaceID}); err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to delete interface with ID %s", interfaceID)
	}
	return nil
}
