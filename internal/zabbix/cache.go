package zabbix

import (
	"context"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

// Cache holds in-memory name/ID mappings for host groups and template
// groups. Lookups never hit the network; a miss means the caller decides
// whether to resolve via the API. The cache is not invalidated
// automatically — callers that mutate groups call Invalidate.
type Cache struct {
	client *Client

	hostGroupNameToID map[string]string
	hostGroupIDToName map[string]string

	templateGroupNameToID map[string]string
	templateGroupIDToName map[string]string
}

// NewCache creates an empty cache bound to a client.
func NewCache(client *Client) *Cache {
	return &Cache{client: client}
}

// Populate fills the cache with one hostgroup.get and, on servers with
// split template groups, one templategroup.get.
func (c *Cache) Populate(ctx context.Context) error {
	params := Params{"output": []string{"name", "groupid"}}

	raw, err := c.client.call(ctx, "hostgroup.get", params)
	if err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to populate host group cache")
	}
	var hostGroups []HostGroup
	if err := bind(raw, &hostGroups); err != nil {
		return err
	}
	c.hostGroupNameToID = make(map[string]string, len(hostGroups))
	c.hostGroupIDToName = make(map[string]string, len(hostGroups))
	for _, g := range hostGroups {
		c.hostGroupNameToID[g.Name] = g.GroupID
		c.hostGroupIDToName[g.GroupID] = g.Name
	}

	traits, err := c.client.Traits(ctx)
	if err != nil {
		return err
	}
	if !traits.SplitTemplateGroups {
		return nil
	}

	raw, err = c.client.call(ctx, "templategroup.get", params)
	if err != nil {
		return errs.Wrap(errs.ErrAPICall, err, "failed to populate template group cache")
	}
	var templateGroups []TemplateGroup
	if err := bind(raw, &templateGroups); err != nil {
		return err
	}
	c.templateGroupNameToID = make(map[string]string, len(templateGroups))
	c.templateGroupIDToName = make(map[string]string, len(templateGroups))
	for _, g := range templateGroups {
		c.templateGroupNameToID[g.Name] = g.GroupID
		c.templateGroupIDToName[g.GroupID] = g.Name
	}
	return nil
}

// Invalidate drops all cached mappings.
func (c *Cache) Invalidate() {
	c.hostGroupNameToID = nil
	c.hostGroupIDToName = nil
	c.templateGroupNameToID = nil
	c.templateGroupIDToName = nil
}

// HostGroupID returns the cached ID for a host group name.
func (c *Cache) HostGroupID(name string) (string, bool) {
	id, ok := c.hostGroupNameToID[name]
	return id, ok
}

// HostGroupName returns the cached name for a host group ID.
func (c *Cache) HostGroupName(id string) (string, bool) {
	name, ok := c.hostGroupIDToName[id]
	return name, ok
}

// TemplateGroupID returns the cached ID for a template group name.
func (c *Cache) TemplateGroupID(name string) (string, bool) {
	id, ok := c.templateGroupNameToID[name]
	return id, ok
}

// TemplateGroupName returns the cached name for a template group ID.
func (c *Cache) TemplateGroupName(id string) (string, bool) {
	name, ok := c.templateGroupIDToName[id]
	return name, ok
}
