package zabbix

import (
	"context"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

// GetEvent fetches a single event by ID.
func (c *Client) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	events, err := c.GetEvents(ctx, EventGetOptions{EventIDs: []string{eventID}})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, errs.New(errs.ErrNotFound, "event with ID %s not found", eventID)
	}
	return &events[0], nil
}

// EventGetOptions controls event.get requests.
type EventGetOptions struct {
	EventIDs  []string
	ObjectIDs []string
	HostIDs   []string
	GroupIDs  []string
	SortField string
	SortOrder string
	Limit     int
}

// GetEvents fetches events.
func (c *Client) GetEvents(ctx context.Context, opts EventGetOptions) ([]Event, error) {
	params := Params{"output": "extend"}
	if len(opts.EventIDs) > 0 {
		params["eventids"] = opts.EventIDs
	}
	if len(opts.ObjectIDs) > 0 {
		params["objectids"] = opts.ObjectIDs
	}
	if len(opts.HostIDs) > 0 {
		params["hostids"] = opts.HostIDs
	}
	if len(opts.GroupIDs) > 0 {
		params["groupids"] = opts.GroupIDs
	}
	commonParams(params, opts.SortField, opts.SortOrder, opts.Limit)

	raw, err := c.call(ctx, "event.get", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to fetch events")
	}
	var events []Event
	if err := bind(raw, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Action bits of event.acknowledge.
const (
	eventActionClose          = 1
	eventActionAcknowledge    = 2
	eventActionAddMessage     = 4
	eventActionChangeSeverity = 8
)

// AcknowledgeEvent acknowledges one or more events, optionally adding a
// message, closing them, or changing severity. Returns the IDs of the
// affected events.
func (c *Client) AcknowledgeEvent(ctx context.Context, eventIDs []string, message string, closeEvent bool, severity string) ([]string, error) {
	action := eventActionAcknowledge
	if message != "" {
		action |= eventActionAddMessage
	}
	if closeEvent {
		action |= eventActionClose
	}
	params := Params{"eventids": eventIDs, "action": action}
	if message != "" {
		params["message"] = message
	}
	if severity != "" {
		params["action"] = action | eventActionChangeSeverity
		params["severity"] = severity
	}

	raw, err := c.call(ctx, "event.acknowledge", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to acknowledge events")
	}
	return returnedList(raw, "eventids", "event.acknowledge")
}
