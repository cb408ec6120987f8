package zabbix

import (
	"context"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

// GetMediaType fetches a single media type by name or ID.
func (c *Client) GetMediaType(ctx context.Context, nameOrID string) (*MediaType, error) {
	mts, err := c.GetMediaTypes(ctx, []string{nameOrID})
	if err != nil {
		return nil, err
	}
	if len(mts) == 0 {
		return nil, errs.New(errs.ErrNotFound, "media type %q not found", nameOrID)
	}
	return &mts[0], nil
}

// GetMediaTypes fetches media types by names or IDs.
func (c *Client) GetMediaTypes(ctx context.Context, namesOrIDs []string) ([]MediaType, error) {
	params := Params{"output": "extend"}
	nameOrIDParams(params, namesOrIDs, "name", "mediatypeids", true)

	raw, err := c.call(ctx, "mediatype.get", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to fetch media types")
	}
	var mts []MediaType
	if err := bind(raw, &mts); err != nil {
		return nil, err
	}
	return mts, nil
}

// GetImages fetches images by names or IDs. The image payload itself is
// only fetched when selectImage is set.
func (c *Client) GetImages(ctx context.Context, namesOrIDs []string, selectImage bool) ([]Image, error) {
	params := Params{"output": "extend"}
	nameOrIDParams(params, namesOrIDs, "name", "imageids", true)
	if selectImage {
		params["select_image"] = true
	}

	raw, err := c.call(ctx, "image.get", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to fetch images")
	}
	var images []Image
	if err := bind(raw, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// GetMaps fetches maps by names or IDs.
func (c *Client) GetMaps(ctx context.Context, namesOrIDs []string) ([]Map, error) {
	params := Params{"output": "extend"}
	nameOrIDParams(params, namesOrIDs, "name", "sysmapids", true)

	raw, err := c.call(ctx, "map.get", params)
	if err != nil {
		return nil, errs.Wrap(errs.ErrAPICall, err, "failed to fetch maps")
	}
	var maps []Map
	if err := bind(raw, &maps); err != nil {
		return nil, err
	}
	return maps, nil
}
