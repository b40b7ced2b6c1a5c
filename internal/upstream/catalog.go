package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/lumenpos/lumenpos/internal/catalog"
	"github.com/lumenpos/lumenpos/internal/platform/httpx"
)

// Resolve fetches one catalog item by id.
func (c *Client) Resolve(ctx context.Context, itemID string) (catalog.Item, error) {
	var envelope apiEnvelope[catalog.Item]
	err := c.do(ctx, http.MethodGet, "/item/"+itemID, nil, &envelope)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return catalog.Item{}, fmt.Errorf("%w: %s", catalog.ErrItemNotFound, itemID)
		}
		return catalog.Item{}, err
	}
	return envelope.Results, nil
}

// List fetches the full catalog for the item picker.
func (c *Client) List(ctx context.Context) ([]catalog.Item, error) {
	var envelope apiEnvelope[[]catalog.Item]
	if err := c.do(ctx, http.MethodGet, "/item?unpaginated=1", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Results, nil
}
