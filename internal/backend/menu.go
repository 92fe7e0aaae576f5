package backend

import (
	"context"
	"net/http"

	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/menu"
)

// FetchMenu retrieves the public dish catalog. No caching: every call
// re-fetches, so callers see price and availability drift between requests.
func (c *Client) FetchMenu(ctx context.Context) (*menu.Snapshot, error) {
	data, err := c.do(ctx, http.MethodGet, "/menu", "", nil)
	if err != nil {
		return nil, err
	}
	dishes, err := decodeDishes(data)
	if err != nil {
		return nil, err
	}
	return menu.NewSnapshot(dishes), nil
}

// FetchAdminMenu retrieves the merchant's full catalog, including dishes
// hidden from the public menu.
func (c *Client) FetchAdminMenu(ctx context.Context, token string) (*menu.Snapshot, error) {
	data, err := c.do(ctx, http.MethodGet, "/admin/menu", token, nil)
	if err != nil {
		return nil, err
	}
	dishes, err := decodeDishes(data)
	if err != nil {
		return nil, err
	}
	return menu.NewSnapshot(dishes), nil
}
