package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/order"
)

// Compile-time check: the client satisfies the lifecycle controller's
// gateway contract.
var _ order.Gateway = (*Client)(nil)

// CreateOrder submits the given line items as a new order for the customer
// behind token and returns the backend-assigned order identifier.
func (c *Client) CreateOrder(ctx context.Context, items []order.Item, token string) (int, error) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("dishId", func(e *jx.Encoder) { e.Int(item.DishID) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
					})
				}
			})
		})
	})

	data, err := c.do(ctx, http.MethodPost, "/orders", token, e.Bytes())
	if err != nil {
		return 0, err
	}
	return decodeCreatedID(data)
}

// FetchOrder retrieves one order. The backend scopes access to the token's
// owner; a foreign order id is rejected there, not here.
func (c *Client) FetchOrder(ctx context.Context, id int, token string) (*order.Order, error) {
	data, err := c.do(ctx, http.MethodGet, "/orders/"+strconv.Itoa(id), token, nil)
	if err != nil {
		return nil, err
	}
	return decodeOrderBody(data)
}

// FetchMyOrders retrieves all orders belonging to the token's customer.
func (c *Client) FetchMyOrders(ctx context.Context, token string) ([]order.Order, error) {
	data, err := c.do(ctx, http.MethodGet, "/me/orders", token, nil)
	if err != nil {
		return nil, err
	}
	return decodeOrderList(data)
}

// AcknowledgePickup confirms a completed order was collected, clearing the
// pickup notification flag on the backend.
func (c *Client) AcknowledgePickup(ctx context.Context, id int, token string) error {
	_, err := c.do(ctx, http.MethodPost, "/orders/"+strconv.Itoa(id)+"/pickup-ack", token, nil)
	return err
}

// FetchAllOrders retrieves every order, merchant view.
func (c *Client) FetchAllOrders(ctx context.Context, token string) ([]order.Order, error) {
	data, err := c.do(ctx, http.MethodGet, "/admin/orders", token, nil)
	if err != nil {
		return nil, err
	}
	return decodeOrderList(data)
}

// UpdateStatus asks the backend to set an order's status. The target status
// is forwarded verbatim; legality of the transition is the backend's call.
func (c *Client) UpdateStatus(ctx context.Context, id int, status, token string) error {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("status", func(e *jx.Encoder) { e.Str(status) })
	})

	_, err := c.do(ctx, http.MethodPatch, "/admin/orders/"+strconv.Itoa(id)+"/status", token, e.Bytes())
	return err
}

// decodeCreatedID extracts the assigned order id from a create response.
func decodeCreatedID(data []byte) (int, error) {
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Object {
		return 0, &FormatError{Reason: "create-order response is not an object"}
	}
	var id int
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "id" {
			return d.Skip()
		}
		var err error
		id, err = d.Int()
		return err
	})
	if err != nil {
		return 0, wrapFormat("decode create-order response", err)
	}
	if id == 0 {
		return 0, &FormatError{Reason: "create-order response has no id"}
	}
	return id, nil
}
