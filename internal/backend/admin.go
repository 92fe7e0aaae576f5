package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// DishInput is the payload for creating a dish.
type DishInput struct {
	Name        string
	Category    string
	Description string
	Price       decimal.Decimal
	Available   bool
}

// DishPatch is a partial dish update. Nil fields are left out of the PATCH
// payload entirely, so the backend only touches what the merchant changed.
type DishPatch struct {
	Name        *string
	Category    *string
	Description *string
	Price       *decimal.Decimal
	Available   *bool
}

// IsEmpty reports whether the patch carries no field at all.
func (p DishPatch) IsEmpty() bool {
	return p.Name == nil && p.Category == nil && p.Description == nil &&
		p.Price == nil && p.Available == nil
}

// CreateDish adds a dish to the merchant's catalog.
func (c *Client) CreateDish(ctx context.Context, in DishInput, token string) error {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("name", func(e *jx.Encoder) { e.Str(in.Name) })
		e.Field("category", func(e *jx.Encoder) { e.Str(in.Category) })
		e.Field("description", func(e *jx.Encoder) { e.Str(in.Description) })
		e.Field("price", func(e *jx.Encoder) { encodeDecimal(e, in.Price) })
		e.Field("isAvailable", func(e *jx.Encoder) { e.Bool(in.Available) })
	})
	_, err := c.do(ctx, http.MethodPost, "/admin/menu", token, e.Bytes())
	return err
}

// UpdateDish applies a partial update to one dish.
func (c *Client) UpdateDish(ctx context.Context, dishID int, patch DishPatch, token string) error {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		if patch.Name != nil {
			e.Field("name", func(e *jx.Encoder) { e.Str(*patch.Name) })
		}
		if patch.Category != nil {
			e.Field("category", func(e *jx.Encoder) { e.Str(*patch.Category) })
		}
		if patch.Description != nil {
			e.Field("description", func(e *jx.Encoder) { e.Str(*patch.Description) })
		}
		if patch.Price != nil {
			e.Field("price", func(e *jx.Encoder) { encodeDecimal(e, *patch.Price) })
		}
		if patch.Available != nil {
			e.Field("isAvailable", func(e *jx.Encoder) { e.Bool(*patch.Available) })
		}
	})
	_, err := c.do(ctx, http.MethodPatch, "/admin/menu/"+strconv.Itoa(dishID), token, e.Bytes())
	return err
}

// encodeDecimal writes a decimal as a raw JSON number.
func encodeDecimal(e *jx.Encoder, v decimal.Decimal) {
	e.Num(jx.Num(v.String()))
}
