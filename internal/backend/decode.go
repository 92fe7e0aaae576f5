package backend

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/menu"
	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/order"
)

// Decoders in this file validate upstream payload shape explicitly: a
// mismatch produces a tagged FormatError instead of a panic or a silently
// wrong value further up the stack. Unknown object keys are always skipped
// so backend additions stay non-breaking.

func decodeDishes(data []byte) ([]menu.Dish, error) {
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Array {
		return nil, &FormatError{Reason: "menu is not a list"}
	}

	var dishes []menu.Dish
	err := d.Arr(func(d *jx.Decoder) error {
		if d.Next() != jx.Object {
			return &FormatError{Reason: "menu entry is not an object"}
		}
		dish, err := decodeDish(d)
		if err != nil {
			return err
		}
		dishes = append(dishes, dish)
		return nil
	})
	if err != nil {
		return nil, wrapFormat("decode menu", err)
	}
	return dishes, nil
}

func decodeDish(d *jx.Decoder) (menu.Dish, error) {
	var dish menu.Dish
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			dish.ID, err = d.Int()
		case "name":
			dish.Name, err = d.Str()
		case "description":
			dish.Description, err = d.Str()
		case "category":
			dish.Category, err = d.Str()
		case "price":
			dish.Price, err = decodeDecimal(d)
		case "isAvailable":
			dish.Available, err = d.Bool()
		default:
			err = d.Skip()
		}
		return err
	})
	return dish, err
}

func decodeOrderBody(data []byte) (*order.Order, error) {
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Object {
		return nil, &FormatError{Reason: "order is not an object"}
	}
	o, err := decodeOrder(d)
	if err != nil {
		return nil, wrapFormat("decode order", err)
	}
	return &o, nil
}

func decodeOrderList(data []byte) ([]order.Order, error) {
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Array {
		return nil, &FormatError{Reason: "order list is not a list"}
	}

	var orders []order.Order
	err := d.Arr(func(d *jx.Decoder) error {
		if d.Next() != jx.Object {
			return &FormatError{Reason: "order entry is not an object"}
		}
		o, err := decodeOrder(d)
		if err != nil {
			return err
		}
		orders = append(orders, o)
		return nil
	})
	if err != nil {
		return nil, wrapFormat("decode order list", err)
	}
	return orders, nil
}

func decodeOrder(d *jx.Decoder) (order.Order, error) {
	var o order.Order
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			o.ID, err = d.Int()
		case "status":
			var s string
			s, err = d.Str()
			o.Status = order.Status(s)
		case "total":
			o.Total, err = decodeDecimal(d)
		case "items":
			err = d.Arr(func(d *jx.Decoder) error {
				item, err := decodeOrderItem(d)
				if err != nil {
					return err
				}
				o.Items = append(o.Items, item)
				return nil
			})
		case "pickupNotified":
			o.PickupNotified, err = d.Bool()
		case "userId":
			o.UserID, err = d.Int()
		case "createdAt":
			o.CreatedAt, err = d.Str()
		case "updatedAt":
			o.UpdatedAt, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	return o, err
}

// decodeOrderItem reads only the dish identifier and quantity from an order
// line. The backend may send more (unit price at order time, for one); the
// front ends re-derive display prices from the live menu instead.
func decodeOrderItem(d *jx.Decoder) (order.Item, error) {
	var item order.Item
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "dishId":
			item.DishID, err = d.Int()
		case "quantity":
			item.Quantity, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
	return item, err
}

// decodeDecimal reads a JSON number into a decimal without a float64 round
// trip, preserving the backend's exact digits.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(n.String())
}

// wrapFormat tags err as a FormatError unless it already is one.
func wrapFormat(reason string, err error) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		return err
	}
	return &FormatError{Reason: reason, Err: err}
}
