package order

import (
	"github.com/shopspring/decimal"

	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/cart"
	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/menu"
)

// LineItem is a display-ready cart line: the cart quantity joined with the
// dish's current name and price from a menu snapshot.
type LineItem struct {
	Dish     menu.Dish
	Quantity int
	Subtotal decimal.Decimal
}

// Enrich joins cart entries against a menu snapshot, producing priced line
// items and their total. The function is pure: it never mutates the cart and
// makes no backend calls.
//
// Two explicit filters narrow the output to the resolvable subset:
//   - entries with quantity <= 0 are skipped (they should not be storable,
//     but enrichment does not trust its input);
//   - entries whose dish is absent from the snapshot are dropped silently.
//     The dish may have been deleted or re-keyed since the cart was
//     populated; dropping keeps checkout usable instead of failing it.
//
// Line items come out in the cart's insertion order, never re-sorted.
func Enrich(c *cart.Cart, snap *menu.Snapshot) ([]LineItem, decimal.Decimal) {
	entries := c.Entries()
	items := make([]LineItem, 0, len(entries))
	total := decimal.Zero

	for _, e := range entries {
		if e.Quantity <= 0 {
			continue
		}
		dish, ok := snap.Lookup(e.DishKey)
		if !ok {
			continue
		}
		subtotal := dish.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
		total = total.Add(subtotal)
		items = append(items, LineItem{
			Dish:     dish,
			Quantity: e.Quantity,
			Subtotal: subtotal,
		})
	}
	return items, total
}
