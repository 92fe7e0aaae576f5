package cart

import (
	"strconv"
)

// Entry is a single cart line: a dish identifier (stringified) and the
// desired quantity. Quantity is always positive for stored entries.
type Entry struct {
	DishKey  string
	Quantity int
}

// Cart is a session-scoped, insertion-ordered mapping of dish identifier to
// quantity. It is plain working state: no backend calls, no persistence.
// Callers are expected to serialize access per session; Cart itself carries
// no lock.
type Cart struct {
	order []string
	items map[string]int
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{items: make(map[string]int)}
}

// Add merges qty into the entry for dishKey: the stored quantity becomes the
// previous quantity plus qty. Quantities below 1 are floored at 1, so Add can
// never remove or zero an entry.
func (c *Cart) Add(dishKey string, qty int) {
	if qty < 1 {
		qty = 1
	}
	if _, ok := c.items[dishKey]; !ok {
		c.order = append(c.order, dishKey)
	}
	c.items[dishKey] += qty
}

// ReplaceAll swaps the entire cart content for the given entries in one step.
// Entries with quantity <= 0 are dropped, duplicate keys keep the last
// quantity, and insertion order follows the order of the slice. There is no
// partially-applied state: the swap happens only after filtering.
func (c *Cart) ReplaceAll(entries []Entry) {
	order := make([]string, 0, len(entries))
	items := make(map[string]int, len(entries))
	for _, e := range entries {
		if e.Quantity <= 0 {
			continue
		}
		if _, ok := items[e.DishKey]; !ok {
			order = append(order, e.DishKey)
		}
		items[e.DishKey] = e.Quantity
	}
	c.order = order
	c.items = items
}

// Clear removes every entry.
func (c *Cart) Clear() {
	c.order = nil
	c.items = make(map[string]int)
}

// Get returns the quantity stored for dishKey, zero when absent.
func (c *Cart) Get(dishKey string) int {
	return c.items[dishKey]
}

// Entries returns the cart content in insertion order.
func (c *Cart) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, Entry{DishKey: key, Quantity: c.items[key]})
	}
	return out
}

// Len returns the number of distinct dishes in the cart.
func (c *Cart) Len() int {
	return len(c.items)
}

// TotalQuantity returns the sum of all quantities, the number shown on the
// cart badge.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, qty := range c.items {
		total += qty
	}
	return total
}

// ParseDishKey normalizes a raw dish identifier from a form field. The value
// must parse as an integer; the canonical key is its base-10 rendering.
func ParseDishKey(raw string) (string, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return "", false
	}
	return strconv.Itoa(id), true
}

// ParseQuantity interprets a raw quantity from an "add to cart" form.
// A missing or unparsable value defaults to 1, and any parsed value is
// floored at 1. Add quantities are therefore never zero or negative.
func ParseQuantity(raw string) int {
	qty, err := strconv.Atoi(raw)
	if err != nil || qty < 1 {
		return 1
	}
	return qty
}

// ParseBulkEntry interprets one (rawKey, rawQty) pair from a bulk
// quantity-edit form. It reports ok=false when either side fails to parse;
// a malformed pair is skipped on its own so the rest of the form still
// applies. Parsed quantities <= 0 are returned as-is and dropped later by
// ReplaceAll, which removes the entry.
func ParseBulkEntry(rawKey, rawQty string) (Entry, bool) {
	key, ok := ParseDishKey(rawKey)
	if !ok {
		return Entry{}, false
	}
	qty, err := strconv.Atoi(rawQty)
	if err != nil {
		return Entry{}, false
	}
	return Entry{DishKey: key, Quantity: qty}, true
}
