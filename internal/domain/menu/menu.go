package menu

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Dish represents a catalog item as published by the backend. The backend
// owns and mutates dishes; this process only ever holds read-only snapshots
// fetched for a single request.
type Dish struct {
	ID          int
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Available   bool
}

// Key returns the dish identifier in its canonical string form, the form
// used for cart keys and snapshot lookups.
func (d Dish) Key() string {
	return strconv.Itoa(d.ID)
}

// Snapshot is a point-in-time view of the menu. Dishes are indexed by their
// stringified identifier so joins against cart keys survive numeric/string
// representation mismatches.
type Snapshot struct {
	dishes []Dish
	byKey  map[string]Dish
}

// NewSnapshot builds a Snapshot from the dishes of one fetch.
func NewSnapshot(dishes []Dish) *Snapshot {
	byKey := make(map[string]Dish, len(dishes))
	for _, d := range dishes {
		byKey[d.Key()] = d
	}
	return &Snapshot{dishes: dishes, byKey: byKey}
}

// Dishes returns the snapshot's dishes in backend order.
func (s *Snapshot) Dishes() []Dish {
	return s.dishes
}

// Lookup finds a dish by its stringified identifier.
func (s *Snapshot) Lookup(key string) (Dish, bool) {
	d, ok := s.byKey[key]
	return d, ok
}

// LookupID finds a dish by its numeric identifier.
func (s *Snapshot) LookupID(id int) (Dish, bool) {
	return s.Lookup(strconv.Itoa(id))
}

// Len returns the number of dishes in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.dishes)
}
