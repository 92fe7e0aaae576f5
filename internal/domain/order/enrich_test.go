package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/cart"
	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/menu"
)

func testSnapshot() *menu.Snapshot {
	return menu.NewSnapshot([]menu.Dish{
		{ID: 1, Name: "Pad Thai", Price: decimal.NewFromInt(10), Available: true},
		{ID: 2, Name: "Green Curry", Price: decimal.NewFromInt(5), Available: true},
	})
}

func TestEnrich_JoinsAndTotals(t *testing.T) {
	c := cart.New()
	c.Add("1", 2)
	c.Add("2", 1)

	items, total := Enrich(c, testSnapshot())

	require.Len(t, items, 2)
	assert.Equal(t, "Pad Thai", items[0].Dish.Name)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[0].Subtotal.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "Green Curry", items[1].Dish.Name)
	assert.True(t, items[1].Subtotal.Equal(decimal.NewFromInt(5)))
	assert.True(t, total.Equal(decimal.NewFromInt(25)))
}

func TestEnrich_DropsUnknownDishes(t *testing.T) {
	c := cart.New()
	c.Add("1", 1)
	c.Add("99", 3)

	items, total := Enrich(c, testSnapshot())

	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Dish.ID)
	assert.True(t, total.Equal(decimal.NewFromInt(10)))
}

func TestEnrich_EmptyCart(t *testing.T) {
	items, total := Enrich(cart.New(), testSnapshot())

	assert.Empty(t, items)
	assert.True(t, total.IsZero())
}

func TestEnrich_PreservesCartOrder(t *testing.T) {
	c := cart.New()
	c.Add("2", 1)
	c.Add("1", 1)

	items, _ := Enrich(c, testSnapshot())

	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Dish.ID)
	assert.Equal(t, 1, items[1].Dish.ID)
}

func TestEnrich_DoesNotMutateCart(t *testing.T) {
	c := cart.New()
	c.Add("99", 2) // unknown dish is dropped from the view, not the cart

	Enrich(c, testSnapshot())

	assert.Equal(t, 2, c.Get("99"))
	assert.Equal(t, 1, c.Len())
}
