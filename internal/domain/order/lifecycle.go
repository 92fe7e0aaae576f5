package order

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/cart"
	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/menu"
)

// Gateway defines the backend order operations the controller depends on.
// Implemented by the backend client.
type Gateway interface {
	CreateOrder(ctx context.Context, items []Item, token string) (int, error)
	FetchOrder(ctx context.Context, id int, token string) (*Order, error)
	FetchMyOrders(ctx context.Context, token string) ([]Order, error)
	AcknowledgePickup(ctx context.Context, id int, token string) error
	FetchAllOrders(ctx context.Context, token string) ([]Order, error)
	UpdateStatus(ctx context.Context, id int, status, token string) error
}

// MenuFetcher supplies live menu snapshots for display-time joins.
type MenuFetcher interface {
	FetchMenu(ctx context.Context) (*menu.Snapshot, error)
	FetchAdminMenu(ctx context.Context, token string) (*menu.Snapshot, error)
}

// Controller drives an order through its lifecycle against the backend:
// creation from a cart, status queries with display-time menu joins,
// merchant status transitions, and customer pickup acknowledgment.
// It is stateless and safe for concurrent use.
type Controller struct {
	gateway Gateway
	menus   MenuFetcher
}

// NewController creates a Controller over the given backend accessors.
func NewController(gateway Gateway, menus MenuFetcher) *Controller {
	return &Controller{gateway: gateway, menus: menus}
}

// Create converts the cart into order line items and submits them. Entries
// that fail integer parsing or positivity filtering are skipped; if nothing
// survives, Create fails with ErrEmptyCart before any network call.
//
// Clearing the cart is the one guaranteed side effect of a successful
// create. When the backend call fails the cart is left untouched so the
// user can retry.
func (c *Controller) Create(ctx context.Context, crt *cart.Cart, token string) (int, error) {
	var items []Item
	for _, e := range crt.Entries() {
		if e.Quantity <= 0 {
			continue
		}
		dishID, err := strconv.Atoi(e.DishKey)
		if err != nil {
			continue
		}
		items = append(items, Item{DishID: dishID, Quantity: e.Quantity})
	}
	if len(items) == 0 {
		return 0, ErrEmptyCart
	}

	id, err := c.gateway.CreateOrder(ctx, items, token)
	if err != nil {
		return 0, errors.Wrap(err, "create order")
	}
	crt.Clear()
	return id, nil
}

// ViewItem is one order line prepared for display. Known reports whether the
// dish was found in the current menu snapshot; when false the name is a
// placeholder and Price/Subtotal are zero and should not be shown.
type ViewItem struct {
	DishID   int
	Name     string
	Quantity int
	Known    bool
	Price    decimal.Decimal
	Subtotal decimal.Decimal
}

// View is a single order joined with current menu data for display.
type View struct {
	Order Order
	Items []ViewItem
}

// PickupReady mirrors Order.PickupReady for template-friendly access.
func (v *View) PickupReady() bool {
	return v.Order.PickupReady()
}

// View fetches one order and a fresh menu snapshot concurrently and joins
// them. Orders store only dish identifier and quantity, so names, prices and
// subtotals are derived from menu data as it is now: a renamed or re-priced
// dish retroactively changes how historical orders render.
func (c *Controller) View(ctx context.Context, orderID int, token string) (*View, error) {
	var (
		ord  *Order
		snap *menu.Snapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ord, err = c.gateway.FetchOrder(gctx, orderID, token)
		return err
	})
	g.Go(func() (err error) {
		snap, err = c.menus.FetchMenu(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "view order %d", orderID)
	}

	return &View{Order: *ord, Items: joinItems(ord.Items, snap)}, nil
}

// MyOrders returns the authenticated customer's orders as the backend
// reports them, newest-first ordering included.
func (c *Controller) MyOrders(ctx context.Context, token string) ([]Order, error) {
	orders, err := c.gateway.FetchMyOrders(ctx, token)
	if err != nil {
		return nil, errors.Wrap(err, "fetch my orders")
	}
	return orders, nil
}

// AcknowledgePickup confirms a completed order was collected. The call is
// not gated locally on pickup readiness; the backend is the authority and
// may no-op or reject it there.
func (c *Controller) AcknowledgePickup(ctx context.Context, orderID int, token string) error {
	if err := c.gateway.AcknowledgePickup(ctx, orderID, token); err != nil {
		return errors.Wrapf(err, "acknowledge pickup for order %d", orderID)
	}
	return nil
}

// Transition asks the backend to move an order to the target status.
// An empty status is rejected locally; everything else is forwarded
// verbatim. Whether the transition is a legal successor of the current
// status is the backend's contract, deliberately not re-validated here.
func (c *Controller) Transition(ctx context.Context, orderID int, status, token string) error {
	if status == "" {
		return &ValidationError{Field: "status", Reason: "must not be empty"}
	}
	if err := c.gateway.UpdateStatus(ctx, orderID, status, token); err != nil {
		return errors.Wrapf(err, "update status of order %d", orderID)
	}
	return nil
}

// Board is the merchant's order overview: every order joined with dish data
// and grouped by lifecycle status. Orders with an unrecognized status appear
// in All but in no group. A non-nil MenuErr means the dish join ran against
// an empty snapshot and every item carries placeholder data.
type Board struct {
	All     []View
	Groups  map[Status][]View
	MenuErr error
}

// Board fetches all orders and the admin menu concurrently and builds the
// grouped overview. The orders are the load-bearing half: when only the menu
// fetch fails the board still carries every order, joined against an empty
// snapshot, with the failure reported in Board.MenuErr so the caller can
// surface it without losing the page.
func (c *Controller) Board(ctx context.Context, token string) (*Board, error) {
	var (
		orders  []Order
		snap    *menu.Snapshot
		menuErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		orders, err = c.gateway.FetchAllOrders(gctx, token)
		return err
	})
	g.Go(func() error {
		s, err := c.menus.FetchAdminMenu(gctx, token)
		if err != nil {
			menuErr = errors.Wrap(err, "fetch admin menu")
			return nil
		}
		snap = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "fetch order board")
	}
	if snap == nil {
		snap = menu.NewSnapshot(nil)
	}

	board := &Board{
		All:     make([]View, 0, len(orders)),
		Groups:  make(map[Status][]View, len(KnownStatuses)),
		MenuErr: menuErr,
	}
	for _, s := range KnownStatuses {
		board.Groups[s] = []View{}
	}
	for _, ord := range orders {
		v := View{Order: ord, Items: joinItems(ord.Items, snap)}
		board.All = append(board.All, v)
		if _, known := board.Groups[ord.Status]; known {
			board.Groups[ord.Status] = append(board.Groups[ord.Status], v)
		}
	}
	return board, nil
}

// joinItems resolves order items against a menu snapshot. Dishes missing
// from the snapshot keep a placeholder name and are marked not Known rather
// than being dropped: an order line is a fact, unlike a cart line.
func joinItems(items []Item, snap *menu.Snapshot) []ViewItem {
	out := make([]ViewItem, 0, len(items))
	for _, it := range items {
		vi := ViewItem{
			DishID:   it.DishID,
			Name:     fmt.Sprintf("Dish %d", it.DishID),
			Quantity: it.Quantity,
		}
		if dish, ok := snap.LookupID(it.DishID); ok {
			vi.Known = true
			vi.Name = dish.Name
			vi.Price = dish.Price
			vi.Subtotal = dish.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		}
		out = append(out, vi)
	}
	return out
}
