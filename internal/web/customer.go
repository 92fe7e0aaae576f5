package web

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/cart"
	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/identity"
	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/menu"
	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/order"
	"github.com/heiheiheiha00/restaurant-order-system/internal/session"
)

// CustomerBackend is the slice of the backend gateway the customer front
// end needs outside the order lifecycle controller.
type CustomerBackend interface {
	FetchMenu(ctx context.Context) (*menu.Snapshot, error)
	UserRegister(ctx context.Context, username, password, phone string) error
	UserLogin(ctx context.Context, username, password string) (*identity.Customer, error)
}

// Customer serves the guest/customer front end: menu, cart, orders, and
// user auth.
type Customer struct {
	gate    gate
	backend CustomerBackend
	orders  *order.Controller
}

// NewCustomer wires the customer front end handlers.
func NewCustomer(sessions *session.Manager, b CustomerBackend, orders *order.Controller) *Customer {
	return &Customer{
		gate: gate{
			sessions:  sessions,
			loginPath: "/login",
			prompt:    "Please sign in first",
		},
		backend: b,
		orders:  orders,
	}
}

// Router builds the customer front end routing table.
func (h *Customer) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", h.gate.open(h.menuPage)).Methods(http.MethodGet)

	r.HandleFunc("/cart", h.gate.open(h.cartPage)).Methods(http.MethodGet)
	r.HandleFunc("/cart/add", h.gate.open(h.cartAdd)).Methods(http.MethodPost)
	r.HandleFunc("/cart/update", h.gate.open(h.cartUpdate)).Methods(http.MethodPost)
	r.HandleFunc("/cart/clear", h.gate.open(h.cartClear)).Methods(http.MethodPost)

	r.HandleFunc("/order/create", h.gate.customer(h.orderCreate)).Methods(http.MethodPost)
	r.HandleFunc("/order/{id:[0-9]+}", h.gate.customer(h.orderStatus)).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id:[0-9]+}/pickup", h.gate.customer(h.pickupAck)).Methods(http.MethodPost)

	r.HandleFunc("/login", h.gate.open(h.loginPage)).Methods(http.MethodGet)
	r.HandleFunc("/login", h.gate.open(h.login)).Methods(http.MethodPost)
	r.HandleFunc("/register", h.gate.open(h.registerPage)).Methods(http.MethodGet)
	r.HandleFunc("/register", h.gate.open(h.register)).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.gate.open(h.logout)).Methods(http.MethodGet)
	r.HandleFunc("/profile", h.gate.customer(h.profile)).Methods(http.MethodGet)
	return r
}

// --- View models ---

type dishView struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Price       string `json:"price"`
	Available   bool   `json:"available"`
}

type userView struct {
	UserID   int    `json:"userId"`
	Username string `json:"username"`
}

type menuView struct {
	Dishes    []dishView `json:"dishes"`
	CartCount int        `json:"cartCount"`
	User      *userView  `json:"user,omitempty"`
}

type cartLineView struct {
	DishID   int    `json:"dishId"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

type cartView struct {
	Items []cartLineView `json:"items"`
	Total string         `json:"total"`
}

type orderLineView struct {
	DishID   int     `json:"dishId"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    *string `json:"price,omitempty"`
	Subtotal *string `json:"subtotal,omitempty"`
}

type orderView struct {
	ID             int             `json:"id"`
	Status         string          `json:"status"`
	Total          string          `json:"total"`
	PickupNotified bool            `json:"pickupNotified"`
	PickupReady    bool            `json:"pickupReady"`
	CreatedAt      string          `json:"createdAt,omitempty"`
	UpdatedAt      string          `json:"updatedAt,omitempty"`
	Items          []orderLineView `json:"items"`
}

type profileView struct {
	User   userView    `json:"user"`
	Orders []orderView `json:"orders"`
}

type loginView struct {
	Next     string `json:"next,omitempty"`
	Username string `json:"username,omitempty"`
}

func newDishView(d menu.Dish) dishView {
	return dishView{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Price:       d.Price.String(),
		Available:   d.Available,
	}
}

func newOrderView(o order.Order, items []order.ViewItem) orderView {
	v := orderView{
		ID:             o.ID,
		Status:         string(o.Status),
		Total:          o.Total.String(),
		PickupNotified: o.PickupNotified,
		PickupReady:    o.PickupReady(),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		Items:          make([]orderLineView, 0, len(items)),
	}
	for _, it := range items {
		line := orderLineView{
			DishID:   it.DishID,
			Name:     it.Name,
			Quantity: it.Quantity,
		}
		if it.Known {
			price := it.Price.String()
			subtotal := it.Subtotal.String()
			line.Price = &price
			line.Subtotal = &subtotal
		}
		v.Items = append(v.Items, line)
	}
	return v
}

func sessionUser(sess *session.Session) *userView {
	if sess.Customer == nil {
		return nil
	}
	return &userView{UserID: sess.Customer.UserID, Username: sess.Customer.Username}
}

// --- Menu & cart ---

func (h *Customer) menuPage(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	dishes := []dishView{}
	snap, err := h.backend.FetchMenu(r.Context())
	if err != nil {
		sess.PushFlash(session.FlashError, "Failed to load menu: "+userMessage(err))
	} else {
		for _, d := range snap.Dishes() {
			dishes = append(dishes, newDishView(d))
		}
	}
	renderPage(w, r, sess, menuView{
		Dishes:    dishes,
		CartCount: sess.Cart.TotalQuantity(),
		User:      sessionUser(sess),
	})
}

func (h *Customer) cartPage(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	view := cartView{Items: []cartLineView{}, Total: "0"}
	snap, err := h.backend.FetchMenu(r.Context())
	if err != nil {
		sess.PushFlash(session.FlashError, "Failed to load cart: "+userMessage(err))
	} else {
		items, total := order.Enrich(sess.Cart, snap)
		for _, it := range items {
			view.Items = append(view.Items, cartLineView{
				DishID:   it.Dish.ID,
				Name:     it.Dish.Name,
				Price:    it.Dish.Price.String(),
				Quantity: it.Quantity,
				Subtotal: it.Subtotal.String(),
			})
		}
		view.Total = total.String()
	}
	renderPage(w, r, sess, view)
}

func (h *Customer) cartAdd(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	key, ok := cart.ParseDishKey(r.PostFormValue("dish_id"))
	if !ok {
		sess.PushFlash(session.FlashError, "Invalid dish or quantity")
		redirect(w, r, "/")
		return
	}
	sess.Cart.Add(key, cart.ParseQuantity(r.PostFormValue("quantity")))
	sess.PushFlash(session.FlashSuccess, "Dish added to cart")
	redirect(w, r, "/")
}

// cartUpdate applies a bulk quantity edit. Fields are named qty_<dishID>;
// pairs that fail to parse are skipped on their own so one malformed field
// never blocks the rest of the form, and quantities <= 0 remove the entry.
func (h *Customer) cartUpdate(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	fields, err := parseOrderedForm(r)
	if err != nil {
		sess.PushFlash(session.FlashError, "Invalid form submission")
		redirect(w, r, "/cart")
		return
	}

	entries := make([]cart.Entry, 0, len(fields))
	for _, f := range fields {
		rawKey, found := strings.CutPrefix(f.Name, "qty_")
		if !found {
			continue
		}
		e, ok := cart.ParseBulkEntry(rawKey, f.Value)
		if !ok {
			continue
		}
		entries = append(entries, e)
	}
	sess.Cart.ReplaceAll(entries)
	sess.PushFlash(session.FlashSuccess, "Cart updated")
	redirect(w, r, "/cart")
}

func (h *Customer) cartClear(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	sess.Cart.Clear()
	sess.PushFlash(session.FlashInfo, "Cart cleared")
	redirect(w, r, "/cart")
}

// --- Orders ---

func (h *Customer) orderCreate(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	id, err := h.orders.Create(r.Context(), sess.Cart, sess.Customer.Token)
	if err != nil {
		if errors.Is(err, order.ErrEmptyCart) {
			sess.PushFlash(session.FlashError, "Please pick some dishes before ordering")
			redirect(w, r, "/")
			return
		}
		sess.PushFlash(session.FlashError, "Failed to place order: "+userMessage(err))
		redirect(w, r, "/cart")
		return
	}
	sess.PushFlash(session.FlashSuccess, fmt.Sprintf("Order #%d created", id))
	redirect(w, r, "/order/"+strconv.Itoa(id))
}

func (h *Customer) orderStatus(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	view, err := h.orders.View(r.Context(), id, sess.Customer.Token)
	if err != nil {
		sess.PushFlash(session.FlashError, "Failed to load order: "+userMessage(err))
		redirect(w, r, "/")
		return
	}
	renderPage(w, r, sess, newOrderView(view.Order, view.Items))
}

func (h *Customer) pickupAck(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	if err := h.orders.AcknowledgePickup(r.Context(), id, sess.Customer.Token); err != nil {
		sess.PushFlash(session.FlashError, "Failed to confirm pickup: "+userMessage(err))
	} else {
		sess.PushFlash(session.FlashSuccess, "Pickup confirmed")
	}
	redirect(w, r, refererTarget(r, "/profile"))
}

// --- Auth ---

func (h *Customer) loginPage(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	renderPage(w, r, sess, loginView{Next: nextTarget(r.URL.Query().Get("next"), "")})
}

func (h *Customer) login(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := strings.TrimSpace(r.PostFormValue("password"))
	next := formNext(r, "/")

	if username == "" || password == "" {
		sess.PushFlash(session.FlashError, "Username and password are required")
		renderPage(w, r, sess, loginView{Next: next, Username: username})
		return
	}

	cust, err := h.backend.UserLogin(r.Context(), username, password)
	if err != nil {
		sess.PushFlash(session.FlashError, "Login failed: "+userMessage(err))
		renderPage(w, r, sess, loginView{Next: next, Username: username})
		return
	}

	sess.Customer = cust
	sess.PushFlash(session.FlashSuccess, "Signed in")
	redirect(w, r, next)
}

func (h *Customer) registerPage(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	renderPage(w, r, sess, loginView{Next: nextTarget(r.URL.Query().Get("next"), "")})
}

func (h *Customer) register(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := strings.TrimSpace(r.PostFormValue("password"))
	phone := strings.TrimSpace(r.PostFormValue("phone"))
	next := formNext(r, "")

	if username == "" || password == "" {
		sess.PushFlash(session.FlashError, "Username and password must not be empty")
		renderPage(w, r, sess, loginView{Next: next, Username: username})
		return
	}

	if err := h.backend.UserRegister(r.Context(), username, password, phone); err != nil {
		sess.PushFlash(session.FlashError, "Registration failed: "+userMessage(err))
		renderPage(w, r, sess, loginView{Next: next, Username: username})
		return
	}

	sess.PushFlash(session.FlashSuccess, "Registered, please sign in")
	target := "/login"
	if next != "" {
		target += "?next=" + url.QueryEscape(next)
	}
	redirect(w, r, target)
}

func (h *Customer) logout(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	sess.ClearCustomer()
	sess.PushFlash(session.FlashInfo, "Signed out")
	redirect(w, r, "/")
}

func (h *Customer) profile(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	view := profileView{
		User:   *sessionUser(sess),
		Orders: []orderView{},
	}
	orders, err := h.orders.MyOrders(r.Context(), sess.Customer.Token)
	if err != nil {
		sess.PushFlash(session.FlashError, "Failed to load orders: "+userMessage(err))
	} else {
		for _, o := range orders {
			view.Orders = append(view.Orders, newOrderView(o, nil))
		}
	}
	renderPage(w, r, sess, view)
}
