package web

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/heiheiheiha00/restaurant-order-system/internal/backend"
	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/identity"
	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/menu"
	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/order"
	"github.com/heiheiheiha00/restaurant-order-system/internal/session"
)

// MerchantBackend is the slice of the backend gateway the merchant front
// end needs outside the order lifecycle controller.
type MerchantBackend interface {
	FetchAdminMenu(ctx context.Context, token string) (*menu.Snapshot, error)
	CreateDish(ctx context.Context, in backend.DishInput, token string) error
	UpdateDish(ctx context.Context, dishID int, patch backend.DishPatch, token string) error
	MerchantRegister(ctx context.Context, username, password, storeName string) error
	MerchantLogin(ctx context.Context, username, password string) (*identity.Merchant, error)
}

// Merchant serves the merchant front end: the order board, status
// transitions, menu management, and merchant auth. Merchants have no cart.
type Merchant struct {
	gate    gate
	backend MerchantBackend
	orders  *order.Controller
}

// NewMerchant wires the merchant front end handlers.
func NewMerchant(sessions *session.Manager, b MerchantBackend, orders *order.Controller) *Merchant {
	return &Merchant{
		gate: gate{
			sessions:  sessions,
			loginPath: "/merchant/login",
			prompt:    "Please sign in with a merchant account",
		},
		backend: b,
		orders:  orders,
	}
}

// Router builds the merchant front end routing table.
func (h *Merchant) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", h.gate.open(h.index)).Methods(http.MethodGet)

	r.HandleFunc("/merchant/login", h.gate.open(h.loginPage)).Methods(http.MethodGet)
	r.HandleFunc("/merchant/login", h.gate.open(h.login)).Methods(http.MethodPost)
	r.HandleFunc("/merchant/register", h.gate.open(h.registerPage)).Methods(http.MethodGet)
	r.HandleFunc("/merchant/register", h.gate.open(h.register)).Methods(http.MethodPost)
	r.HandleFunc("/merchant/logout", h.gate.open(h.logout)).Methods(http.MethodGet)

	r.HandleFunc("/admin/orders", h.gate.merchant(h.orderBoard)).Methods(http.MethodGet)
	r.HandleFunc("/admin/orders/{id:[0-9]+}/status", h.gate.merchant(h.updateStatus)).Methods(http.MethodPost)

	r.HandleFunc("/admin/menu/manage", h.gate.merchant(h.menuManage)).Methods(http.MethodGet)
	r.HandleFunc("/admin/menu/add", h.gate.merchant(h.menuAdd)).Methods(http.MethodPost)
	r.HandleFunc("/admin/menu/{id:[0-9]+}/update", h.gate.merchant(h.menuUpdate)).Methods(http.MethodPost)
	return r
}

// --- View models ---

type merchantView struct {
	MerchantID int    `json:"merchantId"`
	Username   string `json:"username"`
}

type boardView struct {
	OrdersByStatus map[string][]orderView `json:"ordersByStatus"`
	AllOrders      []orderView            `json:"allOrders"`
	Merchant       merchantView           `json:"merchant"`
}

type adminMenuView struct {
	Dishes   []dishView   `json:"dishes"`
	Merchant merchantView `json:"merchant"`
}

func sessionMerchant(sess *session.Session) merchantView {
	return merchantView{
		MerchantID: sess.Merchant.MerchantID,
		Username:   sess.Merchant.Username,
	}
}

// --- Entry ---

func (h *Merchant) index(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if sess.Merchant != nil {
		redirect(w, r, "/admin/orders")
		return
	}
	redirect(w, r, "/merchant/login?next="+url.QueryEscape("/admin/orders"))
}

// --- Order board ---

func (h *Merchant) orderBoard(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	view := boardView{
		OrdersByStatus: emptyGroups(),
		AllOrders:      []orderView{},
		Merchant:       sessionMerchant(sess),
	}
	board, err := h.orders.Board(r.Context(), sess.Merchant.Token)
	if err != nil {
		sess.PushFlash(session.FlashError, "Failed to load orders: "+userMessage(err))
		renderPage(w, r, sess, view)
		return
	}
	if board.MenuErr != nil {
		sess.PushFlash(session.FlashError, "Failed to load menu data: "+userMessage(board.MenuErr))
	}

	for _, v := range board.All {
		view.AllOrders = append(view.AllOrders, newOrderView(v.Order, v.Items))
	}
	for status, group := range board.Groups {
		views := make([]orderView, 0, len(group))
		for _, v := range group {
			views = append(views, newOrderView(v.Order, v.Items))
		}
		view.OrdersByStatus[string(status)] = views
	}
	renderPage(w, r, sess, view)
}

func emptyGroups() map[string][]orderView {
	groups := make(map[string][]orderView, len(order.KnownStatuses))
	for _, s := range order.KnownStatuses {
		groups[string(s)] = []orderView{}
	}
	return groups
}

func (h *Merchant) updateStatus(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	status := r.PostFormValue("status")

	if err := h.orders.Transition(r.Context(), id, status, sess.Merchant.Token); err != nil {
		sess.PushFlash(session.FlashError, "Failed to update status: "+userMessage(err))
	} else {
		sess.PushFlash(session.FlashSuccess, fmt.Sprintf("Order #%d moved to %s", id, status))
	}
	redirect(w, r, "/admin/orders")
}

// --- Menu management ---

func (h *Merchant) menuManage(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	view := adminMenuView{Dishes: []dishView{}, Merchant: sessionMerchant(sess)}
	snap, err := h.backend.FetchAdminMenu(r.Context(), sess.Merchant.Token)
	if err != nil {
		sess.PushFlash(session.FlashError, "Failed to load menu: "+userMessage(err))
	} else {
		for _, d := range snap.Dishes() {
			view.Dishes = append(view.Dishes, newDishView(d))
		}
	}
	renderPage(w, r, sess, view)
}

func (h *Merchant) menuAdd(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	name := strings.TrimSpace(r.PostFormValue("name"))
	rawPrice := strings.TrimSpace(r.PostFormValue("price"))
	if name == "" || rawPrice == "" {
		sess.PushFlash(session.FlashError, "Dish name and price are required")
		redirect(w, r, "/admin/menu/manage")
		return
	}
	price, err := decimal.NewFromString(rawPrice)
	if err != nil || price.IsNegative() {
		sess.PushFlash(session.FlashError, "Price must be a non-negative number")
		redirect(w, r, "/admin/menu/manage")
		return
	}

	in := backend.DishInput{
		Name:        name,
		Category:    strings.TrimSpace(r.PostFormValue("category")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Price:       price,
		Available:   r.PostFormValue("is_available") == "on",
	}
	if err := h.backend.CreateDish(r.Context(), in, sess.Merchant.Token); err != nil {
		sess.PushFlash(session.FlashError, "Failed to create dish: "+userMessage(err))
	} else {
		sess.PushFlash(session.FlashSuccess, "Dish created")
	}
	redirect(w, r, "/admin/menu/manage")
}

// menuUpdate builds a partial update from the submitted fields only: blank
// inputs stay out of the patch so untouched attributes keep their backend
// values.
func (h *Merchant) menuUpdate(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var patch backend.DishPatch
	if name := strings.TrimSpace(r.PostFormValue("name")); name != "" {
		patch.Name = &name
	}
	if category := strings.TrimSpace(r.PostFormValue("category")); category != "" {
		patch.Category = &category
	}
	if description := strings.TrimSpace(r.PostFormValue("description")); description != "" {
		patch.Description = &description
	}
	if rawPrice := strings.TrimSpace(r.PostFormValue("price")); rawPrice != "" {
		price, err := decimal.NewFromString(rawPrice)
		if err != nil || price.IsNegative() {
			sess.PushFlash(session.FlashError, "Price must be a non-negative number")
			redirect(w, r, "/admin/menu/manage")
			return
		}
		patch.Price = &price
	}
	switch r.PostFormValue("is_available_choice") {
	case "true":
		available := true
		patch.Available = &available
	case "false":
		available := false
		patch.Available = &available
	}

	if patch.IsEmpty() {
		sess.PushFlash(session.FlashError, "Nothing to update")
		redirect(w, r, "/admin/menu/manage")
		return
	}

	if err := h.backend.UpdateDish(r.Context(), id, patch, sess.Merchant.Token); err != nil {
		sess.PushFlash(session.FlashError, "Failed to update dish: "+userMessage(err))
	} else {
		sess.PushFlash(session.FlashSuccess, "Dish updated")
	}
	redirect(w, r, "/admin/menu/manage")
}

// --- Auth ---

func (h *Merchant) loginPage(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	renderPage(w, r, sess, loginView{Next: nextTarget(r.URL.Query().Get("next"), "")})
}

func (h *Merchant) login(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := strings.TrimSpace(r.PostFormValue("password"))
	next := formNext(r, "/admin/orders")

	if username == "" || password == "" {
		sess.PushFlash(session.FlashError, "Merchant username and password are required")
		renderPage(w, r, sess, loginView{Next: next, Username: username})
		return
	}

	m, err := h.backend.MerchantLogin(r.Context(), username, password)
	if err != nil {
		sess.PushFlash(session.FlashError, "Login failed: "+userMessage(err))
		renderPage(w, r, sess, loginView{Next: next, Username: username})
		return
	}

	sess.Merchant = m
	sess.PushFlash(session.FlashSuccess, "Merchant signed in")
	redirect(w, r, next)
}

func (h *Merchant) registerPage(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	renderPage(w, r, sess, loginView{})
}

func (h *Merchant) register(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := strings.TrimSpace(r.PostFormValue("password"))
	storeName := strings.TrimSpace(r.PostFormValue("store_name"))

	if username == "" || password == "" || storeName == "" {
		sess.PushFlash(session.FlashError, "Username, password and store name are required")
		renderPage(w, r, sess, loginView{Username: username})
		return
	}

	if err := h.backend.MerchantRegister(r.Context(), username, password, storeName); err != nil {
		sess.PushFlash(session.FlashError, "Registration failed: "+userMessage(err))
		renderPage(w, r, sess, loginView{Username: username})
		return
	}

	sess.PushFlash(session.FlashSuccess, "Merchant registered, please sign in")
	redirect(w, r, "/merchant/login")
}

func (h *Merchant) logout(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	sess.ClearMerchant()
	sess.PushFlash(session.FlashInfo, "Merchant signed out")
	redirect(w, r, "/merchant/login")
}
