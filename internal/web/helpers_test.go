package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/menu"
	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/order"
	"github.com/heiheiheiha00/restaurant-order-system/internal/session"
)

// browser drives a handler the way a cookie-keeping browser would, so a test
// can walk a redirect flow across requests against the same session.
type browser struct {
	t       *testing.T
	h       http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, h http.Handler) *browser {
	t.Helper()
	return &browser{t: t, h: h, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.raw(http.MethodGet, target, "", "")
}

func (b *browser) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	return b.raw(http.MethodPost, target, form.Encode(), "application/x-www-form-urlencoded")
}

// postFormFrom posts a form as if submitted from the given referring page.
func (b *browser) postFormFrom(target, referer string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("Referer", referer)
	return b.do(r)
}

func (b *browser) raw(method, target, body, contentType string) *httptest.ResponseRecorder {
	b.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	return b.do(r)
}

func (b *browser) do(r *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	b.h.ServeHTTP(w, r)
	for _, c := range w.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return w
}

// page envelope as rendered, for decoding in assertions.
type renderedPage struct {
	Flashes []session.Flash `json:"flashes"`
	Data    json.RawMessage `json:"data"`
}

func decodePage(t *testing.T, w *httptest.ResponseRecorder) renderedPage {
	t.Helper()
	var p renderedPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	return p
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) renderedPage {
	t.Helper()
	p := decodePage(t, w)
	require.NoError(t, json.Unmarshal(p.Data, out))
	return p
}

func testSessions(t *testing.T) *session.Manager {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return session.NewManager(session.NewMemoryStore(ctx, time.Hour), "", false)
}

func testMenuSnapshot() *menu.Snapshot {
	return menu.NewSnapshot([]menu.Dish{
		{ID: 1, Name: "Pad Thai", Category: "mains", Price: decimal.NewFromInt(10), Available: true},
		{ID: 2, Name: "Green Curry", Category: "mains", Price: decimal.NewFromInt(5), Available: true},
	})
}

// fakeGateway and fakeMenus stand in for the backend behind the order
// lifecycle controller.
type fakeGateway struct {
	createFn    func(ctx context.Context, items []order.Item, token string) (int, error)
	fetchFn     func(ctx context.Context, id int, token string) (*order.Order, error)
	fetchMineFn func(ctx context.Context, token string) ([]order.Order, error)
	pickupFn    func(ctx context.Context, id int, token string) error
	fetchAllFn  func(ctx context.Context, token string) ([]order.Order, error)
	updateFn    func(ctx context.Context, id int, status, token string) error
}

func (f *fakeGateway) CreateOrder(ctx context.Context, items []order.Item, token string) (int, error) {
	return f.createFn(ctx, items, token)
}

func (f *fakeGateway) FetchOrder(ctx context.Context, id int, token string) (*order.Order, error) {
	return f.fetchFn(ctx, id, token)
}

func (f *fakeGateway) FetchMyOrders(ctx context.Context, token string) ([]order.Order, error) {
	return f.fetchMineFn(ctx, token)
}

func (f *fakeGateway) AcknowledgePickup(ctx context.Context, id int, token string) error {
	return f.pickupFn(ctx, id, token)
}

func (f *fakeGateway) FetchAllOrders(ctx context.Context, token string) ([]order.Order, error) {
	return f.fetchAllFn(ctx, token)
}

func (f *fakeGateway) UpdateStatus(ctx context.Context, id int, status, token string) error {
	return f.updateFn(ctx, id, status, token)
}

type fakeMenus struct {
	fetchFn      func(ctx context.Context) (*menu.Snapshot, error)
	fetchAdminFn func(ctx context.Context, token string) (*menu.Snapshot, error)
}

func (f *fakeMenus) FetchMenu(ctx context.Context) (*menu.Snapshot, error) {
	return f.fetchFn(ctx)
}

func (f *fakeMenus) FetchAdminMenu(ctx context.Context, token string) (*menu.Snapshot, error) {
	return f.fetchAdminFn(ctx, token)
}
