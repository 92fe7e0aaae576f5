package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/order"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second)
}

func TestFetchMenu(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/menu", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[
			{"id": 1, "name": "Pad Thai", "description": "noodles", "category": "mains", "price": 10.50, "isAvailable": true},
			{"id": 2, "name": "Green Curry", "category": "mains", "price": 5, "isAvailable": false}
		]`)
	})

	snap, err := c.FetchMenu(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, snap.Len())

	d, ok := snap.Lookup("1")
	require.True(t, ok)
	assert.Equal(t, "Pad Thai", d.Name)
	assert.Equal(t, "noodles", d.Description)
	assert.True(t, d.Price.Equal(decimal.RequireFromString("10.50")))
	assert.True(t, d.Available)

	d, ok = snap.Lookup("2")
	require.True(t, ok)
	assert.False(t, d.Available)
}

func TestFetchMenu_NotAList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"dishes": []}`)
	})

	_, err := c.FetchMenu(context.Background())
	assert.True(t, IsFormat(err), "want FormatError, got %v", err)
}

func TestFetchAdminMenu_SendsBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/menu", r.URL.Path)
		assert.Equal(t, "Bearer mtok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[]`)
	})

	snap, err := c.FetchAdminMenu(context.Background(), "mtok")
	require.NoError(t, err)
	assert.Zero(t, snap.Len())
}

func TestDo_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // refuse connections from now on
	c := NewClient(srv.URL, time.Second)

	_, err := c.FetchMenu(context.Background())
	assert.True(t, IsUnavailable(err), "want UnavailableError, got %v", err)
}

func TestDo_RejectedWithStructuredBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"error": "dish sold out"}`)
	})

	_, err := c.FetchMenu(context.Background())
	re, ok := IsRejected(err)
	require.True(t, ok, "want RejectedError, got %v", err)
	assert.Equal(t, http.StatusConflict, re.StatusCode)
	assert.Equal(t, "dish sold out", re.Message)
}

func TestDo_RejectedWithPlainBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "something broke")
	})

	_, err := c.FetchMenu(context.Background())
	re, ok := IsRejected(err)
	require.True(t, ok)
	assert.Equal(t, "HTTP 500: something broke", re.Message)
}

func TestDo_RejectedTruncatesBodyOnRuneBoundary(t *testing.T) {
	// The multi-byte rune straddles the truncation point; the trimmed
	// message must not end in a partial byte sequence.
	body := strings.Repeat("a", 199) + "é" + strings.Repeat("b", 50)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, body)
	})

	_, err := c.FetchMenu(context.Background())
	re, ok := IsRejected(err)
	require.True(t, ok)
	assert.True(t, utf8.ValidString(re.Message))
	assert.Equal(t, "HTTP 500: "+strings.Repeat("a", 199), re.Message)
}

func TestCreateOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload struct {
			Items []struct {
				DishID   int `json:"dishId"`
				Quantity int `json:"quantity"`
			} `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Items, 2)
		assert.Equal(t, 1, payload.Items[0].DishID)
		assert.Equal(t, 2, payload.Items[0].Quantity)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 42, "status": "pending"}`)
	})

	id, err := c.CreateOrder(context.Background(), []order.Item{
		{DishID: 1, Quantity: 2},
		{DishID: 3, Quantity: 1},
	}, "tok")
	require.NoError(t, err)
	assert.Equal(t, 42, id)
}

func TestCreateOrder_MissingID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status": "pending"}`)
	})

	_, err := c.CreateOrder(context.Background(), []order.Item{{DishID: 1, Quantity: 1}}, "tok")
	assert.True(t, IsFormat(err), "want FormatError, got %v", err)
}

func TestFetchOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/7", r.URL.Path)
		_, _ = io.WriteString(w, `{
			"id": 7,
			"status": "completed",
			"total": 25.5,
			"pickupNotified": false,
			"userId": 3,
			"items": [{"dishId": 1, "quantity": 2}],
			"createdAt": "2024-05-01T10:00:00Z",
			"updatedAt": "2024-05-01T10:30:00Z"
		}`)
	})

	o, err := c.FetchOrder(context.Background(), 7, "tok")
	require.NoError(t, err)
	assert.Equal(t, 7, o.ID)
	assert.Equal(t, order.StatusCompleted, o.Status)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("25.5")))
	assert.True(t, o.PickupReady())
	require.Len(t, o.Items, 1)
	assert.Equal(t, order.Item{DishID: 1, Quantity: 2}, o.Items[0])
	assert.Equal(t, "2024-05-01T10:00:00Z", o.CreatedAt)
}

func TestFetchMyOrders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/orders", r.URL.Path)
		_, _ = io.WriteString(w, `[{"id": 2, "status": "ready", "items": []}, {"id": 1, "status": "completed", "items": []}]`)
	})

	orders, err := c.FetchMyOrders(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	// Backend ordering is preserved as-is.
	assert.Equal(t, 2, orders[0].ID)
	assert.Equal(t, 1, orders[1].ID)
}

func TestAcknowledgePickup(t *testing.T) {
	var called bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders/7/pickup-ack", r.URL.Path)
		_, _ = io.WriteString(w, `{}`)
	})

	require.NoError(t, c.AcknowledgePickup(context.Background(), 7, "tok"))
	assert.True(t, called)
}

func TestUpdateStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/admin/orders/9/status", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"status": "preparing"}`, string(body))
		_, _ = io.WriteString(w, `{}`)
	})

	require.NoError(t, c.UpdateStatus(context.Background(), 9, "preparing", "mtok"))
}

func TestUserLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/user/login", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"username": "alice", "password": "pw"}`, string(body))
		_, _ = io.WriteString(w, `{"token": "t123", "userId": 5, "username": "alice"}`)
	})

	cust, err := c.UserLogin(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "t123", cust.Token)
	assert.Equal(t, 5, cust.UserID)
	assert.Equal(t, "alice", cust.Username)
}

func TestUserLogin_UsernameFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"token": "t123", "userId": 5}`)
	})

	cust, err := c.UserLogin(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", cust.Username)
}

func TestUserLogin_NoToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"userId": 5}`)
	})

	_, err := c.UserLogin(context.Background(), "alice", "pw")
	assert.True(t, IsFormat(err), "want FormatError, got %v", err)
}

func TestMerchantLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/merchant/login", r.URL.Path)
		_, _ = io.WriteString(w, `{"token": "mt", "merchantId": 2, "username": "store"}`)
	})

	m, err := c.MerchantLogin(context.Background(), "store", "pw")
	require.NoError(t, err)
	assert.Equal(t, "mt", m.Token)
	assert.Equal(t, 2, m.MerchantID)
}

func TestCreateDish(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/menu", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{
			"name": "Pad Thai",
			"category": "mains",
			"description": "noodles",
			"price": 10.5,
			"isAvailable": true
		}`, string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{}`)
	})

	err := c.CreateDish(context.Background(), DishInput{
		Name:        "Pad Thai",
		Category:    "mains",
		Description: "noodles",
		Price:       decimal.RequireFromString("10.5"),
		Available:   true,
	}, "mtok")
	require.NoError(t, err)
}

func TestUpdateDish_PartialPatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/admin/menu/3", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		// Untouched fields stay out of the payload entirely.
		assert.JSONEq(t, `{"price": 12, "isAvailable": false}`, string(body))
		_, _ = io.WriteString(w, `{}`)
	})

	price := decimal.NewFromInt(12)
	avail := false
	err := c.UpdateDish(context.Background(), 3, DishPatch{Price: &price, Available: &avail}, "mtok")
	require.NoError(t, err)
}

func TestDishPatch_IsEmpty(t *testing.T) {
	assert.True(t, DishPatch{}.IsEmpty())
	name := "x"
	assert.False(t, DishPatch{Name: &name}.IsEmpty())
}
