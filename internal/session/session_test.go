package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/identity"
)

func newTestManager(t *testing.T) (*Manager, *MemoryStore) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	store := NewMemoryStore(ctx, time.Hour)
	return NewManager(store, "", false), store
}

func TestAcquire_CreatesSessionAndCookie(t *testing.T) {
	m, store := newTestManager(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	s, release := m.Acquire(w, r)
	release()

	require.NotNil(t, s)
	assert.NotNil(t, s.Cart)
	assert.Equal(t, 1, store.Len())

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DefaultCookieName, cookies[0].Name)
	assert.Equal(t, s.ID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
}

func TestAcquire_ReturnsSameSessionForCookie(t *testing.T) {
	m, store := newTestManager(t)

	w := httptest.NewRecorder()
	first, release := m.Acquire(w, httptest.NewRequest(http.MethodGet, "/", nil))
	first.Cart.Add("1", 2)
	release()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(w.Result().Cookies()[0])

	second, release := m.Acquire(httptest.NewRecorder(), r)
	defer release()

	assert.Same(t, first, second)
	assert.Equal(t, 2, second.Cart.Get("1"))
	assert.Equal(t, 1, store.Len())
}

func TestAcquire_RejectsForgedCookie(t *testing.T) {
	m, store := newTestManager(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "not-a-uuid"})

	w := httptest.NewRecorder()
	s, release := m.Acquire(w, r)
	release()

	// A fresh session is issued instead of trusting the client value.
	require.NotNil(t, s)
	assert.NotEqual(t, "not-a-uuid", s.ID)
	assert.Equal(t, 1, store.Len())
	require.Len(t, w.Result().Cookies(), 1)
}

func TestFlashes_PopOnce(t *testing.T) {
	s := newSession("id")
	s.PushFlash(FlashSuccess, "order created")
	s.PushFlash(FlashError, "oops")

	got := s.PopFlashes()
	require.Len(t, got, 2)
	assert.Equal(t, Flash{Level: FlashSuccess, Message: "order created"}, got[0])

	assert.Empty(t, s.PopFlashes())
}

func TestClearCustomer_KeepsCart(t *testing.T) {
	s := newSession("id")
	s.Customer = &identity.Customer{Token: "t", UserID: 1, Username: "alice"}
	s.Cart.Add("1", 3)

	s.ClearCustomer()

	assert.Nil(t, s.Customer)
	assert.Equal(t, 3, s.Cart.Get("1"))
}

func TestMemoryStore_EvictsIdleSessions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := NewMemoryStore(ctx, time.Minute)

	stale := newSession("stale")
	stale.lastSeen = time.Now().Add(-2 * time.Minute)
	store.Put(stale)

	fresh := newSession("fresh")
	store.Put(fresh)

	store.evictIdle(time.Now())

	_, ok := store.Get("stale")
	assert.False(t, ok)
	_, ok = store.Get("fresh")
	assert.True(t, ok)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_SweepSkipsBusySessions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := NewMemoryStore(ctx, time.Minute)

	s := newSession("busy")
	s.lastSeen = time.Now().Add(-time.Hour)
	store.Put(s)

	// While a request holds the session lock the sweep must leave the
	// session alone and must not block waiting for it.
	s.mu.Lock()
	store.evictIdle(time.Now())
	assert.Equal(t, 1, store.Len())
	s.mu.Unlock()

	s.mu.Lock()
	s.lastSeen = time.Now().Add(-time.Hour)
	s.mu.Unlock()
	store.evictIdle(time.Now())
	assert.Zero(t, store.Len())
}

func TestMemoryStore_GetRefreshesIdleTimer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := NewMemoryStore(ctx, time.Minute)

	s := newSession("id")
	s.lastSeen = time.Now().Add(-2 * time.Minute)
	store.Put(s)

	_, ok := store.Get("id")
	require.True(t, ok)

	store.evictIdle(time.Now())
	_, ok = store.Get("id")
	assert.True(t, ok)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := NewMemoryStore(ctx, 0)

	store.Put(newSession("id"))
	store.Delete("id")

	_, ok := store.Get("id")
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}
