// Package session holds per-browser-session working state for the front
// ends: the cart, the authenticated identity, and pending flash messages.
//
// State is modeled as an explicit session object handed into each operation,
// never process-wide globals. The bundled store is in-memory; anything more
// durable is an external collaborator behind the Store interface.
package session

import (
	"sync"
	"time"

	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/cart"
	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/identity"
)

// Flash levels, matching the tone of the message shown to the user.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot message carried across a redirect.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Session is the working state of one browser session. A session belongs to
// exactly one front end, so at most one of Customer or Merchant is set.
//
// Sessions are not self-locking: the Manager hands a session out locked and
// the caller releases it when the request is done, which serializes requests
// per session key exactly as the cart semantics require.
type Session struct {
	ID string

	Cart     *cart.Cart
	Customer *identity.Customer
	Merchant *identity.Merchant

	mu       sync.Mutex
	flashes  []Flash
	lastSeen time.Time
}

func newSession(id string) *Session {
	return &Session{
		ID:       id,
		Cart:     cart.New(),
		lastSeen: time.Now(),
	}
}

// PushFlash queues a message for the next rendered page.
func (s *Session) PushFlash(level, message string) {
	s.flashes = append(s.flashes, Flash{Level: level, Message: message})
}

// PopFlashes returns and clears all queued messages.
func (s *Session) PopFlashes() []Flash {
	out := s.flashes
	s.flashes = nil
	return out
}

// ClearCustomer drops the customer identity, keeping the cart: logging out
// must not empty the user's cart.
func (s *Session) ClearCustomer() {
	s.Customer = nil
}

// ClearMerchant drops the merchant identity.
func (s *Session) ClearMerchant() {
	s.Merchant = nil
}
