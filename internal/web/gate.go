package web

import (
	"net/http"

	"github.com/heiheiheiha00/restaurant-order-system/internal/session"
)

// The access gate scopes operations per actor:
//
//	guest:    view menu, manage cart
//	customer: plus create orders, view own orders, acknowledge pickup
//	merchant: view all orders, transition status, manage menu; no cart
//
// The gate does not re-check ownership of individual resources; it attaches
// the right identity token and the backend enforces scoping. Its one local
// duty is the redirect contract: a gated request without the required
// identity goes to the role's login page with the original destination
// preserved in the next parameter.

// sessionFunc is a handler that runs with the request's session held.
type sessionFunc func(w http.ResponseWriter, r *http.Request, sess *session.Session)

// gate wraps handlers with session acquisition and identity checks for one
// front end.
type gate struct {
	sessions  *session.Manager
	loginPath string
	prompt    string
}

// open runs fn with the session held. No identity is required: guests reach
// the menu and cart this way.
func (g *gate) open(fn sessionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, release := g.sessions.Acquire(w, r)
		defer release()
		fn(w, r, sess)
	}
}

// customer runs fn only when a customer identity is present, otherwise
// redirects to login preserving the destination.
func (g *gate) customer(fn sessionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, release := g.sessions.Acquire(w, r)
		defer release()
		if sess.Customer == nil {
			sess.PushFlash(session.FlashError, g.prompt)
			loginRedirect(w, r, g.loginPath)
			return
		}
		fn(w, r, sess)
	}
}

// merchant runs fn only when a merchant identity is present, otherwise
// redirects to the merchant login preserving the destination.
func (g *gate) merchant(fn sessionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, release := g.sessions.Acquire(w, r)
		defer release()
		if sess.Merchant == nil {
			sess.PushFlash(session.FlashError, g.prompt)
			loginRedirect(w, r, g.loginPath)
			return
		}
		fn(w, r, sess)
	}
}
