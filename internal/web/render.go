// Package web contains the HTTP surface of both front ends: routing,
// form parsing, the role-scoped access gate, and JSON view models.
//
// Handlers produce view models, not markup; an HTML template layer is an
// external collaborator that would consume the same payloads. Browser-style
// semantics are kept: form POSTs are answered with redirects and one-shot
// flash messages carried in the session.
package web

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/heiheiheiha00/restaurant-order-system/internal/backend"
	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/order"
	"github.com/heiheiheiha00/restaurant-order-system/internal/session"
)

// page is the envelope of every rendered view: the view payload plus any
// flash messages queued since the last render.
type page struct {
	Flashes []session.Flash `json:"flashes,omitempty"`
	Data    any             `json:"data"`
}

// renderPage writes a view payload for the session, consuming its queued
// flash messages. The session must be held by the caller.
func renderPage(w http.ResponseWriter, r *http.Request, sess *session.Session, data any) {
	body := page{Flashes: sess.PopFlashes(), Data: data}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zctx.From(r.Context()).Error("encode view", zap.Error(err))
	}
}

// redirect sends a 303 so the browser re-requests the target with GET
// regardless of the method that produced it.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// nextTarget sanitizes a post-login destination. Only same-site relative
// paths are honored; anything carrying a scheme, host, or protocol-relative
// prefix falls back, keeping the login round-trip from becoming an open
// redirect.
func nextTarget(raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, "\\") {
		return fallback
	}
	if u, err := url.Parse(raw); err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return raw
}

// refererTarget derives a redirect target from the request's Referer header.
// Browser Referers are absolute URLs, so the path and query are extracted
// first; a cross-site or unparsable Referer falls back.
func refererTarget(r *http.Request, fallback string) string {
	u, err := url.Parse(r.Referer())
	if err != nil {
		return fallback
	}
	if u.Host != "" && u.Host != r.Host {
		return fallback
	}
	target := u.Path
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	return nextTarget(target, fallback)
}

// formNext extracts the requested post-login destination from either the
// query string or the posted form, preserving query context end to end.
func formNext(r *http.Request, fallback string) string {
	raw := r.URL.Query().Get("next")
	if raw == "" {
		raw = r.PostFormValue("next")
	}
	return nextTarget(raw, fallback)
}

// loginRedirect sends the visitor to loginPath with the original request
// (path and query) preserved as the next parameter.
func loginRedirect(w http.ResponseWriter, r *http.Request, loginPath string) {
	target := loginPath + "?next=" + url.QueryEscape(nextTarget(r.URL.RequestURI(), "/"))
	redirect(w, r, target)
}

// userMessage converts an operation error into the human-readable flash
// message shown to the user. Upstream failures never surface as crashes.
func userMessage(err error) string {
	var ve *order.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Reason
	case backend.IsUnavailable(err):
		return "Cannot reach the order service. Please try again shortly."
	case backend.IsFormat(err):
		return "The order service returned unexpected data. Please try again shortly."
	}
	if re, ok := backend.IsRejected(err); ok {
		return re.Message
	}
	return err.Error()
}
