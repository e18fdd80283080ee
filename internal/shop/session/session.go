// Package session resolves the opaque session key that identifies a cart.
// The key is carried in a cookie and proves nothing about the client.
package session

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	CookieName = "sessionid"

	// maxKeyLen bounds client-supplied keys; longer ones are replaced.
	maxKeyLen = 64
)

type contextKey struct{}

// Provider returns the session id for a request, issuing one when the
// client has none.
type Provider interface {
	ResolveOrCreate(w http.ResponseWriter, r *http.Request) string
}

// CookieProvider keeps the session id in an HttpOnly cookie.
type CookieProvider struct {
	secure bool
	newID  func() string
}

var _ Provider = (*CookieProvider)(nil)

func NewCookieProvider(secure bool) *CookieProvider {
	return &CookieProvider{secure: secure, newID: uuid.NewString}
}

func (p *CookieProvider) ResolveOrCreate(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" && len(c.Value) <= maxKeyLen {
		return c.Value
	}

	id := p.newID()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// Middleware resolves the session once per request and stores it in the
// request context.
func Middleware(p Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := p.ResolveOrCreate(w, r)
			next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
		})
	}
}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the session id, or "" if none was resolved.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
