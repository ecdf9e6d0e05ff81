// Package middleware contains HTTP middleware. Middleware wraps
// http.Handler and composes with Stack.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/employsmart/employsmart/internal/auth"
	"github.com/employsmart/employsmart/internal/domain"
	"github.com/employsmart/employsmart/internal/handler"
)

const (
	// SessionCookieName stores the raw session token.
	SessionCookieName = "employsmart_session"

	SessionCookiePath = "/"

	// SessionCookieMaxAge matches service.SessionTTL (7 days).
	SessionCookieMaxAge = 7 * 24 * 60 * 60
)

// SessionResolver resolves a raw session token to a recruiter.
// *service.RecruiterService satisfies it.
type SessionResolver interface {
	GetBySessionToken(ctx context.Context, token string) (*domain.Recruiter, error)
}

// AuthMiddleware loads and enforces the authenticated recruiter.
type AuthMiddleware struct {
	sessions SessionResolver
	logger   *slog.Logger
	isSecure bool
}

// NewAuthMiddleware creates the auth middleware. isSecure enables the
// Secure cookie flag in production.
func NewAuthMiddleware(sessions SessionResolver, logger *slog.Logger, isSecure bool) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		logger:   logger,
		isSecure: isSecure,
	}
}

// WithRecruiter loads the recruiter from the session cookie when present
// and continues regardless of authentication status. Invalid sessions get
// their cookie cleared.
func (m *AuthMiddleware) WithRecruiter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		recruiter, err := m.sessions.GetBySessionToken(r.Context(), cookie.Value)
		if err != nil {
			clearSessionCookie(w, m.isSecure)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithRecruiter(r.Context(), recruiter)))
	})
}

// RequireRecruiter rejects unauthenticated requests: 401 JSON for API
// requests, a redirect to /login for pages. Must run after WithRecruiter.
func (m *AuthMiddleware) RequireRecruiter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.RecruiterFromContext(r.Context()); !ok {
			if isAPIRequest(r) {
				handler.UnauthorizedResponse(w, r, m.logger)
				return
			}
			returnTo := r.URL.Path
			if r.URL.RawQuery != "" {
				returnTo += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, "/login?return_to="+returnTo, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetSessionCookie sets the session cookie: HttpOnly, SameSite Lax,
// Secure in production.
func SetSessionCookie(w http.ResponseWriter, token string, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     SessionCookiePath,
		MaxAge:   SessionCookieMaxAge,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     SessionCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie is the exported version for logout handlers.
func ClearSessionCookie(w http.ResponseWriter, isSecure bool) {
	clearSessionCookie(w, isSecure)
}

// isAPIRequest reports whether the request expects a JSON response.
func isAPIRequest(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// Stack composes middleware; the first argument is the outermost.
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
