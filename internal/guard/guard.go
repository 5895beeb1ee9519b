// Package guard keeps unauthenticated browsers off the protected pages
package guard

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"gallery-portal/internal/observability"
	"gallery-portal/internal/session"
)

// LoginPath is where rejected requests are sent
const LoginPath = "/login"

// ProtectedPaths are the pages that require a valid session
var ProtectedPaths = []string{"/", "/dashboard", "/images", "/search"}

// IsProtected reports whether path is one of ProtectedPaths. A trailing
// slash is ignored, so "/search/" is protected like "/search".
func IsProtected(path string) bool {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return slices.Contains(ProtectedPaths, path)
}

// Checker verifies the stored access token with the backend
type Checker interface {
	CheckAuth(ctx context.Context) (bool, error)
}

// Resolver finds the checker and token store of the request's session. ok is
// false when the request has no session yet.
type Resolver func(r *http.Request) (checker Checker, tokens session.TokenStore, ok bool)

// Guard redirects requests for protected paths without a valid session
type Guard struct {
	resolve Resolver
	logger  *observability.Logger
}

// New creates a guard
func New(resolve Resolver, logger *observability.Logger) *Guard {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Guard{resolve: resolve, logger: logger.Component("guard")}
}

// Check reports whether the session may see path. A missing or rejected
// token clears the stored tokens.
func (g *Guard) Check(ctx context.Context, path string, checker Checker, tokens session.TokenStore) bool {
	if !IsProtected(path) {
		return true
	}

	ok, err := checker.CheckAuth(ctx)
	if err != nil {
		g.logger.Warn(ctx).Err(err).Str("path", path).Msg("Auth check failed")
	}
	if ok {
		return true
	}

	if err := tokens.Clear(ctx); err != nil {
		g.logger.Error(ctx).Err(err).Msg("Failed to clear tokens")
	}
	return false
}

// Middleware applies Check to every request
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsProtected(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		checker, tokens, ok := g.resolve(r)
		if !ok || !g.Check(r.Context(), r.URL.Path, checker, tokens) {
			Redirect(w, r, LoginPath)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IsHTMX reports whether r was issued by htmx
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// Redirect sends the browser to path: an HX-Redirect header for htmx
// requests, a 303 otherwise
func Redirect(w http.ResponseWriter, r *http.Request, path string) {
	if IsHTMX(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}
