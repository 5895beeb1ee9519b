package guard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gallery-portal/internal/session"
)

type stubChecker struct {
	ok    bool
	err   error
	calls int
}

func (s *stubChecker) CheckAuth(context.Context) (bool, error) {
	s.calls++
	return s.ok, s.err
}

func TestIsProtected(t *testing.T) {
	for _, p := range []string{"/", "//", "/dashboard", "/images", "/search", "/search/", "/dashboard//"} {
		assert.True(t, IsProtected(p), p)
	}
	for _, p := range []string{"/login", "/login/", "/search/text", "/gallery/page/2", "/healthz"} {
		assert.False(t, IsProtected(p), p)
	}
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		htmx       bool
		hasSession bool
		checker    *stubChecker
		wantStatus int
		wantHeader string
		wantClear  bool
		wantCalls  int
	}{
		{
			name:       "unprotected path passes without a check",
			path:       "/login",
			checker:    &stubChecker{},
			wantStatus: http.StatusTeapot,
		},
		{
			name:       "valid session passes",
			path:       "/search",
			hasSession: true,
			checker:    &stubChecker{ok: true},
			wantStatus: http.StatusTeapot,
			wantCalls:  1,
		},
		{
			name:       "rejected token redirects and clears",
			path:       "/",
			hasSession: true,
			checker:    &stubChecker{},
			wantStatus: http.StatusSeeOther,
			wantClear:  true,
			wantCalls:  1,
		},
		{
			name:       "check error counts as rejection",
			path:       "/images",
			hasSession: true,
			checker:    &stubChecker{err: errors.New("timeout")},
			wantStatus: http.StatusSeeOther,
			wantClear:  true,
			wantCalls:  1,
		},
		{
			name:       "htmx request gets HX-Redirect",
			path:       "/dashboard",
			htmx:       true,
			hasSession: true,
			checker:    &stubChecker{},
			wantStatus: http.StatusOK,
			wantHeader: LoginPath,
			wantClear:  true,
			wantCalls:  1,
		},
		{
			name:       "trailing slash is still guarded",
			path:       "/search/",
			checker:    &stubChecker{ok: true},
			wantStatus: http.StatusSeeOther,
		},
		{
			name:       "no session at all",
			path:       "/",
			checker:    &stubChecker{ok: true},
			wantStatus: http.StatusSeeOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewStore(session.NewMemoryKV(0))
			require.NoError(t, store.SetTokens(context.Background(), "a", "r"))

			g := New(func(*http.Request) (Checker, session.TokenStore, bool) {
				return tt.checker, store, tt.hasSession
			}, nil)
			handler := g.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			}))

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantHeader, rec.Header().Get("HX-Redirect"))
			if tt.wantStatus == http.StatusSeeOther {
				assert.Equal(t, LoginPath, rec.Header().Get("Location"))
			}
			assert.Equal(t, tt.wantCalls, tt.checker.calls)

			has, _ := store.HasSession(context.Background())
			assert.Equal(t, !tt.wantClear, has)
		})
	}
}
