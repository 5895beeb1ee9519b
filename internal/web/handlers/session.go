package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"gallery-portal/internal/apiclient"
	"gallery-portal/internal/guard"
	"gallery-portal/internal/services"
	"gallery-portal/internal/session"
	"gallery-portal/internal/web/views"
)

type contextKey int

const sessionContextKey contextKey = iota

// sessionMiddleware attaches the browser session named by the session
// cookie, issuing a new cookie when there is none or it is malformed
func (h *Handler) sessionMiddleware(next http.Handler) http.Handler {
	cfg := h.container.Config().Session

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if cookie, err := r.Cookie(cfg.CookieName); err == nil {
			if _, err := uuid.Parse(cookie.Value); err == nil {
				id = cookie.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     cfg.CookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(cfg.TTL.Seconds()),
				HttpOnly: true,
				Secure:   cfg.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		sess, err := h.container.Session(id)
		if err != nil {
			h.logger.Error(r.Context()).Err(err).Msg("Failed to open session")
			http.Error(w, "Failed to open session", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *services.Session {
	sess, _ := r.Context().Value(sessionContextKey).(*services.Session)
	return sess
}

// resolveSession feeds the route guard
func (h *Handler) resolveSession(r *http.Request) (guard.Checker, session.TokenStore, bool) {
	sess := sessionFrom(r)
	if sess == nil {
		return nil, nil, false
	}
	return sess.Client, sess.Tokens, true
}

// viewData starts the data of a full page
func (h *Handler) viewData(sess *services.Session, active, title string) views.ViewData {
	ui := h.container.Config().UI
	data := views.ViewData{
		Title:           title,
		Active:          active,
		ContentTemplate: active,
		Toasts:          h.container.Toasts().Drain(sess.ID),
		UploadAccept:    "image/*",
	}
	if active != views.PageLogin {
		data.SessionCheck = ui.SessionCheckInterval
	}
	return data
}

// renderFragment renders name with whatever toasts the session has queued
func (h *Handler) renderFragment(w http.ResponseWriter, sess *services.Session, name string, data views.ViewData) {
	data.Toasts = h.container.Toasts().Drain(sess.ID)
	h.views.RenderTemplate(w, name, data)
}

// sessionExpired sends the browser to the login page when err means the
// tokens are gone. It reports whether it did.
func (h *Handler) sessionExpired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, apiclient.ErrSessionExpired) {
		return false
	}
	h.logger.Info(r.Context()).Str("path", r.URL.Path).Msg("Session expired, redirecting to login")
	guard.Redirect(w, r, guard.LoginPath)
	return true
}
