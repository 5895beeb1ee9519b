package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"gallery-portal/internal/authui"
	"gallery-portal/internal/domain/auth"
	"gallery-portal/internal/guard"
	"gallery-portal/internal/web/views"
)

func (h *Handler) loginPageHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	data := h.viewData(sess, views.PageLogin, "Login")
	data.Panel = sess.Auth.Panel()
	h.views.RenderPage(w, data)
}

func (h *Handler) loginPanelHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	panel, err := authui.ParsePanel(chi.URLParam(r, "panel"))
	if err != nil {
		http.Error(w, "Unknown panel", http.StatusNotFound)
		return
	}
	_ = sess.Auth.ShowPanel(panel) //nolint:errcheck // Panel already validated
	h.renderFragment(w, sess, "auth_panel", views.ViewData{Panel: panel})
}

func (h *Handler) loginHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	creds := auth.Credentials{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	result, err := sess.Auth.Login(ctx, creds)
	if err != nil {
		h.logger.Info(ctx).Err(err).Str("username", creds.Username).Msg("Login failed")
	}
	h.renderFragment(w, sess, "", views.ViewData{Redirect: followUp(result)})
}

func (h *Handler) registerHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	reg := auth.Registration{
		Username:        strings.TrimSpace(r.PostFormValue("username")),
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
	result, err := sess.Auth.Register(ctx, reg)
	if err != nil {
		h.logger.Info(ctx).Err(err).Str("username", reg.Username).Msg("Registration failed")
	}
	h.renderFragment(w, sess, "", views.ViewData{Redirect: followUp(result)})
}

// logoutHandler clears the session and drops its page state. Queued toasts
// survive and show on the login page.
func (h *Handler) logoutHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	result := sess.Auth.Logout(r.Context())
	h.container.EndSession(sess.ID)
	guard.Redirect(w, r, result.Redirect)
}

func (h *Handler) sessionCheckHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	path := r.Header.Get("HX-Current-URL")
	if u, err := url.Parse(path); err == nil && u.Path != "" {
		path = u.Path
	}

	result := sess.Auth.CheckSession(r.Context(), path)
	if result.Redirect != "" {
		guard.Redirect(w, r, result.Redirect)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// redirectHandler completes a delayed redirect. Only local paths are
// followed.
func (h *Handler) redirectHandler(w http.ResponseWriter, r *http.Request) {
	to := r.URL.Query().Get("to")
	if !isLocalPath(to) {
		to = authui.HomePath
	}
	guard.Redirect(w, r, to)
}

func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, `\`)
}

// followUp turns a controller result into the page's delayed action
func followUp(result authui.Result) *views.Redirect {
	switch {
	case result.Redirect != "":
		return &views.Redirect{URL: result.Redirect, Delay: result.Delay}
	case result.Panel != "":
		return &views.Redirect{
			URL:    "/login/panel/" + string(result.Panel),
			Target: "#auth-panel",
			Delay:  result.Delay,
		}
	}
	return nil
}
