package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gallery-portal/internal/domain/image"
	"gallery-portal/internal/search"
	"gallery-portal/internal/services"
	"gallery-portal/internal/web/views"
)

func (h *Handler) searchPageHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	data := h.viewData(sess, views.PageSearch, "Search")
	data.Search = sess.Search.View()
	h.views.RenderPage(w, data)
}

func (h *Handler) searchTabHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	mode, err := search.ParseMode(chi.URLParam(r, "mode"))
	if err != nil {
		http.Error(w, "Unknown search mode", http.StatusNotFound)
		return
	}
	_ = sess.Search.SwitchTab(mode) //nolint:errcheck // Mode already validated
	h.renderSearch(w, sess)
}

func (h *Handler) textSearchHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	if err := sess.Search.TextSearch(r.Context(), r.PostFormValue("query"), 1); err != nil && h.sessionExpired(w, r, err) {
		return
	}
	h.renderSearch(w, sess)
}

func (h *Handler) imageSearchHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(r)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize())
	if err := r.ParseMultipartForm(maxMemoryPerUpload); err != nil {
		h.logger.Error(ctx).Err(err).Msg("Failed to parse multipart form")
		http.Error(w, fmt.Sprintf("Failed to parse form: %v", err), http.StatusBadRequest)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll() //nolint:errcheck // Cleanup operation
		}
	}()

	var file *image.File
	if headers := r.MultipartForm.File["file"]; len(headers) > 0 {
		f, err := readUpload(headers[0])
		if err != nil {
			h.logger.Warn(ctx).Err(err).Str("file", headers[0].Filename).Msg("Failed to read query image")
		} else {
			file = &f
		}
	}

	if err := sess.Search.ImageSearch(ctx, file, 1); err != nil && h.sessionExpired(w, r, err) {
		return
	}
	h.renderSearch(w, sess)
}

func (h *Handler) searchPageFragmentHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	page, ok := pathInt(w, r, "page")
	if !ok {
		return
	}
	if err := sess.Search.ChangePage(r.Context(), page); err != nil && h.sessionExpired(w, r, err) {
		return
	}
	h.renderSearch(w, sess)
}

func (h *Handler) sortHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	order, err := search.ParseSort(r.FormValue("sort"))
	if err != nil {
		http.Error(w, "Unknown sort order", http.StatusBadRequest)
		return
	}
	err = sess.Search.Sort(r.Context(), order)
	if err != nil && h.sessionExpired(w, r, err) {
		return
	}
	if err != nil && !errors.Is(err, search.ErrEmptyQuery) {
		h.logger.Warn(r.Context()).Err(err).Msg("Sort re-run failed")
	}
	h.renderSearch(w, sess)
}

func (h *Handler) renderSearch(w http.ResponseWriter, sess *services.Session) {
	h.renderFragment(w, sess, "search_panel", views.ViewData{Search: sess.Search.View()})
}
