package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"gallery-portal/internal/platform/imaging"
)

// Placeholder size served when an image cannot be fetched
const (
	placeholderWidth  = 250
	placeholderHeight = 200
)

// fileHandler proxies image bytes from the backend with the session's
// token attached. Any failure serves the placeholder instead.
func (h *Handler) fileHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(r)
	filePath := strings.TrimPrefix(chi.URLParam(r, "*"), "/")

	resp, err := sess.Client.FetchFile(ctx, filePath)
	if err != nil {
		h.logger.Debug(ctx).Err(err).Str("file_path", filePath).Msg("Serving placeholder for image")
		h.writePlaceholder(w, placeholderWidth, placeholderHeight)
		return
	}
	defer resp.Body.Close()

	for _, key := range []string{"Content-Type", "Content-Length", "Cache-Control", "ETag", "Last-Modified"} {
		if v := resp.Header.Get(key); v != "" {
			w.Header().Set(key, v)
		}
	}
	if w.Header().Get("Cache-Control") == "" {
		w.Header().Set("Cache-Control", "private, max-age=300")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Debug(ctx).Err(err).Str("file_path", filePath).Msg("Image copy interrupted")
	}
}

func (h *Handler) placeholderHandler(w http.ResponseWriter, r *http.Request) {
	width, err := strconv.Atoi(chi.URLParam(r, "width"))
	if err != nil {
		http.Error(w, "Invalid width", http.StatusBadRequest)
		return
	}
	height, err := strconv.Atoi(chi.URLParam(r, "height"))
	if err != nil {
		http.Error(w, "Invalid height", http.StatusBadRequest)
		return
	}
	h.writePlaceholder(w, width, height)
}

func (h *Handler) writePlaceholder(w http.ResponseWriter, width, height int) {
	data, err := imaging.Placeholder(width, height)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data) //nolint:errcheck // Best effort response
}
