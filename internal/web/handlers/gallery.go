package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gallery-portal/internal/domain/image"
	"gallery-portal/internal/gallery"
	"gallery-portal/internal/services"
	"gallery-portal/internal/toast"
	"gallery-portal/internal/web/views"
)

func (h *Handler) galleryPageHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	page := queryInt(r, "page", 1)

	if err := sess.Gallery.LoadPage(r.Context(), page); err != nil && h.sessionExpired(w, r, err) {
		return
	}

	data := h.viewData(sess, views.PageGallery, "Gallery")
	data.Gallery = sess.Gallery.View()
	h.views.RenderPage(w, data)
}

func (h *Handler) galleryPageFragmentHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	page, ok := pathInt(w, r, "page")
	if !ok {
		return
	}
	if err := sess.Gallery.LoadPage(r.Context(), page); err != nil && h.sessionExpired(w, r, err) {
		return
	}
	h.renderGallery(w, sess)
}

func (h *Handler) deleteImageHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := sess.Gallery.Delete(r.Context(), id); err != nil && h.sessionExpired(w, r, err) {
		return
	}
	h.renderGallery(w, sess)
}

func (h *Handler) selectImageHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	checked, _ := strconv.ParseBool(r.FormValue("checked")) //nolint:errcheck // Unchecked boxes send nothing
	sess.Gallery.ToggleSelect(id, checked)
	h.renderGallery(w, sess)
}

func (h *Handler) selectAllHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.Gallery.ToggleSelectAll()
	h.renderGallery(w, sess)
}

func (h *Handler) deleteSelectedHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(r)

	res, err := sess.Gallery.DeleteSelected(ctx)
	h.logger.Info(ctx).
		Int("deleted", res.Succeeded).
		Int("failed", res.Failed).
		Msg("Bulk delete completed")
	if err != nil && h.sessionExpired(w, r, err) {
		return
	}
	h.renderGallery(w, sess)
}

// uploadImagesHandler handles the drop zone's multipart upload of one or
// more images
func (h *Handler) uploadImagesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UploadImages", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	sess := sessionFrom(r)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize())
	if err := r.ParseMultipartForm(maxMemoryPerUpload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse multipart form")
		h.logger.Error(ctx).Err(err).Msg("Failed to parse multipart form")
		http.Error(w, fmt.Sprintf("Failed to parse form: %v", err), http.StatusBadRequest)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll() //nolint:errcheck // Cleanup operation
		}
	}()

	headers := r.MultipartForm.File["files"]
	files := make([]image.File, 0, len(headers))
	unreadable := 0
	for _, fh := range headers {
		f, err := readUpload(fh)
		if err != nil {
			h.logger.Warn(ctx).Err(err).Str("file", fh.Filename).Msg("Failed to read uploaded file")
			unreadable++
			continue
		}
		files = append(files, f)
	}
	if unreadable > 0 {
		sess.Notifier.Show(fmt.Sprintf(gallery.MsgUploadUnreadable, unreadable), toast.Error)
	}

	res, err := sess.Gallery.Upload(ctx, files)
	span.SetAttributes(
		attribute.Int("upload.file_count", len(headers)),
		attribute.Int("upload.success_count", res.Succeeded),
		attribute.Int("upload.error_count", res.Failed),
		attribute.Int("upload.skipped_count", res.Skipped),
		attribute.Int("upload.unreadable_count", unreadable),
	)
	h.logger.Info(ctx).
		Int("success_count", res.Succeeded).
		Int("error_count", res.Failed).
		Int("skipped_count", res.Skipped).
		Int("unreadable_count", unreadable).
		Msg("Upload request completed")

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		if h.sessionExpired(w, r, err) {
			return
		}
	}
	h.renderGallery(w, sess)
}

func (h *Handler) previewHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if _, err := sess.Gallery.Preview(id); err != nil {
		http.Error(w, "Image not found", http.StatusNotFound)
		return
	}
	h.renderGallery(w, sess)
}

func (h *Handler) closePreviewHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.Gallery.ClosePreview()
	h.renderGallery(w, sess)
}

func (h *Handler) renderGallery(w http.ResponseWriter, sess *services.Session) {
	h.renderFragment(w, sess, "gallery_panel", views.ViewData{Gallery: sess.Gallery.View()})
}

func readUpload(fh *multipart.FileHeader) (image.File, error) {
	src, err := fh.Open()
	if err != nil {
		return image.File{}, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, image.MaxFileSize+1))
	if err != nil {
		return image.File{}, err
	}
	return image.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// pathInt reads a positive integer URL parameter, answering 400 when it is
// not one
func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n < 1 {
		http.Error(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
