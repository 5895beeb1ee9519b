// Package gallery drives the paginated image grid: loading pages, selection,
// single and bulk delete, uploads and the preview overlay.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gallery-portal/internal/apiclient"
	"gallery-portal/internal/domain/image"
	"gallery-portal/internal/observability"
	"gallery-portal/internal/pagination"
	"gallery-portal/internal/platform/imaging"
	"gallery-portal/internal/preview"
	"gallery-portal/internal/toast"
)

// DefaultPerPage is the grid page size
const DefaultPerPage = 10

// Toast texts
const (
	MsgLoadFailed        = "Failed to load images"
	MsgDeleted           = "Image deleted successfully"
	MsgDeleteFailed      = "Failed to delete image"
	MsgUploadFailedBatch = "Upload failed. Please try again."
	MsgBulkDeleteFailed  = "Error deleting selected images"
	MsgUploadSkipped     = "Skipped %d non-image file(s)"
	MsgUploadUnreadable  = "Could not read %d uploaded file(s)"
)

// Config tunes a controller
type Config struct {
	PerPage    int
	MaxVisible int

	// FileURL maps a backend file path to the URL the page loads it from
	FileURL func(filePath string) string

	Logger *observability.Logger
}

// Controller is the per-session gallery state. Operations are serialized so a
// slow response can never overwrite a newer page.
type Controller struct {
	mu sync.Mutex

	catalog image.Catalog
	notify  toast.Notifier
	cfg     Config
	logger  *observability.Logger

	current    int
	loaded     bool
	images     []image.Image
	pagination image.Pagination
	selected   map[int]struct{}
	modal      preview.Modal
}

// New creates a controller on page 1 with nothing loaded
func New(catalog image.Catalog, notify toast.Notifier, cfg Config) *Controller {
	if cfg.PerPage <= 0 {
		cfg.PerPage = DefaultPerPage
	}
	if cfg.MaxVisible <= 0 {
		cfg.MaxVisible = pagination.DefaultMaxVisible
	}
	if cfg.FileURL == nil {
		cfg.FileURL = preview.FileURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Controller{
		catalog:  catalog,
		notify:   notify,
		cfg:      cfg,
		logger:   logger.Component("gallery"),
		current:  1,
		selected: make(map[int]struct{}),
	}
}

// CurrentPage returns the last page that loaded successfully
func (c *Controller) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// LoadPage fetches page and replaces the grid. The selection is reset and
// the current page only moves when the fetch succeeds.
func (c *Controller) LoadPage(ctx context.Context, page int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadPage(ctx, page)
}

// Reload fetches the current page again
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadPage(ctx, c.current)
}

func (c *Controller) loadPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}

	resp, err := c.catalog.ListImages(ctx, page, c.cfg.PerPage)
	if err != nil {
		c.logger.Warn(ctx).Err(err).Int("page", page).Msg("Failed to load images")
		c.notify.Show(MsgLoadFailed, toast.Error)
		return fmt.Errorf("failed to load page %d: %w", page, err)
	}

	c.images = resp.Images
	c.pagination = resp.Pagination
	c.pagination.Normalize()
	c.current = page
	c.loaded = true
	clear(c.selected)
	return nil
}

// Delete removes one image. When the grid empties the previous page (or
// page 1) is loaded.
func (c *Controller) Delete(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.catalog.DeleteImage(ctx, id); err != nil {
		c.logger.Warn(ctx).Err(err).Int("image_id", id).Msg("Failed to delete image")
		c.notify.Show(MsgDeleteFailed, toast.Error)
		return fmt.Errorf("failed to delete image %d: %w", id, err)
	}

	c.removeFromGrid(id)
	c.notify.Show(MsgDeleted, toast.Success)

	if len(c.images) == 0 {
		return c.loadPage(ctx, max(1, c.current-1))
	}
	return nil
}

// ToggleSelect marks or unmarks one image on the current page
func (c *Controller) ToggleSelect(id int, checked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.onPage(id) {
		return
	}
	if checked {
		c.selected[id] = struct{}{}
	} else {
		delete(c.selected, id)
	}
}

// ToggleSelectAll selects every image unless all are already selected, in
// which case it clears the selection
func (c *Controller) ToggleSelectAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.allSelected() {
		clear(c.selected)
		return
	}
	for _, img := range c.images {
		c.selected[img.ID] = struct{}{}
	}
}

// BulkResult counts the outcome of a batch
type BulkResult struct {
	Succeeded int
	Failed    int
	Skipped   int
}

// DeleteSelected deletes the selected images one at a time. Individual
// failures are counted and do not stop the batch.
func (c *Controller) DeleteSelected(ctx context.Context) (BulkResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var res BulkResult
	if len(c.selected) == 0 {
		return res, nil
	}

	ids := make([]int, 0, len(c.selected))
	for _, img := range c.images {
		if _, ok := c.selected[img.ID]; ok {
			ids = append(ids, img.ID)
		}
	}

	var abort error
	for _, id := range ids {
		if err := c.catalog.DeleteImage(ctx, id); err != nil {
			res.Failed++
			c.logger.Warn(ctx).Err(err).Int("image_id", id).Msg("Bulk delete item failed")
			if stopsBatch(ctx, err) {
				abort = err
				break
			}
			continue
		}
		c.removeFromGrid(id)
		res.Succeeded++
	}
	clear(c.selected)

	if abort != nil {
		c.notify.Show(MsgBulkDeleteFailed, toast.Error)
		return res, fmt.Errorf("bulk delete stopped: %w", abort)
	}

	if res.Succeeded > 0 {
		c.notify.Show(fmt.Sprintf("Successfully deleted %d %s", res.Succeeded, plural(res.Succeeded)), toast.Success)
	}
	if res.Failed > 0 {
		c.notify.Show(fmt.Sprintf("Failed to delete %d %s", res.Failed, plural(res.Failed)), toast.Error)
	}

	if len(c.images) == 0 {
		if err := c.loadPage(ctx, max(1, c.current-1)); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Upload sends each image file on its own. Non-image files are skipped and
// reported in an info toast. Page 1 is reloaded once when at least one
// upload succeeded.
func (c *Controller) Upload(ctx context.Context, files []image.File) (BulkResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var res BulkResult
	accepted := make([]image.File, 0, len(files))
	for _, f := range files {
		if f, ok := acceptImage(f); ok {
			accepted = append(accepted, f)
			continue
		}
		res.Skipped++
	}
	if res.Skipped > 0 {
		c.notify.Show(fmt.Sprintf(MsgUploadSkipped, res.Skipped), toast.Info)
	}
	if len(accepted) == 0 {
		return res, nil
	}

	var abort error
	for _, f := range accepted {
		if _, err := c.catalog.UploadImage(ctx, f); err != nil {
			res.Failed++
			c.logger.Warn(ctx).Err(err).Str("file", f.Name).Msg("Upload failed")
			if stopsBatch(ctx, err) {
				abort = err
				break
			}
			continue
		}
		res.Succeeded++
	}

	if abort != nil {
		c.notify.Show(MsgUploadFailedBatch, toast.Error)
		return res, fmt.Errorf("upload stopped: %w", abort)
	}

	if res.Succeeded > 0 {
		c.notify.Show(fmt.Sprintf("Successfully uploaded %d %s", res.Succeeded, plural(res.Succeeded)), toast.Success)
	}
	if res.Failed > 0 {
		c.notify.Show(fmt.Sprintf("Failed to upload %d %s", res.Failed, plural(res.Failed)), toast.Error)
	}
	if res.Succeeded > 0 {
		if err := c.loadPage(ctx, 1); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Preview opens the overlay for an image on the current page
func (c *Controller) Preview(id int) (preview.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, img := range c.images {
		if img.ID == id {
			return c.modal.Show(c.cfg.FileURL(img.FilePath), img.Title, img.UploadedAt.Time), nil
		}
	}
	return c.modal.State(), image.ErrImageNotFound
}

// ClosePreview hides the overlay
func (c *Controller) ClosePreview() preview.State {
	return c.modal.Hide()
}

func (c *Controller) removeFromGrid(id int) {
	kept := c.images[:0]
	for _, img := range c.images {
		if img.ID != id {
			kept = append(kept, img)
		}
	}
	c.images = kept
	delete(c.selected, id)
}

func (c *Controller) onPage(id int) bool {
	for _, img := range c.images {
		if img.ID == id {
			return true
		}
	}
	return false
}

func (c *Controller) allSelected() bool {
	if len(c.images) == 0 {
		return false
	}
	for _, img := range c.images {
		if _, ok := c.selected[img.ID]; !ok {
			return false
		}
	}
	return true
}

// acceptImage keeps files declared or sniffed as images, filling in a
// missing content type
func acceptImage(f image.File) (image.File, bool) {
	if f.IsImage() {
		return f, true
	}
	if f.ContentType == "" || f.ContentType == "application/octet-stream" {
		if imaging.IsImage(f.Data) {
			f.ContentType = imaging.ContentType(f.Data)
			return f, true
		}
	}
	return f, false
}

// stopsBatch reports errors after which further items cannot succeed
func stopsBatch(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, apiclient.ErrSessionExpired)
}

func plural(n int) string {
	if n == 1 {
		return "image"
	}
	return "images"
}
