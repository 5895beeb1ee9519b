// Package search drives the tabbed text and image similarity search page
package search

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"gallery-portal/internal/domain/image"
	"gallery-portal/internal/observability"
	"gallery-portal/internal/platform/imaging"
	"gallery-portal/internal/preview"
	"gallery-portal/internal/toast"
)

// DefaultPerPage is the number of results per page
const DefaultPerPage = 12

// Toast texts
const (
	MsgEmptyQuery        = "Please enter an image description to search"
	MsgInvalidImage      = "Please select a valid image file"
	MsgTextSearchFailed  = "Search failed"
	MsgImageSearchFailed = "Image search failed"
)

// Query image preview bounds
const (
	previewWidth  = 240
	previewHeight = 240
)

// Mode is a search tab
type Mode string

const (
	ModeText  Mode = "text"
	ModeImage Mode = "image"
)

// ParseMode validates a tab name
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeText, ModeImage:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Config tunes a controller
type Config struct {
	PerPage    int
	MaxVisible int
	FileURL    func(filePath string) string

	// PreviewMaxSide is the largest query image, per side, that gets a
	// preview; bigger ones are still searched
	PreviewMaxSide int

	Logger *observability.Logger
}

// Controller is the per-session search state. Each mode keeps its own page;
// results always belong to the mode that produced them.
type Controller struct {
	mu sync.Mutex

	searcher image.Searcher
	notify   toast.Notifier
	cfg      Config
	logger   *observability.Logger

	mode  Mode
	pages map[Mode]int
	sort  SortOrder

	query        string
	file         *image.File
	queryPreview string

	searched    bool
	resultsMode Mode
	results     []image.SearchResult
	pagination  image.Pagination
}

// New creates a controller on the text tab
func New(searcher image.Searcher, notify toast.Notifier, cfg Config) *Controller {
	if cfg.PerPage <= 0 {
		cfg.PerPage = DefaultPerPage
	}
	if cfg.FileURL == nil {
		cfg.FileURL = preview.FileURL
	}
	if cfg.PreviewMaxSide <= 0 {
		cfg.PreviewMaxSide = imaging.DefaultMaxSourceSide
	}
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Controller{
		searcher: searcher,
		notify:   notify,
		cfg:      cfg,
		logger:   logger.Component("search"),
		mode:     ModeText,
		pages:    map[Mode]int{ModeText: 1, ModeImage: 1},
		sort:     SortRelevance,
	}
}

// SwitchTab makes mode the visible tab. Results stay as they are.
func (c *Controller) SwitchTab(mode Mode) error {
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
	return nil
}

// TextSearch searches for the trimmed query. An empty query is rejected
// without a request.
func (c *Controller) TextSearch(ctx context.Context, query string, page int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.textSearch(ctx, query, page)
}

func (c *Controller) textSearch(ctx context.Context, query string, page int) error {
	c.mode = ModeText
	query = strings.TrimSpace(query)
	if query == "" {
		c.notify.Show(MsgEmptyQuery, toast.Error)
		return ErrEmptyQuery
	}
	c.query = query
	page = max(page, 1)

	resp, err := c.searcher.SearchText(ctx, query, page, c.cfg.PerPage)
	if err != nil {
		c.logger.Warn(ctx).Err(err).Str("query", query).Msg("Text search failed")
		c.notify.Show(MsgTextSearchFailed, toast.Error)
		return fmt.Errorf("text search: %w", err)
	}

	c.apply(ModeText, page, resp)
	return nil
}

// ImageSearch searches with file as the query image. The file is kept so
// that later pages reuse it.
func (c *Controller) ImageSearch(ctx context.Context, file *image.File, page int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = ModeImage
	if file == nil || !imaging.IsImage(file.Data) {
		c.notify.Show(MsgInvalidImage, toast.Error)
		return ErrInvalidImage
	}

	f := *file
	if !f.IsImage() {
		f.ContentType = imaging.ContentType(f.Data)
	}
	c.file = &f
	c.queryPreview = c.previewDataURL(ctx, f.Data)

	return c.imageSearch(ctx, page)
}

func (c *Controller) imageSearch(ctx context.Context, page int) error {
	if c.file == nil {
		c.notify.Show(MsgInvalidImage, toast.Error)
		return ErrInvalidImage
	}
	page = max(page, 1)

	resp, err := c.searcher.SearchImage(ctx, *c.file, page, c.cfg.PerPage)
	if err != nil {
		c.logger.Warn(ctx).Err(err).Str("file", c.file.Name).Msg("Image search failed")
		c.notify.Show(MsgImageSearchFailed, toast.Error)
		return fmt.Errorf("image search: %w", err)
	}

	c.apply(ModeImage, page, resp)
	return nil
}

// ChangePage re-runs the search that produced the current results on page
func (c *Controller) ChangePage(ctx context.Context, page int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.searched {
		return nil
	}
	switch c.resultsMode {
	case ModeImage:
		c.mode = ModeImage
		return c.imageSearch(ctx, page)
	default:
		return c.textSearch(ctx, c.query, page)
	}
}

// Sort changes the order of displayed results. When a text query exists the
// text search is re-run from page 1; image results are only reordered.
func (c *Controller) Sort(ctx context.Context, order SortOrder) error {
	if _, err := ParseSort(string(order)); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sort = order
	if c.query == "" {
		return nil
	}
	return c.textSearch(ctx, c.query, 1)
}

// Page returns the page last loaded in mode
func (c *Controller) Page(mode Mode) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pages[mode]
}

func (c *Controller) apply(mode Mode, page int, resp *image.SearchResponse) {
	resp.Pagination.Normalize()
	c.searched = true
	c.resultsMode = mode
	c.results = resp.Results
	c.pagination = resp.Pagination
	c.pages[mode] = page
}

func (c *Controller) previewDataURL(ctx context.Context, data []byte) string {
	thumb, contentType, err := imaging.ThumbnailLimited(data, previewWidth, previewHeight, c.cfg.PreviewMaxSide)
	if err != nil {
		c.logger.Debug(ctx).Err(err).Msg("Skipping query image preview")
		return ""
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(thumb)
}
