package gallery

import (
	"gallery-portal/internal/domain/image"
	"gallery-portal/internal/pagination"
	"gallery-portal/internal/preview"
)

// Selection button labels
const (
	LabelSelectAll   = "Select All"
	LabelDeselectAll = "Deselect All"
)

// Card is one grid tile
type Card struct {
	ID       int
	Title    string
	FileURL  string
	DateText string
	Selected bool
}

// View is everything the gallery templates need
type View struct {
	Loaded     bool
	Cards      []Card
	Pagination image.Pagination
	Pages      []pagination.Entry

	// ShowPagination is false when there are no images at all
	ShowPagination bool

	SelectAllLabel string
	SelectedCount  int
	DeleteDisabled bool

	Preview preview.State
}

// View snapshots the current state for rendering
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	cards := make([]Card, 0, len(c.images))
	for _, img := range c.images {
		_, selected := c.selected[img.ID]
		cards = append(cards, Card{
			ID:       img.ID,
			Title:    img.Title,
			FileURL:  c.cfg.FileURL(img.FilePath),
			DateText: preview.FormatDate(img.UploadedAt.Time),
			Selected: selected,
		})
	}

	label := LabelSelectAll
	if c.allSelected() {
		label = LabelDeselectAll
	}

	return View{
		Loaded:         c.loaded,
		Cards:          cards,
		Pagination:     c.pagination,
		Pages:          pagination.Window(c.pagination.CurrentPage, c.pagination.Pages, c.cfg.MaxVisible),
		ShowPagination: c.pagination.Total > 0,
		SelectAllLabel: label,
		SelectedCount:  len(c.selected),
		DeleteDisabled: len(c.selected) == 0,
		Preview:        c.modal.State(),
	}
}

// SelectedIDs returns the selected ids in grid order
func (c *Controller) SelectedIDs() []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]int, 0, len(c.selected))
	for _, img := range c.images {
		if _, ok := c.selected[img.ID]; ok {
			ids = append(ids, img.ID)
		}
	}
	return ids
}
