package search

import (
	"fmt"

	"gallery-portal/internal/domain/image"
	"gallery-portal/internal/pagination"
)

// ResultCard is one rendered result
type ResultCard struct {
	Title       string
	Description string
	FileURL     string
	Percent     int
	MatchText   string
}

// View is everything the search templates need
type View struct {
	Mode     Mode
	Query    string
	FileName string

	// QueryPreview is a data: URL thumbnail of the query image
	QueryPreview string

	Sort        SortOrder
	SortOptions []SortOption

	Searched    bool
	ResultsMode Mode
	Results     []ResultCard
	NoResults   bool
	CountText   string

	Pagination     image.Pagination
	Pages          []pagination.Entry
	ShowPagination bool
}

// View snapshots the current state for rendering
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	sorted := sortResults(c.results, c.sort)
	cards := make([]ResultCard, 0, len(sorted))
	for _, r := range sorted {
		cards = append(cards, ResultCard{
			Title:       r.Title,
			Description: r.Description,
			FileURL:     c.cfg.FileURL(r.FilePath),
			Percent:     r.Percent(),
			MatchText:   fmt.Sprintf("%d%% match", r.Percent()),
		})
	}

	v := View{
		Mode:         c.mode,
		Query:        c.query,
		QueryPreview: c.queryPreview,
		Sort:         c.sort,
		SortOptions:  sortOptions(c.sort),
		Searched:     c.searched,
		ResultsMode:  c.resultsMode,
		Results:      cards,
		Pagination:   c.pagination,
	}
	if c.file != nil {
		v.FileName = c.file.Name
	}
	if c.searched {
		v.NoResults = len(cards) == 0
		v.CountText = CountText(c.pagination.Total)
		v.ShowPagination = len(cards) > 0 && c.pagination.Total > 1
		if v.ShowPagination {
			v.Pages = pagination.Window(c.pagination.CurrentPage, c.pagination.Pages, c.cfg.MaxVisible)
		}
	}
	return v
}

// CountText renders "N result(s) found"
func CountText(total int) string {
	if total == 1 {
		return "1 result found"
	}
	return fmt.Sprintf("%d results found", total)
}
