// Package pagination builds the condensed page-number strip shown under the
// gallery grid and the search results.
package pagination

// DefaultMaxVisible is the number of numbered entries in the centred window
const DefaultMaxVisible = 5

// Entry is one slot of the strip: a page number or an ellipsis
type Entry struct {
	Page     int
	Ellipsis bool
	Current  bool
}

// Window returns the page strip for the given position. The numbered window
// holds at most maxVisible pages centred on current and clamped to [1, pages].
// When it starts after page 1 it is prefixed with "1, …" and when it ends
// before the last page it is suffixed with "…, pages".
func Window(current, pages, maxVisible int) []Entry {
	if pages < 1 {
		return nil
	}
	if maxVisible < 1 {
		maxVisible = DefaultMaxVisible
	}
	current = min(max(current, 1), pages)

	start := max(1, current-maxVisible/2)
	end := min(pages, start+maxVisible-1)
	if end-start+1 < maxVisible {
		start = max(1, end-maxVisible+1)
	}

	entries := make([]Entry, 0, maxVisible+4)
	if start > 1 {
		entries = append(entries, Entry{Page: 1}, Entry{Ellipsis: true})
	}
	for p := start; p <= end; p++ {
		entries = append(entries, Entry{Page: p, Current: p == current})
	}
	if end < pages {
		entries = append(entries, Entry{Ellipsis: true}, Entry{Page: pages})
	}
	return entries
}

// Pages returns just the numbered pages of the strip, with 0 for ellipses
func Pages(entries []Entry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		if !e.Ellipsis {
			out[i] = e.Page
		}
	}
	return out
}
