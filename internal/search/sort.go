package search

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"gallery-portal/internal/domain/image"
)

// SortOrder orders the displayed page of results
type SortOrder string

const (
	// SortRelevance keeps the backend's order
	SortRelevance SortOrder = "relevance"
	// SortScoreAsc puts the weakest matches first
	SortScoreAsc SortOrder = "score_asc"
	// SortTitle orders by title, case-insensitively
	SortTitle SortOrder = "title"
)

// SortOption is one entry of the sort select
type SortOption struct {
	Value    SortOrder
	Label    string
	Selected bool
}

var sortLabels = []SortOption{
	{Value: SortRelevance, Label: "Most relevant"},
	{Value: SortScoreAsc, Label: "Least relevant"},
	{Value: SortTitle, Label: "Title"},
}

// ParseSort validates a sort order; empty means relevance
func ParseSort(s string) (SortOrder, error) {
	if s == "" {
		return SortRelevance, nil
	}
	for _, o := range sortLabels {
		if string(o.Value) == s {
			return o.Value, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSort, s)
}

func sortOptions(current SortOrder) []SortOption {
	out := slices.Clone(sortLabels)
	for i := range out {
		out[i].Selected = out[i].Value == current
	}
	return out
}

func sortResults(results []image.SearchResult, order SortOrder) []image.SearchResult {
	out := slices.Clone(results)
	switch order {
	case SortScoreAsc:
		slices.SortStableFunc(out, func(a, b image.SearchResult) int {
			return cmp.Compare(a.SimilarityScore, b.SimilarityScore)
		})
	case SortTitle:
		slices.SortStableFunc(out, func(a, b image.SearchResult) int {
			return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		})
	}
	return out
}
