package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		name       string
		current    int
		pages      int
		maxVisible int
		expected   []int // 0 marks an ellipsis
	}{
		{
			name:       "middle of ten pages",
			current:    5,
			pages:      10,
			maxVisible: 5,
			expected:   []int{1, 0, 3, 4, 5, 6, 7, 0, 10},
		},
		{
			name:       "three pages fit without ellipses",
			current:    1,
			pages:      3,
			maxVisible: 5,
			expected:   []int{1, 2, 3},
		},
		{
			name:       "first page of ten",
			current:    1,
			pages:      10,
			maxVisible: 5,
			expected:   []int{1, 2, 3, 4, 5, 0, 10},
		},
		{
			name:       "last page of ten clamps the window",
			current:    10,
			pages:      10,
			maxVisible: 5,
			expected:   []int{1, 0, 6, 7, 8, 9, 10},
		},
		{
			name:       "near the end",
			current:    8,
			pages:      10,
			maxVisible: 5,
			expected:   []int{1, 0, 6, 7, 8, 9, 10},
		},
		{
			name:       "window touching page one",
			current:    3,
			pages:      10,
			maxVisible: 5,
			expected:   []int{1, 2, 3, 4, 5, 0, 10},
		},
		{
			name:       "single page",
			current:    1,
			pages:      1,
			maxVisible: 5,
			expected:   []int{1},
		},
		{
			name:       "current out of range is clamped",
			current:    42,
			pages:      6,
			maxVisible: 5,
			expected:   []int{1, 0, 2, 3, 4, 5, 6},
		},
		{
			name:       "zero max visible falls back to default",
			current:    1,
			pages:      5,
			maxVisible: 0,
			expected:   []int{1, 2, 3, 4, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := Window(tt.current, tt.pages, tt.maxVisible)
			assert.Equal(t, tt.expected, Pages(entries))

			numbered := 0
			for _, e := range entries {
				if !e.Ellipsis {
					numbered++
				}
			}
			assert.LessOrEqual(t, numbered, DefaultMaxVisible+2)
		})
	}
}

func TestWindow_NoPages(t *testing.T) {
	assert.Nil(t, Window(1, 0, 5))
}

func TestWindow_MarksCurrent(t *testing.T) {
	entries := Window(4, 10, 5)

	var current []int
	for _, e := range entries {
		if e.Current {
			current = append(current, e.Page)
		}
	}
	assert.Equal(t, []int{4}, current)
}
