package image

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{
			name:     "naive isoformat with microseconds",
			input:    `"2024-03-05T14:07:09.123456"`,
			expected: time.Date(2024, 3, 5, 14, 7, 9, 123456000, time.UTC),
		},
		{
			name:     "naive isoformat without fraction",
			input:    `"2024-03-05T14:07:09"`,
			expected: time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC),
		},
		{
			name:     "RFC3339 with zone",
			input:    `"2024-03-05T14:07:09+02:00"`,
			expected: time.Date(2024, 3, 5, 12, 7, 9, 0, time.UTC),
		},
		{
			name:     "space separated",
			input:    `"2024-03-05 14:07:09"`,
			expected: time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC),
		},
		{
			name:  "null",
			input: `null`,
		},
		{
			name:  "unparseable string decodes to zero",
			input: `"yesterday"`,
		},
		{
			name:  "number decodes to zero",
			input: `1700000000`,
		},
		{
			name:  "empty string",
			input: `""`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ts))
			assert.True(t, tt.expected.Equal(ts.Time), "got %v", ts.Time)
		})
	}
}

func TestListImagesResponse_Decode(t *testing.T) {
	body := `{
		"images": [
			{"image_id": 7, "title": "cat.png", "description": null, "file_path": "u1/cat.png", "uploaded_at": "2024-01-02T03:04:05.000001"}
		],
		"pagination": {"total": 11, "pages": 2, "current_page": 2, "per_page": 10}
	}`

	var resp ListImagesResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))

	require.Len(t, resp.Images, 1)
	assert.Equal(t, 7, resp.Images[0].ID)
	assert.Equal(t, "cat.png", resp.Images[0].Title)
	assert.Empty(t, resp.Images[0].Description)
	assert.Equal(t, "u1/cat.png", resp.Images[0].FilePath)
	assert.Equal(t, 2024, resp.Images[0].UploadedAt.Year())
	assert.Equal(t, Pagination{Total: 11, Pages: 2, CurrentPage: 2, PerPage: 10}, resp.Pagination)
}

func TestListImagesResponse_DecodeBadTimestamp(t *testing.T) {
	body := `{
		"images": [
			{"image_id": 1, "title": "a.png", "file_path": "u1/a.png", "uploaded_at": "05/03/2024"},
			{"image_id": 2, "title": "b.png", "file_path": "u1/b.png", "uploaded_at": "2024-03-05T14:07:09"}
		],
		"pagination": {"total": 2, "pages": 1, "current_page": 1}
	}`

	var resp ListImagesResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))

	require.Len(t, resp.Images, 2)
	assert.True(t, resp.Images[0].UploadedAt.IsZero())
	assert.Equal(t, "a.png", resp.Images[0].Title)
	assert.Equal(t, 2024, resp.Images[1].UploadedAt.Year())
}

func TestParseTimestamp_Invalid(t *testing.T) {
	_, err := ParseTimestamp("yesterday")
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestPagination_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		input    Pagination
		expected Pagination
	}{
		{
			name:     "already valid",
			input:    Pagination{Total: 25, Pages: 3, CurrentPage: 2},
			expected: Pagination{Total: 25, Pages: 3, CurrentPage: 2},
		},
		{
			name:     "empty result keeps page one",
			input:    Pagination{Total: 0, Pages: 0, CurrentPage: 4},
			expected: Pagination{Total: 0, Pages: 0, CurrentPage: 1},
		},
		{
			name:     "page past the end",
			input:    Pagination{Total: 25, Pages: 3, CurrentPage: 9},
			expected: Pagination{Total: 25, Pages: 3, CurrentPage: 3},
		},
		{
			name:     "negative values",
			input:    Pagination{Total: -1, Pages: -2, CurrentPage: 0},
			expected: Pagination{Total: 0, Pages: 0, CurrentPage: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.input
			p.Normalize()
			assert.Equal(t, tt.expected, p)
			assert.LessOrEqual(t, p.CurrentPage, max(p.Pages, 1))
		})
	}
}

func TestPagination_PrevNext(t *testing.T) {
	p := Pagination{Total: 30, Pages: 3, CurrentPage: 1}
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext())

	p.CurrentPage = 3
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())
}

func TestSearchResult_Percent(t *testing.T) {
	tests := []struct {
		score    float64
		expected int
	}{
		{0, 0},
		{0.344, 34},
		{0.125, 13},
		{0.999, 100},
		{1, 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SearchResult{SimilarityScore: tt.score}.Percent(), "score %v", tt.score)
	}
}

func TestFile_Validate(t *testing.T) {
	tests := []struct {
		name        string
		file        File
		expectedErr error
	}{
		{
			name: "valid",
			file: File{Name: "a.png", ContentType: "image/png", Data: []byte{1, 2, 3}},
		},
		{
			name:        "blank name",
			file:        File{Name: "  ", Data: []byte{1}},
			expectedErr: ErrInvalidFilename,
		},
		{
			name:        "empty data",
			file:        File{Name: "a.png"},
			expectedErr: ErrInvalidFileSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.file.Validate()
			if tt.expectedErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestFile_IsImage(t *testing.T) {
	assert.True(t, File{ContentType: "image/jpeg"}.IsImage())
	assert.True(t, File{ContentType: "IMAGE/PNG"}.IsImage())
	assert.False(t, File{ContentType: "application/pdf"}.IsImage())
	assert.False(t, File{}.IsImage())
}
