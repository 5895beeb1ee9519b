package image

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Image is the backend's image record as listed by GET /api/images
type Image struct {
	ID          int       `json:"image_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	FilePath    string    `json:"file_path"`
	UploadedAt  Timestamp `json:"uploaded_at"`
}

// SearchResult is one hit of a text or image similarity search
type SearchResult struct {
	ImageID         int     `json:"image_id,omitempty"`
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	FilePath        string  `json:"file_path"`
	SimilarityScore float64 `json:"similarity_score"`
}

// Percent returns the similarity score rounded to the nearest whole percent
func (r SearchResult) Percent() int {
	return int(math.Round(r.SimilarityScore * 100))
}

// Pagination describes one page of a listing or search
type Pagination struct {
	Total       int `json:"total"`
	Pages       int `json:"pages"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page,omitempty"`
}

// Normalize clamps the descriptor so that 1 <= CurrentPage <= max(Pages, 1)
// and counts are never negative.
func (p *Pagination) Normalize() {
	if p.Total < 0 {
		p.Total = 0
	}
	if p.Pages < 0 {
		p.Pages = 0
	}
	if p.CurrentPage < 1 {
		p.CurrentPage = 1
	}
	if last := max(p.Pages, 1); p.CurrentPage > last {
		p.CurrentPage = last
	}
}

// HasPrev reports whether a previous page exists
func (p Pagination) HasPrev() bool {
	return p.CurrentPage > 1
}

// HasNext reports whether a next page exists
func (p Pagination) HasNext() bool {
	return p.CurrentPage < p.Pages
}

// ListImagesResponse is the body of GET /api/images
type ListImagesResponse struct {
	Images     []Image    `json:"images"`
	Pagination Pagination `json:"pagination"`
}

// SearchResponse is the body of both search endpoints
type SearchResponse struct {
	Results    []SearchResult `json:"results"`
	Pagination Pagination     `json:"pagination"`
}

// UploadResponse is the body of POST /api/images/
type UploadResponse struct {
	Message string `json:"message"`
	Image   Image  `json:"image"`
}

// File is an image picked for upload or image search
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// IsImage reports whether the declared content type is an image type
func (f File) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(f.ContentType), "image/")
}

// Validate checks that the file can be sent upstream
func (f File) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrInvalidFilename
	}
	if len(f.Data) < MinFileSize || len(f.Data) > MaxFileSize {
		return fmt.Errorf("%w: %d bytes", ErrInvalidFileSize, len(f.Data))
	}
	return nil
}

// Timestamp decodes the backend's ISO-8601 timestamps, which may come
// without a zone (naive UTC) or with fractional seconds.
type Timestamp struct {
	time.Time
}

// timestampLayouts are tried in order; zone-less layouts are read as UTC
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a backend timestamp string
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// UnmarshalJSON implements json.Unmarshaler. A value that is not a
// recognised timestamp decodes to the zero Timestamp, so one bad record
// cannot fail a whole page.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}

	var s string
	if err := json.Unmarshal(data, &s); err != nil || s == "" {
		return nil
	}
	if parsed, err := ParseTimestamp(s); err == nil {
		*t = parsed
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
