package search

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	stdimage "image"
	"image/color"
	"image/png"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gallery-portal/internal/domain/image"
	"gallery-portal/internal/toast"
)

type call struct {
	kind  string
	query string
	file  string
	page  int
}

type fakeSearcher struct {
	calls   []call
	results []image.SearchResult
	total   int
	pages   int
	err     error
}

func (f *fakeSearcher) respond(page int) (*image.SearchResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &image.SearchResponse{
		Results:    f.results,
		Pagination: image.Pagination{Total: f.total, Pages: f.pages, CurrentPage: page},
	}, nil
}

func (f *fakeSearcher) SearchText(_ context.Context, query string, page, _ int) (*image.SearchResponse, error) {
	f.calls = append(f.calls, call{kind: "text", query: query, page: page})
	return f.respond(page)
}

func (f *fakeSearcher) SearchImage(_ context.Context, file image.File, page, _ int) (*image.SearchResponse, error) {
	f.calls = append(f.calls, call{kind: "image", file: file.Name, page: page})
	return f.respond(page)
}

func sampleResults() []image.SearchResult {
	return []image.SearchResult{
		{ImageID: 1, Title: "Beach", FilePath: "u1/beach.jpg", SimilarityScore: 0.91},
		{ImageID: 2, Title: "alps", FilePath: "u1/alps.jpg", SimilarityScore: 0.42},
		{ImageID: 3, Title: "City", FilePath: "u1/city.jpg", SimilarityScore: 0.68},
	}
}

func pngFile(t *testing.T, name string) *image.File {
	t.Helper()
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, 400, 300))
	img.Set(10, 10, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &image.File{Name: name, ContentType: "image/png", Data: buf.Bytes()}
}

// hugeHeaderPNG is a tiny PNG whose IHDR claims width x height
func hugeHeaderPNG(t *testing.T, width, height uint32) *image.File {
	t.Helper()
	data := bytes.Clone(pngFile(t, "huge.png").Data)
	// signature(8) length(4) "IHDR"(4) width(4) height(4) ... crc after 13 data bytes
	binary.BigEndian.PutUint32(data[16:20], width)
	binary.BigEndian.PutUint32(data[20:24], height)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return &image.File{Name: "huge.png", ContentType: "image/png", Data: data}
}

func newController(f *fakeSearcher) (*Controller, *toast.Recorder) {
	rec := &toast.Recorder{}
	return New(f, rec, Config{}), rec
}

func TestTextSearch_EmptyQueryMakesNoRequest(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		f := &fakeSearcher{}
		c, rec := newController(f)

		err := c.TextSearch(context.Background(), q, 1)
		assert.ErrorIs(t, err, ErrEmptyQuery)
		assert.Empty(t, f.calls)
		assert.Equal(t, []string{MsgEmptyQuery}, rec.Messages(toast.Error))
		assert.False(t, c.View().Searched)
	}
}

func TestTextSearch(t *testing.T) {
	f := &fakeSearcher{results: sampleResults(), total: 30, pages: 3}
	c, rec := newController(f)

	require.NoError(t, c.TextSearch(context.Background(), "  mountains at dawn ", 2))

	require.Len(t, f.calls, 1)
	assert.Equal(t, call{kind: "text", query: "mountains at dawn", page: 2}, f.calls[0])
	assert.Empty(t, rec.Toasts())

	v := c.View()
	assert.True(t, v.Searched)
	assert.Equal(t, "mountains at dawn", v.Query)
	assert.Equal(t, "30 results found", v.CountText)
	assert.True(t, v.ShowPagination)
	assert.NotEmpty(t, v.Pages)
	require.Len(t, v.Results, 3)
	assert.Equal(t, "91% match", v.Results[0].MatchText)
	assert.Equal(t, 68, v.Results[2].Percent)
	assert.Equal(t, "/files/u1/beach.jpg", v.Results[0].FileURL)
	assert.Equal(t, 2, c.Page(ModeText))
}

func TestTextSearch_Failure(t *testing.T) {
	f := &fakeSearcher{err: errors.New("503")}
	c, rec := newController(f)

	require.Error(t, c.TextSearch(context.Background(), "cats", 1))
	assert.Equal(t, []string{MsgTextSearchFailed}, rec.Messages(toast.Error))
	assert.False(t, c.View().Searched)
}

func TestView_NoResultsAndPaginationVisibility(t *testing.T) {
	tests := []struct {
		name           string
		results        []image.SearchResult
		total          int
		noResults      bool
		showPagination bool
		count          string
	}{
		{"empty", nil, 0, true, false, "0 results found"},
		{"single result", sampleResults()[:1], 1, false, false, "1 result found"},
		{"several", sampleResults(), 3, false, true, "3 results found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeSearcher{results: tt.results, total: tt.total, pages: 1}
			c, _ := newController(f)
			require.NoError(t, c.TextSearch(context.Background(), "q", 1))

			v := c.View()
			assert.Equal(t, tt.noResults, v.NoResults)
			assert.Equal(t, tt.showPagination, v.ShowPagination)
			assert.Equal(t, tt.count, v.CountText)
		})
	}
}

func TestImageSearch_RejectsNonImages(t *testing.T) {
	tests := []struct {
		name string
		file *image.File
	}{
		{"nil", nil},
		{"text file", &image.File{Name: "a.txt", ContentType: "text/plain", Data: []byte("hello")}},
		{"lying content type", &image.File{Name: "a.png", ContentType: "image/png", Data: []byte("not png")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeSearcher{}
			c, rec := newController(f)

			err := c.ImageSearch(context.Background(), tt.file, 1)
			assert.ErrorIs(t, err, ErrInvalidImage)
			assert.Empty(t, f.calls)
			assert.Equal(t, []string{MsgInvalidImage}, rec.Messages(toast.Error))
		})
	}
}

func TestImageSearch_PagingReusesFile(t *testing.T) {
	f := &fakeSearcher{results: sampleResults(), total: 40, pages: 4}
	c, _ := newController(f)

	require.NoError(t, c.ImageSearch(context.Background(), pngFile(t, "query.png"), 1))
	require.NoError(t, c.ChangePage(context.Background(), 3))

	assert.Equal(t, []call{
		{kind: "image", file: "query.png", page: 1},
		{kind: "image", file: "query.png", page: 3},
	}, f.calls)

	v := c.View()
	assert.Equal(t, ModeImage, v.Mode)
	assert.Equal(t, ModeImage, v.ResultsMode)
	assert.Equal(t, "query.png", v.FileName)
	assert.True(t, strings.HasPrefix(v.QueryPreview, "data:image/png;base64,"))
	assert.Equal(t, 3, c.Page(ModeImage))
	assert.Equal(t, 1, c.Page(ModeText), "each mode keeps its own page")
}

func TestImageSearch_OversizedHeaderSkipsPreview(t *testing.T) {
	f := &fakeSearcher{results: sampleResults(), total: 3, pages: 1}
	c, rec := newController(f)
	file := hugeHeaderPNG(t, 15000, 15000)

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	require.NoError(t, c.ImageSearch(context.Background(), file, 1))
	runtime.ReadMemStats(&after)

	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(16<<20), "header must not drive the allocation")
	assert.Equal(t, []call{{kind: "image", file: "huge.png", page: 1}}, f.calls, "the search itself still runs")
	assert.Empty(t, c.View().QueryPreview)
	assert.Empty(t, rec.Messages(toast.Error))
}

func TestImageSearch_PreviewMaxSide(t *testing.T) {
	f := &fakeSearcher{}
	c := New(f, &toast.Recorder{}, Config{PreviewMaxSide: 200})

	require.NoError(t, c.ImageSearch(context.Background(), pngFile(t, "query.png"), 1))
	assert.Empty(t, c.View().QueryPreview, "400x300 exceeds a 200px limit")

	c = New(f, &toast.Recorder{}, Config{PreviewMaxSide: 400})
	require.NoError(t, c.ImageSearch(context.Background(), pngFile(t, "query.png"), 1))
	assert.NotEmpty(t, c.View().QueryPreview)
}

func TestImageSearch_SniffsMissingContentType(t *testing.T) {
	f := &fakeSearcher{}
	c, _ := newController(f)

	file := pngFile(t, "drop")
	file.ContentType = ""
	require.NoError(t, c.ImageSearch(context.Background(), file, 1))
	require.Len(t, f.calls, 1)
}

func TestChangePage_BeforeAnySearch(t *testing.T) {
	f := &fakeSearcher{}
	c, _ := newController(f)
	require.NoError(t, c.ChangePage(context.Background(), 2))
	assert.Empty(t, f.calls)
}

func TestSort(t *testing.T) {
	f := &fakeSearcher{results: sampleResults(), total: 3, pages: 1}
	c, _ := newController(f)

	// No query yet: nothing is re-run
	require.NoError(t, c.Sort(context.Background(), SortTitle))
	assert.Empty(t, f.calls)

	require.NoError(t, c.TextSearch(context.Background(), "places", 1))
	require.NoError(t, c.ChangePage(context.Background(), 1))
	require.NoError(t, c.Sort(context.Background(), SortScoreAsc))

	require.Len(t, f.calls, 3)
	assert.Equal(t, call{kind: "text", query: "places", page: 1}, f.calls[2])

	v := c.View()
	assert.Equal(t, SortScoreAsc, v.Sort)
	assert.Equal(t, []string{"alps", "City", "Beach"}, titles(v.Results))

	require.NoError(t, c.Sort(context.Background(), SortTitle))
	assert.Equal(t, []string{"alps", "Beach", "City"}, titles(c.View().Results))

	assert.ErrorIs(t, c.Sort(context.Background(), "random"), ErrUnknownSort)
}

func TestSort_ImageModeOnlyReorders(t *testing.T) {
	f := &fakeSearcher{results: sampleResults(), total: 3, pages: 1}
	c, _ := newController(f)

	require.NoError(t, c.ImageSearch(context.Background(), pngFile(t, "q.png"), 1))
	require.NoError(t, c.Sort(context.Background(), SortTitle))

	assert.Len(t, f.calls, 1)
	assert.Equal(t, []string{"alps", "Beach", "City"}, titles(c.View().Results))
}

func TestSwitchTab(t *testing.T) {
	c, _ := newController(&fakeSearcher{})

	require.NoError(t, c.SwitchTab(ModeImage))
	assert.Equal(t, ModeImage, c.View().Mode)
	assert.ErrorIs(t, c.SwitchTab("video"), ErrUnknownMode)
	assert.Equal(t, ModeImage, c.View().Mode)
}

func TestParseSort(t *testing.T) {
	order, err := ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, SortRelevance, order)

	order, err = ParseSort("title")
	require.NoError(t, err)
	assert.Equal(t, SortTitle, order)

	_, err = ParseSort("nope")
	assert.ErrorIs(t, err, ErrUnknownSort)
}

func titles(cards []ResultCard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Title
	}
	return out
}
