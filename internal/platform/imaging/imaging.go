// Package imaging sniffs uploaded files, renders query-image previews and
// draws the placeholder shown when an image cannot be fetched.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // Register gif decoding
	"image/jpeg"
	"image/png"
	"net/http"
	"strings"

	_ "golang.org/x/image/bmp" // Register bmp decoding
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // Register tiff decoding
	_ "golang.org/x/image/webp" // Register webp decoding
)

// Limits for generated images
const (
	MaxPlaceholderSide = 2000
	PreviewQuality     = 80

	// DefaultMaxSourceSide bounds the sources Thumbnail will decode
	DefaultMaxSourceSide = 4096
)

var (
	// ErrNotImage is returned when no registered decoder recognises the data
	ErrNotImage = errors.New("not a supported image")

	// ErrInvalidDimensions is returned for non-positive or oversized sizes
	ErrInvalidDimensions = errors.New("invalid dimensions")

	// ErrTooLarge is returned when a header claims more pixels than allowed
	ErrTooLarge = errors.New("image too large")
)

// Info describes a decoded image header
type Info struct {
	Width       int
	Height      int
	Format      string
	ContentType string
}

// Inspect decodes only the header of data and reports its format and size
func Inspect(data []byte) (*Info, error) {
	if len(data) == 0 {
		return nil, ErrNotImage
	}

	config, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	return &Info{
		Width:       config.Width,
		Height:      config.Height,
		Format:      format,
		ContentType: "image/" + format,
	}, nil
}

// IsImage reports whether data decodes as any registered image format
func IsImage(data []byte) bool {
	_, err := Inspect(data)
	return err == nil
}

// ContentType returns the image content type for data, falling back to
// http.DetectContentType when no decoder matches.
func ContentType(data []byte) string {
	if info, err := Inspect(data); err == nil {
		return info.ContentType
	}
	return http.DetectContentType(data)
}

// CheckSize reads the header of data and rejects images wider than
// maxWidth or taller than maxHeight, before any pixel is decoded
func CheckSize(data []byte, maxWidth, maxHeight int) (*Info, error) {
	info, err := Inspect(data)
	if err != nil {
		return nil, err
	}
	if info.Width > maxWidth || info.Height > maxHeight {
		return info, fmt.Errorf("%w: %dx%d exceeds %dx%d",
			ErrTooLarge, info.Width, info.Height, maxWidth, maxHeight)
	}
	return info, nil
}

// Thumbnail scales data down to fit within maxWidth x maxHeight and returns
// it as JPEG, or PNG when the source is a PNG. Images are never upscaled.
// Sources larger than DefaultMaxSourceSide on either side are rejected.
func Thumbnail(data []byte, maxWidth, maxHeight int) ([]byte, string, error) {
	return ThumbnailLimited(data, maxWidth, maxHeight, DefaultMaxSourceSide)
}

// ThumbnailLimited is Thumbnail with an explicit bound on the source size
func ThumbnailLimited(data []byte, maxWidth, maxHeight, maxSourceSide int) ([]byte, string, error) {
	if maxWidth <= 0 || maxHeight <= 0 || maxSourceSide <= 0 {
		return nil, "", ErrInvalidDimensions
	}
	if _, err := CheckSize(data, maxSourceSide, maxSourceSide); err != nil {
		return nil, "", err
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	srcBounds := src.Bounds()
	scale := min(
		float64(maxWidth)/float64(srcBounds.Dx()),
		float64(maxHeight)/float64(srcBounds.Dy()),
		1.0,
	)

	dstWidth := max(1, int(float64(srcBounds.Dx())*scale))
	dstHeight := max(1, int(float64(srcBounds.Dy())*scale))
	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, srcBounds, draw.Over, nil)

	var buf bytes.Buffer
	if strings.EqualFold(format, "png") {
		if err := png.Encode(&buf, dst); err != nil {
			return nil, "", fmt.Errorf("failed to encode thumbnail: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	}

	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: PreviewQuality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

var (
	placeholderBackground = color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}
	placeholderForeground = color.RGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff}
)

// Placeholder renders a width x height PNG: a light grey card with a simple
// mountain-and-sun glyph in the middle.
func Placeholder(width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 || width > MaxPlaceholderSide || height > MaxPlaceholderSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(placeholderBackground), image.Point{}, draw.Src)

	side := min(width, height) / 3
	if side > 0 {
		cx, cy := width/2, height/2
		drawSun(img, cx+side/3, cy-side/4, max(1, side/8))
		drawMountain(img, cx-side/2, cy+side/2, side)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

func drawSun(img *image.RGBA, cx, cy, r int) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r && image.Pt(x, y).In(img.Bounds()) {
				img.SetRGBA(x, y, placeholderForeground)
			}
		}
	}
}

// drawMountain fills a triangle with its base from (x0, baseY) to
// (x0+side, baseY) and its apex half a side above.
func drawMountain(img *image.RGBA, x0, baseY, side int) {
	height := side / 2
	for row := 0; row <= height; row++ {
		y := baseY - row
		inset := row * side / (2 * max(height, 1))
		for x := x0 + inset; x <= x0+side-inset; x++ {
			if image.Pt(x, y).In(img.Bounds()) {
				img.SetRGBA(x, y, placeholderForeground)
			}
		}
	}
}
