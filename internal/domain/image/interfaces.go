package image

import "context"

// Catalog is the backend's image collection as seen by the gallery
type Catalog interface {
	// ListImages fetches one page of the caller's images
	ListImages(ctx context.Context, page, perPage int) (*ListImagesResponse, error)

	// UploadImage stores a new image, titled with its filename
	UploadImage(ctx context.Context, file File) (*Image, error)

	// DeleteImage removes an image by id
	DeleteImage(ctx context.Context, id int) error
}

// Searcher runs similarity searches against the backend
type Searcher interface {
	// SearchText finds images matching a natural-language description
	SearchText(ctx context.Context, query string, page, perPage int) (*SearchResponse, error)

	// SearchImage finds images similar to the given one
	SearchImage(ctx context.Context, file File, page, perPage int) (*SearchResponse, error)
}
