package search

import "errors"

var (
	// ErrEmptyQuery is returned when a text search has nothing to search for
	ErrEmptyQuery = errors.New("empty search query")

	// ErrInvalidImage is returned when the query file is not a decodable image
	ErrInvalidImage = errors.New("invalid image file")

	// ErrUnknownMode is returned for a tab other than text or image
	ErrUnknownMode = errors.New("unknown search mode")

	// ErrUnknownSort is returned for an unsupported sort order
	ErrUnknownSort = errors.New("unknown sort order")
)
