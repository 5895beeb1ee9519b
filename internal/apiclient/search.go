package apiclient

import (
	"context"
	"net/http"

	"gallery-portal/internal/domain/image"
)

var _ image.Searcher = (*Client)(nil)

type textQuery struct {
	Query string `json:"query"`
}

// SearchText runs a natural-language search
func (c *Client) SearchText(ctx context.Context, query string, page, perPage int) (*image.SearchResponse, error) {
	body, err := jsonBody(textQuery{Query: query})
	if err != nil {
		return nil, err
	}

	var out image.SearchResponse
	if err := c.doJSON(ctx, EndpointSearchText+pageQuery(page, perPage), RequestOptions{
		Method: http.MethodPost,
		Body:   body,
	}, &out); err != nil {
		return nil, err
	}
	out.Pagination.Normalize()
	return &out, nil
}

// SearchImage runs a similarity search using file as the query
func (c *Client) SearchImage(ctx context.Context, file image.File, page, perPage int) (*image.SearchResponse, error) {
	body, contentType, err := multipartBody(file, nil)
	if err != nil {
		return nil, err
	}

	var out image.SearchResponse
	if err := c.doJSON(ctx, EndpointSearchImage+pageQuery(page, perPage), RequestOptions{
		Method: http.MethodPost,
		Header: http.Header{"Content-Type": {contentType}},
		Body:   body,
	}, &out); err != nil {
		return nil, err
	}
	out.Pagination.Normalize()
	return &out, nil
}
