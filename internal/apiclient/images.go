package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"gallery-portal/internal/domain/image"
)

var _ image.Catalog = (*Client)(nil)

// ListImages fetches one page of the user's images
func (c *Client) ListImages(ctx context.Context, page, perPage int) (*image.ListImagesResponse, error) {
	var out image.ListImagesResponse
	if err := c.doJSON(ctx, EndpointImages+pageQuery(page, perPage), RequestOptions{}, &out); err != nil {
		return nil, err
	}
	out.Pagination.Normalize()
	return &out, nil
}

// UploadImage posts one file as multipart form data, titled by its filename
func (c *Client) UploadImage(ctx context.Context, file image.File) (*image.Image, error) {
	if err := file.Validate(); err != nil {
		return nil, err
	}

	body, contentType, err := multipartBody(file, map[string]string{"title": file.Name})
	if err != nil {
		return nil, err
	}

	var out image.UploadResponse
	if err := c.doJSON(ctx, EndpointImages+"/", RequestOptions{
		Method: http.MethodPost,
		Header: http.Header{"Content-Type": {contentType}},
		Body:   body,
	}, &out); err != nil {
		return nil, err
	}
	return &out.Image, nil
}

// DeleteImage removes an image by id
func (c *Client) DeleteImage(ctx context.Context, id int) error {
	return c.doJSON(ctx, EndpointImages+"/"+strconv.Itoa(id), RequestOptions{Method: http.MethodDelete}, nil)
}

// FetchFile streams the bytes stored at filePath. The caller closes the
// response body; non-2xx answers are returned as *APIError.
func (c *Client) FetchFile(ctx context.Context, filePath string) (*http.Response, error) {
	filePath = strings.TrimLeft(filePath, "/")
	if filePath == "" {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "empty file path"}
	}

	segments := strings.Split(filePath, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	resp, err := c.Request(ctx, EndpointImageFiles+strings.Join(segments, "/"), RequestOptions{})
	if err != nil {
		return nil, err
	}
	if err := checkResponse(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func pageQuery(page, perPage int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	return "?" + q.Encode()
}

// multipartBody encodes file under the "file" field plus any extra fields
func multipartBody(file image.File, fields map[string]string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(file.Data)); err != nil {
		return nil, "", fmt.Errorf("failed to write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}
