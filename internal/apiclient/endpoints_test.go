package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gallery-portal/internal/domain/auth"
	"gallery-portal/internal/domain/image"
	"gallery-portal/internal/session"
)

func authedClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	store := session.NewStore(session.NewMemoryKV(0))
	require.NoError(t, store.SetTokens(context.Background(), "token", "refresh"))
	return New(srv.URL, WithTokenStore(store))
}

func TestLogin(t *testing.T) {
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+EndpointRefreshToken, func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
	})
	mux.HandleFunc("POST "+EndpointLogin, func(w http.ResponseWriter, r *http.Request) {
		var creds auth.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "Secret1!" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid username or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"a","refresh_token":"r","message":"Login successful","user":{"user_id":7,"username":"alice"}}`))
	})
	client := authedClient(t, mux)

	tokens, err := client.Login(context.Background(), auth.Credentials{Username: "alice", Password: "Secret1!"})
	require.NoError(t, err)
	assert.Equal(t, "a", tokens.AccessToken)
	assert.Equal(t, "r", tokens.RefreshToken)
	require.NotNil(t, tokens.User)
	assert.Equal(t, 7, tokens.User.UserID)

	_, err = client.Login(context.Background(), auth.Credentials{Username: "alice", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "Invalid username or password", err.Error())
	assert.Equal(t, int32(0), refreshes.Load(), "a failed login must not refresh")
}

func TestRegister(t *testing.T) {
	client := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "ConfirmPassword")
		if body["username"] == "taken" {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message":"Username already exists"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"User registered successfully"}`))
	}))

	msg, err := client.Register(context.Background(), auth.Registration{Username: "bob", Email: "b@x.io", Password: "Secret1!", ConfirmPassword: "Secret1!"})
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", msg)

	_, err = client.Register(context.Background(), auth.Registration{Username: "taken"})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, StatusCode(err))
	assert.Equal(t, "Username already exists", err.Error())
}

func TestCheckAuth(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	store := session.NewStore(session.NewMemoryKV(0))
	client := New(srv.URL, WithTokenStore(store))

	ok, err := client.CheckAuth(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int32(0), calls.Load(), "no token means no request")

	require.NoError(t, store.SetTokens(context.Background(), "bad", "r"))
	ok, err = client.CheckAuth(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetTokens(context.Background(), "good", ""))
	ok, err = client.CheckAuth(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(2), calls.Load())
}

func TestListImages(t *testing.T) {
	client := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, EndpointImages, r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`{
			"images": [{"image_id": 3, "title": "cat.png", "file_path": "u1/cat.png", "uploaded_at": "2024-03-01T10:20:30.123456"}],
			"pagination": {"total": 11, "pages": 2, "current_page": 2, "per_page": 10}
		}`))
	}))

	resp, err := client.ListImages(context.Background(), 2, 10)
	require.NoError(t, err)
	require.Len(t, resp.Images, 1)
	assert.Equal(t, 3, resp.Images[0].ID)
	assert.Equal(t, 2024, resp.Images[0].UploadedAt.Year())
	assert.Equal(t, 2, resp.Pagination.CurrentPage)
	assert.Equal(t, 11, resp.Pagination.Total)
}

func TestUploadImage(t *testing.T) {
	client := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, EndpointImages+"/", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "dog.jpg", r.FormValue("title"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "jpegbytes", string(data))
		assert.Equal(t, "dog.jpg", hdr.Filename)
		assert.Equal(t, "image/jpeg", hdr.Header.Get("Content-Type"))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"Image uploaded successfully","image":{"image_id":9,"title":"dog.jpg","file_path":"u1/dog.jpg"}}`))
	}))

	img, err := client.UploadImage(context.Background(), image.File{Name: "dog.jpg", ContentType: "image/jpeg", Data: []byte("jpegbytes")})
	require.NoError(t, err)
	assert.Equal(t, 9, img.ID)

	_, err = client.UploadImage(context.Background(), image.File{Name: "empty.jpg", ContentType: "image/jpeg"})
	assert.ErrorIs(t, err, image.ErrInvalidFileSize)
}

func TestDeleteImage(t *testing.T) {
	client := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path == "/api/images/404" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Image not found"}`))
			return
		}
		assert.Equal(t, "/api/images/12", r.URL.Path)
	}))

	require.NoError(t, client.DeleteImage(context.Background(), 12))

	err := client.DeleteImage(context.Background(), 404)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
}

func TestFetchFile(t *testing.T) {
	client := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/images/file/u1/my photo.png" {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("png"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	resp, err := client.FetchFile(context.Background(), "/u1/my photo.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	_, err = client.FetchFile(context.Background(), "u1/missing.png")
	assert.Equal(t, http.StatusNotFound, StatusCode(err))

	_, err = client.FetchFile(context.Background(), "")
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestSearchText(t *testing.T) {
	client := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, EndpointSearchText, r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "12", r.URL.Query().Get("per_page"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sunset over water", body["query"])

		_, _ = w.Write([]byte(`{
			"results": [{"image_id": 1, "title": "beach", "file_path": "u1/beach.jpg", "similarity_score": 0.873}],
			"pagination": {"total": 1, "pages": 1, "current_page": 1}
		}`))
	}))

	resp, err := client.SearchText(context.Background(), "sunset over water", 1, 12)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 87, resp.Results[0].Percent())
}

func TestSearchImage(t *testing.T) {
	client := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, EndpointSearchImage, r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("page"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "query.png", hdr.Filename)
		assert.Empty(t, r.FormValue("title"))

		_, _ = w.Write([]byte(`{"results": [], "pagination": {"total": 0, "pages": 0, "current_page": 3}}`))
	}))

	resp, err := client.SearchImage(context.Background(), image.File{Name: "query.png", ContentType: "image/png", Data: []byte{1, 2, 3}}, 3, 12)
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 1, resp.Pagination.CurrentPage, "descriptor is normalized")
}
