package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"

	"gallery-portal/internal/config"
)

// Test credentials accepted by FakeBackend
const (
	TestUsername = "alice"
	TestPassword = "Secret123!"
)

// NewConfig returns a portal configuration for backend talking to apiURL
func NewConfig(backend, apiURL string) *config.Config {
	return &config.Config{
		Environment: "test",
		Host:        "127.0.0.1",
		Port:        "0",
		API:         config.APIConfig{BaseURL: apiURL, Timeout: 5 * time.Second},
		Session: config.SessionConfig{
			Backend:       backend,
			CookieName:    "gallery_session",
			TTL:           time.Hour,
			PurgeInterval: time.Minute,
		},
		UI: config.UIConfig{
			GalleryPageSize:      10,
			SearchPageSize:       12,
			MaxVisiblePages:      5,
			SessionCheckInterval: time.Minute,
			LoginRedirectDelay:   time.Second,
			ToastDuration:        3 * time.Second,
		},
	}
}

// GenerateTestImageData creates a real PNG of the given size
func GenerateTestImageData(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img) //nolint:errcheck // In-memory encode
	return buf.Bytes()
}

// FakeBackend is an in-memory gallery REST backend. Each login mints a new
// access token; refresh mints another unless RejectRefresh is set.
type FakeBackend struct {
	Server *httptest.Server

	RejectRefresh atomic.Bool
	Refreshes     atomic.Int32

	mu      sync.Mutex
	valid   map[string]bool
	refresh map[string]bool
	nextTok int
	images  []map[string]any
	nextID  int
}

// NewFakeBackend starts the fake; call Close when done
func NewFakeBackend() *FakeBackend {
	b := &FakeBackend{
		valid:   make(map[string]bool),
		refresh: make(map[string]bool),
		nextID:  1,
	}
	b.Server = httptest.NewServer(b.routes())
	return b
}

// URL is the backend base URL
func (b *FakeBackend) URL() string {
	return b.Server.URL
}

func (b *FakeBackend) Close() {
	b.Server.Close()
}

// ExpireAccessTokens invalidates every issued access token
func (b *FakeBackend) ExpireAccessTokens() {
	b.mu.Lock()
	clear(b.valid)
	b.mu.Unlock()
}

func (b *FakeBackend) mint(prefix string) string {
	b.nextTok++
	return fmt.Sprintf("%s-%d", prefix, b.nextTok)
}

func (b *FakeBackend) authorized(r *http.Request) bool {
	const scheme = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) <= len(scheme) {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.valid[h[len(scheme):]]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Test server
}

func (b *FakeBackend) routes() http.Handler {
	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !b.authorized(r) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token expired"})
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds) //nolint:errcheck // Checked below
		if creds["username"] != TestUsername || creds["password"] != TestPassword {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		b.mu.Lock()
		access, refresh := b.mint("access"), b.mint("refresh")
		b.valid[access] = true
		b.refresh[refresh] = true
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"access_token": access, "refresh_token": refresh})
	})
	mux.HandleFunc("POST /api/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		b.Refreshes.Add(1)
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck // Checked below
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.RejectRefresh.Load() || !b.refresh[req["refresh_token"]] {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid refresh token"})
			return
		}
		access := b.mint("access")
		b.valid[access] = true
		writeJSON(w, http.StatusOK, map[string]string{"access_token": access})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
	})
	mux.HandleFunc("GET /api/auth/protected", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	}))
	mux.HandleFunc("GET /api/images", authed(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		images := append([]map[string]any(nil), b.images...)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{
			"images":     images,
			"pagination": map[string]int{"total": len(images), "pages": min(len(images), 1), "current_page": 1},
		})
	}))
	mux.HandleFunc("POST /api/images/", authed(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		b.mu.Lock()
		img := map[string]any{
			"image_id":    b.nextID,
			"title":       r.FormValue("title"),
			"file_path":   fmt.Sprintf("uploads/%d.png", b.nextID),
			"uploaded_at": time.Now().UTC().Format("2006-01-02T15:04:05"),
		}
		b.nextID++
		b.images = append(b.images, img)
		b.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]any{"message": "Image uploaded", "image": img})
	}))
	return mux
}
