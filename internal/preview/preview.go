// Package preview holds the single image-preview overlay shared by a page
package preview

import (
	"net/url"
	"strings"
	"sync"
	"time"
)

// DateLayout is the short US date shown under thumbnails and in the overlay
const DateLayout = "Jan 2, 2006"

// State is what the overlay template renders
type State struct {
	Open     bool
	Src      string
	Title    string
	DateText string
}

// Modal is the overlay. The zero value is hidden and ready to use.
type Modal struct {
	mu    sync.Mutex
	state State
}

// Show fills the overlay and opens it
func (m *Modal) Show(src, title string, uploaded time.Time) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = State{
		Open:     true,
		Src:      src,
		Title:    title,
		DateText: "Uploaded: " + FormatDate(uploaded),
	}
	return m.state
}

// Hide closes the overlay and forgets its content
func (m *Modal) Hide() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = State{}
	return m.state
}

// State returns the current overlay state
func (m *Modal) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// FormatDate renders t as "Jan 2, 2006", or "unknown date" for the zero time
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown date"
	}
	return t.Format(DateLayout)
}

// FileURL maps a backend file path onto the portal's /files/ proxy
func FileURL(filePath string) string {
	segments := strings.Split(strings.TrimLeft(filePath, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "/files/" + strings.Join(segments, "/")
}
