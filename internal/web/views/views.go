// Package views renders the portal's pages and htmx fragments from the
// embedded templates.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gallery-portal/internal/authui"
	"gallery-portal/internal/gallery"
	"gallery-portal/internal/search"
	"gallery-portal/internal/toast"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names used as the Active nav entry and content template
const (
	PageLogin   = "login"
	PageGallery = "gallery"
	PageSearch  = "search"
)

// Redirect is a delayed follow-up: with no Target the browser navigates to
// URL, otherwise URL is loaded into the Target element
type Redirect struct {
	URL    string
	Target string
	Delay  time.Duration
}

// DelayMillis is the timer value handed to the browser
func (r Redirect) DelayMillis() int64 {
	return r.Delay.Milliseconds()
}

// ViewData is what every template receives
type ViewData struct {
	Title           string
	Active          string
	ContentTemplate string
	ContentHTML     template.HTML

	Toasts   []toast.Toast
	Redirect *Redirect

	// SessionCheck is the poll interval of the session check; zero disables it
	SessionCheck time.Duration

	Panel   authui.Panel
	Gallery gallery.View
	Search  search.View

	UploadAccept string
}

// SessionCheckTrigger is the hx-trigger value of the session poll
func (d ViewData) SessionCheckTrigger() string {
	return fmt.Sprintf("every %ds", int(d.SessionCheck.Seconds()))
}

type Templates struct {
	all *template.Template
}

// Parse loads the embedded templates
func Parse() (*Templates, error) {
	t := template.New("").Funcs(template.FuncMap{
		"dict": func(values ...any) (map[string]any, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("dict requires even number of arguments")
			}
			out := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				out[key] = values[i+1]
			}
			return out, nil
		},
		"imageDataURL": imageDataURL,
		"add":          func(a, b int) int { return a + b },
		"queryEscape":  url.QueryEscape,
	})
	t, err := t.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Templates{all: t}, nil
}

// MustParse is Parse for program start-up
func MustParse() *Templates {
	t, err := Parse()
	if err != nil {
		panic(err)
	}
	return t
}

// RenderPage renders data.ContentTemplate inside the base layout
func (t *Templates) RenderPage(w http.ResponseWriter, data ViewData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var content bytes.Buffer
	if err := t.all.ExecuteTemplate(&content, data.ContentTemplate, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	pageData := data
	pageData.ContentHTML = template.HTML(content.String())
	if err := t.all.ExecuteTemplate(w, "base", pageData); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// RenderTemplate renders one fragment, followed by any pending toasts as an
// out-of-band swap
func (t *Templates) RenderTemplate(w http.ResponseWriter, name string, data ViewData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var buf bytes.Buffer
	if name != "" {
		if err := t.all.ExecuteTemplate(&buf, name, data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	if len(data.Toasts) > 0 || data.Redirect != nil {
		if err := t.all.ExecuteTemplate(&buf, "oob", data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	_, _ = w.Write(buf.Bytes()) //nolint:errcheck // Best effort response
}

// imageDataURL lets image data: URLs through the src sanitizer and blanks
// anything else
func imageDataURL(s string) template.URL {
	if strings.HasPrefix(s, "data:image/") {
		return template.URL(s) //nolint:gosec // Restricted to image data URLs
	}
	return ""
}
