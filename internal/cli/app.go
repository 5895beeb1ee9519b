// Package cli implements galleryctl, a terminal client for the gallery
// backend built on the same controllers as the web portal.
package cli

import (
	"errors"
	"fmt"
	"io"

	"gallery-portal/internal/apiclient"
	"gallery-portal/internal/authui"
	"gallery-portal/internal/gallery"
	"gallery-portal/internal/observability"
	"gallery-portal/internal/platform/filestore"
	"gallery-portal/internal/search"
	"gallery-portal/internal/session"
	"gallery-portal/internal/toast"
)

// ErrNotLoggedIn is returned when a command needs a session and there is none
var ErrNotLoggedIn = errors.New("not logged in, run galleryctl login")

// options are the persistent flags
type options struct {
	apiURL      string
	sessionFile string
	logLevel    string
	pageSize    int
}

// app is one invocation's wiring
type app struct {
	out    io.Writer
	tokens *session.Store
	client *apiclient.Client
	notify toast.Notifier
	logger *observability.Logger

	auth    *authui.Controller
	gallery *gallery.Controller
	search  *search.Controller
}

func newApp(opts options, out, errOut io.Writer) (*app, error) {
	path := opts.sessionFile
	if path == "" {
		p, err := filestore.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve session file: %w", err)
		}
		path = p
	}

	logger := observability.NewLoggerTo(errOut, observability.Config{
		LogLevel:  opts.logLevel,
		LogFormat: "console",
	})
	tokens := session.NewStore(filestore.New(path))
	client := apiclient.New(opts.apiURL,
		apiclient.WithTokenStore(tokens),
		apiclient.WithLogger(logger.Component("apiclient")),
	)
	notify := toast.WriterNotifier{W: errOut}

	fileURL := func(filePath string) string {
		return client.BaseURL() + apiclient.EndpointImageFiles + filePath
	}

	return &app{
		out:    out,
		tokens: tokens,
		client: client,
		notify: notify,
		logger: logger,
		auth:   authui.New(client, tokens, notify, authui.Config{Logger: logger}),
		gallery: gallery.New(client, notify, gallery.Config{
			PerPage: opts.pageSize,
			FileURL: fileURL,
			Logger:  logger,
		}),
		search: search.New(client, notify, search.Config{
			PerPage: opts.pageSize,
			FileURL: fileURL,
			Logger:  logger,
		}),
	}, nil
}

// sessionError turns an expired session into a hint to log in again
func sessionError(err error) error {
	if errors.Is(err, apiclient.ErrSessionExpired) {
		return ErrNotLoggedIn
	}
	return err
}
