// Package services wires the portal together: the session backend, the
// backend API client, the toast board and one set of page controllers per
// browser session.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gallery-portal/internal/apiclient"
	"gallery-portal/internal/authui"
	"gallery-portal/internal/config"
	"gallery-portal/internal/gallery"
	"gallery-portal/internal/observability"
	"gallery-portal/internal/platform/cache"
	"gallery-portal/internal/platform/database"
	"gallery-portal/internal/platform/filestore"
	"gallery-portal/internal/search"
	"gallery-portal/internal/session"
	"gallery-portal/internal/toast"
)

// controllerIdleTimeout is how long page state outlives the last request of
// its browser session. Tokens live on in the KV for the session TTL.
const controllerIdleTimeout = 30 * time.Minute

// Session is everything one browser session owns
type Session struct {
	ID       string
	Tokens   *session.Store
	Client   *apiclient.Client
	Notifier toast.Notifier
	Auth     *authui.Controller
	Gallery  *gallery.Controller
	Search   *search.Controller
}

// Container holds all the application dependencies
type Container struct {
	config *config.Config
	logger *observability.Logger

	db    *sql.DB
	redis *cache.RedisClient
	kv    session.KV

	repository *session.Repository
	client     *apiclient.Client
	toasts     *toast.Board
	sessions   *Registry[*Session]
}

// NewContainer opens the configured session backend and prepares the
// shared client. Extra client options are mostly for tests.
func NewContainer(ctx context.Context, cfg *config.Config, logger *observability.Logger, opts ...apiclient.Option) (*Container, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}
	c := &Container{
		config: cfg,
		logger: logger,
		toasts: toast.Default(),
	}
	c.toasts.SetDuration(cfg.UI.ToastDuration)

	if err := c.openSessionBackend(ctx); err != nil {
		c.Close()
		return nil, err
	}
	c.repository = session.NewRepository(c.kv)

	clientOpts := append([]apiclient.Option{
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithLogger(logger.Component("apiclient")),
	}, opts...)
	c.client = apiclient.New(cfg.API.BaseURL, clientOpts...)

	c.sessions = NewRegistry(controllerIdleTimeout, c.newSession, func(id string, _ *Session) {
		c.toasts.Forget(id)
	})

	logger.Info(ctx).
		Str("session_backend", cfg.Session.Backend).
		Str("api_base_url", cfg.API.BaseURL).
		Msg("Dependency injection container initialized successfully")
	return c, nil
}

func (c *Container) openSessionBackend(ctx context.Context) error {
	switch c.config.Session.Backend {
	case config.SessionBackendMemory, "":
		c.kv = session.NewMemoryKV(c.config.Session.TTL)

	case config.SessionBackendRedis:
		rc, err := cache.NewRedisClient(c.config.Cache)
		if err != nil {
			return fmt.Errorf("failed to open redis session backend: %w", err)
		}
		c.redis = rc
		c.kv = rc

	case config.SessionBackendPostgres:
		db, err := database.NewConnection(c.config.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open postgres session backend: %w", err)
		}
		c.db = db
		applied, err := database.RunMigrations(ctx, db)
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		if len(applied) > 0 {
			c.logger.Info(ctx).Strs("migrations", applied).Msg("Applied migrations")
		}
		c.kv = database.NewClientStorage(db, c.config.Session.TTL)

	case config.SessionBackendFile:
		path := c.config.Session.FilePath
		if path == "" {
			p, err := filestore.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}
		c.kv = filestore.New(path)

	default:
		return fmt.Errorf("unknown session backend %q", c.config.Session.Backend)
	}
	return nil
}

func (c *Container) newSession(id string) (*Session, error) {
	tokens, err := c.repository.Scope(id)
	if err != nil {
		return nil, err
	}

	client := c.client.WithTokens(tokens)
	notifier := c.toasts.For(id)
	ui := c.config.UI
	logger := c.logger.ForSession(id)

	return &Session{
		ID:       id,
		Tokens:   tokens,
		Client:   client,
		Notifier: notifier,
		Auth: authui.New(client, tokens, notifier, authui.Config{
			RedirectDelay: ui.LoginRedirectDelay,
			Logger:        logger,
		}),
		Gallery: gallery.New(client, notifier, gallery.Config{
			PerPage:    ui.GalleryPageSize,
			MaxVisible: ui.MaxVisiblePages,
			Logger:     logger,
		}),
		Search: search.New(client, notifier, search.Config{
			PerPage:        ui.SearchPageSize,
			MaxVisible:     ui.MaxVisiblePages,
			PreviewMaxSide: ui.PreviewMaxSide,
			Logger:         logger,
		}),
	}, nil
}

// Session returns the state of one browser session, creating it on first use
func (c *Container) Session(id string) (*Session, error) {
	return c.sessions.Get(id)
}

// EndSession drops the page state of a session
func (c *Container) EndSession(id string) {
	c.sessions.Remove(id)
}

// Maintain purges expired backend rows and idle page state every interval
// until ctx is done
func (c *Container) Maintain(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.maintainOnce(ctx)
		}
	}
}

func (c *Container) maintainOnce(ctx context.Context) {
	if purger, ok := c.kv.(session.Purger); ok {
		n, err := purger.PurgeExpired(ctx)
		if err != nil {
			c.logger.Error(ctx).Err(err).Msg("Failed to purge expired sessions")
		} else if n > 0 {
			c.logger.Debug(ctx).Int64("rows", n).Msg("Purged expired session entries")
		}
	}
	if n := c.sessions.EvictIdle(); n > 0 {
		c.logger.Debug(ctx).Int("sessions", n).Msg("Evicted idle page state")
	}
}

// Health checks every backend with a remote dependency
func (c *Container) Health(ctx context.Context) map[string]error {
	checks := make(map[string]error)
	if pinger, ok := c.kv.(session.Pinger); ok {
		checks["session_store"] = pinger.Health(ctx)
	}
	return checks
}

func (c *Container) Config() *config.Config {
	return c.config
}

func (c *Container) Logger() *observability.Logger {
	return c.logger
}

func (c *Container) KV() session.KV {
	return c.kv
}

func (c *Container) Repository() *session.Repository {
	return c.repository
}

func (c *Container) Client() *apiclient.Client {
	return c.client
}

func (c *Container) Toasts() *toast.Board {
	return c.toasts
}

// Close cleans up resources
func (c *Container) Close() error {
	var errs []error
	if c.redis != nil {
		errs = append(errs, c.redis.Close())
	}
	if c.db != nil {
		errs = append(errs, c.db.Close())
	}
	return errors.Join(errs...)
}
