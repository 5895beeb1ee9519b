// Package authui drives the login page: the login/register panels, their
// submissions, logout and the periodic session check.
package authui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gallery-portal/internal/apiclient"
	"gallery-portal/internal/domain/auth"
	"gallery-portal/internal/observability"
	"gallery-portal/internal/session"
	"gallery-portal/internal/toast"
)

// Paths the controller sends the browser to
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Toast texts
const (
	MsgLoginSuccess    = "Login successful! Redirecting..."
	MsgRegisterSuccess = "Registration successful! Please verify your email."
	MsgLoggedOut       = "Logged out successfully"
	MsgUnreachable     = "Unable to reach the server. Please try again."
)

// Default delays before a follow-up action
const (
	DefaultRedirectDelay    = time.Second
	DefaultPanelSwitchDelay = 2 * time.Second
)

// Panel is one side of the login page
type Panel string

const (
	PanelLogin    Panel = "login"
	PanelRegister Panel = "register"
)

// ErrUnknownPanel is returned by ShowPanel for anything but login or register
var ErrUnknownPanel = errors.New("unknown panel")

// ParsePanel validates a panel name
func ParsePanel(s string) (Panel, error) {
	switch Panel(s) {
	case PanelLogin, PanelRegister:
		return Panel(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPanel, s)
}

// Client is the slice of the backend client the auth page uses
type Client interface {
	Login(ctx context.Context, creds auth.Credentials) (*auth.Tokens, error)
	Register(ctx context.Context, reg auth.Registration) (string, error)
	Logout(ctx context.Context) error
	CheckAuth(ctx context.Context) (bool, error)
}

// Result tells the caller what happens next. A non-empty Redirect sends
// the browser there after Delay; a non-empty Panel switches to it after Delay.
type Result struct {
	Redirect string
	Panel    Panel
	Delay    time.Duration
}

// Config tunes a controller
type Config struct {
	RedirectDelay    time.Duration
	PanelSwitchDelay time.Duration
	Logger           *observability.Logger
}

// Controller is the per-session auth state
type Controller struct {
	mu     sync.Mutex
	client Client
	tokens session.TokenStore
	notify toast.Notifier
	cfg    Config
	logger *observability.Logger
	panel  Panel
}

// New creates a controller showing the login panel
func New(client Client, tokens session.TokenStore, notify toast.Notifier, cfg Config) *Controller {
	if cfg.RedirectDelay <= 0 {
		cfg.RedirectDelay = DefaultRedirectDelay
	}
	if cfg.PanelSwitchDelay <= 0 {
		cfg.PanelSwitchDelay = DefaultPanelSwitchDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Controller{
		client: client,
		tokens: tokens,
		notify: notify,
		cfg:    cfg,
		logger: logger.Component("authui"),
		panel:  PanelLogin,
	}
}

// Panel returns the visible panel
func (c *Controller) Panel() Panel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panel
}

// ShowPanel switches the visible panel
func (c *Controller) ShowPanel(p Panel) error {
	if _, err := ParsePanel(string(p)); err != nil {
		return err
	}
	c.mu.Lock()
	c.panel = p
	c.mu.Unlock()
	return nil
}

// Login submits credentials and stores the returned tokens
func (c *Controller) Login(ctx context.Context, creds auth.Credentials) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tokens, err := c.client.Login(ctx, creds)
	if err != nil {
		c.logger.Info(ctx).Err(err).Str("username", creds.Username).Msg("Login rejected")
		c.notify.Show(failureMessage(err), toast.Error)
		return Result{}, err
	}

	if err := c.tokens.SetTokens(ctx, tokens.AccessToken, tokens.RefreshToken); err != nil {
		c.logger.Error(ctx).Err(err).Msg("Failed to store tokens")
		c.notify.Show(MsgUnreachable, toast.Error)
		return Result{}, err
	}

	c.logger.Info(ctx).Str("username", creds.Username).Msg("User logged in")
	c.notify.Show(MsgLoginSuccess, toast.Success)
	return Result{Redirect: HomePath, Delay: c.cfg.RedirectDelay}, nil
}

// Register validates the form locally, stopping at the first failing rule,
// and only then submits it
func (c *Controller) Register(ctx context.Context, reg auth.Registration) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := reg.Validate(); err != nil {
		c.notify.Show(err.Error(), toast.Error)
		return Result{}, err
	}

	if _, err := c.client.Register(ctx, reg); err != nil {
		c.logger.Info(ctx).Err(err).Str("username", reg.Username).Msg("Registration rejected")
		c.notify.Show(failureMessage(err), toast.Error)
		return Result{}, err
	}

	c.notify.Show(MsgRegisterSuccess, toast.Success)
	c.panel = PanelLogin
	return Result{Panel: PanelLogin, Delay: c.cfg.PanelSwitchDelay}, nil
}

// Logout tells the backend, then clears the tokens whatever it answered.
// The redirect is decided before the toast is queued.
func (c *Controller) Logout(ctx context.Context) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.client.Logout(ctx); err != nil {
		c.logger.Warn(ctx).Err(err).Msg("Backend logout failed")
	}
	if err := c.tokens.Clear(ctx); err != nil {
		c.logger.Error(ctx).Err(err).Msg("Failed to clear tokens")
	}

	result := Result{Redirect: LoginPath}
	c.notify.Show(MsgLoggedOut, toast.Success)
	return result
}

// CheckSession is the periodic check run from every page but the login
// page. An invalid session redirects to login.
func (c *Controller) CheckSession(ctx context.Context, path string) Result {
	if path == LoginPath {
		return Result{}
	}

	ok, err := c.client.CheckAuth(ctx)
	if err != nil {
		c.logger.Warn(ctx).Err(err).Msg("Session check failed")
	}
	if !ok {
		return Result{Redirect: LoginPath}
	}
	return Result{}
}

// failureMessage prefers the backend's own message
func failureMessage(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return MsgUnreachable
}
