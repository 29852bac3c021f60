package client

import (
	"context"
	"net/http"

	i18n "github.com/goliatone/go-i18n"
	"github.com/goliatone/go-lfg-client/internal/di"
	"github.com/goliatone/go-lfg-client/internal/remote"
	"github.com/goliatone/go-lfg-client/pkg/bus"
	"github.com/goliatone/go-lfg-client/pkg/commands"
	"github.com/goliatone/go-lfg-client/pkg/config"
	"github.com/goliatone/go-lfg-client/pkg/connection"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/logger"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/store"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/transport"
	"github.com/goliatone/go-lfg-client/pkg/notifications"
	"github.com/goliatone/go-lfg-client/pkg/presenters"
	"github.com/goliatone/go-lfg-client/pkg/views"
)

// CredentialSource supplies the bearer credential for REST calls.
type CredentialSource = remote.CredentialSource

// Options configure the client facade.
type Options struct {
	Config      config.Config
	Logger      logger.Logger
	Identity    connection.IdentitySource
	Credentials CredentialSource
	Transport   transport.Transport
	Store       store.RemoteStore
	HTTPClient  *http.Client
	Translator  i18n.Translator
	Toast       presenters.ToastPresenter
	Desktop     presenters.DesktopPresenter
	Navigator   presenters.Navigator
	Visible     func() bool
	Locale      func() string
}

// Client bundles the session services and exposes high-level accessors.
type Client struct {
	container *di.Container
}

// New assembles transport, connection, bus, notification hub, view binder,
// and command registry for one client session.
func New(opts Options) (*Client, error) {
	container, err := di.New(di.Options{
		Config:      opts.Config,
		Logger:      opts.Logger,
		Identity:    opts.Identity,
		Credentials: opts.Credentials,
		Transport:   opts.Transport,
		Store:       opts.Store,
		HTTPClient:  opts.HTTPClient,
		Translator:  opts.Translator,
		Toast:       opts.Toast,
		Desktop:     opts.Desktop,
		Navigator:   opts.Navigator,
		Visible:     opts.Visible,
		Locale:      opts.Locale,
	})
	if err != nil {
		return nil, err
	}
	return &Client{container: container}, nil
}

// Start opens the push channel and boots the notification hub. Safe to call
// again after a transient failure.
func (c *Client) Start(ctx context.Context) error {
	if c == nil || c.container == nil {
		return nil
	}
	c.container.Connection.Connect(ctx)
	return c.container.Notifications.Initialize(ctx)
}

// Close tears down the push channel.
func (c *Client) Close() error {
	if c == nil || c.container == nil {
		return nil
	}
	return c.container.Connection.Close()
}

// Connection returns the push-channel manager.
func (c *Client) Connection() *connection.Manager {
	if c == nil || c.container == nil {
		return nil
	}
	return c.container.Connection
}

// Bus returns the typed event subscription registry.
func (c *Client) Bus() *bus.Bus {
	if c == nil || c.container == nil {
		return nil
	}
	return c.container.Bus
}

// Notifications returns the notification hub.
func (c *Client) Notifications() *notifications.Service {
	if c == nil || c.container == nil {
		return nil
	}
	return c.container.Notifications
}

// Views returns the view invalidation binder.
func (c *Client) Views() *views.Binder {
	if c == nil || c.container == nil {
		return nil
	}
	return c.container.Views
}

// Commands returns the go-command registry.
func (c *Client) Commands() *commands.Registry {
	if c == nil || c.container == nil {
		return nil
	}
	return c.container.Commands
}

// Config returns the resolved configuration.
func (c *Client) Config() config.Config {
	if c == nil || c.container == nil {
		return config.Config{}
	}
	return c.container.Config
}
