package di

import (
	"net/http"
	"reflect"

	i18n "github.com/goliatone/go-i18n"
	"github.com/goliatone/go-lfg-client/internal/remote"
	"github.com/goliatone/go-lfg-client/internal/transport/ws"
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

// Options configure the client container. Only Config.Server.URL is strictly
// required; everything else has a working default.
type Options struct {
	Config config.Config
	Logger logger.Logger

	// Identity resolves the signed-in subject for the identify announce.
	Identity connection.IdentitySource
	// Credentials supplies the bearer token for REST calls. When unset the
	// client sends unauthenticated requests.
	Credentials remote.CredentialSource

	// Transport overrides the websocket channel, used by tests and embedded
	// hosts that bring their own connection.
	Transport transport.Transport
	// Store overrides the REST-backed notification store.
	Store store.RemoteStore

	HTTPClient *http.Client
	Translator i18n.Translator
	Toast      presenters.ToastPresenter
	Desktop    presenters.DesktopPresenter
	Navigator  presenters.Navigator
	Visible    func() bool
	Locale     func() string
}

// Container wires transport, connection, bus, notifications, views, and
// commands into one client session.
type Container struct {
	Config        config.Config
	Transport     transport.Transport
	Connection    *connection.Manager
	Bus           *bus.Bus
	Store         store.RemoteStore
	Notifications *notifications.Service
	Views         *views.Binder
	Commands      *commands.Registry
}

func isZeroConfig(cfg config.Config) bool {
	return reflect.ValueOf(cfg).IsZero()
}

// New constructs the container using the supplied options.
func New(opts Options) (*Container, error) {
	input := opts.Config
	if isZeroConfig(input) {
		input = config.Defaults()
	}
	cfg, err := config.Load(input)
	if err != nil {
		return nil, err
	}

	lgr := opts.Logger
	if lgr == nil {
		lgr = &logger.Nop{}
	}

	channel := opts.Transport
	if channel == nil {
		if cfg.Realtime.Enabled {
			var err error
			channel, err = ws.New(ws.Config{
				URL:          cfg.Realtime.URL,
				DialTimeout:  cfg.Realtime.DialTimeout,
				PingInterval: cfg.Realtime.PingInterval,
				ReconnectMin: cfg.Realtime.ReconnectMin,
				ReconnectMax: cfg.Realtime.ReconnectMax,
				Logger:       lgr,
			})
			if err != nil {
				return nil, err
			}
		} else {
			channel = &transport.Nop{}
		}
	}

	conn := connection.New(connection.Dependencies{
		Transport: channel,
		Identity:  opts.Identity,
		Logger:    lgr,
	})

	eventBus := bus.New(bus.Dependencies{
		Transport: channel,
		Logger:    lgr,
	})

	remoteStore := opts.Store
	var loader notifications.DungeonLoader
	if remoteStore == nil {
		client, err := remote.NewClient(remote.Dependencies{
			BaseURL:     cfg.Server.URL,
			AssetsURL:   cfg.Server.AssetsURL,
			Credentials: opts.Credentials,
			HTTPClient:  opts.HTTPClient,
			Logger:      lgr,
		})
		if err != nil {
			return nil, err
		}
		remoteStore = client
		loader = client
	}

	hub, err := notifications.New(notifications.Dependencies{
		Store:         remoteStore,
		Bus:           eventBus,
		Loader:        loader,
		Toast:         opts.Toast,
		Desktop:       opts.Desktop,
		Navigator:     opts.Navigator,
		Logger:        lgr,
		Translator:    opts.Translator,
		Locale:        opts.Locale,
		DefaultLocale: cfg.Localization.DefaultLocale,
		Visible:       opts.Visible,
		AppName:       cfg.Notifications.AppName,
		BadgeLimit:    cfg.Notifications.BadgeLimit,
	})
	if err != nil {
		return nil, err
	}

	binder := views.NewBinder(views.Dependencies{
		Bus:        eventBus,
		Connection: conn,
		Logger:     lgr,
	})

	cmdRegistry, err := commands.New(commands.Dependencies{
		Notifications: hub,
		Connection:    conn,
		Logger:        lgr,
	})
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:        cfg,
		Transport:     channel,
		Connection:    conn,
		Bus:           eventBus,
		Store:         remoteStore,
		Notifications: hub,
		Views:         binder,
		Commands:      cmdRegistry,
	}, nil
}
