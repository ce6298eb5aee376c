package ronin

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"pkt.systems/pslog"
	"pkt.systems/ronin/internal/api"
	"pkt.systems/ronin/internal/authflow"
	"pkt.systems/ronin/internal/authstore"
	"pkt.systems/ronin/internal/gateway"
	"pkt.systems/ronin/internal/globalui"
	"pkt.systems/ronin/internal/navigation"
	"pkt.systems/ronin/internal/screen"
	"pkt.systems/ronin/internal/session"
	"pkt.systems/ronin/internal/startup"
	"pkt.systems/ronin/internal/transport"
)

// DeviceIDKey is the storage key holding the generated device id.
const DeviceIDKey = "device-id"

// RuntimeOptions configures NewRuntime.
type RuntimeOptions struct {
	Logger pslog.Logger
	// Out receives screen and global UI output. Defaults to stdout.
	Out io.Writer
	// Registerer receives gateway metrics. Nil disables them.
	Registerer prometheus.Registerer
	// BaseTransport overrides the HTTP round tripper.
	BaseTransport http.RoundTripper
}

// Runtime is a fully wired client.
type Runtime struct {
	Config   Config
	DeviceID string

	Storage  *authstore.File
	Sessions *session.Store
	UI       *globalui.Console
	Screen   *screen.Host
	Gateway  *gateway.Gateway
	Router   *navigation.Router
	Auth     *api.AuthService
	Users    *api.UserRepository
	Flow     *authflow.Presenter
	Startup  *startup.Initializer

	logger      pslog.Logger
	unsubscribe func()
}

// NewRuntime opens durable storage and wires the session store, gateway,
// router and presenters from cfg.
func NewRuntime(cfg Config, opts RuntimeOptions) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	table, err := cfg.RouteTable()
	if err != nil {
		return nil, err
	}
	landing, err := cfg.LandingRoute()
	if err != nil {
		return nil, err
	}
	if _, ok := table[landing]; !ok {
		return nil, fmt.Errorf("landing route %s is not in the route table", landing)
	}

	storagePath := cfg.Client.StorageFile
	if storagePath == "" {
		storagePath = DefaultStoragePath()
	}
	storage, err := authstore.Open(storagePath)
	if err != nil {
		return nil, err
	}
	deviceID, err := ensureDeviceID(storage)
	if err != nil {
		return nil, err
	}

	httpTransport, err := transport.New(transport.Options{
		Timeout: cfg.API.Timeout,
		CAFile:  cfg.Client.CAFile,
		Logger:  logger.With("component", "transport"),
		Base:    opts.BaseTransport,
	})
	if err != nil {
		return nil, err
	}

	sessions := session.NewStore(storage, logger.With("component", "session"))
	ui := globalui.NewConsole(opts.Out, logger.With("component", "globalui"))
	gw, err := gateway.New(gateway.Options{
		Config: gateway.Config{
			BaseURL:     cfg.API.BaseURL,
			Bearer:      cfg.API.Bearer,
			Version:     cfg.API.Version,
			Platform:    cfg.API.Platform,
			DeviceID:    deviceID,
			DeviceType:  cfg.API.DeviceType,
			DeviceName:  cfg.API.DeviceName,
			RefreshPath: cfg.API.RefreshPath,
			Timeout:     cfg.API.Timeout,
		},
		Transport: httpTransport,
		Sessions:  sessions,
		UI:        ui,
		Logger:    logger.With("component", "gateway"),
		Metrics:   gateway.NewMetrics(opts.Registerer),
	})
	if err != nil {
		return nil, err
	}

	host := screen.NewHost(opts.Out, table, logger)
	router, err := navigation.NewRouter(navigation.Options{
		Table:    table,
		Sessions: sessions,
		Scenes:   host,
		Overlays: host,
		Landing:  landing,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	host.Bind(router.RegisterContainer)

	auth := api.NewAuthService(gw, cfg.API.Salt)
	users := api.NewUserRepository(api.NewUserService(gw), logger)
	rt := &Runtime{
		Config:   cfg,
		DeviceID: deviceID,
		Storage:  storage,
		Sessions: sessions,
		UI:       ui,
		Screen:   host,
		Gateway:  gw,
		Router:   router,
		Auth:     auth,
		Users:    users,
		Flow: authflow.New(authflow.Options{
			Auth:     auth,
			Sessions: sessions,
			Router:   router,
			UI:       ui,
			Logger:   logger,
		}),
		Startup: startup.New(startup.Options{
			Auth:     auth,
			Sessions: sessions,
			Router:   router,
			Landing:  landing,
			Logger:   logger,
		}),
		logger: logger,
	}
	rt.unsubscribe = sessions.Subscribe(func(s session.Session) {
		if !s.IsAuthenticated() {
			users.Reset()
		}
	})
	return rt, nil
}

// Start restores the stored session and moves to the first route.
func (r *Runtime) Start(ctx context.Context) navigation.Route {
	route, ok := r.Startup.Run(ctx)
	if !ok {
		r.logger.Warn("startup stopped by global error", "ui", r.describeUI())
	}
	return route
}

// Close stops background navigation and detaches from the session store.
func (r *Runtime) Close() {
	r.unsubscribe()
	r.Router.Close()
}

func (r *Runtime) describeUI() string {
	kind, title, _ := r.UI.Current()
	if kind == globalui.KindNone {
		return "none"
	}
	return fmt.Sprintf("%s (%s)", kind, title)
}

func ensureDeviceID(storage *authstore.File) (string, error) {
	if id := storage.GetString(DeviceIDKey); id != "" {
		return id, nil
	}
	id := uuid.NewString()
	if err := storage.SetString(DeviceIDKey, id); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}
