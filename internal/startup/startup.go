// Package startup restores the previous session when the client starts.
package startup

import (
	"context"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/ronin/internal/api"
	"pkt.systems/ronin/internal/navigation"
	"pkt.systems/ronin/internal/session"
)

// Navigator is the part of the router the initializer uses.
type Navigator interface {
	NavigateTo(ctx context.Context, route navigation.Route)
}

// Options configures an Initializer.
type Options struct {
	Auth     *api.AuthService
	Sessions *session.Store
	Router   Navigator
	// Landing is where a restored session lands. Defaults to RouteLobby.
	Landing navigation.Route
	Logger  pslog.Logger
}

// Initializer performs the auto-login on startup.
type Initializer struct {
	auth     *api.AuthService
	sessions *session.Store
	router   Navigator
	landing  navigation.Route
	logger   pslog.Logger
}

// New returns an Initializer.
func New(opts Options) *Initializer {
	logger := opts.Logger
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	landing := opts.Landing
	if landing == navigation.RouteStartup {
		landing = navigation.RouteLobby
	}
	return &Initializer{
		auth:     opts.Auth,
		sessions: opts.Sessions,
		router:   opts.Router,
		landing:  landing,
		logger:   logger.With("component", "startup"),
	}
}

// Run exchanges the persisted refresh token for a session and navigates to
// the landing route, or to login when there is nothing to restore. It
// returns the route it navigated to; ok is false when the global UI took
// over and no navigation happened.
func (i *Initializer) Run(ctx context.Context) (navigation.Route, bool) {
	i.logger.Debug("checking for a stored session")
	token := i.sessions.StoredRefreshToken()
	if token == "" {
		i.router.NavigateTo(ctx, navigation.RouteLogin)
		return navigation.RouteLogin, true
	}

	res := i.auth.Refresh(ctx, token)
	if res.Handled {
		i.logger.Debug("session restore handled by global ui", "code", res.Code)
		return navigation.RouteStartup, false
	}
	if res.OK() && res.Value.AccessToken != "" {
		ttl := session.DefaultTTL
		if res.Value.ExpiresIn > 0 {
			ttl = time.Duration(res.Value.ExpiresIn) * time.Second
		}
		i.sessions.SetSessionTTL(res.Value.AccessToken, token, ttl)
		i.logger.Info("session restored")
		i.router.NavigateTo(ctx, i.landing)
		return i.landing, true
	}

	i.logger.Warn("stored session expired permanently", "code", res.Code)
	i.router.NavigateTo(ctx, navigation.RouteLogin)
	return navigation.RouteLogin, true
}
