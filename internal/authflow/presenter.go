// Package authflow drives login, registration and logout on top of the API
// services, the session store and the router.
package authflow

import (
	"context"
	"errors"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/ronin/internal/api"
	"pkt.systems/ronin/internal/globalui"
	"pkt.systems/ronin/internal/navigation"
	"pkt.systems/ronin/internal/session"
)

// DefaultRegisterDelay is how long the registration success alert stays up
// before moving to the login route.
const DefaultRegisterDelay = time.Second

// ErrNotAuthenticated is returned when an authenticated action cannot get a
// valid session.
var ErrNotAuthenticated = errors.New("not authenticated")

// Navigator is the part of the router the presenter uses.
type Navigator interface {
	NavigateTo(ctx context.Context, route navigation.Route)
}

// Options configures a Presenter.
type Options struct {
	Auth          *api.AuthService
	Sessions      *session.Store
	Router        Navigator
	UI            globalui.Service
	Logger        pslog.Logger
	RegisterDelay time.Duration
}

// Presenter implements the authentication screens' actions.
type Presenter struct {
	auth     *api.AuthService
	sessions *session.Store
	router   Navigator
	ui       globalui.Service
	logger   pslog.Logger
	delay    time.Duration
}

// New returns a Presenter.
func New(opts Options) *Presenter {
	logger := opts.Logger
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	delay := opts.RegisterDelay
	if delay <= 0 {
		delay = DefaultRegisterDelay
	}
	return &Presenter{
		auth:     opts.Auth,
		sessions: opts.Sessions,
		router:   opts.Router,
		ui:       opts.UI,
		logger:   logger.With("component", "authflow"),
		delay:    delay,
	}
}

// Login signs in. On success the session is stored and the router's
// session reaction moves the user on. Failures already shown by the global
// UI are returned without a second alert.
func (p *Presenter) Login(ctx context.Context, email, password string) error {
	p.ui.ShowLoading("Logging in...")
	res := p.auth.Login(ctx, email, password)
	p.ui.HideLoading()

	if res.Handled {
		return api.ResultError(res.Result)
	}
	if res.OK() && res.Value.AccessToken != "" {
		p.sessions.SetSession(res.Value.AccessToken, res.Value.RefreshToken)
		p.logger.Info("logged in", "username", res.Value.Username)
		return nil
	}
	p.logger.Warn("login failed", "code", res.Code, "message", res.ErrorMessage())
	p.ui.ShowAlert("Login Failed", res.ErrorMessage())
	return api.ResultError(res.Result)
}

// Register creates an account and returns to the login route.
func (p *Presenter) Register(ctx context.Context, email, password, referralCode string) error {
	p.ui.ShowLoading("Registering...")
	res := p.auth.Register(ctx, email, password, referralCode)
	p.ui.HideLoading()

	if res.Handled {
		return api.ResultError(res.Result)
	}
	if !res.OK() {
		p.logger.Warn("registration failed", "code", res.Code, "message", res.ErrorMessage())
		p.ui.ShowAlert("Registration Failed", res.ErrorMessage())
		return api.ResultError(res.Result)
	}

	p.ui.ShowAlert("Registration successful", "Redirecting...")
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		p.ui.HideAlert()
		return ctx.Err()
	}
	p.router.NavigateTo(ctx, navigation.RouteLogin)
	p.ui.HideAlert()
	return nil
}

// Logout clears the session. The router redirects away from protected
// routes on its own.
func (p *Presenter) Logout() {
	p.sessions.ClearSession()
	p.logger.Info("logged out")
}

// OpenAuthenticated navigates to route after making sure the access token
// is not locally expired.
func (p *Presenter) OpenAuthenticated(ctx context.Context, route navigation.Route) error {
	if p.sessions.IsTokenExpired() {
		if err := p.refresh(ctx); err != nil {
			return err
		}
	}
	p.router.NavigateTo(ctx, route)
	return nil
}

func (p *Presenter) refresh(ctx context.Context) error {
	current := p.sessions.Session()
	if current.RefreshToken == "" {
		p.Logout()
		return ErrNotAuthenticated
	}
	res := p.auth.Refresh(ctx, current.RefreshToken)
	if res.Handled {
		return api.ResultError(res.Result)
	}
	if res.OK() && res.Value.AccessToken != "" {
		p.sessions.SetSession(res.Value.AccessToken, current.RefreshToken)
		return nil
	}
	p.logger.Warn("session expired permanently, logging out", "code", res.Code)
	p.ui.ShowAlert("Session Expired", "Please log in again.")
	p.Logout()
	return ErrNotAuthenticated
}
