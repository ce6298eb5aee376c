// Package gateway sends API requests on behalf of the client, attaching
// credentials and renewing an expired access token at most once per
// request.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pkt.systems/ronin/internal/session"
	"pkt.systems/ronin/internal/transport"
	"pkt.systems/pslog"
)

// Request header names.
const (
	HeaderAuthorization  = "Authorization"
	HeaderAccessToken    = "x-access-token"
	HeaderRefreshToken   = "x-refresh-token"
	HeaderAppVersion     = "x-app-version"
	HeaderAPIVersion     = "x-api-version"
	HeaderDevicePlatform = "x-device-platform"
	HeaderDeviceID       = "x-device-id"
	HeaderDeviceType     = "x-device-type"
	HeaderDeviceName     = "x-device-name"
)

// DefaultRefreshPath is the renewal endpoint relative to the base URL.
const DefaultRefreshPath = "/refresh"

// Config holds the static request settings.
type Config struct {
	BaseURL     string
	Bearer      string
	Version     string
	Platform    string
	DeviceID    string
	DeviceType  string
	DeviceName  string
	RefreshPath string
	// Timeout bounds the renewal call.
	Timeout time.Duration
}

// Transport executes a single HTTP exchange. Failures without a response
// wrap transport.ErrConnection.
type Transport interface {
	Execute(ctx context.Context, req *http.Request) (transport.Response, error)
}

// Escalator is the part of the global UI the gateway reports to.
type Escalator interface {
	ShowNetworkError()
	ShowMaintenance()
	ShowUpdateRequired()
	ShowServerError()
}

// Builder creates a fresh request. It is called again for a retry so the
// request always reflects the current session.
type Builder func(ctx context.Context) (*http.Request, error)

// Options configures a Gateway.
type Options struct {
	Config    Config
	Transport Transport
	Sessions  *session.Store
	UI        Escalator
	Logger    pslog.Logger
	Metrics   *Metrics
}

// Gateway is the intercepting API client.
type Gateway struct {
	cfg       Config
	transport Transport
	sessions  *session.Store
	ui        Escalator
	logger    pslog.Logger
	metrics   *Metrics
	gate      renewGate
}

// New validates opts and returns a Gateway.
func New(opts Options) (*Gateway, error) {
	if opts.Transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if opts.Sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if opts.UI == nil {
		return nil, fmt.Errorf("global ui is required")
	}
	cfg := opts.Config
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if cfg.RefreshPath == "" {
		cfg.RefreshPath = DefaultRefreshPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = transport.DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	return &Gateway{
		cfg:       cfg,
		transport: opts.Transport,
		sessions:  opts.Sessions,
		ui:        opts.UI,
		logger:    logger,
		metrics:   opts.Metrics,
	}, nil
}

// URL resolves path against the base URL. Absolute URLs pass through.
func (g *Gateway) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return g.cfg.BaseURL + path
}

// Send performs one logical request. It never returns an error; failures
// are described by the Result.
func (g *Gateway) Send(ctx context.Context, build Builder) Result {
	if err := g.gate.wait(ctx); err != nil {
		return g.canceled(err)
	}

	sent, res, err := g.exchange(ctx, build)
	if err != nil {
		return g.failure(ctx, err)
	}
	if sent.IsAuthenticated() && accessTokenExpired(res) {
		return g.recover(ctx, build, sent, res)
	}
	return g.finish(res)
}

func (g *Gateway) exchange(ctx context.Context, build Builder) (session.Session, Result, error) {
	if build == nil {
		return session.Session{}, Result{}, fmt.Errorf("request builder is nil")
	}
	req, err := build(ctx)
	if err != nil {
		return session.Session{}, Result{}, fmt.Errorf("build request: %w", err)
	}
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	current := g.sessions.Session()
	g.applyHeaders(req, current)
	resp, err := g.transport.Execute(ctx, req)
	if err != nil {
		return current, Result{}, err
	}
	res := newResult(resp.StatusCode, resp.Body)
	g.logger.Debug("api response", "method", req.Method, "path", req.URL.Path, "code", res.Code)
	return current, res, nil
}

// recover renews the session and retries the original request once.
func (g *Gateway) recover(ctx context.Context, build Builder, sent session.Session, original Result) Result {
	outcome := g.gate.do(ctx, func() renewOutcome {
		return g.renewOnce(ctx, sent.AccessToken)
	})
	switch outcome {
	case renewOK:
	case renewCanceled:
		return g.canceled(ctx.Err())
	case renewExpired:
		g.metrics.request(outcomeExpired)
		original.Handled = true
		original.Err = ErrSessionExpired
		return original
	default:
		g.metrics.request(outcomeExpired)
		original.Handled = true
		original.Err = ErrRenewalFailed
		return original
	}

	_, retry, err := g.exchange(ctx, build)
	if err != nil {
		return g.failure(ctx, err)
	}
	if sessionExpired(retry) || accessTokenExpired(retry) {
		g.logger.Warn("session invalid after retry, logging out", "code", retry.Code)
		g.sessions.ClearSession()
		g.metrics.request(outcomeExpired)
		retry.Handled = true
		retry.Err = ErrSessionExpired
		return retry
	}
	return g.finish(retry)
}

// renewOnce runs inside the gate. stale is the access token the failing
// request carried.
func (g *Gateway) renewOnce(ctx context.Context, stale string) renewOutcome {
	current := g.sessions.Session()
	if current.IsAuthenticated() && current.AccessToken != stale {
		return renewOK
	}
	if !current.IsAuthenticated() {
		if outcome, ok := g.gate.outcomeFor(stale); ok {
			return outcome
		}
		return renewFailed
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.cfg.Timeout)
	defer cancel()
	outcome := g.refresh(ctx, current)
	g.gate.settle(stale, outcome)
	g.metrics.renewal(outcome)
	return outcome
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshData struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

// refresh calls the renewal endpoint directly on the transport.
func (g *Gateway) refresh(ctx context.Context, current session.Session) renewOutcome {
	g.logger.Debug("access token expired, refreshing")
	if current.RefreshToken == "" {
		g.logger.Warn("no refresh token available, clearing session")
		g.sessions.ClearSession()
		return renewFailed
	}

	payload, err := json.Marshal(refreshRequest{RefreshToken: current.RefreshToken})
	if err != nil {
		g.logger.Error("encode refresh request", "err", err)
		g.sessions.ClearSession()
		return renewFailed
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL(g.cfg.RefreshPath), bytes.NewReader(payload))
	if err != nil {
		g.logger.Error("build refresh request", "err", err)
		g.sessions.ClearSession()
		return renewFailed
	}
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.Bearer != "" {
		req.Header.Set(HeaderAuthorization, "Bearer "+g.cfg.Bearer)
	}
	if g.cfg.Version != "" {
		req.Header.Set(HeaderAPIVersion, g.cfg.Version)
	}

	resp, err := g.transport.Execute(ctx, req)
	if err != nil {
		g.logger.Error("token refresh failed", "err", err)
		g.sessions.ClearSession()
		return renewFailed
	}
	res := newResult(resp.StatusCode, resp.Body)
	if sessionExpired(res) || res.Code == http.StatusUnauthorized || strings.EqualFold(res.Status, "error") {
		g.logger.Warn("refresh token invalid or expired, logging out", "code", res.Code)
		g.sessions.ClearSession()
		return renewExpired
	}
	data := As[refreshData](res).Value
	if res.OK() && data.AccessToken != "" {
		ttl := session.DefaultTTL
		if data.ExpiresIn > 0 {
			ttl = time.Duration(data.ExpiresIn) * time.Second
		}
		g.sessions.SetSessionTTL(data.AccessToken, current.RefreshToken, ttl)
		g.logger.Debug("token refresh succeeded")
		return renewOK
	}
	g.logger.Error("token refresh returned no access token", "code", res.Code)
	g.sessions.ClearSession()
	return renewFailed
}

func (g *Gateway) finish(res Result) Result {
	switch {
	case res.IsGlobalError():
		g.escalate(res.Code)
		res.Handled = true
		g.metrics.request(outcomeGlobal)
	case res.Code >= http.StatusBadRequest:
		g.logger.Warn("api protocol error", "code", res.Code, "message", res.Message)
		g.metrics.request(outcomeError)
	default:
		g.metrics.request(outcomeOK)
	}
	return res
}

func (g *Gateway) escalate(code int) {
	switch code {
	case StatusUpgradeRequired:
		g.ui.ShowUpdateRequired()
	case http.StatusServiceUnavailable:
		g.ui.ShowMaintenance()
	default:
		g.ui.ShowServerError()
	}
}

func (g *Gateway) failure(ctx context.Context, err error) Result {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return g.canceled(err)
	}
	if errors.Is(err, transport.ErrConnection) {
		g.logger.Warn("network connection lost", "err", err)
		g.ui.ShowNetworkError()
		g.metrics.request(outcomeNetwork)
		return errorResult(err, true)
	}
	g.logger.Error("api request failed", "err", err)
	g.ui.ShowServerError()
	g.metrics.request(outcomeError)
	return errorResult(err, true)
}

func (g *Gateway) canceled(err error) Result {
	if err == nil {
		err = context.Canceled
	}
	g.logger.Debug("api request canceled", "err", err)
	g.metrics.request(outcomeCanceled)
	return errorResult(err, true)
}

func (g *Gateway) applyHeaders(req *http.Request, current session.Session) {
	setHeader := func(name, value string) {
		if value != "" {
			req.Header.Set(name, value)
		}
	}
	if g.cfg.Bearer != "" {
		req.Header.Set(HeaderAuthorization, "Bearer "+g.cfg.Bearer)
	}
	if current.IsAuthenticated() {
		setHeader(HeaderAccessToken, current.AccessToken)
		setHeader(HeaderRefreshToken, current.RefreshToken)
	}
	setHeader(HeaderAppVersion, g.cfg.Version)
	setHeader(HeaderDevicePlatform, g.cfg.Platform)
	setHeader(HeaderDeviceID, g.cfg.DeviceID)
	setHeader(HeaderDeviceType, g.cfg.DeviceType)
	setHeader(HeaderDeviceName, g.cfg.DeviceName)
}
