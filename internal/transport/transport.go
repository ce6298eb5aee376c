// Package transport executes HTTP requests for the gateway and reports
// connectivity failures as ErrConnection.
package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"pkt.systems/ronin/internal/tlsmgr"
	"pkt.systems/pslog"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// ErrConnection marks failures where no response was received.
var ErrConnection = errors.New("connection error")

// Response is a raw HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Options configures an HTTP transport.
type Options struct {
	Timeout time.Duration
	// CAFile is an optional PEM bundle appended to the system roots.
	CAFile string
	Logger pslog.Logger
	// Base overrides the underlying round tripper.
	Base http.RoundTripper
}

// HTTP executes requests with net/http.
type HTTP struct {
	client *http.Client
	logger pslog.Logger
}

// New builds an HTTP transport.
func New(opts Options) (*HTTP, error) {
	logger := opts.Logger
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	base := opts.Base
	if base == nil {
		pool, err := tlsmgr.LoadCARoots(opts.CAFile, nil)
		if err != nil {
			return nil, err
		}
		base = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				RootCAs:    pool,
				MinVersion: tls.VersionTLS12,
			},
		}
	}
	return &HTTP{
		client: &http.Client{
			Timeout:   timeout,
			Transport: RequestLog(logger.With("component", "transport"), base),
		},
		logger: logger,
	}, nil
}

// Execute sends req. Non-2xx responses are returned with their body; only
// failures without a response produce an error.
func (t *HTTP) Execute(ctx context.Context, req *http.Request) (Response, error) {
	if req == nil {
		return Response{}, fmt.Errorf("request is nil")
	}
	resp, err := t.client.Do(req.WithContext(ctx))
	if err != nil {
		return Response{}, classify(ctx, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, classify(ctx, err)
	}
	return Response{StatusCode: resp.StatusCode, Body: body}, nil
}

func classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	// Every client.Do failure is a *url.Error, which is itself a net.Error;
	// classify what it wraps.
	cause := err
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		cause = urlErr.Err
	}
	var netErr net.Error
	if errors.As(cause, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(cause, &opErr) || errors.As(cause, &dnsErr) {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if errors.Is(cause, io.ErrUnexpectedEOF) || errors.Is(cause, io.EOF) {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return err
}
