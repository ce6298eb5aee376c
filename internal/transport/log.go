package transport

import (
	"net/http"
	"time"

	"pkt.systems/pslog"
)

// RequestLog wraps a round tripper with request logging.
func RequestLog(logger pslog.Logger, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(r)
		duration := time.Since(start)
		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"duration", duration.String(),
		}
		if err != nil {
			logger.Warn("http request failed", append(fields, "err", err)...)
			return nil, err
		}
		fields = append(fields, "status", resp.StatusCode)
		switch {
		case resp.StatusCode >= 500:
			logger.Error("http request", fields...)
		case resp.StatusCode >= 400:
			logger.Warn("http request", fields...)
		default:
			logger.Debug("http request", fields...)
		}
		return resp, nil
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
