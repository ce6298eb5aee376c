package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Get sends a GET to path and decodes the data field into T.
func Get[T any](ctx context.Context, g *Gateway, path string) Typed[T] {
	return As[T](g.Send(ctx, g.jsonBuilder(http.MethodGet, path, nil)))
}

// Post sends payload as JSON to path and decodes the data field into T.
func Post[T any](ctx context.Context, g *Gateway, path string, payload any) Typed[T] {
	return send[T](ctx, g, http.MethodPost, path, payload)
}

// Put sends payload as JSON to path and decodes the data field into T.
func Put[T any](ctx context.Context, g *Gateway, path string, payload any) Typed[T] {
	return send[T](ctx, g, http.MethodPut, path, payload)
}

// Delete sends a DELETE to path.
func Delete(ctx context.Context, g *Gateway, path string) Result {
	return g.Send(ctx, g.jsonBuilder(http.MethodDelete, path, nil))
}

func send[T any](ctx context.Context, g *Gateway, method, path string, payload any) Typed[T] {
	body, err := json.Marshal(payload)
	if err != nil {
		return As[T](g.failure(ctx, fmt.Errorf("encode %s %s: %w", method, path, err)))
	}
	return As[T](g.Send(ctx, g.jsonBuilder(method, path, body)))
}

func (g *Gateway) jsonBuilder(method, path string, body []byte) Builder {
	url := g.URL(path)
	return func(ctx context.Context) (*http.Request, error) {
		var req *http.Request
		var err error
		if body == nil {
			req, err = http.NewRequestWithContext(ctx, method, url, nil)
		} else {
			req, err = http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		}
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}
}
