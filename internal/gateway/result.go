package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

const (
	// AccessExpiredMarker in a response body signals an expired access token.
	AccessExpiredMarker = "Access token expired."
	// SessionExpiredMarker in a response body signals an expired refresh token.
	SessionExpiredMarker = "Token expired."
	// StatusSessionExpired is the status code for an expired refresh token.
	StatusSessionExpired = 440
	// StatusUpgradeRequired asks the client to update.
	StatusUpgradeRequired = http.StatusUpgradeRequired
	// StatusNoResponse is the synthetic code used when nothing came back.
	StatusNoResponse = 0

	defaultErrorMessage = "An unknown error has occurred."
)

var (
	// ErrSessionExpired is set on results whose session ended permanently.
	ErrSessionExpired = errors.New("session expired")
	// ErrRenewalFailed is set on results whose token renewal failed.
	ErrRenewalFailed = errors.New("token renewal failed")
)

// Envelope is the JSON body shape shared by all API responses.
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// DecodeEnvelope parses body. Undecodable bodies yield an empty envelope.
func DecodeEnvelope(body []byte) Envelope {
	var env Envelope
	if len(bytes.TrimSpace(body)) == 0 {
		return env
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}
	}
	return env
}

// Result is the outcome of one logical request.
type Result struct {
	Envelope
	// Code is the HTTP status code, or StatusNoResponse.
	Code int
	// Handled reports that the user was already informed (global UI,
	// forced logout) and the caller must not show another error.
	Handled bool
	// Err carries the underlying failure when there was no usable response.
	Err error

	raw []byte
}

// OK reports whether the request succeeded.
func (r Result) OK() bool {
	return strings.EqualFold(r.Status, "success") || r.Code == http.StatusOK
}

// ErrorMessage returns a message suitable as an alert body.
func (r Result) ErrorMessage() string {
	if r.Message != "" {
		return r.Message
	}
	return defaultErrorMessage
}

// IsGlobalError reports whether the code is handled centrally.
func (r Result) IsGlobalError() bool {
	switch r.Code {
	case StatusUpgradeRequired,
		http.StatusServiceUnavailable,
		http.StatusBadGateway,
		http.StatusGatewayTimeout,
		StatusNoResponse:
		return true
	}
	return false
}

// Body returns the raw response body.
func (r Result) Body() []byte {
	return r.raw
}

func newResult(code int, body []byte) Result {
	return Result{Envelope: DecodeEnvelope(body), Code: code, raw: body}
}

func errorResult(err error, handled bool) Result {
	return Result{
		Envelope: Envelope{Status: "error", Message: err.Error()},
		Code:     StatusNoResponse,
		Handled:  handled,
		Err:      err,
	}
}

func accessTokenExpired(r Result) bool {
	if r.Code == http.StatusUnauthorized {
		return true
	}
	return bytes.Contains(r.raw, []byte(AccessExpiredMarker))
}

func sessionExpired(r Result) bool {
	if r.Code == StatusSessionExpired {
		return true
	}
	return bytes.Contains(r.raw, []byte(SessionExpiredMarker))
}

// Typed pairs a Result with its decoded data.
type Typed[T any] struct {
	Result
	Value T
}

// As decodes the result data into T. A missing or undecodable data field
// leaves Value as the zero T.
func As[T any](r Result) Typed[T] {
	out := Typed[T]{Result: r}
	data := bytes.TrimSpace(r.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return out
	}
	var v T
	if err := json.Unmarshal(data, &v); err == nil {
		out.Value = v
	}
	return out
}
