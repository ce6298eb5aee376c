// Package api holds the typed auth and user endpoints of the game backend.
package api

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"pkt.systems/ronin/internal/gateway"
)

// Endpoint paths relative to the API base URL.
const (
	PathSignIn  = "/auth/signin/email"
	PathSignUp  = "/auth/sign-up"
	PathRefresh = "/refresh"
	PathUsers   = "/users"
)

// SignInData is returned by a successful login.
type SignInData struct {
	UID          *uuid.UUID `json:"uid,omitempty"`
	GameID       string     `json:"gameId"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	GoogleID     string     `json:"googleId"`
	BankPin      string     `json:"bankPin"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

// SignUpData is returned by a successful registration.
type SignUpData struct {
	ID              int        `json:"id"`
	UID             *uuid.UUID `json:"uid,omitempty"`
	GameID          string     `json:"gameId"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	GoogleID        string     `json:"googleId"`
	AppleID         string     `json:"appleId"`
	Status          string     `json:"status"`
	BankPin         string     `json:"bankPin"`
	Referrer        string     `json:"referrer"`
	RefCode         string     `json:"refCode"`
	EmailVerifiedAt *time.Time `json:"emailVerifiedAt,omitempty"`
	DeactivatedAt   *time.Time `json:"deactivatedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// RefreshData is returned by the refresh endpoint.
type RefreshData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int    `json:"expiresIn,omitempty"`
}

// User is the profile of the signed in player.
type User struct {
	UID      *uuid.UUID `json:"uid,omitempty"`
	GameID   string     `json:"gameId"`
	Username string     `json:"username"`
	RefCode  string     `json:"refCode"`
	AvatarID string     `json:"avatarId"`
	Email    string     `json:"email"`
	GoogleID string     `json:"googleId"`
	BankPin  string     `json:"bankPin"`
}

// Error describes a request the backend did not accept.
type Error struct {
	Code    int
	Message string
	// Handled is set when the global UI already informed the user.
	Handled bool
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (code %d): %v", e.Message, e.Code, e.Err)
	}
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// ResultError converts an unsuccessful result into an *Error.
func ResultError(res gateway.Result) error {
	return &Error{
		Code:    res.Code,
		Message: res.ErrorMessage(),
		Handled: res.Handled,
		Err:     res.Err,
	}
}
