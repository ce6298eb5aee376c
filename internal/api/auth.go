package api

import (
	"context"

	"pkt.systems/ronin/internal/gateway"
)

// AuthService calls the authentication endpoints.
type AuthService struct {
	gw   *gateway.Gateway
	salt string
}

// NewAuthService returns an AuthService. salt is appended to passwords on
// sign in.
func NewAuthService(gw *gateway.Gateway, salt string) *AuthService {
	return &AuthService{gw: gw, salt: salt}
}

type signInRequest struct {
	Email        string `json:"email"`
	PasswordSalt string `json:"passwordSalt"`
}

type signUpRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	ReferralCode string `json:"referralCode"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Login signs in with email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) gateway.Typed[SignInData] {
	return gateway.Post[SignInData](ctx, s.gw, PathSignIn, signInRequest{
		Email:        email,
		PasswordSalt: password + s.salt,
	})
}

// Register creates an account.
func (s *AuthService) Register(ctx context.Context, email, password, referralCode string) gateway.Typed[SignUpData] {
	return gateway.Post[SignUpData](ctx, s.gw, PathSignUp, signUpRequest{
		Email:        email,
		Password:     password,
		ReferralCode: referralCode,
	})
}

// Refresh exchanges a refresh token for a new access token. Unlike the
// gateway's internal renewal this goes through the normal request path, so
// global errors are escalated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) gateway.Typed[RefreshData] {
	return gateway.Post[RefreshData](ctx, s.gw, PathRefresh, refreshRequest{RefreshToken: refreshToken})
}
