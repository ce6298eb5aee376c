package api

import (
	"context"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/ronin/internal/gateway"
)

// UserService calls the user endpoints.
type UserService struct {
	gw *gateway.Gateway
}

// NewUserService returns a UserService.
func NewUserService(gw *gateway.Gateway) *UserService {
	return &UserService{gw: gw}
}

// Get fetches the signed in user.
func (s *UserService) Get(ctx context.Context) gateway.Typed[User] {
	return gateway.Get[User](ctx, s.gw, PathUsers)
}

// UpdateUsername changes the username.
func (s *UserService) UpdateUsername(ctx context.Context, username string) gateway.Typed[User] {
	return gateway.Post[User](ctx, s.gw, PathUsers, struct {
		Username string `json:"username"`
	}{username})
}

// UpdateAvatar changes the avatar.
func (s *UserService) UpdateAvatar(ctx context.Context, avatarID string) gateway.Typed[User] {
	return gateway.Post[User](ctx, s.gw, PathUsers, struct {
		AvatarID string `json:"avatarId"`
	}{avatarID})
}

// Deactivate deactivates the account.
func (s *UserService) Deactivate(ctx context.Context, reason string) gateway.Result {
	return gateway.Post[struct{}](ctx, s.gw, PathUsers, struct {
		Reason string `json:"reason"`
	}{reason}).Result
}

// UserRepository caches the signed in user in memory.
type UserRepository struct {
	users  *UserService
	logger pslog.Logger

	mu     sync.Mutex
	cached *User
}

// NewUserRepository returns an empty repository.
func NewUserRepository(users *UserService, logger pslog.Logger) *UserRepository {
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	return &UserRepository{users: users, logger: logger.With("component", "users")}
}

// Current returns the cached user without contacting the backend.
func (r *UserRepository) Current() (User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached == nil {
		return User{}, false
	}
	return *r.cached, true
}

// Get returns the cached user, fetching it when absent or when force is set.
func (r *UserRepository) Get(ctx context.Context, force bool) (User, error) {
	if !force {
		if u, ok := r.Current(); ok {
			return u, nil
		}
	}
	res := r.users.Get(ctx)
	if !res.OK() {
		return User{}, ResultError(res.Result)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u := res.Value
	r.cached = &u
	return u, nil
}

// UpdateUsername changes the username and updates the cache.
func (r *UserRepository) UpdateUsername(ctx context.Context, username string) (User, error) {
	res := r.users.UpdateUsername(ctx, username)
	if !res.OK() {
		return User{}, ResultError(res.Result)
	}
	return r.update(res.Value, func(u *User) { u.Username = username }), nil
}

// UpdateAvatar changes the avatar and updates the cache.
func (r *UserRepository) UpdateAvatar(ctx context.Context, avatarID string) (User, error) {
	res := r.users.UpdateAvatar(ctx, avatarID)
	if !res.OK() {
		return User{}, ResultError(res.Result)
	}
	return r.update(res.Value, func(u *User) { u.AvatarID = avatarID }), nil
}

// Deactivate deactivates the account and drops the cache on success.
func (r *UserRepository) Deactivate(ctx context.Context, reason string) gateway.Result {
	res := r.users.Deactivate(ctx, reason)
	if res.OK() {
		r.Reset()
		r.logger.Info("user removed from cache after deactivation")
	}
	return res
}

// Reset drops the cached user.
func (r *UserRepository) Reset() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}

func (r *UserRepository) update(fromServer User, apply func(*User)) User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached == nil {
		u := fromServer
		r.cached = &u
	}
	apply(r.cached)
	return *r.cached
}
