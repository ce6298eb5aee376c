package session

import (
	"sync"
	"time"

	"pkt.systems/pslog"
)

const (
	// DefaultTTL is the lifetime applied by SetSession.
	DefaultTTL = 3600 * time.Second
	// RefreshTokenKey is the durable storage key holding the refresh token.
	RefreshTokenKey = "auth-token"
)

// Session is an immutable authentication session.
type Session struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// IsAuthenticated reports whether the session carries an access token.
func (s Session) IsAuthenticated() bool {
	return s.AccessToken != ""
}

// Storage persists string values across process restarts.
type Storage interface {
	GetString(key string) string
	SetString(key, value string) error
	DeleteKey(key string) error
}

// Handler receives the committed session after every mutation. Handlers
// may read the store but must not mutate it synchronously.
type Handler func(Session)

type subscriber struct {
	id uint64
	fn Handler
}

// Store is the single owner of the current session.
type Store struct {
	storage Storage
	logger  pslog.Logger
	now     func() time.Time

	// writeMu serializes commit+notify pairs.
	writeMu sync.Mutex

	mu      sync.RWMutex
	current Session
	subs    []subscriber
	nextID  uint64
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore returns an empty store. storage may be nil.
func NewStore(storage Storage, logger pslog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	s := &Store{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns the current session value.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// IsLoggedIn reports whether the current session is authenticated.
func (s *Store) IsLoggedIn() bool {
	return s.Session().IsAuthenticated()
}

// IsTokenExpired reports whether the access token should be treated as
// expired. It never contacts the server.
func (s *Store) IsTokenExpired() bool {
	current := s.Session()
	if !current.IsAuthenticated() {
		return true
	}
	return !s.now().Before(current.Expiry)
}

// SetSession replaces the session using DefaultTTL.
func (s *Store) SetSession(accessToken, refreshToken string) {
	s.SetSessionTTL(accessToken, refreshToken, DefaultTTL)
}

// SetSessionTTL replaces the session with one expiring after ttl.
func (s *Store) SetSessionTTL(accessToken, refreshToken string, ttl time.Duration) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.storage != nil && refreshToken != s.storage.GetString(RefreshTokenKey) {
		if err := s.storage.SetString(RefreshTokenKey, refreshToken); err != nil {
			s.logger.Warn("persist refresh token failed", "err", err)
		}
	}
	next := Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Expiry:       s.now().Add(ttl),
	}
	s.commit(next)
}

// ClearSession resets the session to empty and removes the persisted
// refresh token.
func (s *Store) ClearSession() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.storage != nil {
		if err := s.storage.DeleteKey(RefreshTokenKey); err != nil {
			s.logger.Warn("delete refresh token failed", "err", err)
		}
	}
	s.commit(Session{})
}

// StoredRefreshToken returns the persisted refresh token, if any.
func (s *Store) StoredRefreshToken() string {
	if s.storage == nil {
		return ""
	}
	return s.storage.GetString(RefreshTokenKey)
}

// Subscribe registers fn for change notifications and returns a function
// removing it.
func (s *Store) Subscribe(fn Handler) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// commit must be called with writeMu held.
func (s *Store) commit(next Session) {
	s.mu.Lock()
	s.current = next
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(next)
	}
}
