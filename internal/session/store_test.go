package session

import (
	"io"
	"testing"
	"time"

	"pkt.systems/pslog"
)

type memStorage struct {
	values map[string]string
	sets   int
}

func newMemStorage() *memStorage {
	return &memStorage{values: make(map[string]string)}
}

func (m *memStorage) GetString(key string) string { return m.values[key] }

func (m *memStorage) SetString(key, value string) error {
	m.sets++
	m.values[key] = value
	return nil
}

func (m *memStorage) DeleteKey(key string) error {
	delete(m.values, key)
	return nil
}

func testLogger() pslog.Logger {
	return pslog.NewWithOptions(io.Discard, pslog.Options{
		Mode:             pslog.ModeStructured,
		DisableTimestamp: true,
		NoColor:          true,
	})
}

func TestSetSessionCommitsBeforeNotify(t *testing.T) {
	storage := newMemStorage()
	store := NewStore(storage, testLogger())

	var seen []Session
	store.Subscribe(func(s Session) {
		if got := store.Session(); got != s {
			t.Fatalf("store.Session() inside handler = %+v, want %+v", got, s)
		}
		seen = append(seen, s)
	})

	store.SetSession("access", "refresh")
	if !store.IsLoggedIn() {
		t.Fatalf("expected logged in")
	}
	if len(seen) != 1 {
		t.Fatalf("notifications = %d, want 1", len(seen))
	}
	if seen[0].AccessToken != "access" || seen[0].RefreshToken != "refresh" {
		t.Fatalf("unexpected session %+v", seen[0])
	}
	if storage.values[RefreshTokenKey] != "refresh" {
		t.Fatalf("persisted refresh token = %q, want %q", storage.values[RefreshTokenKey], "refresh")
	}
}

func TestSetSessionPersistsOnlyChangedRefreshToken(t *testing.T) {
	storage := newMemStorage()
	store := NewStore(storage, testLogger())

	store.SetSession("a1", "r1")
	store.SetSession("a2", "r1")
	store.SetSession("a3", "r2")
	if storage.sets != 2 {
		t.Fatalf("storage writes = %d, want 2", storage.sets)
	}
}

func TestClearSession(t *testing.T) {
	storage := newMemStorage()
	store := NewStore(storage, testLogger())
	store.SetSession("access", "refresh")

	var last Session
	calls := 0
	store.Subscribe(func(s Session) {
		calls++
		last = s
	})
	store.ClearSession()

	if store.IsLoggedIn() {
		t.Fatalf("expected logged out")
	}
	if calls != 1 {
		t.Fatalf("notifications = %d, want 1", calls)
	}
	if last.IsAuthenticated() {
		t.Fatalf("notified session should be empty")
	}
	if _, ok := storage.values[RefreshTokenKey]; ok {
		t.Fatalf("refresh token should be deleted")
	}
	if store.StoredRefreshToken() != "" {
		t.Fatalf("StoredRefreshToken should be empty")
	}
}

func TestLoggedInTracksLastCall(t *testing.T) {
	store := NewStore(nil, testLogger())
	calls := 0
	store.Subscribe(func(Session) { calls++ })

	ops := []bool{true, false, false, true, true, false, true}
	for i, login := range ops {
		if login {
			store.SetSession("access", "refresh")
		} else {
			store.ClearSession()
		}
		if store.IsLoggedIn() != login {
			t.Fatalf("step %d: IsLoggedIn = %v, want %v", i, store.IsLoggedIn(), login)
		}
		if calls != i+1 {
			t.Fatalf("step %d: notifications = %d, want %d", i, calls, i+1)
		}
	}
}

func TestIsTokenExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	store := NewStore(nil, testLogger(), WithClock(func() time.Time { return clock }))

	if !store.IsTokenExpired() {
		t.Fatalf("logged out store should report expired")
	}
	store.SetSessionTTL("access", "refresh", time.Minute)
	if store.IsTokenExpired() {
		t.Fatalf("fresh token should not be expired")
	}
	clock = now.Add(time.Minute)
	if !store.IsTokenExpired() {
		t.Fatalf("token should be expired at expiry")
	}
}

func TestUnsubscribe(t *testing.T) {
	store := NewStore(nil, testLogger())
	calls := 0
	unsubscribe := store.Subscribe(func(Session) { calls++ })
	store.SetSession("a", "r")
	unsubscribe()
	unsubscribe()
	store.ClearSession()
	if calls != 1 {
		t.Fatalf("notifications = %d, want 1", calls)
	}
}
