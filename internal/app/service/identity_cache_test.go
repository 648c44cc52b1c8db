package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"contacthub/internal/domain/model"

	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store with real TTL behavior, shared by the
// service tests in this package.
type fakeStore struct {
	mu      sync.Mutex
	entries map[string]fakeEntry
	setErr  error
	getErr  error
	sets    int
	gets    int
}

type fakeEntry struct {
	value     string
	expiresAt time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: map[string]fakeEntry{}}
}

func (s *fakeStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.entries[key] = fakeEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return "", false, s.getErr
	}
	entry, ok := s.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *fakeStore) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = map[string]fakeEntry{}
}

func testUser() *model.User {
	return &model.User{
		ID:        1,
		Username:  "agent007",
		Email:     "agent007@gmail.com",
		Role:      model.RoleUser,
		Avatar:    "https://example.com/a.png",
		Confirmed: true,
	}
}

func TestIdentityCache_PutGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore()
	cache := NewIdentityCache(store, time.Minute)

	user := testUser()
	user.HashedPassword = "$2a$10$secret"
	require.NoError(t, cache.Put(ctx, user))

	got := cache.Get(ctx, "agent007")
	require.NotNil(t, got)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, user.Username, got.Username)
	require.Equal(t, user.Email, got.Email)
	require.Equal(t, user.Role, got.Role)
	require.Equal(t, user.Avatar, got.Avatar)
	require.True(t, got.Confirmed)
	// The password hash must never survive the round trip.
	require.Empty(t, got.HashedPassword)
}

func TestIdentityCache_KeyFormat(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore()
	cache := NewIdentityCache(store, time.Minute)

	require.NoError(t, cache.Put(ctx, testUser()))
	_, ok := store.entries["principal:agent007"]
	require.True(t, ok, "entry should be stored under principal:{username}")
}

func TestIdentityCache_Miss(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	cache := NewIdentityCache(store, time.Minute)

	require.Nil(t, cache.Get(context.Background(), "nobody"))
}

func TestIdentityCache_ExpiredEntryIsMiss(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore()
	cache := NewIdentityCache(store, time.Minute)
	require.NoError(t, cache.Put(ctx, testUser()))
	store.mu.Lock()
	entry := store.entries["principal:agent007"]
	entry.expiresAt = time.Now().Add(-time.Second)
	store.entries["principal:agent007"] = entry
	store.mu.Unlock()

	require.Nil(t, cache.Get(ctx, "agent007"))
}

func TestIdentityCache_CorruptEntryIsMiss(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore()
	cache := NewIdentityCache(store, time.Minute)

	store.entries["principal:agent007"] = fakeEntry{value: "{not json", expiresAt: time.Now().Add(time.Minute)}
	require.Nil(t, cache.Get(ctx, "agent007"))
}

func TestIdentityCache_BackendErrorIsMiss(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	cache := NewIdentityCache(store, time.Minute)

	require.Nil(t, cache.Get(context.Background(), "agent007"))
}

func TestIdentityCache_PutOverwrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore()
	cache := NewIdentityCache(store, time.Minute)

	user := testUser()
	user.Confirmed = false
	require.NoError(t, cache.Put(ctx, user))

	user.Confirmed = true
	require.NoError(t, cache.Put(ctx, user))

	got := cache.Get(ctx, "agent007")
	require.NotNil(t, got)
	require.True(t, got.Confirmed)
}
