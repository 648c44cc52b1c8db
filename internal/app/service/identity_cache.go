package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"contacthub/internal/domain/model"
)

// Store is the shared, process-external key-value backend behind the
// identity cache. Get reports a miss as ("", false, nil).
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
}

const defaultCacheTTL = 60 * time.Second

// snapshot is the public-facing copy of a principal held in the cache.
// The password hash never enters the cache.
type snapshot struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	Avatar    string     `json:"avatar"`
	Confirmed bool       `json:"confirmed"`
}

// IdentityCache is a short-TTL read-through store mapping a username to
// its profile snapshot. Entries are replaced wholesale, never patched, so
// concurrent writers can race safely (last writer wins).
type IdentityCache struct {
	store Store
	ttl   time.Duration
}

func NewIdentityCache(store Store, ttl time.Duration) *IdentityCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &IdentityCache{store: store, ttl: ttl}
}

func cacheKey(username string) string {
	return "principal:" + username
}

// Put overwrites the cached snapshot for the user unconditionally.
func (c *IdentityCache) Put(ctx context.Context, user *model.User) error {
	snap := snapshot{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		Avatar:    user.Avatar,
		Confirmed: user.Confirmed,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal principal snapshot: %w", err)
	}
	return c.store.Set(ctx, cacheKey(user.Username), string(data), c.ttl)
}

// Get returns the cached snapshot, or nil on a miss. A corrupt entry and a
// backend failure are both treated as misses: logged, never surfaced.
func (c *IdentityCache) Get(ctx context.Context, username string) *model.User {
	raw, found, err := c.store.Get(ctx, cacheKey(username))
	if err != nil {
		log.Printf("WARN: identity cache lookup for %q failed: %v", username, err)
		return nil
	}
	if !found {
		return nil
	}

	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		log.Printf("WARN: corrupt identity cache entry for %q: %v", username, err)
		return nil
	}
	return &model.User{
		ID:        snap.ID,
		Username:  snap.Username,
		Email:     snap.Email,
		Role:      snap.Role,
		Avatar:    snap.Avatar,
		Confirmed: snap.Confirmed,
	}
}
