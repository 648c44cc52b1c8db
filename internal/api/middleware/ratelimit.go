package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"contacthub/internal/common"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTimeout = 10 * time.Minute
	limiterMaxClients  = 4096
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterTable hands out one rate.Limiter per client key. Once the table
// reaches maxClients, idle entries are evicted before a new one is added,
// so the table stays bounded under address churn.
type limiterTable struct {
	mu         sync.Mutex
	clients    map[string]*clientLimiter
	limit      rate.Limit
	burst      int
	idle       time.Duration
	maxClients int
}

func newLimiterTable(limit rate.Limit, burst int) *limiterTable {
	return &limiterTable{
		clients:    make(map[string]*clientLimiter),
		limit:      limit,
		burst:      burst,
		idle:       limiterIdleTimeout,
		maxClients: limiterMaxClients,
	}
}

func (t *limiterTable) get(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if c, ok := t.clients[key]; ok {
		c.lastSeen = now
		return c.limiter
	}
	if len(t.clients) >= t.maxClients {
		t.evict(now)
	}
	c := &clientLimiter{limiter: rate.NewLimiter(t.limit, t.burst), lastSeen: now}
	t.clients[key] = c
	return c.limiter
}

// evict drops entries idle longer than the timeout. Callers hold the lock.
func (t *limiterTable) evict(now time.Time) {
	for key, c := range t.clients {
		if now.Sub(c.lastSeen) > t.idle {
			delete(t.clients, key)
		}
	}
}

// PerClientLimit applies a token-bucket limit per client IP. Intended for
// cheap per-route throttling (e.g. /users/me); it is not a global defense.
func PerClientLimit(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	table := newLimiterTable(limit, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if !table.get(host).Allow() {
				common.RespondWithError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
