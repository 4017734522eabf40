package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window limiter ─────────────────────────────────────────────────────

type window struct {
	count int
	end   time.Time
}

// Limiter counts requests per client IP in fixed windows.
type Limiter struct {
	name   string
	limit  int
	period time.Duration
	msg    string

	mu      sync.Mutex
	clients map[string]*window
}

func NewLimiter(name string, limit int, period time.Duration, msg string) *Limiter {
	return &Limiter{name: name, limit: limit, period: period, msg: msg, clients: make(map[string]*window)}
}

// Allow registers one hit for key and reports whether it is within the limit
// along with the end of the current window.
func (l *Limiter) Allow(key string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.clients[key]
	if !ok || now.After(w.end) {
		w = &window{end: now.Add(l.period)}
		l.clients[key] = w
	}
	w.count++
	return w.count <= l.limit, w.end
}

func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, end := l.Allow(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", end.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.msg))
			return
		}
		c.Next()
	}
}

// Purge drops expired windows every interval until ctx is done, so IPs that
// never come back do not accumulate.
func (l *Limiter) Purge(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.mu.Lock()
			purged := 0
			for ip, w := range l.clients {
				if now.After(w.end) {
					delete(l.clients, ip)
					purged++
				}
			}
			remaining := len(l.clients)
			l.mu.Unlock()
			if purged > 0 {
				log.Debug().Str("limiter", l.name).Int("purged", purged).Int("remaining", remaining).Msg("rate limiter purged")
			}
		}
	}
}

// LoginLimiter allows 20 login attempts per minute per IP.
func LoginLimiter() *Limiter {
	return NewLimiter("login", 20, time.Minute, "Too many login attempts. Try again in a minute.")
}

// APILimiter is the general limiter for authenticated routes.
func APILimiter(limit int, period time.Duration) *Limiter {
	return NewLimiter("api", limit, period, "Too many requests. Try again shortly.")
}
