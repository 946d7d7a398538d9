// Package ratelimit allows a fixed number of requests per key in each window.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Limiter counts requests per key in fixed windows. A key's window opens on
// its first request and resets once it has fully elapsed.
type Limiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	windows  map[string]*window
	rejected atomic.Int64
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	start time.Time
	count int
}

type Config struct {
	Limit  int
	Window time.Duration
}

func DefaultConfig() Config {
	return Config{Limit: 120, Window: time.Minute}
}

// Stats is a point-in-time view of the limiter.
type Stats struct {
	Rejected int64
	Keys     int
}

// NewLimiter starts a limiter. Expired windows are swept every five windows
// until Stop is called.
func NewLimiter(cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}

	l := &Limiter{
		limit:   cfg.Limit,
		window:  cfg.Window,
		windows: make(map[string]*window),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.sweepLoop(5 * cfg.Window)
	return l
}

// Allow records a request for key. When the key is over its limit it returns
// false and the time left until its window resets.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		l.windows[key] = &window{start: now, count: 1}
		return true, 0
	}

	w.count++
	if w.count > l.limit {
		l.rejected.Add(1)
		return false, w.start.Add(l.window).Sub(now)
	}
	return true, 0
}

func (l *Limiter) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops windows that have fully elapsed and reports how many it removed.
func (l *Limiter) sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	keys := len(l.windows)
	l.mu.Unlock()
	return Stats{Rejected: l.rejected.Load(), Keys: keys}
}

// Stop ends the sweep goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Middleware rejects over-limit requests with 429 and a Retry-After header in
// whole seconds. onLimit, when set, writes the rejection body.
func (l *Limiter) Middleware(key func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := l.Allow(key(r))
			if !ok {
				w.Header().Set("Retry-After", retryAfter(wait))
				if onLimit != nil {
					onLimit(w, r)
				} else {
					http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func retryAfter(wait time.Duration) string {
	secs := int64((wait + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}
