// Package ratelimit caps how many writes a client may send per minute.
package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const (
	window     = time.Minute
	staleAfter = 10 * time.Minute
)

// Limiter counts requests per client IP in fixed one-minute windows.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*clientWindow
	now     func() time.Time

	limit      int
	writesOnly bool
	rejected   int64

	stop     chan struct{}
	stopOnce sync.Once
}

type clientWindow struct {
	start time.Time
	last  time.Time
	count int
}

type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
	// WritesOnly exempts GET, HEAD and OPTIONS from the limit.
	WritesOnly bool
}

func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		CleanupInterval:   5 * time.Minute,
		WritesOnly:        true,
	}
}

// NewLimiter starts a limiter and its background sweep of idle clients.
// Stop ends the sweep.
func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = def.RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}

	l := &Limiter{
		windows:    make(map[string]*clientWindow),
		now:        time.Now,
		limit:      config.RequestsPerMinute,
		writesOnly: config.WritesOnly,
		stop:       make(chan struct{}),
	}
	go l.sweep(config.CleanupInterval)
	return l
}

// Allow reports whether a request from ip fits in its current window.
// Requests past the limit do not extend the window.
func (l *Limiter) Allow(ip string) bool {
	ok, _ := l.take(ip)
	return ok
}

// take records a request and, when it is rejected, how long until the
// client's window resets.
func (l *Limiter) take(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[ip]
	if !ok || now.Sub(w.start) >= window {
		l.windows[ip] = &clientWindow{start: now, last: now, count: 1}
		return true, 0
	}

	w.count++
	w.last = now
	if w.count > l.limit {
		atomic.AddInt64(&l.rejected, 1)
		return false, w.start.Add(window).Sub(now)
	}
	return true, 0
}

func (l *Limiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictIdle()
		case <-l.stop:
			return
		}
	}
}

// evictIdle forgets clients that have been quiet for staleAfter.
func (l *Limiter) evictIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-staleAfter)
	for ip, w := range l.windows {
		if w.last.Before(cutoff) {
			delete(l.windows, ip)
		}
	}
}

func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

type Metrics struct {
	Rejected    int64
	ClientCount int64
}

func (l *Limiter) GetMetrics() Metrics {
	return Metrics{
		Rejected:    atomic.LoadInt64(&l.rejected),
		ClientCount: int64(l.ActiveClients()),
	}
}

func exempt(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

// Middleware limits requests by the IP extractIP returns. Rejected
// requests get a Retry-After header and are handed to onLimit, or answered
// with a plain 429 when onLimit is nil.
func (l *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.writesOnly && exempt(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			ok, wait := l.take(extractIP(r))
			if !ok {
				secs := int(math.Ceil(wait.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				if onLimit != nil {
					onLimit(w, r)
				} else {
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
