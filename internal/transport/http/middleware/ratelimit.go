package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// WindowLimiter admits at most limit hits per key within a fixed window
// measured from the first admission. It backs the per-email throttles on the
// authentication endpoints, where the key comes from the request body rather
// than the client address.
type WindowLimiter struct {
	mu     sync.Mutex
	hits   map[string]*window
	limit  int
	length time.Duration
	now    func() time.Time
}

type window struct {
	start time.Time
	count int
}

func NewWindowLimiter(limit int, length time.Duration) *WindowLimiter {
	l := &WindowLimiter{
		hits:   make(map[string]*window),
		limit:  limit,
		length: length,
		now:    time.Now,
	}
	go l.cleanup()
	return l
}

// Admit records a hit for key and reports whether it is within the limit.
// When rejected, the second return value is the window length in seconds to
// surface as a Retry-After hint.
func (l *WindowLimiter) Admit(key string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.hits[key]
	if !ok || now.Sub(w.start) >= l.length {
		l.hits[key] = &window{start: now, count: 1}
		return true, 0
	}
	w.count++
	if w.count > l.limit {
		return false, int(l.length.Seconds())
	}
	return true, 0
}

func (l *WindowLimiter) cleanup() {
	for {
		time.Sleep(5 * time.Minute)
		l.mu.Lock()
		now := l.now()
		for key, w := range l.hits {
			if now.Sub(w.start) >= l.length {
				delete(l.hits, key)
			}
		}
		l.mu.Unlock()
	}
}

// IPRateLimiter is a token-bucket limiter keyed by client address, used for
// unauthenticated write endpoints such as likes.
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func NewIPRateLimiter(r rate.Limit, burst int) *IPRateLimiter {
	l := &IPRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     r,
		burst:    burst,
	}
	go l.cleanup()
	return l
}

func (l *IPRateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(l.rate, l.burst)
		l.limiters[ip] = lim
	}
	return lim
}

func (l *IPRateLimiter) cleanup() {
	for {
		time.Sleep(10 * time.Minute)
		l.mu.Lock()
		for ip, lim := range l.limiters {
			if lim.Tokens() >= float64(l.burst) {
				delete(l.limiters, ip)
			}
		}
		l.mu.Unlock()
	}
}

// Middleware rejects requests over the per-address budget with 429.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limiter(RealIP(r)).Allow() {
			writeJSONError(w, http.StatusTooManyRequests, "Too many requests. Please slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
