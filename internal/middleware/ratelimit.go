package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

type bucket struct {
	count int
	until time.Time
}

// LimitedHandler writes the response for a rejected request.
type LimitedHandler func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration)

// RateLimit allows limit requests per client IP in each fixed window of length
// per. A non-positive limit disables limiting.
func RateLimit(limit int, per time.Duration, onLimited LimitedHandler) func(http.Handler) http.Handler {
	if onLimited == nil {
		onLimited = func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}
	var mu sync.Mutex
	buckets := make(map[string]*bucket)
	lastSweep := time.Now()
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIPForRateLimit(r)
			now := time.Now()
			mu.Lock()
			if now.Sub(lastSweep) > per {
				for key, b := range buckets {
					if now.After(b.until) {
						delete(buckets, key)
					}
				}
				lastSweep = now
			}
			b, ok := buckets[ip]
			if !ok || now.After(b.until) {
				b = &bucket{until: now.Add(per)}
				buckets[ip] = b
			}
			if b.count >= limit {
				retryAfter := b.until.Sub(now)
				mu.Unlock()
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second)/time.Second)))
				onLimited(w, r, retryAfter)
				return
			}
			b.count++
			mu.Unlock()
			next.ServeHTTP(w, r)
		})
	}
}

// clientIPForRateLimit keys on the connection address. Forwarded headers are
// honored only through TrustedRealIP, which runs earlier.
func clientIPForRateLimit(r *http.Request) string {
	return remoteHost(r.RemoteAddr)
}
