package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pawspace/pawspace-be/internal/auth"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// RateLimiterConfig holds the token-bucket parameters.
type RateLimiterConfig struct {
	// Auth endpoints get a tight bucket keyed by client IP (brute-force guard).
	AuthRate  rate.Limit
	AuthBurst int

	// Authenticated write endpoints get a general bucket keyed by user id.
	WriteRate  rate.Limit
	WriteBurst int

	CleanupInterval time.Duration
}

// DefaultRateLimiterConfig returns the default limits: 10 auth attempts and
// 60 writes per minute per key.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		AuthRate:        rate.Limit(10.0 / 60.0),
		AuthBurst:       10,
		WriteRate:       rate.Limit(60.0 / 60.0),
		WriteBurst:      60,
		CleanupInterval: 5 * time.Minute,
	}
}

type keyedLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter manages per-key token buckets for the auth and write paths.
type RateLimiter struct {
	config RateLimiterConfig

	mu            sync.Mutex
	authLimiters  map[string]*keyedLimiter
	writeLimiters map[string]*keyedLimiter

	stopCh chan struct{}
}

// NewRateLimiter creates a RateLimiter and starts its cleanup loop.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:        config,
		authLimiters:  make(map[string]*keyedLimiter),
		writeLimiters: make(map[string]*keyedLimiter),
		stopCh:        make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop halts the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// AuthMiddleware limits unauthenticated auth attempts per client IP. Place it
// before the JWT middleware on /auth routes.
func (rl *RateLimiter) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Key by IP only; the ephemeral port would give every connection its
		// own bucket.
		key := r.RemoteAddr
		if host, _, err := net.SplitHostPort(key); err == nil {
			key = host
		}
		limiter := rl.getOrCreate(rl.authLimiters, key, rl.config.AuthRate, rl.config.AuthBurst)
		if !limiter.Allow() {
			log.Warn().Str("remote_addr", r.RemoteAddr).Msg("Auth rate limit exceeded")
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WriteMiddleware limits authenticated mutations per user. Place it after the
// JWT middleware.
func (rl *RateLimiter) WriteMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			http.Error(w, "Missing auth token", http.StatusUnauthorized)
			return
		}
		limiter := rl.getOrCreate(rl.writeLimiters, claims.UserID, rl.config.WriteRate, rl.config.WriteBurst)
		if !limiter.Allow() {
			log.Warn().Str("user_id", claims.UserID).Msg("Write rate limit exceeded")
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) getOrCreate(limiters map[string]*keyedLimiter, key string, r rate.Limit, burst int) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if kl, ok := limiters[key]; ok {
		kl.lastAccess = time.Now()
		return kl.limiter
	}

	limiter := rate.NewLimiter(r, burst)
	limiters[key] = &keyedLimiter{limiter: limiter, lastAccess: time.Now()}
	return limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-rl.config.CleanupInterval)
			rl.mu.Lock()
			for key, kl := range rl.authLimiters {
				if kl.lastAccess.Before(cutoff) {
					delete(rl.authLimiters, key)
				}
			}
			for key, kl := range rl.writeLimiters {
				if kl.lastAccess.Before(cutoff) {
					delete(rl.writeLimiters, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}
