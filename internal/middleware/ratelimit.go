package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/onlinexam-backend/internal/config"
	"github.com/stemsi/onlinexam-backend/internal/response"
)

// RateLimiter limits requests per client IP. With a Redis client the window
// counter is shared by every server instance; otherwise, or when Redis is
// unreachable, a per-process token bucket is used.
type RateLimiter struct {
	name     string
	rdb      *redis.Client
	log      zerolog.Logger
	rate     int           // Tokens per interval
	interval time.Duration // Refill interval

	mu       sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	tokens   int
	lastSeen time.Time
}

// NewRateLimiter creates a RateLimiter allowing rate requests per interval.
// rdb may be nil.
func NewRateLimiter(name string, rate int, interval time.Duration, rdb *redis.Client, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		name:     name,
		rdb:      rdb,
		log:      log.With().Str("component", "rate_limiter").Str("limiter", name).Logger(),
		rate:     rate,
		interval: interval,
		visitors: make(map[string]*visitor),
	}
}

// StartCleanup drops stale in-memory visitors until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// Middleware returns a Gin middleware that rate-limits requests by IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.rate <= 0 {
			c.Next()
			return
		}

		ip := c.ClientIP()
		allowed, retryAfter := rl.allowShared(c.Request.Context(), ip)
		if allowed == nil {
			ok, wait := rl.allowLocal(ip)
			allowed, retryAfter = &ok, wait
		}

		if !*allowed {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

// allowShared counts the request in Redis. A nil result means Redis could
// not decide.
func (rl *RateLimiter) allowShared(ctx context.Context, ip string) (*bool, time.Duration) {
	if rl.rdb == nil {
		return nil, 0
	}
	key := config.CacheKey.AuthRateKey(rl.name, ip)

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := rl.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, rl.interval)
		ttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		rl.log.Warn().Err(err).Msg("Shared rate limit unavailable, using local bucket")
		return nil, 0
	}

	ok := incr.Val() <= int64(rl.rate)
	return &ok, ttl.Val()
}

func (rl *RateLimiter) allowLocal(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{tokens: rl.rate, lastSeen: time.Now()}
		rl.visitors[ip] = v
	}

	// Refill tokens based on elapsed time.
	elapsed := time.Since(v.lastSeen)
	refill := int(elapsed/rl.interval) * rl.rate
	if refill > 0 {
		v.tokens += refill
		if v.tokens > rl.rate {
			v.tokens = rl.rate
		}
		v.lastSeen = time.Now()
	}

	if v.tokens <= 0 {
		return false, rl.interval - elapsed
	}
	v.tokens--
	return true, 0
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, v := range rl.visitors {
		if time.Since(v.lastSeen) > 3*rl.interval {
			delete(rl.visitors, ip)
		}
	}
}
