package ratelimit

import (
	"net/http"

	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/docelucro/backend-doce/internal/common"
)

// NewLoginLimiter builds a rate limiter for the login endpoint from a
// formatted rate such as "10-M" (ten requests per minute). When a Redis
// client is available the counters are shared across instances; otherwise
// an in-memory store is used.
func NewLoginLimiter(rdb *redis.Client, rate string) (*limiter.Limiter, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}
	var store limiter.Store
	if rdb != nil {
		store, err = limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: "rl:login"})
		if err != nil {
			return nil, err
		}
	} else {
		store = limitermemory.NewStore()
	}
	return limiter.New(store, parsed), nil
}

// Middleware limits requests per client IP and answers 429 once the
// window is exhausted. A nil limiter passes everything through.
type Middleware struct {
	Limiter *limiter.Limiter
}

func (m Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx, err := m.Limiter.Get(r.Context(), common.ClientIP(r))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		if ctx.Reached {
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many attempts, try again later", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
