package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config collects the settings for the full middleware stack.
type Config struct {
	Logger *zap.Logger

	CORS *CORSConfig

	RateLimit      rate.Limit
	RateLimitBurst int

	RequestTimeout time.Duration
}

// Chain assembles the middleware stack. Ordering matters: the request id
// is assigned before logging so every log line carries it, recovery wraps
// everything below it, and the timeout sits innermost so it bounds only
// the handler itself.
func Chain(config *Config) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(config.RateLimit, config.RateLimitBurst)

	layers := []func(http.Handler) http.Handler{
		RequestID,
		Logger(config.Logger),
		Recovery(config.Logger),
	}
	if config.CORS != nil {
		layers = append(layers, CORS(config.CORS))
	}
	layers = append(layers,
		limiter.Middleware(),
		Timeout(config.RequestTimeout),
	)

	return func(handler http.Handler) http.Handler {
		h := handler
		for i := len(layers) - 1; i >= 0; i-- {
			h = layers[i](h)
		}
		return h
	}
}
