package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
)

// RateLimitConfig defines one limiter category
type RateLimitConfig struct {
	Max        int
	Expiration time.Duration
	Message    string
}

// Limiter categories. Auth is strict because login is the brute-force
// surface; writes are tighter than reads because every write funnels through
// the single-writer store.
var (
	GlobalRateLimit = RateLimitConfig{
		Max:        300,
		Expiration: 1 * time.Minute,
		Message:    "Too many requests, please slow down",
	}
	AuthRateLimit = RateLimitConfig{
		Max:        10,
		Expiration: 1 * time.Minute,
		Message:    "Too many authentication attempts, please wait before retrying",
	}
	WriteRateLimit = RateLimitConfig{
		Max:        60,
		Expiration: 1 * time.Minute,
		Message:    "Too many write operations, please slow down",
	}
)

// RateLimit builds a Fiber limiter for one category, keyed by client IP.
func RateLimit(cfg RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return &apperrors.Error{
				Code:    apperrors.CodeRateLimit,
				Message: cfg.Message,
				Status:  fiber.StatusTooManyRequests,
				Details: fiber.Map{"retry_after": int(cfg.Expiration.Seconds())},
			}
		},
	})
}
