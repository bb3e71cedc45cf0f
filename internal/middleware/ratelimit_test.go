package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
)

func TestRateLimitReturnsRetryAfter(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: apperrors.ErrorHandler})
	app.Use(RateLimit(RateLimitConfig{
		Max:        1,
		Expiration: time.Minute,
		Message:    "Too many requests",
	}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("first request status = %d, want 200", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("second request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"retry_after":60`) {
		t.Errorf("429 body missing retry_after: %s", body)
	}
	if !strings.Contains(string(body), string(apperrors.CodeRateLimit)) {
		t.Errorf("429 body missing the rate limit code: %s", body)
	}
}
