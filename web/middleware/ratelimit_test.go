package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d denied, want first 3 allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request 4 allowed, want denied over the limit")
	}

	// Other clients have their own window
	if !rl.Allow("10.0.0.2") {
		t.Error("separate client denied, want independent limits")
	}
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl := NewRateLimiter(1, 30*time.Millisecond)

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first request denied")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("second request allowed inside the window")
	}

	time.Sleep(40 * time.Millisecond)

	if !rl.Allow("10.0.0.1") {
		t.Error("request denied after the window passed")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})
	app.Get("/limited", RateLimit(2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/limited", nil), -1)
		if err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d status = %d, want %d", i+1, resp.StatusCode, fiber.StatusOK)
		}
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/limited", nil), -1)
	if err != nil {
		t.Fatalf("over-limit request: %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Errorf("over-limit status = %d, want %d", resp.StatusCode, fiber.StatusTooManyRequests)
	}
}
