package middlewares

import (
	"time"

	helper "portfolio_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// ContactRateLimitMessage is returned verbatim once the budget is spent.
const ContactRateLimitMessage = "Too many contact form submissions from this IP, please try again later."

type RateLimitOptions struct {
	Max        int
	Expiration time.Duration
	// Storage holds the counters. It is owned by the caller, which closes it
	// on shutdown.
	Storage fiber.Storage
}

// Global limiter: every API endpoint
func GlobalRateLimiter(o RateLimitOptions) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        o.Max,
		Expiration: o.Expiration,
		Storage:    o.Storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "global:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	})
}

// Contact form limiter: N submissions per source address per window
func ContactRateLimiter(o RateLimitOptions) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        o.Max,
		Expiration: o.Expiration,
		Storage:    o.Storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "contact:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, ContactRateLimitMessage)
		},
	})
}

// Login limiter
func LoginRateLimiter(storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "login:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, "Too many login attempts, please try again shortly.")
		},
	})
}
