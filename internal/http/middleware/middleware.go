package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	memoryStorage "github.com/gofiber/storage/memory/v2"
	redisStorage "github.com/gofiber/storage/redis/v2"
	"github.com/rs/xid"

	"catalogpdf/internal/config"
	"catalogpdf/internal/infra/logging"
)

// newRateLimitStore prefers Redis so limits hold across instances, falling
// back to in-memory when the Redis store cannot initialize.
func newRateLimitStore(cfg config.Config) fiber.Storage {
	var store fiber.Storage = memoryStorage.New()

	func() {
		defer func() {
			if r := recover(); r != nil {
				logging.Error("Redis limiter store init panicked, falling back to memory", "panic", r)
			}
		}()
		store = redisStorage.New(redisStorage.Config{
			Addrs:    []string{cfg.Cache.RedisHost},
			Database: cfg.Cache.RateLimitDB,
		})
		logging.Info("Using Redis for rate limiting", "addr", cfg.Cache.RedisHost, "db", cfg.Cache.RateLimitDB)
	}()

	return store
}

// rateLimitMiddleware applies a per-client sliding-window limit.
func rateLimitMiddleware(cfg config.Config, store fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               cfg.RateLimiter.Max,
		Expiration:        cfg.RateLimiter.Interval,
		LimiterMiddleware: limiter.SlidingWindow{},
		Storage:           store,
		LimitReached: func(c *fiber.Ctx) error {
			logging.Warn("Rate limit exceeded", "ip", c.IP(), "path", c.Path())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too Many Requests",
				"code":  "RATE_LIMITED",
			})
		},
	})
}

// Register attaches global middleware to the app.
func Register(app *fiber.App, cfg config.Config) {
	corsCfg := cors.Config{}
	if cfg.CORS.AllowedOrigins != "" {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	app.Use(cors.New(corsCfg))

	app.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return xid.New().String()
		},
	}))

	if cfg.RateLimiter.Enabled {
		app.Use(rateLimitMiddleware(cfg, newRateLimitStore(cfg)))
	}

	app.Use(func(c *fiber.Ctx) error {
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = c.GetRespHeader("X-Request-ID")
		}
		logging.Info("Incoming request", "method", c.Method(), "path", c.Path(), "request_id", requestID)
		return c.Next()
	})
}
