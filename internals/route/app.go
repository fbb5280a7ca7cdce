package routes

import (
	"time"

	"portfolio_backend/internals/features/deps"
	"portfolio_backend/internals/middlewares"
	"portfolio_backend/internals/middlewares/logger"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
)

// UploadsPrefix is where locally stored files are served from.
const UploadsPrefix = "/uploads"

// NewApp builds the fully wired HTTP application. It performs no I/O of its
// own, so tests can drive it with app.Test.
func NewApp(d *deps.Deps) *fiber.App {
	cfg := d.Config
	bodyLimit := int(cfg.MaxFileSize)*max(cfg.MaxFiles, 1) + 1<<20

	fc := fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ErrorHandler:          middlewares.ErrorHandler,
		BodyLimit:             bodyLimit,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           90 * time.Second,
	}
	if cfg.TrustProxy {
		fc.ProxyHeader = fiber.HeaderXForwardedFor
	}
	app := fiber.New(fc)

	app.Use(middlewares.RecoveryMiddleware())
	app.Use(middlewares.RequestContext(10 * time.Second))
	app.Use(logger.LoggerMiddleware())
	app.Use(middlewares.CorsMiddleware(cfg.ClientURLs))
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	if d.Storage != nil && d.Storage.Name() == "local" {
		app.Static(UploadsPrefix, cfg.UploadDir, fiber.Static{MaxAge: 3600})
	}

	SetupRoutes(app, d)
	return app
}
