package routes

import (
	"time"

	database "portfolio_backend/internals/databases"
	"portfolio_backend/internals/features/deps"

	"github.com/gofiber/fiber/v2"
)

var startTime = time.Now()

func BaseRoutes(app *fiber.App, d *deps.Deps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		dbStatus := "Connected"
		serverStatus := "OK"
		httpStatus := fiber.StatusOK

		if err := database.Ping(c.UserContext(), d.DB); err != nil {
			dbStatus = "Database connection error"
			serverStatus = "DOWN"
			httpStatus = fiber.StatusServiceUnavailable
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       dbStatus,
			"storage":        d.Storage.Name(),
			"server_time":    time.Now().Format(time.RFC3339),
			"uptime_seconds": int(time.Since(startTime).Seconds()),
			"environment":    d.Config.Env,
		})
	})
}
