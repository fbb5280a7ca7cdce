// Package deps bundles the process-wide collaborators that feature routes
// are built from. It is assembled once in main and passed down explicitly.
package deps

import (
	"portfolio_backend/internals/configs"
	"portfolio_backend/internals/helpers/dispatch"
	"portfolio_backend/internals/helpers/mailer"
	"portfolio_backend/internals/helpers/oss"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Deps struct {
	DB     *gorm.DB
	Config *configs.Config

	Storage oss.Storage
	Janitor *oss.Janitor

	Dispatcher dispatch.Submitter
	Mailer     mailer.Mailer

	// RateStore holds rate-limit counters for this process.
	RateStore fiber.Storage

	RequireAdmin fiber.Handler
	// Upload is the UploadGuard configured from Config.
	Upload fiber.Handler
}
