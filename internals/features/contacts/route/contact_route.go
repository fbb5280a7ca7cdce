package route

import (
	"portfolio_backend/internals/features/contacts/controller"
	"portfolio_backend/internals/features/deps"
	"portfolio_backend/internals/middlewares"

	"github.com/gofiber/fiber/v2"
)

func ContactRoutes(api fiber.Router, d *deps.Deps) {
	ctrl := controller.NewContactController(d.DB, d.Dispatcher, d.Mailer, d.Config.AdminNotifyEmail)

	r := api.Group("/contact")
	r.Post("/", middlewares.ContactRateLimiter(middlewares.RateLimitOptions{
		Max:        d.Config.ContactRateLimitMax,
		Expiration: d.Config.ContactRateLimitWindow,
		Storage:    d.RateStore,
	}), ctrl.SubmitContact)

	r.Get("/stats", d.RequireAdmin, ctrl.GetStats)
	r.Get("/", d.RequireAdmin, ctrl.GetMessages)
	r.Get("/:id", d.RequireAdmin, ctrl.GetMessage)
	r.Put("/:id/status", d.RequireAdmin, ctrl.UpdateStatus)
	r.Post("/:id/reply", d.RequireAdmin, ctrl.ReplyToMessage)
	r.Put("/:id/spam", d.RequireAdmin, ctrl.MarkAsSpam)
	r.Delete("/:id", d.RequireAdmin, ctrl.DeleteMessage)
}
