package route

import (
	"portfolio_backend/internals/features/deps"
	"portfolio_backend/internals/features/profile/controller"

	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(api fiber.Router, d *deps.Deps) {
	ctrl := controller.NewProfileController(d.DB, d.Storage, d.Janitor)

	r := api.Group("/profile")
	r.Get("/", ctrl.GetProfile)
	r.Put("/", d.RequireAdmin, ctrl.UpsertProfile)
	r.Post("/avatar", d.RequireAdmin, d.Upload, ctrl.UploadAvatar)
	r.Post("/resume", d.RequireAdmin, d.Upload, ctrl.UploadResume)
}
