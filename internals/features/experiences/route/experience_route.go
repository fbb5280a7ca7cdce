package route

import (
	"portfolio_backend/internals/features/deps"
	"portfolio_backend/internals/features/experiences/controller"

	"github.com/gofiber/fiber/v2"
)

func ExperienceRoutes(api fiber.Router, d *deps.Deps) {
	ctrl := controller.NewExperienceController(d.DB)

	r := api.Group("/experience")
	r.Get("/current", ctrl.GetCurrentExperience)
	ctrl.Register(r, d.RequireAdmin)
}
