package route

import (
	"portfolio_backend/internals/features/deps"
	"portfolio_backend/internals/features/educations/controller"

	"github.com/gofiber/fiber/v2"
)

func EducationRoutes(api fiber.Router, d *deps.Deps) {
	ctrl := controller.NewEducationController(d.DB)
	ctrl.Register(api.Group("/education"), d.RequireAdmin)
}
