package route

import (
	"portfolio_backend/internals/features/deps"
	"portfolio_backend/internals/features/skills/controller"

	"github.com/gofiber/fiber/v2"
)

func SkillRoutes(api fiber.Router, d *deps.Deps) {
	ctrl := controller.NewSkillController(d.DB)
	ctrl.Register(api.Group("/skills"), d.RequireAdmin)
}
