package route

import (
	"portfolio_backend/internals/features/deps"
	"portfolio_backend/internals/features/projects/controller"

	"github.com/gofiber/fiber/v2"
)

func ProjectRoutes(api fiber.Router, d *deps.Deps) {
	ctrl := controller.NewProjectController(d.DB, d.Storage, d.Janitor)

	r := api.Group("/projects")
	r.Get("/featured", ctrl.GetFeaturedProjects)
	r.Get("/slug/:slug", ctrl.GetProjectBySlug)
	r.Post("/:id/images", d.RequireAdmin, d.Upload, ctrl.UploadProjectImages)
	r.Put("/:id/images/:imageId/primary", d.RequireAdmin, ctrl.SetPrimaryImage)
	r.Delete("/:id/images/:imageId", d.RequireAdmin, ctrl.DeleteProjectImage)

	ctrl.Register(r, d.RequireAdmin)
}
