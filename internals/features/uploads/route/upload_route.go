package route

import (
	"portfolio_backend/internals/features/deps"
	"portfolio_backend/internals/features/uploads/controller"

	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(api fiber.Router, d *deps.Deps) {
	ctrl := controller.NewUploadController(d.Storage)

	r := api.Group("/upload")
	r.Post("/", d.RequireAdmin, d.Upload, ctrl.UploadFiles)
	r.Delete("/", d.RequireAdmin, ctrl.DeleteFile)
}
