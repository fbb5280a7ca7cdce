package controller

import (
	"errors"

	helper "portfolio_backend/internals/helpers"
	"portfolio_backend/internals/helpers/oss"
	"portfolio_backend/internals/middlewares"

	"github.com/gofiber/fiber/v2"
)

type UploadController struct {
	Storage oss.Storage
}

func NewUploadController(storage oss.Storage) *UploadController {
	return &UploadController{Storage: storage}
}

// ======================
// POST /api/upload
// ======================
func (ctrl *UploadController) UploadFiles(c *fiber.Ctx) error {
	files := middlewares.Accepted(c)
	if len(files) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No files uploaded")
	}
	stored, err := middlewares.StoreAccepted(c.UserContext(), ctrl.Storage, files)
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "Files uploaded successfully", stored)
}

// ======================
// DELETE /api/upload (body: {"url": "..."})
// ======================
func (ctrl *UploadController) DeleteFile(c *fiber.Ctx) error {
	var in struct {
		URL string `json:"url" validate:"required"`
	}
	if err := helper.DecodeAndValidate(c, nil, &in); err != nil {
		return err
	}
	if err := ctrl.Storage.Delete(c.UserContext(), in.URL); err != nil {
		if errors.Is(err, oss.ErrForeignURL) {
			return fiber.NewError(fiber.StatusBadRequest, "URL is not managed by this server")
		}
		return err
	}
	return helper.JsonDeleted(c, "File deleted successfully", nil)
}
