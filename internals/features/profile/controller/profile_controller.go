package controller

import (
	"context"
	"errors"

	"portfolio_backend/internals/features/crud"
	"portfolio_backend/internals/features/profile/dto"
	"portfolio_backend/internals/features/profile/model"
	helper "portfolio_backend/internals/helpers"
	"portfolio_backend/internals/helpers/oss"
	"portfolio_backend/internals/middlewares"
	"portfolio_backend/internals/schemas"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var Descriptor = &crud.Descriptor{
	Name:     "profile",
	Resource: "Profile",
	Schema:   schemas.Profile,
}

type ProfileController struct {
	DB      *gorm.DB
	Repo    *crud.Repository[model.ProfileModel]
	Storage oss.Storage
	Janitor *oss.Janitor
}

func NewProfileController(db *gorm.DB, storage oss.Storage, janitor *oss.Janitor) *ProfileController {
	return &ProfileController{
		DB:      db,
		Repo:    crud.NewRepository[model.ProfileModel](db, Descriptor),
		Storage: storage,
		Janitor: janitor,
	}
}

// current returns the oldest active profile.
func (ctrl *ProfileController) current(ctx context.Context) (*model.ProfileModel, error) {
	var p model.ProfileModel
	err := crud.Active(ctrl.DB.WithContext(ctx)).Order("created_at ASC").Order("id ASC").First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, crud.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ======================
// GET /api/profile
// ======================
func (ctrl *ProfileController) GetProfile(c *fiber.Ctx) error {
	p, err := ctrl.current(c.UserContext())
	if err != nil {
		return crud.HTTPError(err, Descriptor.Resource)
	}
	return helper.JsonOK(c, "", p)
}

// ======================
// PUT /api/profile (create or update)
// ======================
func (ctrl *ProfileController) UpsertProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	existing, err := ctrl.current(ctx)
	if err != nil && !errors.Is(err, crud.ErrNotFound) {
		return err
	}

	var fields map[string]any
	if existing == nil {
		var in dto.CreateProfileRequest
		if err := helper.DecodeAndValidate(c, Descriptor.Schema, &in); err != nil {
			return err
		}
		p := in.ToModel()
		err := ctrl.Repo.Create(ctx, p)
		if err == nil {
			return helper.JsonCreated(c, "Profile created successfully", p)
		}
		if !errors.Is(err, crud.ErrConflict) {
			return crud.HTTPError(err, Descriptor.Resource)
		}
		// a concurrent PUT created the profile first; this one updates it
		if existing, err = ctrl.current(ctx); err != nil {
			return crud.HTTPError(err, Descriptor.Resource)
		}
		fields = in.ToUpdates()
	} else {
		var in dto.UpdateProfileRequest
		if err := helper.DecodeAndValidate(c, Descriptor.Schema, &in); err != nil {
			return err
		}
		fields = in.ToUpdates()
	}

	updated, err := ctrl.Repo.Update(ctx, existing.ID.String(), fields, false)
	if err != nil {
		return crud.HTTPError(err, Descriptor.Resource)
	}
	if v, ok := fields["avatar"]; ok && v != existing.Avatar {
		ctrl.Janitor.Remove(ctx, existing.Avatar)
	}
	if v, ok := fields["resume"]; ok && v != existing.Resume {
		ctrl.Janitor.Remove(ctx, existing.Resume)
	}
	return helper.JsonUpdated(c, "Profile updated successfully", updated)
}

// ======================
// POST /api/profile/avatar, /api/profile/resume
// ======================
func (ctrl *ProfileController) UploadAvatar(c *fiber.Ctx) error {
	return ctrl.replaceFile(c, "avatar", "avatar", func(p *model.ProfileModel) string { return p.Avatar })
}

func (ctrl *ProfileController) UploadResume(c *fiber.Ctx) error {
	return ctrl.replaceFile(c, "resume", "resume", func(p *model.ProfileModel) string { return p.Resume })
}

// replaceFile stores the uploaded file, points the profile at it and then
// removes the previous file best effort.
func (ctrl *ProfileController) replaceFile(c *fiber.Ctx, field, column string, old func(*model.ProfileModel) string) error {
	files := middlewares.Accepted(c, field)
	if len(files) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No file uploaded in field "+field)
	}
	ctx := c.UserContext()
	p, err := ctrl.current(ctx)
	if err != nil {
		return crud.HTTPError(err, Descriptor.Resource)
	}

	stored, err := middlewares.StoreAccepted(ctx, ctrl.Storage, files[:1])
	if err != nil {
		return err
	}
	previous := old(p)

	updated, err := ctrl.Repo.Update(ctx, p.ID.String(), map[string]any{column: stored[0].URL}, false)
	if err != nil {
		ctrl.Janitor.Remove(ctx, stored[0].URL)
		return crud.HTTPError(err, Descriptor.Resource)
	}
	ctrl.Janitor.Remove(ctx, previous)

	return helper.JsonUpdated(c, field+" uploaded successfully", fiber.Map{
		"profile": updated,
		"file":    stored[0],
	})
}
