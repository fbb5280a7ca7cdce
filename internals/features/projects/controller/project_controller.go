package controller

import (
	"context"
	"errors"
	"strings"

	"portfolio_backend/internals/features/crud"
	"portfolio_backend/internals/features/projects/dto"
	"portfolio_backend/internals/features/projects/model"
	helper "portfolio_backend/internals/helpers"
	"portfolio_backend/internals/helpers/oss"
	"portfolio_backend/internals/middlewares"
	"portfolio_backend/internals/middlewares/auth"
	"portfolio_backend/internals/schemas"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var Descriptor = &crud.Descriptor{
	Name:          "projects",
	Resource:      "Project",
	CountKey:      "totalProjects",
	Filters:       map[string]string{"category": "category", "status": "status"},
	BoolFilters:   map[string]string{"featured": "featured", "isActive": "is_active"},
	SearchColumns: []string{"title", "description", "short_description", "CAST(technologies AS TEXT)"},
	Sorts: map[string]string{
		"createdAt":    "created_at",
		"startDate":    "start_date",
		"title":        "title",
		"displayOrder": "display_order",
	},
	DefaultSort: "-startDate",
	GroupParam:  "category",
	GroupColumn: "category",
	GroupValues: model.Categories,
	Schema:      schemas.Project,
}

type ProjectController struct {
	*crud.Controller[model.ProjectModel, dto.CreateProjectRequest, dto.UpdateProjectRequest]
	DB      *gorm.DB
	Storage oss.Storage
	Janitor *oss.Janitor
}

func NewProjectController(db *gorm.DB, storage oss.Storage, janitor *oss.Janitor) *ProjectController {
	ctrl := &ProjectController{
		Controller: crud.NewController[model.ProjectModel, dto.CreateProjectRequest, dto.UpdateProjectRequest](db, Descriptor),
		DB:         db,
		Storage:    storage,
		Janitor:    janitor,
	}
	ctrl.Controller.BeforeCreate = ctrl.assignSlug
	ctrl.Controller.BeforeUpdate = ctrl.reslug
	ctrl.Controller.Stats = projectStats
	return ctrl
}

// An explicit slug is kept as given (a clash is a 409); a derived one gets
// a numeric suffix until it is free.
func (ctrl *ProjectController) assignSlug(c *fiber.Ctx, p *model.ProjectModel) error {
	if s := helper.Slugify(p.Slug, helper.DefaultSlugMaxLen); s != "" {
		p.Slug = s
		return nil
	}
	slug, err := helper.GenerateUniqueSlug(c.UserContext(), ctrl.DB, helper.SlugOptions{
		Table:      "projects",
		SlugColumn: "slug",
	}, p.Title)
	if err != nil {
		return err
	}
	p.Slug = slug
	return nil
}

func (ctrl *ProjectController) reslug(c *fiber.Ctx, id string, fields map[string]any) error {
	if s, ok := fields["slug"].(string); ok {
		fields["slug"] = helper.Slugify(s, helper.DefaultSlugMaxLen)
		if fields["slug"] == "" {
			delete(fields, "slug")
		}
		return nil
	}
	title, ok := fields["title"].(string)
	if !ok {
		return nil
	}
	slug, err := helper.GenerateUniqueSlug(c.UserContext(), ctrl.DB, helper.SlugOptions{
		Table:      "projects",
		SlugColumn: "slug",
		ExcludeID:  id,
	}, title)
	if err != nil {
		return err
	}
	fields["slug"] = slug
	return nil
}

func projectStats(ctx context.Context, db *gorm.DB, stats fiber.Map) error {
	var byStatus []crud.GroupCount
	if err := crud.Active(db.Model(&model.ProjectModel{})).
		Select("status AS grp, COUNT(*) AS cnt").Group("status").Order("cnt DESC").Order("grp ASC").
		Scan(&byStatus).Error; err != nil {
		return err
	}
	var featured int64
	if err := crud.Active(db.Model(&model.ProjectModel{})).Where("featured = ?", true).Count(&featured).Error; err != nil {
		return err
	}
	if byStatus == nil {
		byStatus = []crud.GroupCount{}
	}
	stats["byStatus"] = byStatus
	stats["featuredProjects"] = featured
	return nil
}

// ======================
// GET /featured
// ======================
func (ctrl *ProjectController) GetFeaturedProjects(c *fiber.Ctx) error {
	filters, err := Descriptor.ParseFilters(c)
	if err != nil {
		return err
	}
	filters["featured"] = true
	return ctrl.ListWith(c, filters)
}

// ======================
// GET /slug/:slug
// ======================
func (ctrl *ProjectController) GetProjectBySlug(c *fiber.Ctx) error {
	slug := strings.ToLower(strings.TrimSpace(c.Params("slug")))
	tx := ctrl.DB.WithContext(c.UserContext()).Where("slug = ?", slug)
	if !auth.IsAdmin(c) {
		tx = crud.Active(tx)
	}
	var p model.ProjectModel
	if err := tx.First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return crud.HTTPError(crud.ErrNotFound, Descriptor.Resource)
		}
		return err
	}
	return helper.JsonOK(c, "", p)
}

// ======================
// POST /:id/images
// ======================
func (ctrl *ProjectController) UploadProjectImages(c *fiber.Ctx) error {
	files := middlewares.Accepted(c, "projectImages")
	if len(files) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No files uploaded in field projectImages")
	}
	ctx := c.UserContext()
	id := c.Params("id")
	p, err := ctrl.Repo.FindByID(ctx, id, true)
	if err != nil {
		return crud.HTTPError(err, Descriptor.Resource)
	}

	stored, err := middlewares.StoreAccepted(ctx, ctrl.Storage, files)
	if err != nil {
		return err
	}

	images := append([]model.ProjectImage{}, p.Images...)
	hasPrimary := hasFlag(images)
	for _, sf := range stored {
		images = append(images, model.ProjectImage{
			ID:           uuid.NewString(),
			URL:          sf.URL,
			ThumbnailURL: sf.ThumbnailURL,
			Alt:          strings.TrimSuffix(sf.OriginalName, extOf(sf.OriginalName)),
			IsPrimary:    !hasPrimary,
		})
		hasPrimary = true
	}

	updated, err := ctrl.Repo.Update(ctx, id, map[string]any{"images": datatypes.NewJSONSlice(images)}, true)
	if err != nil {
		for _, sf := range stored {
			ctrl.Janitor.Remove(ctx, sf.URL)
		}
		return crud.HTTPError(err, Descriptor.Resource)
	}
	return helper.JsonUpdated(c, "Images uploaded successfully", updated)
}

// ======================
// PUT /:id/images/:imageId/primary
// ======================
func (ctrl *ProjectController) SetPrimaryImage(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, imageID := c.Params("id"), c.Params("imageId")
	p, err := ctrl.Repo.FindByID(ctx, id, true)
	if err != nil {
		return crud.HTTPError(err, Descriptor.Resource)
	}

	images := append([]model.ProjectImage{}, p.Images...)
	found := false
	for i := range images {
		images[i].IsPrimary = images[i].ID == imageID
		found = found || images[i].IsPrimary
	}
	if !found {
		return fiber.NewError(fiber.StatusNotFound, "Image not found")
	}

	updated, err := ctrl.Repo.Update(ctx, id, map[string]any{"images": datatypes.NewJSONSlice(images)}, true)
	if err != nil {
		return crud.HTTPError(err, Descriptor.Resource)
	}
	return helper.JsonUpdated(c, "Primary image updated", updated)
}

// ======================
// DELETE /:id/images/:imageId
// ======================
func (ctrl *ProjectController) DeleteProjectImage(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, imageID := c.Params("id"), c.Params("imageId")
	p, err := ctrl.Repo.FindByID(ctx, id, true)
	if err != nil {
		return crud.HTTPError(err, Descriptor.Resource)
	}

	images := make([]model.ProjectImage, 0, len(p.Images))
	var removed *model.ProjectImage
	for _, img := range p.Images {
		if img.ID == imageID {
			img := img
			removed = &img
			continue
		}
		images = append(images, img)
	}
	if removed == nil {
		return fiber.NewError(fiber.StatusNotFound, "Image not found")
	}
	if removed.IsPrimary && len(images) > 0 {
		images[0].IsPrimary = true
	}

	updated, err := ctrl.Repo.Update(ctx, id, map[string]any{"images": datatypes.NewJSONSlice(images)}, true)
	if err != nil {
		return crud.HTTPError(err, Descriptor.Resource)
	}
	ctrl.Janitor.Remove(ctx, removed.URL)
	return helper.JsonUpdated(c, "Image deleted successfully", updated)
}

func hasFlag(images []model.ProjectImage) bool {
	for _, img := range images {
		if img.IsPrimary {
			return true
		}
	}
	return false
}

func extOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[i:]
	}
	return ""
}
