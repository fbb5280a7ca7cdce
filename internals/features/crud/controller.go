package crud

import (
	"context"

	helper "portfolio_backend/internals/helpers"
	"portfolio_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateInput is a validated create body that builds a new model.
type CreateInput[T any] interface {
	ToModel() *T
}

// UpdateInput is a validated partial body; ToUpdates returns only the
// columns the caller supplied.
type UpdateInput interface {
	ToUpdates() map[string]any
}

// StatsExtender adds entity-specific aggregates to the stats payload.
type StatsExtender func(ctx context.Context, db *gorm.DB, stats fiber.Map) error

// Controller serves the uniform CRUD surface of one entity.
type Controller[T any, C CreateInput[T], U UpdateInput] struct {
	Repo *Repository[T]
	Desc *Descriptor

	// Optional hooks run after validation and before the write.
	BeforeCreate func(c *fiber.Ctx, m *T) error
	BeforeUpdate func(c *fiber.Ctx, id string, fields map[string]any) error
	Stats        StatsExtender
}

func NewController[T any, C CreateInput[T], U UpdateInput](db *gorm.DB, desc *Descriptor) *Controller[T, C, U] {
	return &Controller[T, C, U]{Repo: NewRepository[T](db, desc), Desc: desc}
}

// ======================
// List
// ======================
func (h *Controller[T, C, U]) List(c *fiber.Ctx) error {
	filters, err := h.Desc.ParseFilters(c)
	if err != nil {
		return err
	}
	return h.ListWith(c, filters)
}

// ListWith runs the list contract with extra fixed filters or scopes.
func (h *Controller[T, C, U]) ListWith(c *fiber.Ctx, filters map[string]any, scopes ...func(*gorm.DB) *gorm.DB) error {
	p := helper.ParseListParams(c, helper.DefaultOpts)
	items, total, err := h.Repo.List(c.UserContext(), ListQuery{
		ListParams: p,
		Filters:    filters,
		Privileged: auth.IsAdmin(c),
		Scopes:     scopes,
	})
	if err != nil {
		return HTTPError(err, h.Desc.Resource)
	}
	return helper.JsonList(c, "", items, helper.BuildPagination(total, p.Page, p.Limit, h.Desc.CountKey))
}

// ======================
// Group (category/type/level)
// ======================
func (h *Controller[T, C, U]) ByGroup(c *fiber.Ctx) error {
	value := c.Params(h.Desc.GroupParam)
	if !h.Desc.ValidGroup(value) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid "+h.Desc.GroupParam+": "+value)
	}
	filters, err := h.Desc.ParseFilters(c)
	if err != nil {
		return err
	}
	filters[h.Desc.GroupColumn] = value
	return h.ListWith(c, filters)
}

// ======================
// Get by ID
// ======================
func (h *Controller[T, C, U]) Get(c *fiber.Ctx) error {
	m, err := h.Repo.FindByID(c.UserContext(), c.Params("id"), auth.IsAdmin(c))
	if err != nil {
		return HTTPError(err, h.Desc.Resource)
	}
	return helper.JsonOK(c, "", m)
}

// ======================
// Create
// ======================
func (h *Controller[T, C, U]) Create(c *fiber.Ctx) error {
	var in C
	if err := helper.DecodeAndValidate(c, h.Desc.Schema, &in); err != nil {
		return err
	}
	m := in.ToModel()
	if inv, ok := any(m).(Invariant); ok {
		if v := inv.CheckInvariants(); len(v) > 0 {
			return helper.NewValidationError(v...)
		}
	}
	if h.BeforeCreate != nil {
		if err := h.BeforeCreate(c, m); err != nil {
			return err
		}
	}
	if err := h.Repo.Create(c.UserContext(), m); err != nil {
		return HTTPError(err, h.Desc.Resource)
	}
	return helper.JsonCreated(c, h.Desc.Resource+" created successfully", m)
}

// ======================
// Update (partial)
// ======================
func (h *Controller[T, C, U]) Update(c *fiber.Ctx) error {
	var in U
	if err := helper.DecodeAndValidate(c, h.Desc.Schema, &in); err != nil {
		return err
	}
	id := c.Params("id")
	fields := in.ToUpdates()
	if h.BeforeUpdate != nil {
		if err := h.BeforeUpdate(c, id, fields); err != nil {
			return HTTPError(err, h.Desc.Resource)
		}
	}
	m, err := h.Repo.Update(c.UserContext(), id, fields, true)
	if err != nil {
		return HTTPError(err, h.Desc.Resource)
	}
	return helper.JsonUpdated(c, h.Desc.Resource+" updated successfully", m)
}

// ======================
// Soft delete
// ======================
func (h *Controller[T, C, U]) Delete(c *fiber.Ctx) error {
	if err := h.Repo.SoftDelete(c.UserContext(), c.Params("id")); err != nil {
		return HTTPError(err, h.Desc.Resource)
	}
	return helper.JsonDeleted(c, h.Desc.Resource+" deleted successfully", nil)
}

// ======================
// Stats
// ======================
func (h *Controller[T, C, U]) StatsHandler(c *fiber.Ctx) error {
	ctx := c.UserContext()
	total, err := h.Repo.CountActive(ctx)
	if err != nil {
		return err
	}
	key := h.Desc.CountKey
	if key == "" {
		key = "total"
	}
	stats := fiber.Map{key: total}
	if h.Desc.GroupColumn != "" {
		groups, err := h.Repo.CountGroups(ctx, h.Desc.GroupColumn)
		if err != nil {
			return err
		}
		stats[h.Desc.StatsGroupKey()] = groups
	}
	if h.Stats != nil {
		if err := h.Stats(ctx, h.Repo.DB().WithContext(ctx), stats); err != nil {
			return err
		}
	}
	return helper.JsonOK(c, "", stats)
}

// Register mounts the uniform routes on r. Writes go through requireAdmin.
// Extra routes must be mounted before calling Register so they win over
// "/:id".
func (h *Controller[T, C, U]) Register(r fiber.Router, requireAdmin fiber.Handler) {
	r.Get("/stats", h.StatsHandler)
	if h.Desc.GroupParam != "" {
		r.Get("/"+h.Desc.GroupParam+"/:"+h.Desc.GroupParam, h.ByGroup)
	}
	r.Get("/", h.List)
	r.Get("/:id", h.Get)

	r.Post("/", requireAdmin, h.Create)
	r.Put("/:id", requireAdmin, h.Update)
	r.Delete("/:id", requireAdmin, h.Delete)
}
