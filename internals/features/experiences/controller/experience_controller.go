package controller

import (
	"context"

	"portfolio_backend/internals/features/crud"
	"portfolio_backend/internals/features/experiences/dto"
	"portfolio_backend/internals/features/experiences/model"
	"portfolio_backend/internals/schemas"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var Descriptor = &crud.Descriptor{
	Name:          "experience",
	Resource:      "Experience",
	CountKey:      "totalExperiences",
	Filters:       map[string]string{"employmentType": "employment_type"},
	BoolFilters:   map[string]string{"current": "is_current", "isActive": "is_active"},
	SearchColumns: []string{"company", "position", "description", "CAST(technologies AS TEXT)"},
	Sorts: map[string]string{
		"startDate":    "start_date",
		"endDate":      "end_date",
		"company":      "company",
		"createdAt":    "created_at",
		"displayOrder": "display_order",
	},
	DefaultSort: "-startDate",
	GroupParam:  "type",
	GroupColumn: "employment_type",
	GroupValues: model.EmploymentTypes,
	Schema:      schemas.Experience,
}

type ExperienceController struct {
	*crud.Controller[model.ExperienceModel, dto.CreateExperienceRequest, dto.UpdateExperienceRequest]
}

func NewExperienceController(db *gorm.DB) *ExperienceController {
	c := crud.NewController[model.ExperienceModel, dto.CreateExperienceRequest, dto.UpdateExperienceRequest](db, Descriptor)
	c.Stats = experienceStats
	return &ExperienceController{Controller: c}
}

// GET /current
func (ctrl *ExperienceController) GetCurrentExperience(c *fiber.Ctx) error {
	return ctrl.ListWith(c, map[string]any{"is_current": true})
}

func experienceStats(ctx context.Context, db *gorm.DB, stats fiber.Map) error {
	var current int64
	if err := crud.Active(db.Model(&model.ExperienceModel{})).Where("is_current = ?", true).Count(&current).Error; err != nil {
		return err
	}
	stats["currentPositions"] = current
	return nil
}
