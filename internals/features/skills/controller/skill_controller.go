package controller

import (
	"context"
	"math"

	"portfolio_backend/internals/features/crud"
	"portfolio_backend/internals/features/skills/dto"
	"portfolio_backend/internals/features/skills/model"
	"portfolio_backend/internals/schemas"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var Descriptor = &crud.Descriptor{
	Name:          "skills",
	Resource:      "Skill",
	CountKey:      "totalSkills",
	Filters:       map[string]string{"category": "category"},
	BoolFilters:   map[string]string{"isActive": "is_active"},
	SearchColumns: []string{"name", "description"},
	Sorts: map[string]string{
		"name":              "name",
		"proficiency":       "proficiency",
		"yearsOfExperience": "years_of_experience",
		"createdAt":         "created_at",
		"displayOrder":      "display_order",
	},
	DefaultSort: "-proficiency",
	GroupParam:  "category",
	GroupColumn: "category",
	GroupValues: model.Categories,
	Schema:      schemas.Skill,
}

type SkillController = crud.Controller[model.SkillModel, dto.CreateSkillRequest, dto.UpdateSkillRequest]

func NewSkillController(db *gorm.DB) *SkillController {
	ctrl := crud.NewController[model.SkillModel, dto.CreateSkillRequest, dto.UpdateSkillRequest](db, Descriptor)
	ctrl.Stats = skillStats
	return ctrl
}

type CategoryStats struct {
	Category           string  `json:"category"`
	Count              int64   `gorm:"column:cnt" json:"count"`
	AverageProficiency float64 `json:"averageProficiency"`
	MaxProficiency     int     `json:"maxProficiency"`
}

func skillStats(ctx context.Context, db *gorm.DB, stats fiber.Map) error {
	var overall struct {
		Avg   float64 `gorm:"column:avg_prof"`
		Max   int     `gorm:"column:max_prof"`
		Years float64 `gorm:"column:total_years"`
	}
	if err := crud.Active(db.Model(&model.SkillModel{})).
		Select("COALESCE(AVG(proficiency), 0) AS avg_prof, COALESCE(MAX(proficiency), 0) AS max_prof, COALESCE(SUM(years_of_experience), 0) AS total_years").
		Scan(&overall).Error; err != nil {
		return err
	}

	byCategory := make([]CategoryStats, 0)
	if err := crud.Active(db.Model(&model.SkillModel{})).
		Select("category, COUNT(*) AS cnt, AVG(proficiency) AS average_proficiency, MAX(proficiency) AS max_proficiency").
		Group("category").Order("cnt DESC").Order("category ASC").
		Scan(&byCategory).Error; err != nil {
		return err
	}
	for i := range byCategory {
		byCategory[i].AverageProficiency = round1(byCategory[i].AverageProficiency)
	}

	stats["averageProficiency"] = round1(overall.Avg)
	stats["maxProficiency"] = overall.Max
	stats["totalYearsOfExperience"] = overall.Years
	stats["byCategory"] = byCategory
	return nil
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }
