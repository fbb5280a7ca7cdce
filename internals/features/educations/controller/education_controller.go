package controller

import (
	"portfolio_backend/internals/features/crud"
	"portfolio_backend/internals/features/educations/dto"
	"portfolio_backend/internals/features/educations/model"
	"portfolio_backend/internals/schemas"

	"gorm.io/gorm"
)

var Descriptor = &crud.Descriptor{
	Name:          "education",
	Resource:      "Education",
	CountKey:      "totalEducations",
	Filters:       map[string]string{"level": "level"},
	BoolFilters:   map[string]string{"current": "is_current", "isActive": "is_active"},
	SearchColumns: []string{"institution", "degree", "field_of_study", "description"},
	Sorts: map[string]string{
		"startDate":    "start_date",
		"endDate":      "end_date",
		"institution":  "institution",
		"createdAt":    "created_at",
		"displayOrder": "display_order",
	},
	DefaultSort: "-startDate",
	GroupParam:  "level",
	GroupColumn: "level",
	GroupValues: model.Levels,
	Schema:      schemas.Education,
}

type EducationController = crud.Controller[model.EducationModel, dto.CreateEducationRequest, dto.UpdateEducationRequest]

func NewEducationController(db *gorm.DB) *EducationController {
	return crud.NewController[model.EducationModel, dto.CreateEducationRequest, dto.UpdateEducationRequest](db, Descriptor)
}
