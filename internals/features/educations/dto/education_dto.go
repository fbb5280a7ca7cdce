package dto

import (
	"strings"

	"portfolio_backend/internals/features/crud"
	"portfolio_backend/internals/features/educations/model"
	helper "portfolio_backend/internals/helpers"

	"gorm.io/datatypes"
)

type CreateEducationRequest struct {
	Institution     string       `json:"institution" validate:"required,max=150"`
	Degree          string       `json:"degree" validate:"required,max=150"`
	FieldOfStudy    string       `json:"fieldOfStudy" validate:"max=150"`
	Level           string       `json:"level" validate:"required,oneof=high-school associate bachelor master doctorate certificate other"`
	Location        string       `json:"location" validate:"max=100"`
	StartDate       helper.Date  `json:"startDate" validate:"required"`
	EndDate         *helper.Date `json:"endDate" validate:"omitempty,after_field=StartDate"`
	Current         bool         `json:"current"`
	Grade           string       `json:"grade" validate:"max=50"`
	Description     string       `json:"description" validate:"max=2000"`
	Achievements    []string     `json:"achievements" validate:"omitempty,dive,required,max=500"`
	InstitutionLogo string       `json:"institutionLogo"`
	DisplayOrder    int          `json:"displayOrder"`
}

func (r CreateEducationRequest) ToModel() *model.EducationModel {
	achievements := r.Achievements
	if achievements == nil {
		achievements = []string{}
	}
	return &model.EducationModel{
		Base:            crud.Base{IsActive: true, DisplayOrder: r.DisplayOrder},
		Institution:     strings.TrimSpace(r.Institution),
		Degree:          strings.TrimSpace(r.Degree),
		FieldOfStudy:    r.FieldOfStudy,
		Level:           r.Level,
		Location:        r.Location,
		StartDate:       r.StartDate.Time,
		EndDate:         r.EndDate.Ptr(),
		Current:         r.Current,
		Grade:           r.Grade,
		Description:     r.Description,
		Achievements:    datatypes.NewJSONSlice(achievements),
		InstitutionLogo: r.InstitutionLogo,
	}
}

type UpdateEducationRequest struct {
	Institution     *string      `json:"institution,omitempty" validate:"omitnil,min=1,max=150"`
	Degree          *string      `json:"degree,omitempty" validate:"omitnil,min=1,max=150"`
	FieldOfStudy    *string      `json:"fieldOfStudy,omitempty" validate:"omitnil,max=150"`
	Level           *string      `json:"level,omitempty" validate:"omitnil,oneof=high-school associate bachelor master doctorate certificate other"`
	Location        *string      `json:"location,omitempty" validate:"omitnil,max=100"`
	StartDate       *helper.Date `json:"startDate,omitempty"`
	EndDate         *helper.Date `json:"endDate,omitempty" validate:"omitnil,after_field=StartDate"`
	Current         *bool        `json:"current,omitempty"`
	Grade           *string      `json:"grade,omitempty" validate:"omitnil,max=50"`
	Description     *string      `json:"description,omitempty" validate:"omitnil,max=2000"`
	Achievements    *[]string    `json:"achievements,omitempty" validate:"omitnil,dive,required,max=500"`
	InstitutionLogo *string      `json:"institutionLogo,omitempty"`
	DisplayOrder    *int         `json:"displayOrder,omitempty"`
	IsActive        *bool        `json:"isActive,omitempty"`
}

func (r UpdateEducationRequest) ToUpdates() map[string]any {
	f := map[string]any{}
	if r.Institution != nil {
		f["institution"] = strings.TrimSpace(*r.Institution)
	}
	if r.Degree != nil {
		f["degree"] = strings.TrimSpace(*r.Degree)
	}
	if r.FieldOfStudy != nil {
		f["field_of_study"] = *r.FieldOfStudy
	}
	if r.Level != nil {
		f["level"] = *r.Level
	}
	if r.Location != nil {
		f["location"] = *r.Location
	}
	if r.StartDate != nil {
		f["start_date"] = r.StartDate.Time
	}
	if r.EndDate != nil {
		f["end_date"] = r.EndDate.Time
	}
	if r.Current != nil {
		f["is_current"] = *r.Current
	}
	if r.Grade != nil {
		f["grade"] = *r.Grade
	}
	if r.Description != nil {
		f["description"] = *r.Description
	}
	if r.Achievements != nil {
		f["achievements"] = datatypes.NewJSONSlice(*r.Achievements)
	}
	if r.InstitutionLogo != nil {
		f["institution_logo"] = *r.InstitutionLogo
	}
	return crud.CommonUpdates(f, r.DisplayOrder, r.IsActive)
}
