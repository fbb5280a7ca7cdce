package dto

import (
	"strings"

	"portfolio_backend/internals/features/crud"
	"portfolio_backend/internals/features/skills/model"
)

type CreateSkillRequest struct {
	Name              string  `json:"name" validate:"required,max=100"`
	Category          string  `json:"category" validate:"required,oneof=frontend backend database devops mobile tools soft-skills other"`
	Proficiency       int     `json:"proficiency" validate:"required,gte=1,lte=100"`
	YearsOfExperience float64 `json:"yearsOfExperience" validate:"gte=0,lte=50"`
	Icon              string  `json:"icon" validate:"max=500"`
	Description       string  `json:"description" validate:"max=500"`
	DisplayOrder      int     `json:"displayOrder"`
}

func (r CreateSkillRequest) ToModel() *model.SkillModel {
	return &model.SkillModel{
		Base:              crud.Base{IsActive: true, DisplayOrder: r.DisplayOrder},
		Name:              strings.TrimSpace(r.Name),
		Category:          r.Category,
		Proficiency:       r.Proficiency,
		YearsOfExperience: r.YearsOfExperience,
		Icon:              r.Icon,
		Description:       r.Description,
	}
}

type UpdateSkillRequest struct {
	Name              *string  `json:"name,omitempty" validate:"omitnil,min=1,max=100"`
	Category          *string  `json:"category,omitempty" validate:"omitnil,oneof=frontend backend database devops mobile tools soft-skills other"`
	Proficiency       *int     `json:"proficiency,omitempty" validate:"omitnil,gte=1,lte=100"`
	YearsOfExperience *float64 `json:"yearsOfExperience,omitempty" validate:"omitnil,gte=0,lte=50"`
	Icon              *string  `json:"icon,omitempty" validate:"omitnil,max=500"`
	Description       *string  `json:"description,omitempty" validate:"omitnil,max=500"`
	DisplayOrder      *int     `json:"displayOrder,omitempty"`
	IsActive          *bool    `json:"isActive,omitempty"`
}

func (r UpdateSkillRequest) ToUpdates() map[string]any {
	f := map[string]any{}
	if r.Name != nil {
		f["name"] = strings.TrimSpace(*r.Name)
	}
	if r.Category != nil {
		f["category"] = *r.Category
	}
	if r.Proficiency != nil {
		f["proficiency"] = *r.Proficiency
	}
	if r.YearsOfExperience != nil {
		f["years_of_experience"] = *r.YearsOfExperience
	}
	if r.Icon != nil {
		f["icon"] = *r.Icon
	}
	if r.Description != nil {
		f["description"] = *r.Description
	}
	return crud.CommonUpdates(f, r.DisplayOrder, r.IsActive)
}
