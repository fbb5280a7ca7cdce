package dto

import (
	"strings"

	"portfolio_backend/internals/features/crud"
	"portfolio_backend/internals/features/projects/model"
	helper "portfolio_backend/internals/helpers"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ProjectImageRequest struct {
	URL       string `json:"url" validate:"required"`
	Alt       string `json:"alt" validate:"max=200"`
	IsPrimary bool   `json:"isPrimary"`
}

// ====================
// Create
// ====================

type CreateProjectRequest struct {
	Title            string                `json:"title" validate:"required,max=200"`
	Slug             string                `json:"slug" validate:"omitempty,max=220"`
	Description      string                `json:"description" validate:"required,max=5000"`
	ShortDescription string                `json:"shortDescription" validate:"max=300"`
	Category         string                `json:"category" validate:"required,oneof=web mobile desktop api library other"`
	Technologies     []string              `json:"technologies" validate:"required,min=1,dive,required,max=50"`
	Images           []ProjectImageRequest `json:"images" validate:"omitempty,dive"`
	GithubURL        string                `json:"githubUrl" validate:"omitempty,url"`
	LiveURL          string                `json:"liveUrl" validate:"omitempty,url"`
	Status           string                `json:"status" validate:"omitempty,oneof=planning in-progress completed on-hold"`
	Featured         bool                  `json:"featured"`
	StartDate        helper.Date           `json:"startDate" validate:"required"`
	EndDate          *helper.Date          `json:"endDate" validate:"omitempty,after_field=StartDate"`
	DisplayOrder     int                   `json:"displayOrder"`
}

func (r CreateProjectRequest) ToModel() *model.ProjectModel {
	status := r.Status
	if status == "" {
		status = model.StatusCompleted
	}
	return &model.ProjectModel{
		Base:             crud.Base{IsActive: true, DisplayOrder: r.DisplayOrder},
		Title:            strings.TrimSpace(r.Title),
		Slug:             r.Slug,
		Description:      r.Description,
		ShortDescription: r.ShortDescription,
		Category:         r.Category,
		Technologies:     datatypes.NewJSONSlice(r.Technologies),
		Images:           ToImages(r.Images),
		GithubURL:        r.GithubURL,
		LiveURL:          r.LiveURL,
		Status:           status,
		Featured:         r.Featured,
		StartDate:        r.StartDate.Time,
		EndDate:          r.EndDate.Ptr(),
	}
}

// ToImages assigns ids and makes the first image primary when none is.
func ToImages(in []ProjectImageRequest) datatypes.JSONSlice[model.ProjectImage] {
	out := make([]model.ProjectImage, 0, len(in))
	hasPrimary := false
	for _, img := range in {
		primary := img.IsPrimary && !hasPrimary
		hasPrimary = hasPrimary || primary
		out = append(out, model.ProjectImage{ID: uuid.NewString(), URL: img.URL, Alt: img.Alt, IsPrimary: primary})
	}
	if !hasPrimary && len(out) > 0 {
		out[0].IsPrimary = true
	}
	return datatypes.NewJSONSlice(out)
}

// ====================
// Update (partial)
// ====================

type UpdateProjectRequest struct {
	Title            *string                `json:"title,omitempty" validate:"omitnil,min=1,max=200"`
	Slug             *string                `json:"slug,omitempty" validate:"omitnil,min=1,max=220"`
	Description      *string                `json:"description,omitempty" validate:"omitnil,min=1,max=5000"`
	ShortDescription *string                `json:"shortDescription,omitempty" validate:"omitnil,max=300"`
	Category         *string                `json:"category,omitempty" validate:"omitnil,oneof=web mobile desktop api library other"`
	Technologies     *[]string              `json:"technologies,omitempty" validate:"omitnil,min=1,dive,required,max=50"`
	Images           *[]ProjectImageRequest `json:"images,omitempty" validate:"omitnil,dive"`
	GithubURL        *string                `json:"githubUrl,omitempty" validate:"omitnil,omitempty,url"`
	LiveURL          *string                `json:"liveUrl,omitempty" validate:"omitnil,omitempty,url"`
	Status           *string                `json:"status,omitempty" validate:"omitnil,oneof=planning in-progress completed on-hold"`
	Featured         *bool                  `json:"featured,omitempty"`
	StartDate        *helper.Date           `json:"startDate,omitempty"`
	EndDate          *helper.Date           `json:"endDate,omitempty" validate:"omitnil,after_field=StartDate"`
	DisplayOrder     *int                   `json:"displayOrder,omitempty"`
	IsActive         *bool                  `json:"isActive,omitempty"`
}

func (r UpdateProjectRequest) ToUpdates() map[string]any {
	f := map[string]any{}
	if r.Title != nil {
		f["title"] = strings.TrimSpace(*r.Title)
	}
	if r.Slug != nil {
		f["slug"] = *r.Slug
	}
	if r.Description != nil {
		f["description"] = *r.Description
	}
	if r.ShortDescription != nil {
		f["short_description"] = *r.ShortDescription
	}
	if r.Category != nil {
		f["category"] = *r.Category
	}
	if r.Technologies != nil {
		f["technologies"] = datatypes.NewJSONSlice(*r.Technologies)
	}
	if r.Images != nil {
		f["images"] = ToImages(*r.Images)
	}
	if r.GithubURL != nil {
		f["github_url"] = *r.GithubURL
	}
	if r.LiveURL != nil {
		f["live_url"] = *r.LiveURL
	}
	if r.Status != nil {
		f["status"] = *r.Status
	}
	if r.Featured != nil {
		f["featured"] = *r.Featured
	}
	if r.StartDate != nil {
		f["start_date"] = r.StartDate.Time
	}
	if r.EndDate != nil {
		f["end_date"] = r.EndDate.Time
	}
	return crud.CommonUpdates(f, r.DisplayOrder, r.IsActive)
}
