package dto

import (
	"strings"

	"portfolio_backend/internals/features/crud"
	"portfolio_backend/internals/features/experiences/model"
	helper "portfolio_backend/internals/helpers"

	"gorm.io/datatypes"
)

type CreateExperienceRequest struct {
	Company          string       `json:"company" validate:"required,max=100"`
	Position         string       `json:"position" validate:"required,max=100"`
	Location         string       `json:"location" validate:"max=100"`
	EmploymentType   string       `json:"employmentType" validate:"omitempty,oneof=full-time part-time contract freelance internship"`
	StartDate        helper.Date  `json:"startDate" validate:"required"`
	EndDate          *helper.Date `json:"endDate" validate:"omitempty,after_field=StartDate"`
	Current          bool         `json:"current"`
	Description      string       `json:"description" validate:"max=2000"`
	Responsibilities []string     `json:"responsibilities" validate:"omitempty,dive,required,max=500"`
	Technologies     []string     `json:"technologies" validate:"omitempty,dive,required,max=50"`
	CompanyURL       string       `json:"companyUrl" validate:"omitempty,url"`
	CompanyLogo      string       `json:"companyLogo"`
	DisplayOrder     int          `json:"displayOrder"`
}

func (r CreateExperienceRequest) ToModel() *model.ExperienceModel {
	et := r.EmploymentType
	if et == "" {
		et = "full-time"
	}
	end := r.EndDate.Ptr()
	if r.Current {
		end = nil
	}
	return &model.ExperienceModel{
		Base:             crud.Base{IsActive: true, DisplayOrder: r.DisplayOrder},
		Company:          strings.TrimSpace(r.Company),
		Position:         strings.TrimSpace(r.Position),
		Location:         r.Location,
		EmploymentType:   et,
		StartDate:        r.StartDate.Time,
		EndDate:          end,
		Current:          r.Current,
		Description:      r.Description,
		Responsibilities: datatypes.NewJSONSlice(nonNil(r.Responsibilities)),
		Technologies:     datatypes.NewJSONSlice(nonNil(r.Technologies)),
		CompanyURL:       r.CompanyURL,
		CompanyLogo:      r.CompanyLogo,
	}
}

type UpdateExperienceRequest struct {
	Company          *string      `json:"company,omitempty" validate:"omitnil,min=1,max=100"`
	Position         *string      `json:"position,omitempty" validate:"omitnil,min=1,max=100"`
	Location         *string      `json:"location,omitempty" validate:"omitnil,max=100"`
	EmploymentType   *string      `json:"employmentType,omitempty" validate:"omitnil,oneof=full-time part-time contract freelance internship"`
	StartDate        *helper.Date `json:"startDate,omitempty"`
	EndDate          *helper.Date `json:"endDate,omitempty" validate:"omitnil,after_field=StartDate"`
	Current          *bool        `json:"current,omitempty"`
	Description      *string      `json:"description,omitempty" validate:"omitnil,max=2000"`
	Responsibilities *[]string    `json:"responsibilities,omitempty" validate:"omitnil,dive,required,max=500"`
	Technologies     *[]string    `json:"technologies,omitempty" validate:"omitnil,dive,required,max=50"`
	CompanyURL       *string      `json:"companyUrl,omitempty" validate:"omitnil,omitempty,url"`
	CompanyLogo      *string      `json:"companyLogo,omitempty"`
	DisplayOrder     *int         `json:"displayOrder,omitempty"`
	IsActive         *bool        `json:"isActive,omitempty"`
}

func (r UpdateExperienceRequest) ToUpdates() map[string]any {
	f := map[string]any{}
	if r.Company != nil {
		f["company"] = strings.TrimSpace(*r.Company)
	}
	if r.Position != nil {
		f["position"] = strings.TrimSpace(*r.Position)
	}
	if r.Location != nil {
		f["location"] = *r.Location
	}
	if r.EmploymentType != nil {
		f["employment_type"] = *r.EmploymentType
	}
	if r.StartDate != nil {
		f["start_date"] = r.StartDate.Time
	}
	if r.EndDate != nil {
		f["end_date"] = r.EndDate.Time
	}
	if r.Current != nil {
		f["is_current"] = *r.Current
		if *r.Current {
			f["end_date"] = nil
		}
	}
	if r.Description != nil {
		f["description"] = *r.Description
	}
	if r.Responsibilities != nil {
		f["responsibilities"] = datatypes.NewJSONSlice(*r.Responsibilities)
	}
	if r.Technologies != nil {
		f["technologies"] = datatypes.NewJSONSlice(*r.Technologies)
	}
	if r.CompanyURL != nil {
		f["company_url"] = *r.CompanyURL
	}
	if r.CompanyLogo != nil {
		f["company_logo"] = *r.CompanyLogo
	}
	return crud.CommonUpdates(f, r.DisplayOrder, r.IsActive)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
