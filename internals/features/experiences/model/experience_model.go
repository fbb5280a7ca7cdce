package model

import (
	"time"

	"portfolio_backend/internals/features/crud"
	helper "portfolio_backend/internals/helpers"

	"gorm.io/datatypes"
)

var EmploymentTypes = []string{"full-time", "part-time", "contract", "freelance", "internship"}

type ExperienceModel struct {
	crud.Base
	Company          string                      `gorm:"type:varchar(100);not null" json:"company"`
	Position         string                      `gorm:"type:varchar(100);not null" json:"position"`
	Location         string                      `gorm:"type:varchar(100)" json:"location"`
	EmploymentType   string                      `gorm:"type:varchar(20);not null;default:full-time;index" json:"employmentType"`
	StartDate        time.Time                   `gorm:"not null" json:"startDate"`
	EndDate          *time.Time                  `json:"endDate"`
	Current          bool                        `gorm:"column:is_current;not null;default:false;index" json:"current"`
	Description      string                      `gorm:"type:text" json:"description"`
	Responsibilities datatypes.JSONSlice[string] `json:"responsibilities"`
	Technologies     datatypes.JSONSlice[string] `json:"technologies"`
	CompanyURL       string                      `gorm:"type:text" json:"companyUrl"`
	CompanyLogo      string                      `gorm:"type:text" json:"companyLogo"`
}

func (ExperienceModel) TableName() string { return "experiences" }

func (e *ExperienceModel) CheckInvariants() []helper.FieldViolation {
	v := crud.DateRange(e.StartDate, e.EndDate)
	if e.Current && e.EndDate != nil {
		v = append(v, helper.FieldViolation{Field: "endDate", Message: "must be empty while current is true"})
	}
	return v
}
