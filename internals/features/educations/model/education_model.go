package model

import (
	"time"

	"portfolio_backend/internals/features/crud"
	helper "portfolio_backend/internals/helpers"

	"gorm.io/datatypes"
)

var Levels = []string{"high-school", "associate", "bachelor", "master", "doctorate", "certificate", "other"}

type EducationModel struct {
	crud.Base
	Institution     string                      `gorm:"type:varchar(150);not null" json:"institution"`
	Degree          string                      `gorm:"type:varchar(150);not null" json:"degree"`
	FieldOfStudy    string                      `gorm:"type:varchar(150)" json:"fieldOfStudy"`
	Level           string                      `gorm:"type:varchar(20);not null;index" json:"level"`
	Location        string                      `gorm:"type:varchar(100)" json:"location"`
	StartDate       time.Time                   `gorm:"not null" json:"startDate"`
	EndDate         *time.Time                  `json:"endDate"`
	Current         bool                        `gorm:"column:is_current;not null;default:false" json:"current"`
	Grade           string                      `gorm:"type:varchar(50)" json:"grade"`
	Description     string                      `gorm:"type:text" json:"description"`
	Achievements    datatypes.JSONSlice[string] `json:"achievements"`
	InstitutionLogo string                      `gorm:"type:text" json:"institutionLogo"`
}

func (EducationModel) TableName() string { return "educations" }

func (e *EducationModel) CheckInvariants() []helper.FieldViolation {
	return crud.DateRange(e.StartDate, e.EndDate)
}
