package model

import "portfolio_backend/internals/features/crud"

var Categories = []string{"frontend", "backend", "database", "devops", "mobile", "tools", "soft-skills", "other"}

type SkillModel struct {
	crud.Base
	Name              string  `gorm:"type:varchar(100);not null" json:"name"`
	Category          string  `gorm:"type:varchar(20);not null;index" json:"category"`
	Proficiency       int     `gorm:"not null" json:"proficiency"`
	YearsOfExperience float64 `gorm:"not null;default:0" json:"yearsOfExperience"`
	Icon              string  `gorm:"type:text" json:"icon"`
	Description       string  `gorm:"type:varchar(500)" json:"description"`
}

func (SkillModel) TableName() string { return "skills" }
