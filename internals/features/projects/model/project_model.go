package model

import (
	"time"

	"portfolio_backend/internals/features/crud"
	helper "portfolio_backend/internals/helpers"

	"gorm.io/datatypes"
)

var (
	Categories = []string{"web", "mobile", "desktop", "api", "library", "other"}
	Statuses   = []string{"planning", "in-progress", "completed", "on-hold"}
)

const StatusCompleted = "completed"

type ProjectImage struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Alt          string `json:"alt"`
	IsPrimary    bool   `json:"isPrimary"`
}

type ProjectModel struct {
	crud.Base
	Title            string                           `gorm:"type:varchar(200);not null" json:"title"`
	Slug             string                           `gorm:"type:varchar(220);not null;uniqueIndex" json:"slug"`
	Description      string                           `gorm:"type:text;not null" json:"description"`
	ShortDescription string                           `gorm:"type:varchar(300)" json:"shortDescription"`
	Category         string                           `gorm:"type:varchar(20);not null;index" json:"category"`
	Technologies     datatypes.JSONSlice[string]       `json:"technologies"`
	Images           datatypes.JSONSlice[ProjectImage] `json:"images"`
	GithubURL        string                           `gorm:"type:text" json:"githubUrl"`
	LiveURL          string                           `gorm:"type:text" json:"liveUrl"`
	Status           string                           `gorm:"type:varchar(20);not null;default:completed;index" json:"status"`
	Featured         bool                             `gorm:"not null;default:false;index" json:"featured"`
	StartDate        time.Time                        `gorm:"not null" json:"startDate"`
	EndDate          *time.Time                       `json:"endDate"`
}

func (ProjectModel) TableName() string { return "projects" }

func (p *ProjectModel) CheckInvariants() []helper.FieldViolation {
	return crud.DateRange(p.StartDate, p.EndDate)
}
