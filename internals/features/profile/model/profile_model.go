package model

import (
	"portfolio_backend/internals/features/crud"

	"gorm.io/datatypes"
)

type SocialLinks struct {
	Github   string `json:"github,omitempty"`
	Linkedin string `json:"linkedin,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Website  string `json:"website,omitempty"`
	Other    string `json:"other,omitempty"`
}

// ProfileModel is a singleton: the partial unique index on Singleton
// allows at most one active row.
type ProfileModel struct {
	crud.Base
	Singleton         bool                            `gorm:"not null;default:true;uniqueIndex:uq_profiles_active_singleton,where:is_active = true" json:"-"`
	Name              string                          `gorm:"type:varchar(100);not null" json:"name"`
	Title             string                          `gorm:"type:varchar(150);not null" json:"title"`
	Bio               string                          `gorm:"type:text;not null" json:"bio"`
	Email             string                          `gorm:"type:varchar(255);not null" json:"email"`
	Phone             string                          `gorm:"type:varchar(30)" json:"phone"`
	Location          string                          `gorm:"type:varchar(100)" json:"location"`
	Avatar            string                          `gorm:"type:text" json:"avatar"`
	Resume            string                          `gorm:"type:text" json:"resume"`
	SocialLinks       datatypes.JSONType[SocialLinks] `json:"socialLinks"`
	YearsOfExperience int                             `gorm:"not null;default:0" json:"yearsOfExperience"`
}

func (ProfileModel) TableName() string { return "profiles" }
