package dto

import (
	"strings"

	"portfolio_backend/internals/features/crud"
	"portfolio_backend/internals/features/profile/model"

	"gorm.io/datatypes"
)

type SocialLinksRequest struct {
	Github   string `json:"github" validate:"omitempty,url"`
	Linkedin string `json:"linkedin" validate:"omitempty,url"`
	Twitter  string `json:"twitter" validate:"omitempty,url"`
	Website  string `json:"website" validate:"omitempty,url"`
	Other    string `json:"other" validate:"omitempty,url"`
}

func (s SocialLinksRequest) toModel() datatypes.JSONType[model.SocialLinks] {
	return datatypes.NewJSONType(model.SocialLinks(s))
}

// CreateProfileRequest is used by PUT when no profile exists yet.
type CreateProfileRequest struct {
	Name              string             `json:"name" validate:"required,max=100"`
	Title             string             `json:"title" validate:"required,max=150"`
	Bio               string             `json:"bio" validate:"required,max=2000"`
	Email             string             `json:"email" validate:"required,email"`
	Phone             string             `json:"phone" validate:"max=30"`
	Location          string             `json:"location" validate:"max=100"`
	Avatar            string             `json:"avatar"`
	Resume            string             `json:"resume"`
	SocialLinks       SocialLinksRequest `json:"socialLinks"`
	YearsOfExperience int                `json:"yearsOfExperience" validate:"gte=0,lte=80"`
}

func (r CreateProfileRequest) ToModel() *model.ProfileModel {
	return &model.ProfileModel{
		Base:              crud.Base{IsActive: true},
		Singleton:         true,
		Name:              strings.TrimSpace(r.Name),
		Title:             strings.TrimSpace(r.Title),
		Bio:               r.Bio,
		Email:             strings.ToLower(strings.TrimSpace(r.Email)),
		Phone:             r.Phone,
		Location:          r.Location,
		Avatar:            r.Avatar,
		Resume:            r.Resume,
		SocialLinks:       r.SocialLinks.toModel(),
		YearsOfExperience: r.YearsOfExperience,
	}
}

// ToUpdates overwrites every field of an existing profile, for a create
// that lost the race against a concurrent one.
func (r CreateProfileRequest) ToUpdates() map[string]any {
	m := r.ToModel()
	return map[string]any{
		"name":                m.Name,
		"title":               m.Title,
		"bio":                 m.Bio,
		"email":               m.Email,
		"phone":               m.Phone,
		"location":            m.Location,
		"avatar":              m.Avatar,
		"resume":              m.Resume,
		"social_links":        m.SocialLinks,
		"years_of_experience": m.YearsOfExperience,
	}
}

type UpdateProfileRequest struct {
	Name              *string             `json:"name,omitempty" validate:"omitnil,min=1,max=100"`
	Title             *string             `json:"title,omitempty" validate:"omitnil,min=1,max=150"`
	Bio               *string             `json:"bio,omitempty" validate:"omitnil,min=1,max=2000"`
	Email             *string             `json:"email,omitempty" validate:"omitnil,email"`
	Phone             *string             `json:"phone,omitempty" validate:"omitnil,max=30"`
	Location          *string             `json:"location,omitempty" validate:"omitnil,max=100"`
	Avatar            *string             `json:"avatar,omitempty"`
	Resume            *string             `json:"resume,omitempty"`
	SocialLinks       *SocialLinksRequest `json:"socialLinks,omitempty"`
	YearsOfExperience *int                `json:"yearsOfExperience,omitempty" validate:"omitnil,gte=0,lte=80"`
}

func (r UpdateProfileRequest) ToUpdates() map[string]any {
	f := map[string]any{}
	if r.Name != nil {
		f["name"] = strings.TrimSpace(*r.Name)
	}
	if r.Title != nil {
		f["title"] = strings.TrimSpace(*r.Title)
	}
	if r.Bio != nil {
		f["bio"] = *r.Bio
	}
	if r.Email != nil {
		f["email"] = strings.ToLower(strings.TrimSpace(*r.Email))
	}
	if r.Phone != nil {
		f["phone"] = *r.Phone
	}
	if r.Location != nil {
		f["location"] = *r.Location
	}
	if r.Avatar != nil {
		f["avatar"] = *r.Avatar
	}
	if r.Resume != nil {
		f["resume"] = *r.Resume
	}
	if r.SocialLinks != nil {
		f["social_links"] = r.SocialLinks.toModel()
	}
	if r.YearsOfExperience != nil {
		f["years_of_experience"] = *r.YearsOfExperience
	}
	return f
}
