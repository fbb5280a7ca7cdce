package client

import (
	"net/url"

	authDTO "portfolio_backend/internals/features/auth/dto"
	contactDTO "portfolio_backend/internals/features/contacts/dto"
	contactModel "portfolio_backend/internals/features/contacts/model"
	educationDTO "portfolio_backend/internals/features/educations/dto"
	educationModel "portfolio_backend/internals/features/educations/model"
	experienceDTO "portfolio_backend/internals/features/experiences/dto"
	experienceModel "portfolio_backend/internals/features/experiences/model"
	profileDTO "portfolio_backend/internals/features/profile/dto"
	profileModel "portfolio_backend/internals/features/profile/model"
	projectDTO "portfolio_backend/internals/features/projects/dto"
	projectModel "portfolio_backend/internals/features/projects/model"
	skillDTO "portfolio_backend/internals/features/skills/dto"
	skillModel "portfolio_backend/internals/features/skills/model"
	helper "portfolio_backend/internals/helpers"
	"portfolio_backend/internals/helpers/oss"
)

// Cache namespaces, one per entity.
const (
	NSProfile    = "profile"
	NSProjects   = "projects"
	NSSkills     = "skills"
	NSExperience = "experience"
	NSEducation  = "education"
	NSContact    = "contact"
)

type (
	Pagination = helper.Pagination
	Date       = helper.Date

	ProfileModel         = profileModel.ProfileModel
	CreateProfileRequest = profileDTO.CreateProfileRequest
	UpdateProfileRequest = profileDTO.UpdateProfileRequest

	ProjectModel         = projectModel.ProjectModel
	ProjectImage         = projectModel.ProjectImage
	CreateProjectRequest = projectDTO.CreateProjectRequest
	UpdateProjectRequest = projectDTO.UpdateProjectRequest

	SkillModel         = skillModel.SkillModel
	CreateSkillRequest = skillDTO.CreateSkillRequest
	UpdateSkillRequest = skillDTO.UpdateSkillRequest

	ExperienceModel         = experienceModel.ExperienceModel
	CreateExperienceRequest = experienceDTO.CreateExperienceRequest
	UpdateExperienceRequest = experienceDTO.UpdateExperienceRequest

	EducationModel         = educationModel.EducationModel
	CreateEducationRequest = educationDTO.CreateEducationRequest
	UpdateEducationRequest = educationDTO.UpdateEducationRequest

	ContactMessage        = contactModel.ContactModel
	SubmitContactRequest  = contactDTO.SubmitContactRequest
	SubmitContactResponse = contactDTO.SubmitContactResponse
	ContactStats          = contactDTO.ContactStats

	LoginRequest  = authDTO.LoginRequest
	LoginResponse = authDTO.LoginResponse
	AdminUser     = authDTO.AdminUser

	StoredFile = oss.StoredFile
)

// ListQuery is the page/sort/search/filter part of a list request.
type ListQuery struct {
	Page    int
	Limit   int
	Sort    string
	Search  string
	Filters map[string]string
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v["page"] = []string{itoa(q.Page)}
	}
	if q.Limit > 0 {
		v["limit"] = []string{itoa(q.Limit)}
	}
	if q.Sort != "" {
		v["sort"] = []string{q.Sort}
	}
	if q.Search != "" {
		v["search"] = []string{q.Search}
	}
	for k, f := range q.Filters {
		v[k] = []string{f}
	}
	return v
}

// Page is one page of a list result. Items are shared with the cache and
// must be treated as read-only.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}
