package seeds

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"path/filepath"
	"strings"

	educationDTO "portfolio_backend/internals/features/educations/dto"
	educationModel "portfolio_backend/internals/features/educations/model"
	experienceDTO "portfolio_backend/internals/features/experiences/dto"
	experienceModel "portfolio_backend/internals/features/experiences/model"
	projectDTO "portfolio_backend/internals/features/projects/dto"
	projectModel "portfolio_backend/internals/features/projects/model"
	skillDTO "portfolio_backend/internals/features/skills/dto"
	skillModel "portfolio_backend/internals/features/skills/model"
	helper "portfolio_backend/internals/helpers"
	"portfolio_backend/internals/seeds/content"
	"portfolio_backend/internals/seeds/profile"

	"gorm.io/gorm"
)

// RunAllSeeds loads the demo content found in dir. Missing files are
// skipped and rows already present are left alone, so it is safe on every
// start.
func RunAllSeeds(ctx context.Context, db *gorm.DB, dir string) error {
	path := func(name string) string { return filepath.Join(dir, name) }

	//* Profile
	if _, err := profile.SeedProfileFromJSON(ctx, db, path("profile.json")); fatal(err) {
		return err
	}

	//* Projects
	if _, err := content.SeedFromJSON(ctx, db, path("projects.json"), content.Plan[projectModel.ProjectModel, projectDTO.CreateProjectRequest]{
		Name: "projects",
		Exists: func(tx *gorm.DB, in projectDTO.CreateProjectRequest) (bool, error) {
			return content.CountWhere(tx, &projectModel.ProjectModel{}, "slug = ?", projectSlug(in))
		},
		Prepare: func(tx *gorm.DB, m *projectModel.ProjectModel) error {
			if s := helper.Slugify(m.Slug, helper.DefaultSlugMaxLen); s != "" {
				m.Slug = s
				return nil
			}
			s, err := helper.GenerateUniqueSlug(tx.Statement.Context, tx, helper.SlugOptions{Table: "projects", SlugColumn: "slug"}, m.Title)
			m.Slug = s
			return err
		},
	}); fatal(err) {
		return err
	}

	//* Skills
	if _, err := content.SeedFromJSON(ctx, db, path("skills.json"), content.Plan[skillModel.SkillModel, skillDTO.CreateSkillRequest]{
		Name: "skills",
		Exists: func(tx *gorm.DB, in skillDTO.CreateSkillRequest) (bool, error) {
			return content.CountWhere(tx, &skillModel.SkillModel{}, "LOWER(name) = ?", strings.ToLower(strings.TrimSpace(in.Name)))
		},
	}); fatal(err) {
		return err
	}

	//* Experience
	if _, err := content.SeedFromJSON(ctx, db, path("experience.json"), content.Plan[experienceModel.ExperienceModel, experienceDTO.CreateExperienceRequest]{
		Name: "experience",
		Exists: func(tx *gorm.DB, in experienceDTO.CreateExperienceRequest) (bool, error) {
			return content.CountWhere(tx, &experienceModel.ExperienceModel{}, "company = ? AND position = ?",
				strings.TrimSpace(in.Company), strings.TrimSpace(in.Position))
		},
	}); fatal(err) {
		return err
	}

	//* Education
	if _, err := content.SeedFromJSON(ctx, db, path("education.json"), content.Plan[educationModel.EducationModel, educationDTO.CreateEducationRequest]{
		Name: "education",
		Exists: func(tx *gorm.DB, in educationDTO.CreateEducationRequest) (bool, error) {
			return content.CountWhere(tx, &educationModel.EducationModel{}, "institution = ? AND degree = ?",
				strings.TrimSpace(in.Institution), strings.TrimSpace(in.Degree))
		},
	}); fatal(err) {
		return err
	}
	return nil
}

func projectSlug(in projectDTO.CreateProjectRequest) string {
	if s := helper.Slugify(in.Slug, helper.DefaultSlugMaxLen); s != "" {
		return s
	}
	return helper.Slugify(in.Title, helper.DefaultSlugMaxLen)
}

// fatal reports whether err must abort seeding; a missing file does not.
func fatal(err error) bool {
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("[SEED] %v, skipping", err)
		return false
	}
	return err != nil
}
