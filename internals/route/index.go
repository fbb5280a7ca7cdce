package routes

import (
	"log"
	"time"

	authRoute "portfolio_backend/internals/features/auth/route"
	contactModel "portfolio_backend/internals/features/contacts/model"
	contactRoute "portfolio_backend/internals/features/contacts/route"
	"portfolio_backend/internals/features/deps"
	educationModel "portfolio_backend/internals/features/educations/model"
	educationRoute "portfolio_backend/internals/features/educations/route"
	experienceModel "portfolio_backend/internals/features/experiences/model"
	experienceRoute "portfolio_backend/internals/features/experiences/route"
	profileModel "portfolio_backend/internals/features/profile/model"
	profileRoute "portfolio_backend/internals/features/profile/route"
	projectModel "portfolio_backend/internals/features/projects/model"
	projectRoute "portfolio_backend/internals/features/projects/route"
	skillModel "portfolio_backend/internals/features/skills/model"
	skillRoute "portfolio_backend/internals/features/skills/route"
	uploadRoute "portfolio_backend/internals/features/uploads/route"
	"portfolio_backend/internals/middlewares"
	"portfolio_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
)

// Models lists every persisted entity, in migration order.
func Models() []any {
	return []any{
		&profileModel.ProfileModel{},
		&projectModel.ProjectModel{},
		&skillModel.SkillModel{},
		&experienceModel.ExperienceModel{},
		&educationModel.EducationModel{},
		&contactModel.ContactModel{},
	}
}

func SetupRoutes(app *fiber.App, d *deps.Deps) {
	BaseRoutes(app, d)

	api := app.Group("/api", auth.OptionalAdmin(d.Config.JWTSecret))
	if d.Config.GlobalRateLimitMax > 0 {
		api.Use(middlewares.GlobalRateLimiter(middlewares.RateLimitOptions{
			Max:        d.Config.GlobalRateLimitMax,
			Expiration: 15 * time.Minute,
			Storage:    d.RateStore,
		}))
	}

	log.Println("[INFO] Setting up feature routes...")
	authRoute.AuthRoutes(api, d)
	profileRoute.ProfileRoutes(api, d)
	projectRoute.ProjectRoutes(api, d)
	skillRoute.SkillRoutes(api, d)
	experienceRoute.ExperienceRoutes(api, d)
	educationRoute.EducationRoutes(api, d)
	contactRoute.ContactRoutes(api, d)
	uploadRoute.UploadRoutes(api, d)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Route "+c.OriginalURL()+" not found")
	})
}
