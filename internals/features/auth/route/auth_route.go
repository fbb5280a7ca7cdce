package route

import (
	"portfolio_backend/internals/features/auth/controller"
	"portfolio_backend/internals/features/deps"
	"portfolio_backend/internals/middlewares"

	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(api fiber.Router, d *deps.Deps) {
	cfg := d.Config
	ctrl := controller.NewAuthController(cfg.AdminEmail, cfg.AdminPasswordHash, cfg.JWTSecret, cfg.JWTTTL, cfg.IsProduction())

	r := api.Group("/auth")
	r.Post("/login", middlewares.LoginRateLimiter(d.RateStore), ctrl.Login)
	r.Post("/logout", ctrl.Logout)
	r.Get("/me", d.RequireAdmin, ctrl.Me)
}
