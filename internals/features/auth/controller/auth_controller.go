package controller

import (
	"crypto/subtle"
	"log"
	"strings"
	"time"

	"portfolio_backend/internals/features/auth/dto"
	helper "portfolio_backend/internals/helpers"
	"portfolio_backend/internals/middlewares/auth"
	"portfolio_backend/internals/schemas"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// AuthController signs in the single site administrator configured through
// ADMIN_EMAIL / ADMIN_PASSWORD_HASH.
type AuthController struct {
	AdminEmail   string
	PasswordHash string
	Secret       string
	TTL          time.Duration
	SecureCookie bool
}

func NewAuthController(email, hash, secret string, ttl time.Duration, secureCookie bool) *AuthController {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthController{
		AdminEmail:   strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Secret:       secret,
		TTL:          ttl,
		SecureCookie: secureCookie,
	}
}

// ======================
// POST /api/auth/login
// ======================
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := helper.DecodeAndValidate(c, schemas.Login, &in); err != nil {
		return err
	}
	if ctrl.AdminEmail == "" || ctrl.PasswordHash == "" || ctrl.Secret == "" {
		log.Println("[WARN] login attempted but admin credentials are not configured")
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(ctrl.AdminEmail)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(ctrl.PasswordHash), []byte(in.Password))
	if !emailOK || passErr != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
	}

	token, exp, err := auth.IssueToken(ctrl.Secret, ctrl.AdminEmail, ctrl.TTL)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    token,
		HTTPOnly: true,
		Secure:   ctrl.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		Expires:  exp,
	})
	return helper.JsonOK(c, "Login successful", dto.LoginResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      dto.AdminUser{Email: ctrl.AdminEmail, Role: auth.RoleAdmin},
	})
}

// ======================
// GET /api/auth/me
// ======================
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	email, _ := c.Locals(auth.LocAdminEmail).(string)
	return helper.JsonOK(c, "", dto.AdminUser{Email: email, Role: auth.RoleAdmin})
}

// ======================
// POST /api/auth/logout
// ======================
func (ctrl *AuthController) Logout(c *fiber.Ctx) error {
	c.ClearCookie("access_token")
	return helper.JsonOK(c, "Logged out", nil)
}
