// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	LocIsAdmin    = "is_admin"
	LocAdminEmail = "admin_email"
	LocClaims     = "jwt_claims"

	RoleAdmin = "admin"
)

// AdminClaims is the payload of every admin token.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an admin token valid for ttl.
func IssueToken(secret, email string, ttl time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(secret) == "" {
		return "", time.Time{}, errors.New("jwt secret is empty")
	}
	now := time.Now()
	exp := now.Add(ttl)
	claims := AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseToken verifies signature, algorithm, expiry and role.
func ParseToken(secret, raw string) (*AdminClaims, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is empty")
	}
	claims := &AdminClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Role != RoleAdmin {
		return nil, errors.New("token is not an admin token")
	}
	return claims, nil
}

// RequireAdmin rejects the request unless it carries a valid admin token.
func RequireAdmin(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := extractBearerToken(c)
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - missing token")
		}
		claims, err := ParseToken(secret, raw)
		if err != nil {
			log.Printf("[WARN] admin token rejected on %s %s: %v", c.Method(), c.Path(), err)
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - invalid token")
		}
		storeClaims(c, claims)
		return c.Next()
	}
}

// OptionalAdmin marks the request as privileged when a valid admin token is
// present and lets every other request through as a public caller.
func OptionalAdmin(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw := extractBearerToken(c); raw != "" {
			if claims, err := ParseToken(secret, raw); err == nil {
				storeClaims(c, claims)
			}
		}
		return c.Next()
	}
}

// IsAdmin reports whether the current caller is privileged.
func IsAdmin(c *fiber.Ctx) bool {
	v, _ := c.Locals(LocIsAdmin).(bool)
	return v
}

func storeClaims(c *fiber.Ctx, claims *AdminClaims) {
	c.Locals(LocClaims, claims)
	c.Locals(LocIsAdmin, true)
	c.Locals(LocAdminEmail, claims.Subject)
}

// Authorization: Bearer xxx, falling back to the access_token cookie.
func extractBearerToken(c *fiber.Ctx) string {
	if authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return strings.TrimSpace(c.Cookies("access_token"))
}
