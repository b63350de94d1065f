package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"accidentapi/internal/model"
	"accidentapi/internal/service"
)

// UserLocalKey stores the verified token claims in Fiber locals.
const UserLocalKey = "auth_user"

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*service.Claims, error)
}

// UserFromCtx returns the authenticated user's claims, or nil.
func UserFromCtx(c *fiber.Ctx) *service.Claims {
	claims, _ := c.Locals(UserLocalKey).(*service.Claims)
	return claims
}

// IsAdmin reports whether the request carries admin claims.
func IsAdmin(c *fiber.Ctx) bool {
	u := UserFromCtx(c)
	return u != nil && u.Role == model.RoleAdmin
}

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// OptionalAuth attaches claims when a valid bearer token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tok := bearerToken(c); tok != "" {
			if claims, err := v.Verify(tok); err == nil {
				c.Locals(UserLocalKey, claims)
			}
		}
		return c.Next()
	}
}

// RequireAuth rejects requests without a valid bearer token.
// onFail writes the response, so the error envelope stays in the handler package.
func RequireAuth(v TokenVerifier, onFail fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearerToken(c)
		if tok == "" {
			return onFail(c)
		}
		claims, err := v.Verify(tok)
		if err != nil {
			return onFail(c)
		}
		c.Locals(UserLocalKey, claims)
		return c.Next()
	}
}

// RequireRole allows the request only for one of roles. It must run after RequireAuth.
func RequireRole(onFail fiber.Handler, roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := UserFromCtx(c)
		if u == nil {
			return onFail(c)
		}
		for _, r := range roles {
			if u.Role == r {
				return c.Next()
			}
		}
		return onFail(c)
	}
}
