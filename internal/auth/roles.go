package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/domain"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

// AccessLevel is the minimum privilege a route declares.
type AccessLevel int

const (
	AnyAuthenticated AccessLevel = iota
	AdminOnly
)

// Authorize decides whether identity satisfies level. A missing identity is
// Unauthenticated (401); an insufficient role is Forbidden (403).
func Authorize(identity *domain.Identity, level AccessLevel) error {
	if identity == nil || identity.UserID == "" || !identity.Role.Valid() {
		return apperrors.NewUnauthorized("unauthorized")
	}
	switch level {
	case AnyAuthenticated:
		return nil
	case AdminOnly:
		if identity.IsAdmin() {
			return nil
		}
		return apperrors.NewForbidden("admin role required")
	default:
		return apperrors.NewForbidden("access denied")
	}
}

// Require ensures the caller attached by Authenticator meets level.
func Require(level AccessLevel) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, _ := IdentityFromContext(c)
		if err := Authorize(identity, level); err != nil {
			return err
		}
		return c.Next()
	}
}
