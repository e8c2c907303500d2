package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/validation"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

// parseBody decodes the request body into out and, when v is set, checks
// its validate tags.
func parseBody(c *fiber.Ctx, v *validation.Validator, out any) error {
	if len(c.Body()) == 0 {
		return apperrors.NewValidationError("request body required", nil)
	}
	if err := c.BodyParser(out); err != nil {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return err
		}
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if v == nil {
		return nil
	}
	return v.Struct(out)
}

func callerIdentity(c *fiber.Ctx) (domain.Identity, error) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return domain.Identity{}, apperrors.NewUnauthorized("unauthorized")
	}
	return *identity, nil
}
