package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/todo-service/pkg/util/errorutil"
)

// RequirePrincipal rejects requests that reached a handler without passing
// through the gate, e.g. when a protected route was listed as public.
func RequirePrincipal() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized(apperrors.CodeMissingToken, ErrMissingCredential)
		}
		return c.Next()
	}
}
