package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/query-desk/internal/domain"
	apperrors "github.com/spec-kit/query-desk/pkg/util"
)

// RequireClient gates client-only routes.
func RequireClient() fiber.Handler {
	return requireRole(domain.RoleClient)
}

// RequireSupport gates support-only routes, including the unrestricted
// ledger listing and status updates.
func RequireSupport() fiber.Handler {
	return requireRole(domain.RoleSupport)
}

func requireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Account == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.Account.Role != role {
			return apperrors.NewForbidden(string(role) + " role required")
		}
		return c.Next()
	}
}
