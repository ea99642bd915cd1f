package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/donation-service/internal/domain"
)

// RequireRole routes the caller to exactly one role surface: a principal
// whose role is not in the allowed set is rejected, and an anonymous caller
// lands on the unauthenticated flow.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Identity.Role]; !exists {
			return fiber.NewError(http.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}

// RequireRequester restricts a route to the roles that may open emergency
// requests.
func RequireRequester() fiber.Handler {
	return RequireRole(domain.RoleHospital, domain.RoleBloodBank, domain.RoleAdmin)
}

// RequireAuthenticated ensures a caller is logged in, regardless of role.
func RequireAuthenticated() fiber.Handler {
	return RequireRole()
}
