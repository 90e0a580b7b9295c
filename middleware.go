package userauth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// TokenFromHeader extracts the raw token from an Authorization header
// value using the configured scheme prefix.
func TokenFromHeader(header, scheme string) (string, error) {
	l := len(scheme)
	if l == 0 || len(header) <= l+1 {
		return "", ErrUnauthenticated
	}
	if !strings.EqualFold(header[:l], scheme) {
		return "", ErrUnauthenticated
	}
	return strings.TrimSpace(header[l:]), nil
}

// RequireAuth is the authorization gate: it extracts the bearer token,
// resolves it to a principal, and stores the principal in request scope.
// Missing tokens and failed resolutions both fail closed; the principal
// never outlives the request.
func RequireAuth(resolver SessionResolver, scheme string) fiber.Handler {
	if scheme == "" {
		scheme = DefaultAuthScheme
	}

	return func(c *fiber.Ctx) error {
		raw, err := TokenFromHeader(c.Get(fiber.HeaderAuthorization), scheme)
		if err != nil {
			return err
		}

		principal, err := resolver.Resolve(c.UserContext(), raw)
		if err != nil {
			return err
		}

		c.Locals(principalLocalsKey, principal)
		c.SetUserContext(WithPrincipal(c.UserContext(), principal))

		return c.Next()
	}
}

// RequireActive rejects requests whose resolved principal is deactivated.
// It must run after RequireAuth.
func RequireActive() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromFiber(c)
		if !ok {
			return ErrUnauthenticated
		}

		if !principal.Active {
			return ErrInactiveAccount
		}

		return c.Next()
	}
}
