package userauth

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// principalLocalsKey is the fiber locals slot the gate writes into.
const principalLocalsKey = "auth_principal"

var principalCtxKey = &contextKey{"principal"}

type contextKey struct {
	name string
}

// WithPrincipal sets the Principal in the given context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// PrincipalFromContext finds the principal from the context.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	raw, ok := ctx.Value(principalCtxKey).(*Principal)
	return raw, ok
}

// PrincipalFromFiber extracts the principal stored by the gate for the
// current request.
func PrincipalFromFiber(c *fiber.Ctx) (*Principal, bool) {
	raw, ok := c.Locals(principalLocalsKey).(*Principal)
	return raw, ok
}
