// Package userauth implements username/password account management with
// stateless JWT sessions on top of bun and fiber.
//
// The package is organized around a small set of collaborators: the
// PasswordHasher pins bcrypt with a process wide pepper, the TokenService
// signs and decodes HS256 access tokens, and the Authenticator ties both
// to a UserStore to run login, token resolution, and password rotation.
// HTTPController exposes the whole surface as a JSON API under /api.
package userauth
