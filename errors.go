package userauth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCreds     = "invalid_credentials"
	TextCodeInactiveAccount  = "inactive_account"
	TextCodeInvalidToken     = "invalid_token"
	TextCodeUnauthenticated  = "unauthenticated"
	TextCodeTokenExpired     = "token_expired"
	TextCodeTokenMalformed   = "token_malformed"
	TextCodeMissingSubject   = "token_missing_subject"
	TextCodeUserNotFound     = "user_not_found"
	TextCodePasswordMismatch = "password_mismatch"
	TextCodeRoleExists       = "role_exists"
	TextCodeUsernameTaken    = "username_taken"
	TextCodeEmptyPassword    = "empty_password"
	TextCodePasswordTooLong  = "password_too_long"
)

// ErrInvalidCredentials covers unknown usernames and wrong passwords alike,
// so a caller cannot enumerate which usernames exist.
var ErrInvalidCredentials = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrInactiveAccount is returned when the account exists but is deactivated.
var ErrInactiveAccount = errors.New("account is inactive", errors.CategoryAuth).
	WithTextCode(TextCodeInactiveAccount).
	WithCode(errors.CodeForbidden)

// ErrInvalidToken is the single outward-facing category for every token
// resolution failure; the internal errors below stay in logs only.
var ErrInvalidToken = errors.New("could not validate credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(errors.CodeUnauthorized)

// ErrUnauthenticated is returned when the request carries no bearer token.
var ErrUnauthenticated = errors.New("missing or malformed authorization header", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is the internal classification for an expired token.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is the internal classification for structure or
// signature failures.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrMissingSubject is the internal classification for a token whose
// identity claim is absent or of the wrong type.
var ErrMissingSubject = errors.New("token has no subject claim", errors.CategoryAuth).
	WithTextCode(TextCodeMissingSubject).
	WithCode(errors.CodeUnauthorized)

var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrPasswordMismatch is returned when a new password and its confirmation
// differ.
var ErrPasswordMismatch = errors.New("new password and confirmation do not match", errors.CategoryValidation).
	WithTextCode(TextCodePasswordMismatch).
	WithCode(errors.CodeBadRequest)

// ErrRoleExists is returned when the user already has a role record.
var ErrRoleExists = errors.New("user already has a role", errors.CategoryConflict).
	WithTextCode(TextCodeRoleExists).
	WithCode(errors.CodeConflict)

var ErrUsernameTaken = errors.New("username is already taken", errors.CategoryConflict).
	WithTextCode(TextCodeUsernameTaken).
	WithCode(errors.CodeConflict)

var ErrNoEmptyPassword = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

var ErrPasswordTooLong = errors.New("password exceeds the maximum supported length", errors.CategoryValidation).
	WithTextCode(TextCodePasswordTooLong).
	WithCode(errors.CodeBadRequest)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed")
}
