package userauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the payload embedded in an access token: the subject's
// numeric id and username plus the registered expiry. The registered
// subject mirrors the id as its decimal string.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"id"`
	Username string `json:"username,omitempty"`
}

// Expires returns the expiration time
func (c *AccessClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedTime returns the issued at time
func (c *AccessClaims) IssuedTime() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
