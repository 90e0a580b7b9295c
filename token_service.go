package userauth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenService encodes and decodes signed, expiring access tokens. Both
// operations are pure functions of their inputs plus the signing key, so a
// single instance is safe for concurrent use.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
	logger     Logger
}

// NewTokenService creates a new TokenService instance. A non-positive ttl
// falls back to DefaultTokenTTL.
func NewTokenService(signingKey []byte, ttl time.Duration, logger Logger) *TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		signingKey: signingKey,
		ttl:        ttl,
		logger:     logger,
	}
}

// Issue creates a signed token for the given subject using the default ttl.
func (ts *TokenService) Issue(userID int64, username string) (string, error) {
	return ts.IssueWithTTL(userID, username, ts.ttl)
}

// IssueWithTTL creates a signed token expiring at now + ttl.
func (ts *TokenService) IssueWithTTL(userID int64, username string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = ts.ttl
	}

	now := time.Now()
	claims := &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:   userID,
		Username: username,
	}

	return ts.SignClaims(claims)
}

// SignClaims signs the given claims using the configured signing key.
func (ts *TokenService) SignClaims(claims *AccessClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}

	return signedString, nil
}

// Decode verifies the signature and the signing algorithm, then parses the
// claims. It fails with ErrTokenExpired once the expiry has passed,
// ErrTokenMalformed for structure or signature problems, and
// ErrMissingSubject when the identity claim is absent.
func (ts *TokenService) Decode(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token decode encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode).
			WithCode(ErrTokenMalformed.Code)
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		ts.logger.Error("token decode could not map claims")
		return nil, ErrTokenMalformed
	}

	if claims.UserID == 0 {
		return nil, ErrMissingSubject
	}

	return claims, nil
}

// TTL reports the default token lifetime in effect.
func (ts *TokenService) TTL() time.Duration {
	return ts.ttl
}
