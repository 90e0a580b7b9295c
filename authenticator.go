package userauth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// Authenticator is the session authority: it verifies credentials, issues
// tokens, and resolves tokens back to their acting user. It keeps no state
// between calls beyond its read-only collaborators.
type Authenticator struct {
	store    UserStore
	hasher   *PasswordHasher
	verifier *CredentialVerifier
	tokens   *TokenService
	scheme   string
	logger   Logger
}

// NewAuthenticator returns a new Authenticator wired from the given config.
func NewAuthenticator(store UserStore, cfg *Config) *Authenticator {
	hasher := NewPasswordHasher(cfg.SecretKey, cfg.BcryptCost)

	return &Authenticator{
		store:    store,
		hasher:   hasher,
		verifier: NewCredentialVerifier(hasher),
		tokens:   NewTokenService([]byte(cfg.SecretKey), cfg.TokenTTL, nil),
		scheme:   cfg.AuthScheme,
		logger:   defLogger{},
	}
}

func (a *Authenticator) WithLogger(logger Logger) *Authenticator {
	a.logger = logger
	return a
}

// TokenService returns the TokenService instance used by this Authenticator
func (a *Authenticator) TokenService() *TokenService {
	return a.tokens
}

// Hasher returns the password hasher bound to the process pepper.
func (a *Authenticator) Hasher() *PasswordHasher {
	return a.hasher
}

// Login verifies the username/password pair and issues a token with the
// default ttl. An unknown username and a wrong password are both reported
// as ErrInvalidCredentials; only a verified-but-deactivated account gets
// the distinct ErrInactiveAccount.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*IssuedToken, error) {
	return a.LoginWithTTL(ctx, username, password, 0)
}

// LoginWithTTL behaves like Login but lets the caller shorten or extend
// the token lifetime. A zero ttl falls back to the service default.
func (a *Authenticator) LoginWithTTL(ctx context.Context, username, password string, ttl time.Duration) (*IssuedToken, error) {
	user, err := a.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.IsNotFound(err) {
			a.logger.Debug("login failed, unknown username %q", username)
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during login")
	}

	if !a.verifier.Verify(user.PasswordHash, password) {
		a.logger.Debug("login failed, password mismatch for %q", username)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		a.logger.Warn("login blocked, account %q is inactive", username)
		return nil, ErrInactiveAccount
	}

	return a.issue(user, ttl)
}

// Resolve decodes a token and looks up its subject. Every decode or lookup
// failure collapses to ErrInvalidToken so no validation detail leaks; the
// internal classification is logged. Activeness is deliberately NOT checked
// here so callers can report "inactive" separately from "invalid token".
func (a *Authenticator) Resolve(ctx context.Context, token string) (*Principal, error) {
	claims, err := a.tokens.Decode(token)
	if err != nil {
		a.logger.Debug("token resolution failed: %v", err)
		return nil, ErrInvalidToken
	}

	user, err := a.store.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.IsNotFound(err) {
			a.logger.Debug("token subject %d no longer exists", claims.UserID)
			return nil, ErrInvalidToken
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during token resolution")
	}

	return &Principal{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Active:   user.IsActive,
	}, nil
}

// ChangePassword rotates the stored hash after verifying the current
// password and the confirmation, then issues a fresh token. Previously
// issued tokens stay valid until their natural expiry; there is no
// server-side revocation in this design.
func (a *Authenticator) ChangePassword(ctx context.Context, userID int64, current, newPassword, confirm string) (*IssuedToken, error) {
	user, err := a.store.FindByID(ctx, userID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during password change")
	}

	if newPassword != confirm {
		return nil, ErrPasswordMismatch
	}

	if !a.verifier.Verify(user.PasswordHash, current) {
		return nil, ErrInvalidCredentials
	}

	hash, err := a.hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}

	if err := a.store.PersistPasswordHash(ctx, user.ID, hash); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist password hash")
	}

	return a.issue(user, 0)
}

func (a *Authenticator) issue(user *User, ttl time.Duration) (*IssuedToken, error) {
	token, err := a.tokens.IssueWithTTL(user.ID, user.Username, ttl)
	if err != nil {
		a.logger.Error("token issuance failed for user %d: %v", user.ID, err)
		return nil, err
	}

	return &IssuedToken{
		AccessToken: token,
		TokenType:   a.scheme,
	}, nil
}
