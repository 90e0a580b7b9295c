package userauth

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores everything past 72 bytes, so longer peppered input must be
// rejected rather than silently truncated.
const maxPasswordBytes = 72

// PasswordHasher produces and verifies salted bcrypt hashes. Every secret
// is combined with the process-wide pepper before hashing, so a hash is
// only verifiable by a process configured with the same key material.
type PasswordHasher struct {
	pepper []byte
	cost   int
}

// NewPasswordHasher returns a hasher bound to the given pepper. An
// out-of-range cost falls back to DefaultBcryptCost.
func NewPasswordHasher(pepper string, cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{
		pepper: []byte(pepper),
		cost:   cost,
	}
}

// Hash will generate a salted password hash
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyPassword
	}

	seasoned := h.season(password)
	if len(seasoned) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	b, err := bcrypt.GenerateFromPassword(seasoned, h.cost)
	return string(b), err
}

// Compare will validate the given cleartext password against the stored
// hash. A mismatch and a malformed stored hash are indistinguishable to
// the caller; both return ErrInvalidCredentials.
func (h *PasswordHasher) Compare(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), h.season(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// RandomPasswordHash is a temporary password
func (h *PasswordHasher) RandomPasswordHash() string {
	pwd := uuid.New()

	hash, err := h.Hash(pwd.String())
	if err != nil {
		return h.RandomPasswordHash()
	}

	return hash
}

func (h *PasswordHasher) season(password string) []byte {
	seasoned := make([]byte, 0, len(h.pepper)+len(password))
	seasoned = append(seasoned, h.pepper...)
	return append(seasoned, password...)
}
