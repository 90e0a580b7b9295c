package userauth

// CredentialVerifier checks a candidate password against a stored hash.
// It is pure and stateless; username lookup belongs to the user store.
type CredentialVerifier struct {
	hasher *PasswordHasher
}

func NewCredentialVerifier(hasher *PasswordHasher) *CredentialVerifier {
	return &CredentialVerifier{hasher: hasher}
}

// Verify returns false for any mismatch, including a missing or malformed
// stored hash. It never panics and never reports why verification failed.
func (v *CredentialVerifier) Verify(storedHash, candidate string) bool {
	if storedHash == "" || candidate == "" {
		return false
	}
	return v.hasher.Compare(candidate, storedHash) == nil
}
