package ports

// PasswordHasher hashes passwords at registration and checks them at login.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns domain.ErrInvalidCredentials on mismatch.
	Compare(hash, password string) error
}

// TokenIssuer signs bearer tokens carrying the account email.
type TokenIssuer interface {
	Issue(email string) (string, error)
}

// TokenVerifier checks a bearer token and returns the email it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}
