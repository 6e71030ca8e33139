package ports

// PasswordDigest is a one-way hash for account passwords.
type PasswordDigest interface {
	Hash(plaintext string) (string, error)
}

// KeyGenerator produces random identifiers used as account API keys.
type KeyGenerator interface {
	NewAPIKey() string
}
