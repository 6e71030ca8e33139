// Package security provides the password digest and API key generator used
// by the account service.
package security

import "golang.org/x/crypto/bcrypt"

// BcryptDigest hashes passwords with bcrypt.
type BcryptDigest struct {
	cost int
}

// NewBcryptDigest returns a digest using cost, or bcrypt.DefaultCost when
// cost is outside bcrypt's accepted range.
func NewBcryptDigest(cost int) *BcryptDigest {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptDigest{cost: cost}
}

func (d *BcryptDigest) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), d.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
