package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/you/phoneauthsvc/domain"
)

// BcryptCodeHasher implements domain.CodeHasher. OTP codes are short-lived
// but still treated as credentials; only their hashes touch storage.
type BcryptCodeHasher struct {
	cost int
}

// NewCodeHasher creates a new bcrypt-backed code hasher.
func NewCodeHasher() domain.CodeHasher {
	return &BcryptCodeHasher{
		cost: bcrypt.DefaultCost,
	}
}

// Hash implements domain.CodeHasher
func (h *BcryptCodeHasher) Hash(code string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(code), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// Verify implements domain.CodeHasher
func (h *BcryptCodeHasher) Verify(hash, code string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code))
	return err == nil
}
