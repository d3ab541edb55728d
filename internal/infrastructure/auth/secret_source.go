package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/you/phoneauthsvc/domain"
)

// RandomSecretSource implements domain.SecretSource with crypto/rand.
type RandomSecretSource struct{}

// NewSecretSource creates a new random secret source.
func NewSecretSource() domain.SecretSource {
	return &RandomSecretSource{}
}

// NumericCode draws each digit uniformly. Codes for different phones share
// no state, so one issued code reveals nothing about another.
func (s *RandomSecretSource) NumericCode(length int) (string, error) {
	digits := make([]byte, length)

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}

	return string(digits), nil
}

// Password returns a throwaway password for identity creation and
// post-login rotation. Nothing ever needs to reproduce it.
func (s *RandomSecretSource) Password() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate password entropy: %w", err)
	}
	return uuid.NewString() + "." + hex.EncodeToString(bytes), nil
}
