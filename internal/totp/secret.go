package totp

import (
	"fmt"

	"github.com/pquerna/otp"
	pqtotp "github.com/pquerna/otp/totp"
)

// SecretSize is the number of random bytes in a generated secret, matching
// the HMAC-SHA1 block output.
const SecretSize = 20

// NewSecret generates a random secret for a new account and returns it in
// canonical Base32 form (no padding).
func (g *Generator) NewSecret(issuer, name string) (string, error) {
	if name == "" {
		name = issuer
	}
	if issuer == "" {
		issuer = name
	}

	key, err := pqtotp.Generate(pqtotp.GenerateOpts{
		Issuer:      issuer,
		AccountName: name,
		Period:      uint(g.period),
		SecretSize:  SecretSize,
		Digits:      otp.Digits(g.digits),
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("error generating secret: %w", err)
	}

	return Normalize(key.Secret())
}
