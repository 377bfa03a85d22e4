package authcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	min  = 100000
	span = 900000 // codes are drawn uniformly from [100000, 999999]
)

// New generates a 6-digit login code from a cryptographically secure source.
// The draw is uniform over the full 900000-value range; the lower bound keeps
// every code at exactly six digits.
func New() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return "", fmt.Errorf("generate auth code: %w", err)
	}
	return fmt.Sprintf("%06d", min+n.Int64()), nil
}
