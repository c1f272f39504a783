package codegen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Generator produces one-time codes.
type Generator interface {
	Generate() (string, error)
}

// Numeric generates fixed-length decimal codes, zero-padded on the left.
type Numeric struct {
	length int
	max    *big.Int
}

// NewNumeric returns a Numeric generator producing codes of the given length.
// Lengths outside 4..10 fall back to 6 digits.
func NewNumeric(length int) *Numeric {
	if length < 4 || length > 10 {
		length = 6
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	return &Numeric{length: length, max: max}
}

// Generate returns a new code, e.g. "042917" for length 6.
func (n *Numeric) Generate() (string, error) {
	v, err := rand.Int(rand.Reader, n.max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n.length, v), nil
}
