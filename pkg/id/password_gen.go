package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const alphabetCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// GenerateAlphabetPassword creates a random password containing only A-Z
// and a-z. Reset passwords are read out of an email and typed by hand.
func GenerateAlphabetPassword(length int) (string, error) {
	if length <= 0 {
		length = 12
	}

	max := big.NewInt(int64(len(alphabetCharset)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random password: %w", err)
		}
		out[i] = alphabetCharset[n.Int64()]
	}
	return string(out), nil
}
