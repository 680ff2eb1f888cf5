package utils

import (
	"crypto/rand"
	"math/big"
)

// unambiguous alphabet: no 0/O or 1/l
const alphanumeric = "abcdefghjkmnpqrstuvwxyz23456789"

// GenerateRandomString returns n characters drawn from crypto/rand.
func GenerateRandomString(n int) string {
	result := make([]byte, n)
	max := big.NewInt(int64(len(alphanumeric)))
	for i := 0; i < n; i++ {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			result[i] = alphanumeric[i%len(alphanumeric)]
			continue
		}
		result[i] = alphanumeric[num.Int64()]
	}
	return string(result)
}

// GenerateOAuthState returns a CSRF state value for the OAuth round trip.
func GenerateOAuthState() string {
	return GenerateRandomString(32)
}
