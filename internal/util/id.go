// Package util holds small helpers shared across packages.
package util

import "crypto/rand"

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateShortID returns a 6-character alphanumeric string using
// cryptographic randomness. Used as a report id when no history id exists.
func GenerateShortID() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = alphanumeric[int(b[i])%len(alphanumeric)]
	}
	return string(b), nil
}
