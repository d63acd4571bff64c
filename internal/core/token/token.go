// Package token generates the short random identifier codes printed on
// stock item labels ("QR" tokens).
package token

import (
	"crypto/rand"
	"fmt"
)

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// Length of an identifier code.
	Length = 8
)

// New returns a random uppercase alphanumeric code of Length characters.
// Uniqueness is enforced by the persistence layer, not here.
func New() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}

// IsValid reports whether s has the shape of an identifier code.
func IsValid(s string) bool {
	if len(s) != Length {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
