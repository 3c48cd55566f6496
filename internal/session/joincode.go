package session

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// codeAlphabet drops the characters players misread over voice chat
// (0/O, 1/I/L).
const (
	codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

// newJoinCode generates a 6-character join code. Uniqueness is the
// registry's job; this only guarantees the alphabet.
func newJoinCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating join code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

// normalizeCode folds user input for case-insensitive lookup.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
