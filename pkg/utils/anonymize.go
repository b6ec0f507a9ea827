package utils

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Anonymizer produces deterministic one-way tokens for sensitive identifiers.
// The same input always yields the same token under the same salt, and the
// raw value cannot be recovered from the token.
type Anonymizer struct {
	salt []byte
}

func NewAnonymizer(salt string) *Anonymizer {
	return &Anonymizer{salt: []byte(salt)}
}

// Token returns the lowercase-hex SHA3-256 of salt||raw. Callers substitute
// a literal "N/A" for absent upstream values before calling; raw is expected
// to be non-empty.
func (a *Anonymizer) Token(raw string) string {
	h := sha3.New256()
	h.Write(a.salt)
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}
