package secrets

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Hasher produces salted digests of proximity identifiers. Identifiers
// are hashed before storage and before comparison, so plaintext device
// ids never reach the template store.
type Hasher struct {
	salt []byte
}

// NewHasher creates a Hasher with the configured salt.
func NewHasher(salt string) *Hasher {
	return &Hasher{salt: []byte(salt)}
}

// HashIdentifier returns the hex SHA-256 of salt||identifier.
// Empty identifiers stay empty.
func (h *Hasher) HashIdentifier(id string) string {
	if id == "" {
		return ""
	}
	d := sha256.New()
	d.Write(h.salt)
	d.Write([]byte(id))
	return hex.EncodeToString(d.Sum(nil))
}

// SecureCompare reports whether two values are equal in constant time.
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
