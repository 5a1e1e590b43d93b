// Package secrets keeps captures encrypted at rest and proximity
// identifiers hashed. The matching core never touches a key directly;
// repositories receive a Cipher and a Hasher built here.
package secrets

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keyLength     = 32
	keyIterations = 100_000
)

// KeyProvider yields the symmetric key for template-at-rest encryption.
type KeyProvider interface {
	Key() ([]byte, error)
}

// DerivedKeyProvider derives a stable AES-256 key from a secret and salt
// via PBKDF2-SHA256. The derivation is deterministic so previously
// encrypted templates stay readable across restarts.
type DerivedKeyProvider struct {
	secret []byte
	salt   []byte
}

// NewDerivedKeyProvider validates inputs and creates a provider.
func NewDerivedKeyProvider(secret, salt string) (*DerivedKeyProvider, error) {
	if secret == "" {
		return nil, fmt.Errorf("encryption secret is required")
	}
	if salt == "" {
		return nil, fmt.Errorf("encryption salt is required")
	}
	return &DerivedKeyProvider{secret: []byte(secret), salt: []byte(salt)}, nil
}

// Key derives the encryption key.
func (p *DerivedKeyProvider) Key() ([]byte, error) {
	return pbkdf2.Key(p.secret, p.salt, keyIterations, keyLength, sha256.New), nil
}

// StaticKeyProvider returns a fixed key (tests and pre-provisioned setups).
type StaticKeyProvider struct {
	key []byte
}

// NewStaticKeyProvider creates a provider around an existing 32-byte key.
func NewStaticKeyProvider(key []byte) (*StaticKeyProvider, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("key must be %d bytes, got %d", keyLength, len(key))
	}
	cp := make([]byte, len(key))
	copy(cp, key)
	return &StaticKeyProvider{key: cp}, nil
}

// Key returns the fixed key.
func (p *StaticKeyProvider) Key() ([]byte, error) {
	cp := make([]byte, len(p.key))
	copy(cp, p.key)
	return cp, nil
}
