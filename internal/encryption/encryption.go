// Package encryption protects backup archives at rest. The default
// implementation wraps filippo.io/age with an X25519 key pair whose private
// key is locked behind the user's passphrase.
package encryption

import (
	"fmt"
	"io"

	"github.com/NepaliUtsab/blckpinkinventory/internal/config"
)

// Encryptor encrypts backup archives and unlocks the key material needed to
// decrypt them.
type Encryptor interface {
	// Setup generates and stores the key material, locking the secret part
	// with the passphrase.
	Setup(passphrase string) error

	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock validates the passphrase and returns a context that can decrypt.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured reports whether key material exists.
	IsConfigured() bool
}

// DecryptionContext holds unlocked key material for decrypting archives.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}

// NewFromConfig creates an Encryptor based on the configuration type.
func NewFromConfig(cfg config.EncryptionConfig) (Encryptor, error) {
	switch cfg.Type {
	case "age", "":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
