// Package vault encrypts custody private keys at rest. Only the vault
// holds the symmetric secret capable of decrypting a key record.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hyprmtrx/hvm/core"
)

const ivSize = 16

// Vault performs AES-256-CTR encryption keyed by a process-wide secret
// loaded once at startup.
type Vault struct {
	block cipher.Block
}

// New creates a Vault. The secret must be exactly 32 bytes; anything
// else fails with core.ErrConfig before any wallet can be provisioned.
func New(secret []byte) (*Vault, error) {
	if len(secret) != 32 {
		return nil, fmt.Errorf("%w: vault secret must be 32 bytes, got %d", core.ErrConfig, len(secret))
	}
	block, err := aes.NewCipher(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrConfig, err)
	}
	return &Vault{block: block}, nil
}

// Encrypt encrypts a private key and returns "hex(iv):hex(ciphertext)".
// A fresh random IV is drawn on every call; an IV is never reused across
// records. Both halves are hex-encoded so the delimiter cannot collide
// with envelope content.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	ciphertext := make([]byte, len(plaintext))
	cipher.NewCTR(v.block, iv).XORKeyStream(ciphertext, []byte(plaintext))

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. A malformed envelope, or one that does not
// decrypt to valid UTF-8, fails with core.ErrVault.
func (v *Vault) Decrypt(envelope string) (string, error) {
	parts := strings.Split(envelope, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: expected 2 envelope parts, got %d", core.ErrVault, len(parts))
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("%w: bad iv encoding", core.ErrVault)
	}
	if len(iv) != ivSize {
		return "", fmt.Errorf("%w: iv must be %d bytes, got %d", core.ErrVault, ivSize, len(iv))
	}

	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: bad ciphertext encoding", core.ErrVault)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCTR(v.block, iv).XORKeyStream(plaintext, ciphertext)

	if !utf8.Valid(plaintext) {
		return "", fmt.Errorf("%w: decrypted payload is not valid UTF-8", core.ErrVault)
	}
	return string(plaintext), nil
}
