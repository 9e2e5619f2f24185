// Package cryptobox decrypts credentials stored by the provisioning side.
// Wire layout of a stored secret: base64(IV[16] || tag[16] || ciphertext),
// AES-256-GCM. The standard library is used directly; none of the reviewed
// third-party stacks carry an AEAD wrapper worth importing for this.
package cryptobox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

const (
	ivSize  = 16
	tagSize = 16
	keySize = 32
)

// ErrDecrypt is returned for any malformed, tampered, or wrong-key input.
// No partial plaintext is ever returned.
var ErrDecrypt = errors.New("cryptobox: decrypt failed")

// Decrypt authenticates and decrypts a stored secret.
func Decrypt(ciphertextB64, keyB64 string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return "", fmt.Errorf("%w: bad key encoding", ErrDecrypt)
	}
	if len(key) != keySize {
		return "", fmt.Errorf("%w: key must be %d bytes, got %d", ErrDecrypt, keySize, len(key))
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return "", fmt.Errorf("%w: bad ciphertext encoding", ErrDecrypt)
	}
	if len(raw) < ivSize+tagSize {
		return "", fmt.Errorf("%w: input too short", ErrDecrypt)
	}

	iv := raw[:ivSize]
	tag := raw[ivSize : ivSize+tagSize]
	ct := raw[ivSize+tagSize:]

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	// Go's GCM expects ciphertext||tag.
	sealed := make([]byte, 0, len(ct)+tagSize)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}

// Encrypt produces the stored wire layout. The pipeline itself never
// encrypts; this exists for provisioning tooling and tests.
func Encrypt(plaintext, keyB64 string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return "", fmt.Errorf("cryptobox: bad key encoding: %w", err)
	}
	if len(key) != keySize {
		return "", fmt.Errorf("cryptobox: key must be %d bytes, got %d", keySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("cryptobox: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return "", fmt.Errorf("cryptobox: %w", err)
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("cryptobox: %w", err)
	}

	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	ct := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	raw := make([]byte, 0, ivSize+tagSize+len(ct))
	raw = append(raw, iv...)
	raw = append(raw, tag...)
	raw = append(raw, ct...)
	return base64.StdEncoding.EncodeToString(raw), nil
}
