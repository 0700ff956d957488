// Package cipher provides symmetric authenticated encryption for secret
// payloads, keyed by a single process-wide master passphrase.
package cipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"strings"

	"github.com/insforge/core/internal/apperror"
)

const (
	ivSize  = 16
	tagSize = 16
)

// Cipher performs AES-256-GCM encrypt/decrypt with a key derived once at
// construction time. The derived key is immutable for the process
// lifetime; rotation is out of scope (spec §4.1, Non-goals).
type Cipher struct {
	key [32]byte
}

// New derives a 32-byte key from masterPassphrase via SHA-256 and returns
// a ready-to-use Cipher. The passphrase itself is never retained or logged.
func New(masterPassphrase string) *Cipher {
	return &Cipher{key: sha256.Sum256([]byte(masterPassphrase))}
}

func (c *Cipher) block() (cipher.Block, error) {
	return aes.NewCipher(c.key[:])
}

// Encrypt returns hex(iv):hex(tag):hex(ciphertext) for plaintext, using a
// fresh random IV on every call.
func (c *Cipher) Encrypt(plaintext []byte) (string, error) {
	block, err := c.block()
	if err != nil {
		return "", apperror.Wrap(apperror.Internal, "cipher init failed", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return "", apperror.Wrap(apperror.Internal, "gcm init failed", err)
	}

	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", apperror.Wrap(apperror.Internal, "iv generation failed", err)
	}

	// Seal appends the tag to the ciphertext; split it back out so the
	// wire format keeps iv/tag/ciphertext as three separate fields.
	sealed := gcm.Seal(nil, iv, plaintext, nil)
	if len(sealed) < tagSize {
		return "", apperror.New(apperror.Internal, "sealed output shorter than tag size")
	}
	ct := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	return strings.Join([]string{
		hex.EncodeToString(iv),
		hex.EncodeToString(tag),
		hex.EncodeToString(ct),
	}, ":"), nil
}

// Decrypt parses a hex(iv):hex(tag):hex(ciphertext) wire string and returns
// the original plaintext, or CipherCorrupt on any structural or
// authentication failure.
func (c *Cipher) Decrypt(wire string) ([]byte, error) {
	parts := strings.Split(wire, ":")
	if len(parts) != 3 {
		return nil, apperror.New(apperror.CipherCorrupt, "malformed ciphertext")
	}

	iv, err1 := hex.DecodeString(parts[0])
	tag, err2 := hex.DecodeString(parts[1])
	ct, err3 := hex.DecodeString(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, apperror.New(apperror.CipherCorrupt, "malformed ciphertext encoding")
	}
	if len(iv) != ivSize || len(tag) != tagSize {
		return nil, apperror.New(apperror.CipherCorrupt, "malformed ciphertext field sizes")
	}

	block, err := c.block()
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "cipher init failed", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "gcm init failed", err)
	}

	sealed := make([]byte, 0, len(ct)+len(tag))
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, apperror.New(apperror.CipherCorrupt, "authentication failed")
	}
	return plaintext, nil
}

// ConstantTimeEqual compares two byte strings in time independent of where
// they first differ, used by verify-style operations so the caller cannot
// learn anything from comparison timing.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		// Still do a constant-time compare of a against itself so a
		// length mismatch doesn't short-circuit as visibly.
		subtle.ConstantTimeCompare(a, a)
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
