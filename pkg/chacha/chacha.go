// Package chacha is the native cipher primitive: raw ChaCha20 applied in
// place, without the Poly1305 MAC.
//
// Omitting the MAC is deliberate. The surrounding proof of correct
// execution is what guarantees ciphertext integrity here; paying the
// per-byte MAC cost inside the provable computation would buy nothing.
// Outside a proof-carrying context this primitive is malleable and must
// not be used on its own.
package chacha

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20"
)

const (
	// KeySize is the ChaCha20 key length in bytes.
	KeySize = chacha20.KeySize
	// NonceSize is the ChaCha20 nonce length in bytes. A nonce MUST be
	// unique per key; reuse leaks the XOR of the two plaintexts.
	NonceSize = chacha20.NonceSize
)

// Apply XORs buf in place with the ChaCha20 keystream derived from key and
// nonce, with the block counter starting at 0. Encryption and decryption
// are the same operation.
//
// Wrong-length key or nonce is a hard error: silently truncating or
// padding a nonce would break the uniqueness invariant without any
// visible symptom.
func Apply(key, nonce, buf []byte) error {
	if len(key) != KeySize {
		return fmt.Errorf("chacha: key must be %d bytes, have %d", KeySize, len(key))
	}
	if len(nonce) != NonceSize {
		return fmt.Errorf("chacha: nonce must be %d bytes, have %d", NonceSize, len(nonce))
	}

	c, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return fmt.Errorf("chacha: %w", err)
	}
	c.XORKeyStream(buf, buf)
	return nil
}

// Keystream returns the first n bytes of the ChaCha20 keystream for
// (key, nonce). Equivalent to Apply over n zero bytes.
func Keystream(key, nonce []byte, n int) ([]byte, error) {
	ks := make([]byte, n)
	if err := Apply(key, nonce, ks); err != nil {
		return nil, err
	}
	return ks, nil
}

// NewNonce returns a fresh 96-bit nonce from the OS CSPRNG. Uniqueness
// across parallel runs rests on the randomness source; nonces are never
// persisted or accepted from callers.
func NewNonce() ([NonceSize]byte, error) {
	var nonce [NonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nonce, fmt.Errorf("chacha: nonce generation failed: %w", err)
	}
	return nonce, nil
}
