// Package zkenc is the host-side proof orchestrator: it assembles the
// provable program's input stream, runs the program either natively
// (execute mode, unproven) or through the Groth16 backend (prove mode),
// and validates the results before reporting success.
package zkenc

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/nuke-web3/zkchacha/circuits/encrypt"
	"github.com/nuke-web3/zkchacha/pkg/chacha"
)

// Error kinds. Each failure class is distinct so callers can tell a
// pipeline bug (ErrMismatch) apart from a proving-backend problem
// (ErrProving, ErrVerification). None of them is recoverable within a run.
var (
	// ErrConfig: missing or malformed key material, bad hash strategy,
	// invalid mode selection. Raised before any program execution.
	ErrConfig = errors.New("invalid configuration")

	// ErrMalformedInput: an input stream too short to contain the
	// fixed-width key and nonce reached the program.
	ErrMalformedInput = errors.New("malformed input stream")

	// ErrMismatch: an execute-mode correctness check failed (reported
	// digest, decrypt round-trip, or constraint solving). Indicates an
	// implementation bug or a compromised execution environment.
	ErrMismatch = errors.New("correctness check failed")

	// ErrProving: the backend could not produce a proof.
	ErrProving = errors.New("proof generation failed")

	// ErrVerification: a produced proof failed local verification.
	ErrVerification = errors.New("proof verification failed")

	// Bundle pinning errors.
	ErrBundleVersion = errors.New("bundle version mismatch")
	ErrCircuitID     = errors.New("circuit ID mismatch")
	ErrAttestation   = errors.New("attestation verification failed")
)

// Config carries one run's inputs. The key comes from trusted external
// configuration; the nonce is always generated internally per run and is
// never accepted from a caller.
type Config struct {
	// Key is the 32-byte encryption key. Never logged in full; use
	// KeyFingerprint for display.
	Key [chacha.KeySize]byte

	// Plaintext is the data being protected.
	Plaintext []byte

	// Hash selects the commitment digest strategy. Defaults to SHA-256.
	Hash encrypt.Hash

	// KeyDir, when set, is where Groth16 key material is persisted and
	// looked up before running a fresh setup (prove mode only).
	KeyDir string

	// AttestKey, when set, is a 32-byte identity key used to sign the
	// commitment stream in the exported bundle (prove mode only).
	AttestKey []byte
}

// Validate normalizes defaults and fails fast on malformed configuration,
// before any VM execution or proving work begins.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrConfig)
	}
	if c.Hash == "" {
		c.Hash = encrypt.HashSHA256
	}
	if !c.Hash.Valid() {
		return fmt.Errorf("%w: unsupported hash strategy %q", ErrConfig, c.Hash)
	}
	if len(c.AttestKey) != 0 && len(c.AttestKey) != 32 {
		return fmt.Errorf("%w: attestation key must be 32 bytes, have %d", ErrConfig, len(c.AttestKey))
	}
	return nil
}

// ParseKey decodes a hex-encoded 32-byte encryption key from trusted
// configuration.
func ParseKey(hexKey string) ([chacha.KeySize]byte, error) {
	var key [chacha.KeySize]byte
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return key, fmt.Errorf("%w: key is not valid hex: %v", ErrConfig, err)
	}
	if len(raw) != chacha.KeySize {
		return key, fmt.Errorf("%w: key must be %d bytes, have %d", ErrConfig, chacha.KeySize, len(raw))
	}
	copy(key[:], raw)
	return key, nil
}

// KeyFingerprint returns a short, log-safe identifier for a key: the
// first 8 hex characters of its SHA-256.
func KeyFingerprint(key [chacha.KeySize]byte) string {
	sum := sha256.Sum256(key[:])
	return hex.EncodeToString(sum[:4])
}
