package zkenc

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"github.com/nuke-web3/zkchacha/circuits/encrypt"
	"github.com/nuke-web3/zkchacha/pkg/stream"
)

// BundleVersion pins the bundle layout; verifiers reject anything else.
const BundleVersion = "zkchacha/1"

// Attestation is an optional BIP-340 Schnorr signature by a prover
// identity key over the commitment stream's SHA-256. It binds a bundle to
// an identity without changing the attested output.
type Attestation struct {
	// PubKey is the compressed secp256k1 public key, hex encoded.
	PubKey string `json:"pubkey"`
	// Signature is the 64-byte BIP-340 signature, base64 encoded.
	Signature string `json:"signature"`
}

// Bundle is the transferable proof artifact: everything an external
// verifier needs, and nothing secret — neither the key nor the nonce
// appears in it.
type Bundle struct {
	Version    string       `json:"version"`
	Hash       encrypt.Hash `json:"hash"`
	CircuitID  string       `json:"circuit_id"`
	Digest     string       `json:"digest"`     // hex, 32 bytes
	Ciphertext string       `json:"ciphertext"` // base64
	Proof      string       `json:"proof"`      // base64

	Attestation *Attestation `json:"attestation,omitempty"`
}

// Bundle packages a prove-mode report for transfer.
func (r *ProveReport) Bundle() *Bundle {
	return &Bundle{
		Version:    BundleVersion,
		Hash:       r.Hash,
		CircuitID:  r.CircuitID,
		Digest:     hex.EncodeToString(r.Digest[:]),
		Ciphertext: base64.StdEncoding.EncodeToString(r.Ciphertext),
		Proof:      base64.StdEncoding.EncodeToString(r.Proof),
	}
}

// Commitment decodes the bundle's public commitment fields.
func (b *Bundle) Commitment() (*stream.Commitment, error) {
	digest, err := hex.DecodeString(b.Digest)
	if err != nil {
		return nil, fmt.Errorf("invalid digest hex: %w", err)
	}
	if len(digest) != stream.DigestSize {
		return nil, fmt.Errorf("digest must be %d bytes, have %d", stream.DigestSize, len(digest))
	}
	ciphertext, err := base64.StdEncoding.DecodeString(b.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("invalid ciphertext base64: %w", err)
	}

	var c stream.Commitment
	copy(c.Digest[:], digest)
	c.Ciphertext = ciphertext
	return &c, nil
}

// bindingHash is the message an attestation signs: the SHA-256 of the
// positional commitment stream.
func bindingHash(c *stream.Commitment) [32]byte {
	return sha256.Sum256(stream.EncodeCommitment(c))
}

// Attest signs the bundle's commitment with a 32-byte identity key.
func (b *Bundle) Attest(identityKey []byte) error {
	if len(identityKey) != 32 {
		return fmt.Errorf("%w: identity key must be 32 bytes, have %d", ErrConfig, len(identityKey))
	}
	com, err := b.Commitment()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}

	priv, pub := btcec.PrivKeyFromBytes(identityKey)
	msg := bindingHash(com)
	sig, err := schnorr.Sign(priv, msg[:])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAttestation, err)
	}

	b.Attestation = &Attestation{
		PubKey:    hex.EncodeToString(pub.SerializeCompressed()),
		Signature: base64.StdEncoding.EncodeToString(sig.Serialize()),
	}
	return nil
}

// verifyAttestation checks the bundle's signature over its commitment.
func (b *Bundle) verifyAttestation(com *stream.Commitment) error {
	pubBytes, err := hex.DecodeString(b.Attestation.PubKey)
	if err != nil {
		return fmt.Errorf("%w: invalid pubkey hex: %v", ErrAttestation, err)
	}
	pub, err := btcec.ParsePubKey(pubBytes)
	if err != nil {
		return fmt.Errorf("%w: invalid public key: %v", ErrAttestation, err)
	}

	sigBytes, err := base64.StdEncoding.DecodeString(b.Attestation.Signature)
	if err != nil {
		return fmt.Errorf("%w: invalid signature base64: %v", ErrAttestation, err)
	}
	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return fmt.Errorf("%w: invalid signature format: %v", ErrAttestation, err)
	}

	msg := bindingHash(com)
	if !sig.Verify(msg[:], pub) {
		return fmt.Errorf("%w: signature does not match commitment", ErrAttestation)
	}
	return nil
}

// VerifyBundle performs the strict ordered checks an external verifier
// runs: version pin, circuit-ID pin against the supplied verifying key,
// Groth16 verification of the proof, and — when present — the identity
// attestation. The first failure is terminal.
func VerifyBundle(keys *encrypt.ProvingKeys, b *Bundle) error {
	if b.Version != BundleVersion {
		return fmt.Errorf("%w: have %q, want %q", ErrBundleVersion, b.Version, BundleVersion)
	}
	if b.Hash != keys.Hash {
		return fmt.Errorf("%w: bundle hash strategy %q, key material %q", ErrCircuitID, b.Hash, keys.Hash)
	}
	if err := keys.ValidateCircuitID(b.CircuitID); err != nil {
		return fmt.Errorf("%w: %w", ErrCircuitID, err)
	}

	com, err := b.Commitment()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerification, err)
	}
	proof, err := base64.StdEncoding.DecodeString(b.Proof)
	if err != nil {
		return fmt.Errorf("%w: invalid proof base64: %v", ErrVerification, err)
	}
	if err := encrypt.Verify(keys, proof, com.Digest, com.Ciphertext); err != nil {
		return fmt.Errorf("%w: %w", ErrVerification, err)
	}

	if b.Attestation != nil {
		if err := b.verifyAttestation(com); err != nil {
			return err
		}
	}
	return nil
}

// WriteBundle persists a bundle as JSON.
func WriteBundle(path string, b *Bundle) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("bundle encoding failed: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("bundle write failed: %w", err)
	}
	return nil
}

// ReadBundle loads a bundle from a JSON file.
func ReadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bundle read failed: %w", err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("bundle decoding failed: %w", err)
	}
	return &b, nil
}
