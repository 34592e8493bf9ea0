// Package encrypt implements the provable encrypt-and-commit program as a
// gnark circuit, together with its Groth16 prover surface.
//
// The circuit attests, for secret (key, nonce, plaintext) laid out in
// input-stream order, that the public commitment stream is exactly
//
//	H(plaintext) ‖ plaintext ⊕ ChaCha20(key, nonce)
//
// with the digest computed over the pre-encryption bytes. Public witness
// fields are declared digest-first so the public input ordering matches
// the positional commitment layout external verifiers parse.
package encrypt

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	stdhash "github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/hash/sha2"
	"github.com/consensys/gnark/std/hash/sha3"
	"github.com/consensys/gnark/std/math/uints"

	chachagadget "github.com/nuke-web3/zkchacha/circuits/chacha"
)

// Hash selects the digest algorithm the program commits under. A
// deployment pins exactly one strategy; the verifying key (and so the
// circuit ID) differs per strategy, so proofs cannot silently cross over.
type Hash string

const (
	// HashSHA256 commits under SHA-256. Cheapest to prove; the on-chain
	// verifier recomputes the digest with the SHA-256 precompile at a
	// slightly higher gas cost than a native opcode.
	HashSHA256 Hash = "sha256"

	// HashKeccak256 commits under Keccak-256, the EVM's native KECCAK256
	// opcode (30 gas base + 6 gas per word). Cheapest to recompute
	// on-chain, at a significantly higher proving cost.
	HashKeccak256 Hash = "keccak256"
)

// Valid reports whether h names a supported strategy.
func (h Hash) Valid() bool {
	return h == HashSHA256 || h == HashKeccak256
}

// Circuit is the provable commitment program. Its shape is fixed per
// plaintext length; NewCircuit allocates the variable-length fields.
//
// Known gap, carried over deliberately: neither the key nor the nonce is
// committed or hashed into the public output, so a verifier trusts the
// prover's claim about which key was used. Changing that is a format
// break and needs a requirements decision first.
type Circuit struct {
	// Public commitment stream, digest first.
	Digest     [32]uints.U8 `gnark:",public"`
	Ciphertext []uints.U8   `gnark:",public"`

	// Secret input stream, in stream order.
	Key       [32]uints.U8
	Nonce     [12]uints.U8
	Plaintext []uints.U8

	hash Hash
}

// NewCircuit returns a compile shape for the given hash strategy and
// plaintext length.
func NewCircuit(h Hash, plaintextLen int) (*Circuit, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("unsupported hash strategy %q", h)
	}
	if plaintextLen < 0 {
		return nil, fmt.Errorf("negative plaintext length %d", plaintextLen)
	}
	return &Circuit{
		Ciphertext: make([]uints.U8, plaintextLen),
		Plaintext:  make([]uints.U8, plaintextLen),
		hash:       h,
	}, nil
}

func newHasher(api frontend.API, h Hash) (stdhash.BinaryHasher, error) {
	switch h {
	case HashSHA256:
		hasher, err := sha2.New(api)
		if err != nil {
			return nil, err
		}
		return hasher, nil
	case HashKeccak256:
		hasher, err := sha3.NewLegacyKeccak256(api)
		if err != nil {
			return nil, err
		}
		return hasher, nil
	default:
		return nil, fmt.Errorf("unsupported hash strategy %q", h)
	}
}

// Define is a single straight-line pass with no secret-dependent
// branching: hash the plaintext, then constrain the ciphertext to the
// keystream XOR.
func (c *Circuit) Define(api frontend.API) error {
	if len(c.Plaintext) != len(c.Ciphertext) {
		return fmt.Errorf("plaintext/ciphertext length mismatch: %d vs %d",
			len(c.Plaintext), len(c.Ciphertext))
	}

	bapi, err := uints.NewBytes(api)
	if err != nil {
		return err
	}

	// Digest over the pre-encryption bytes.
	hasher, err := newHasher(api, c.hash)
	if err != nil {
		return err
	}
	hasher.Write(c.Plaintext)
	digest := hasher.Sum()
	if len(digest) != len(c.Digest) {
		return fmt.Errorf("unexpected digest width %d", len(digest))
	}
	for i := range c.Digest {
		bapi.AssertIsEqual(digest[i], c.Digest[i])
	}

	ks, err := chachagadget.Keystream(api, c.Key, c.Nonce, len(c.Plaintext))
	if err != nil {
		return err
	}
	for i := range c.Plaintext {
		bapi.AssertIsEqual(bapi.Xor(c.Plaintext[i], ks[i]), c.Ciphertext[i])
	}

	return nil
}
