package encrypt

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/std/math/uints"
	"golang.org/x/crypto/sha3"
)

// Sum is the host-native twin of the in-circuit digest. Anything the
// circuit commits under must be reproducible with this function, byte for
// byte, or verification against the commitment is meaningless.
func (h Hash) Sum(data []byte) ([32]byte, error) {
	switch h {
	case HashSHA256:
		return sha256.Sum256(data), nil
	case HashKeccak256:
		k := sha3.NewLegacyKeccak256()
		k.Write(data)
		var digest [32]byte
		copy(digest[:], k.Sum(nil))
		return digest, nil
	default:
		return [32]byte{}, fmt.Errorf("unsupported hash strategy %q", h)
	}
}

// ProvingKeys holds the compiled constraint system and Groth16 key pair
// for one (hash strategy, plaintext length) shape. Immutable once built;
// concurrent runs share it read-only.
type ProvingKeys struct {
	Hash         Hash
	PlaintextLen int
	CCS          constraint.ConstraintSystem
	PK           groth16.ProvingKey
	VK           groth16.VerifyingKey
}

// Constraints returns the circuit's constraint count, the cost metric
// reported in place of a VM cycle count.
func (k *ProvingKeys) Constraints() int {
	return k.CCS.GetNbConstraints()
}

type setupID struct {
	hash Hash
	n    int
}

var (
	setupMu    sync.Mutex
	setupCache = map[setupID]*ProvingKeys{}
)

// Compile compiles the commitment circuit for the given shape.
func Compile(h Hash, plaintextLen int) (constraint.ConstraintSystem, error) {
	circuit, err := NewCircuit(h, plaintextLen)
	if err != nil {
		return nil, err
	}
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return nil, fmt.Errorf("circuit compilation failed: %w", err)
	}
	return ccs, nil
}

// Setup compiles the circuit and runs the Groth16 setup for the given
// shape, caching the result process-wide. Groth16 is the deliberate
// trade-off here: higher proving cost than a universal-setup scheme in
// exchange for the smallest proofs and the cheapest pairing check on the
// eventual on-chain verifier.
func Setup(h Hash, plaintextLen int) (*ProvingKeys, error) {
	setupMu.Lock()
	defer setupMu.Unlock()

	id := setupID{hash: h, n: plaintextLen}
	if keys, ok := setupCache[id]; ok {
		return keys, nil
	}

	ccs, err := Compile(h, plaintextLen)
	if err != nil {
		return nil, err
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("groth16 setup failed: %w", err)
	}

	keys := &ProvingKeys{
		Hash:         h,
		PlaintextLen: plaintextLen,
		CCS:          ccs,
		PK:           pk,
		VK:           vk,
	}
	setupCache[id] = keys
	return keys, nil
}

// WitnessInput carries one run's full witness: the secret input stream
// segments and the commitment the program produced for them.
type WitnessInput struct {
	Key       [32]byte
	Nonce     [12]byte
	Plaintext []byte

	Digest     [32]byte
	Ciphertext []byte
}

// NewAssignment builds the full witness assignment for proving.
func NewAssignment(in *WitnessInput) (*Circuit, error) {
	if len(in.Plaintext) != len(in.Ciphertext) {
		return nil, fmt.Errorf("plaintext/ciphertext length mismatch: %d vs %d",
			len(in.Plaintext), len(in.Ciphertext))
	}

	a := &Circuit{
		Ciphertext: uints.NewU8Array(in.Ciphertext),
		Plaintext:  uints.NewU8Array(in.Plaintext),
	}
	for i := range a.Digest {
		a.Digest[i] = uints.NewU8(in.Digest[i])
	}
	for i := range a.Key {
		a.Key[i] = uints.NewU8(in.Key[i])
	}
	for i := range a.Nonce {
		a.Nonce[i] = uints.NewU8(in.Nonce[i])
	}
	return a, nil
}

// NewPublicAssignment builds the public-only assignment a verifier can
// reconstruct from the commitment stream alone.
func NewPublicAssignment(digest [32]byte, ciphertext []byte) *Circuit {
	a := &Circuit{
		Ciphertext: uints.NewU8Array(ciphertext),
		Plaintext:  make([]uints.U8, len(ciphertext)),
	}
	for i := range a.Digest {
		a.Digest[i] = uints.NewU8(digest[i])
	}
	return a
}

// ProverResult contains the proof artifact and proving metrics.
type ProverResult struct {
	Proof       []byte
	ProvingTime time.Duration
	Constraints int
}

// Prove generates a Groth16 proof that the commitment in the witness is
// the program's output for the witness's input stream.
func Prove(keys *ProvingKeys, in *WitnessInput) (*ProverResult, error) {
	if len(in.Plaintext) != keys.PlaintextLen {
		return nil, fmt.Errorf("witness plaintext length %d does not match key shape %d",
			len(in.Plaintext), keys.PlaintextLen)
	}

	start := time.Now()

	assignment, err := NewAssignment(in)
	if err != nil {
		return nil, err
	}
	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("witness creation failed: %w", err)
	}

	proof, err := groth16.Prove(keys.CCS, keys.PK, fullWitness)
	if err != nil {
		return nil, fmt.Errorf("proof generation failed: %w", err)
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("proof serialization failed: %w", err)
	}

	return &ProverResult{
		Proof:       buf.Bytes(),
		ProvingTime: time.Since(start),
		Constraints: keys.Constraints(),
	}, nil
}

// Verify checks a serialized proof against the verifying key and the
// claimed commitment.
func Verify(keys *ProvingKeys, proofBytes []byte, digest [32]byte, ciphertext []byte) error {
	if len(ciphertext) != keys.PlaintextLen {
		return fmt.Errorf("ciphertext length %d does not match key shape %d",
			len(ciphertext), keys.PlaintextLen)
	}

	publicWitness, err := frontend.NewWitness(
		NewPublicAssignment(digest, ciphertext),
		ecc.BN254.ScalarField(),
		frontend.PublicOnly(),
	)
	if err != nil {
		return fmt.Errorf("public witness creation failed: %w", err)
	}

	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return fmt.Errorf("proof deserialization failed: %w", err)
	}

	if err := groth16.Verify(proof, keys.VK, publicWitness); err != nil {
		return fmt.Errorf("proof verification failed: %w", err)
	}
	return nil
}
