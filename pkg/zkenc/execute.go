package zkenc

import (
	"bytes"
	"fmt"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"

	"github.com/nuke-web3/zkchacha/circuits/encrypt"
	"github.com/nuke-web3/zkchacha/pkg/chacha"
	"github.com/nuke-web3/zkchacha/pkg/stream"
)

// ExecuteReport is the outcome of an execute-mode run: the commitment the
// program produced, the diagnostic ciphertext digest, and the cost
// metrics of the unproven in-VM pass.
type ExecuteReport struct {
	Hash  encrypt.Hash
	Nonce [chacha.NonceSize]byte

	Digest     [stream.DigestSize]byte
	Ciphertext []byte

	// CiphertextDigest is reported for observability only; nothing
	// checks it.
	CiphertextDigest [stream.DigestSize]byte

	// Constraints is the circuit's constraint count, the analogue of a
	// VM cycle count. SolveTime is the duration of the witness-solver
	// pass.
	Constraints int
	SolveTime   time.Duration
}

// Execute runs the commitment program without proving and validates the
// whole pipeline: the reported digest against an independent recompute,
// the ciphertext against a decrypt round-trip, and the full witness
// against the compiled constraint system. Any mismatch is fatal — it
// means a bug or a compromised environment, never something to ignore.
func Execute(cfg *Config) (*ExecuteReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	nonce, err := chacha.NewNonce()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	input := stream.EncodeInput(&stream.Input{
		Key:       cfg.Key,
		Nonce:     nonce,
		Plaintext: cfg.Plaintext,
	})

	out, err := Run(cfg.Hash, input)
	if err != nil {
		return nil, err
	}
	com, err := stream.SplitCommitment(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMismatch, err)
	}
	if len(com.Ciphertext) != len(cfg.Plaintext) {
		return nil, fmt.Errorf("%w: ciphertext length %d, plaintext length %d",
			ErrMismatch, len(com.Ciphertext), len(cfg.Plaintext))
	}

	// Independent digest recompute over the original plaintext.
	wantDigest, err := cfg.Hash.Sum(cfg.Plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if com.Digest != wantDigest {
		return nil, fmt.Errorf("%w: reported digest %x, recomputed %x",
			ErrMismatch, com.Digest, wantDigest)
	}

	// Diagnostic only.
	ctDigest, err := cfg.Hash.Sum(com.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	// Decrypt round-trip on a copy: the stream cipher is its own inverse
	// under the identical keystream, so this exercises the whole
	// pipeline, not just the cipher.
	roundTrip := append([]byte(nil), com.Ciphertext...)
	if err := chacha.Apply(cfg.Key[:], nonce[:], roundTrip); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMismatch, err)
	}
	if !bytes.Equal(roundTrip, cfg.Plaintext) {
		return nil, fmt.Errorf("%w: decrypted ciphertext does not reproduce the plaintext", ErrMismatch)
	}

	// Unproven VM pass: solve the constraint system over the full
	// witness and report the constraint count as the cycle metric.
	ccs, err := encrypt.Compile(cfg.Hash, len(cfg.Plaintext))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMismatch, err)
	}
	assignment, err := encrypt.NewAssignment(&encrypt.WitnessInput{
		Key:        cfg.Key,
		Nonce:      nonce,
		Plaintext:  cfg.Plaintext,
		Digest:     com.Digest,
		Ciphertext: com.Ciphertext,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMismatch, err)
	}
	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMismatch, err)
	}

	solveStart := time.Now()
	if err := ccs.IsSolved(fullWitness); err != nil {
		return nil, fmt.Errorf("%w: constraint system not satisfied: %w", ErrMismatch, err)
	}

	return &ExecuteReport{
		Hash:             cfg.Hash,
		Nonce:            nonce,
		Digest:           com.Digest,
		Ciphertext:       com.Ciphertext,
		CiphertextDigest: ctDigest,
		Constraints:      ccs.GetNbConstraints(),
		SolveTime:        time.Since(solveStart),
	}, nil
}
