package zkenc

import (
	"fmt"
	"time"

	"github.com/nuke-web3/zkchacha/circuits/encrypt"
	"github.com/nuke-web3/zkchacha/pkg/chacha"
	"github.com/nuke-web3/zkchacha/pkg/stream"
)

// ProveReport is the outcome of a prove-mode run: the proof, the
// commitment it attests to, and the identifiers a verifier needs.
type ProveReport struct {
	Hash  encrypt.Hash
	Nonce [chacha.NonceSize]byte

	Digest     [stream.DigestSize]byte
	Ciphertext []byte

	Proof       []byte
	ProvingTime time.Duration
	Constraints int
	CircuitID   string
}

// Prove runs the commitment program through the Groth16 backend and
// verifies the produced proof locally before reporting success. A proving
// failure and a verification failure are distinct kinds: the former means
// the backend could not attest the run, the latter that an attested proof
// does not check out — both implicate the backend, not the program logic.
func Prove(cfg *Config) (*ProveReport, error) {
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

	// The commitment the proof must attest to is the program's own
	// output for this input stream.
	out, err := Run(cfg.Hash, input)
	if err != nil {
		return nil, err
	}
	com, err := stream.SplitCommitment(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProving, err)
	}

	keys, err := loadOrSetupKeys(cfg, len(cfg.Plaintext))
	if err != nil {
		return nil, err
	}
	circuitID, err := keys.CircuitID()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProving, err)
	}

	result, err := encrypt.Prove(keys, &encrypt.WitnessInput{
		Key:        cfg.Key,
		Nonce:      nonce,
		Plaintext:  cfg.Plaintext,
		Digest:     com.Digest,
		Ciphertext: com.Ciphertext,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProving, err)
	}

	// Never report a proof that does not verify locally.
	if err := encrypt.Verify(keys, result.Proof, com.Digest, com.Ciphertext); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVerification, err)
	}

	return &ProveReport{
		Hash:        cfg.Hash,
		Nonce:       nonce,
		Digest:      com.Digest,
		Ciphertext:  com.Ciphertext,
		Proof:       result.Proof,
		ProvingTime: result.ProvingTime,
		Constraints: result.Constraints,
		CircuitID:   circuitID,
	}, nil
}

// loadOrSetupKeys prefers persisted key material when a directory is
// configured, and otherwise runs (and optionally persists) a fresh setup.
// The key pair is long-lived relative to any single proof: it changes
// only when the program shape changes.
func loadOrSetupKeys(cfg *Config, plaintextLen int) (*encrypt.ProvingKeys, error) {
	if cfg.KeyDir != "" && encrypt.HasKeys(cfg.KeyDir, cfg.Hash, plaintextLen) {
		keys, err := encrypt.LoadKeys(cfg.KeyDir, cfg.Hash, plaintextLen)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrProving, err)
		}
		return keys, nil
	}

	keys, err := encrypt.Setup(cfg.Hash, plaintextLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProving, err)
	}
	if cfg.KeyDir != "" {
		if err := encrypt.SaveKeys(cfg.KeyDir, keys); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrProving, err)
		}
	}
	return keys, nil
}
