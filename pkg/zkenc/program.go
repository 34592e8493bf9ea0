package zkenc

import (
	"fmt"

	"github.com/nuke-web3/zkchacha/circuits/encrypt"
	"github.com/nuke-web3/zkchacha/pkg/chacha"
	"github.com/nuke-web3/zkchacha/pkg/stream"
)

// Run executes the commitment program natively over a raw input stream
// and returns the commitment stream. This is the host-side twin of the
// circuit: same pass, same order — digest over the pre-encryption bytes,
// then encrypt in place, then emit digest ‖ ciphertext.
//
// A stream too short for the fixed-width key and nonce aborts the run;
// there is no recovery path, mirroring the in-VM failure policy.
func Run(h encrypt.Hash, input []byte) ([]byte, error) {
	in, err := stream.DecodeInput(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	digest, err := h.Sum(in.Plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	// DecodeInput copies, so the caller's plaintext stays intact while
	// the program's buffer is mutated into the ciphertext.
	if err := chacha.Apply(in.Key[:], in.Nonce[:], in.Plaintext); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	return stream.EncodeCommitment(&stream.Commitment{
		Digest:     digest,
		Ciphertext: in.Plaintext,
	}), nil
}
