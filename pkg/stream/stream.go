// Package stream implements the byte-stream contract between the host and
// the provable computation: the ordered input stream
// (key ‖ nonce ‖ plaintext) and the ordered commitment stream
// (digest ‖ ciphertext). The layout is bit-exact and positional; external
// verifiers split the commitment at the fixed 32-byte digest boundary.
package stream

import (
	"errors"
	"fmt"

	"github.com/nuke-web3/zkchacha/pkg/chacha"
)

// DigestSize is the fixed width of the plaintext digest in the
// commitment stream.
const DigestSize = 32

// Stream layout errors.
var (
	ErrInputTooShort      = errors.New("input stream shorter than key+nonce")
	ErrCommitmentTooShort = errors.New("commitment stream shorter than digest")
)

// Input is the decoded form of the provable program's input stream.
type Input struct {
	Key       [chacha.KeySize]byte
	Nonce     [chacha.NonceSize]byte
	Plaintext []byte
}

// EncodeInput assembles the input stream: key ‖ nonce ‖ plaintext.
func EncodeInput(in *Input) []byte {
	out := make([]byte, 0, chacha.KeySize+chacha.NonceSize+len(in.Plaintext))
	out = append(out, in.Key[:]...)
	out = append(out, in.Nonce[:]...)
	out = append(out, in.Plaintext...)
	return out
}

// DecodeInput splits an input stream back into its three segments. The
// plaintext length is implied by the total stream length. A stream too
// short to contain the fixed-width key and nonce is rejected outright;
// there is no truncation or padding path.
func DecodeInput(data []byte) (*Input, error) {
	if len(data) < chacha.KeySize+chacha.NonceSize {
		return nil, fmt.Errorf("%w: have %d bytes, need at least %d",
			ErrInputTooShort, len(data), chacha.KeySize+chacha.NonceSize)
	}

	var in Input
	copy(in.Key[:], data[:chacha.KeySize])
	copy(in.Nonce[:], data[chacha.KeySize:chacha.KeySize+chacha.NonceSize])
	in.Plaintext = append([]byte(nil), data[chacha.KeySize+chacha.NonceSize:]...)
	return &in, nil
}

// Commitment is the decoded form of the program's public output stream.
type Commitment struct {
	Digest     [DigestSize]byte
	Ciphertext []byte
}

// EncodeCommitment assembles the commitment stream: digest ‖ ciphertext.
func EncodeCommitment(c *Commitment) []byte {
	out := make([]byte, 0, DigestSize+len(c.Ciphertext))
	out = append(out, c.Digest[:]...)
	out = append(out, c.Ciphertext...)
	return out
}

// SplitCommitment splits a commitment stream at the fixed digest boundary.
func SplitCommitment(data []byte) (*Commitment, error) {
	if len(data) < DigestSize {
		return nil, fmt.Errorf("%w: have %d bytes, need at least %d",
			ErrCommitmentTooShort, len(data), DigestSize)
	}

	var c Commitment
	copy(c.Digest[:], data[:DigestSize])
	c.Ciphertext = append([]byte(nil), data[DigestSize:]...)
	return &c, nil
}
