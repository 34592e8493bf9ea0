package zkenc

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/nuke-web3/zkchacha/circuits/encrypt"
	"github.com/nuke-web3/zkchacha/pkg/chacha"
	"github.com/nuke-web3/zkchacha/pkg/stream"
)

func TestRunGoldenVector(t *testing.T) {
	input := stream.EncodeInput(&stream.Input{Plaintext: []byte("test")})

	out, err := Run(encrypt.HashSHA256, input)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(out) != stream.DigestSize+4 {
		t.Fatalf("commitment length %d, want %d", len(out), stream.DigestSize+4)
	}

	com, err := stream.SplitCommitment(out)
	if err != nil {
		t.Fatal(err)
	}
	wantDigest := "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"
	if got := hex.EncodeToString(com.Digest[:]); got != wantDigest {
		t.Errorf("digest: have %s, want %s", got, wantDigest)
	}
	if got := hex.EncodeToString(com.Ciphertext); got != "02dd93d9" {
		t.Errorf("ciphertext: have %s, want 02dd93d9", got)
	}
}

func TestRunDigestIsPreEncryption(t *testing.T) {
	var in stream.Input
	in.Key[0] = 0x42
	in.Nonce[0] = 0x24
	in.Plaintext = []byte("digest ordering check")

	out, err := Run(encrypt.HashSHA256, stream.EncodeInput(&in))
	if err != nil {
		t.Fatal(err)
	}
	com, err := stream.SplitCommitment(out)
	if err != nil {
		t.Fatal(err)
	}

	want, err := encrypt.HashSHA256.Sum(in.Plaintext)
	if err != nil {
		t.Fatal(err)
	}
	if com.Digest != want {
		t.Error("digest was not computed over the original plaintext")
	}

	// And the ciphertext decrypts back.
	if err := chacha.Apply(in.Key[:], in.Nonce[:], com.Ciphertext); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(com.Ciphertext, in.Plaintext) {
		t.Error("ciphertext does not decrypt to the plaintext")
	}
}

func TestRunEmptyPlaintext(t *testing.T) {
	out, err := Run(encrypt.HashSHA256, stream.EncodeInput(&stream.Input{}))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != stream.DigestSize {
		t.Fatalf("commitment length %d, want %d", len(out), stream.DigestSize)
	}
}

func TestRunMalformedStream(t *testing.T) {
	for _, n := range []int{0, 10, chacha.KeySize + chacha.NonceSize - 1} {
		_, err := Run(encrypt.HashSHA256, make([]byte, n))
		if !errors.Is(err, ErrMalformedInput) {
			t.Errorf("n=%d: have %v, want ErrMalformedInput", n, err)
		}
	}
}

func TestRunUnknownHash(t *testing.T) {
	input := stream.EncodeInput(&stream.Input{Plaintext: []byte("x")})
	_, err := Run(encrypt.Hash("md5"), input)
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("have %v, want ErrConfig", err)
	}
}
