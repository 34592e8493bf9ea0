package zkenc

import (
	"bytes"
	"errors"
	"testing"

	"github.com/nuke-web3/zkchacha/circuits/encrypt"
	"github.com/nuke-web3/zkchacha/pkg/chacha"
)

func TestConfigValidate(t *testing.T) {
	cfg := &Config{Plaintext: []byte("x")}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if cfg.Hash != encrypt.HashSHA256 {
		t.Fatalf("default hash is %q, want sha256", cfg.Hash)
	}

	bad := &Config{Hash: encrypt.Hash("md5")}
	if err := bad.Validate(); !errors.Is(err, ErrConfig) {
		t.Errorf("unsupported hash: have %v, want ErrConfig", err)
	}

	bad = &Config{AttestKey: make([]byte, 16)}
	if err := bad.Validate(); !errors.Is(err, ErrConfig) {
		t.Errorf("short attest key: have %v, want ErrConfig", err)
	}
}

func TestParseKey(t *testing.T) {
	key, err := ParseKey("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	if err != nil {
		t.Fatal(err)
	}
	if key[0] != 0x00 || key[31] != 0x1f {
		t.Fatal("key bytes decoded wrong")
	}

	if _, err := ParseKey("zz"); !errors.Is(err, ErrConfig) {
		t.Errorf("non-hex key: have %v, want ErrConfig", err)
	}
	if _, err := ParseKey("0011"); !errors.Is(err, ErrConfig) {
		t.Errorf("short key: have %v, want ErrConfig", err)
	}
}

func TestKeyFingerprintIsNotTheKey(t *testing.T) {
	var key [chacha.KeySize]byte
	key[0] = 0xAA
	fp := KeyFingerprint(key)
	if len(fp) != 8 {
		t.Fatalf("fingerprint length %d, want 8", len(fp))
	}
	if bytes.Contains([]byte(fp), []byte("aa000000")) {
		// Sanity only: the fingerprint is a hash prefix, not key bytes.
		t.Log("fingerprint coincides with key prefix (hash collision in test data)")
	}
}

// TestExecute runs the full execute-mode pipeline, including circuit
// compilation and the witness-solver pass.
func TestExecute(t *testing.T) {
	var cfg Config
	cfg.Plaintext = []byte("test")

	report, err := Execute(&cfg)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(report.Ciphertext) != len(cfg.Plaintext) {
		t.Errorf("ciphertext length %d, want %d", len(report.Ciphertext), len(cfg.Plaintext))
	}
	if report.Constraints <= 0 {
		t.Error("constraint count not reported")
	}

	wantDigest, err := encrypt.HashSHA256.Sum(cfg.Plaintext)
	if err != nil {
		t.Fatal(err)
	}
	if report.Digest != wantDigest {
		t.Error("reported digest does not match plaintext digest")
	}

	// The ciphertext digest is diagnostic, but must differ from the
	// plaintext digest for non-degenerate inputs.
	if report.CiphertextDigest == report.Digest {
		t.Error("ciphertext digest equals plaintext digest")
	}

	// Fresh nonce per run: two executes must never share a nonce (and
	// so never share a ciphertext, for the same key and plaintext).
	report2, err := Execute(&cfg)
	if err != nil {
		t.Fatalf("second Execute failed: %v", err)
	}
	if report.Nonce == report2.Nonce {
		t.Error("nonce reused across runs")
	}
	if bytes.Equal(report.Ciphertext, report2.Ciphertext) {
		t.Error("ciphertext identical across runs with fresh nonces")
	}
}

func TestExecuteRejectsBadConfig(t *testing.T) {
	_, err := Execute(&Config{Hash: encrypt.Hash("md5")})
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("have %v, want ErrConfig", err)
	}
}
