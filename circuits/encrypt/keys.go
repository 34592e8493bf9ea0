package encrypt

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
)

// Key material is persisted per circuit shape; the verifying key pins the
// exact program (hash strategy AND plaintext length), so external
// verifiers compare circuit IDs before trusting a proof.

func keyFileBase(h Hash, plaintextLen int) string {
	return fmt.Sprintf("encrypt-%s-%d", h, plaintextLen)
}

// SaveKeys writes the proving and verifying keys under dir.
func SaveKeys(dir string, keys *ProvingKeys) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("key dir: %w", err)
	}
	base := filepath.Join(dir, keyFileBase(keys.Hash, keys.PlaintextLen))

	pkFile, err := os.Create(base + ".pk.bin")
	if err != nil {
		return fmt.Errorf("create proving key file: %w", err)
	}
	defer pkFile.Close()
	if _, err := keys.PK.WriteTo(pkFile); err != nil {
		return fmt.Errorf("write proving key: %w", err)
	}

	vkFile, err := os.Create(base + ".vk.bin")
	if err != nil {
		return fmt.Errorf("create verifying key file: %w", err)
	}
	defer vkFile.Close()
	if _, err := keys.VK.WriteTo(vkFile); err != nil {
		return fmt.Errorf("write verifying key: %w", err)
	}

	return nil
}

// LoadKeys reads a persisted key pair for the given shape and recompiles
// the matching constraint system.
func LoadKeys(dir string, h Hash, plaintextLen int) (*ProvingKeys, error) {
	base := filepath.Join(dir, keyFileBase(h, plaintextLen))

	pkBytes, err := os.ReadFile(base + ".pk.bin")
	if err != nil {
		return nil, fmt.Errorf("read proving key: %w", err)
	}
	vkBytes, err := os.ReadFile(base + ".vk.bin")
	if err != nil {
		return nil, fmt.Errorf("read verifying key: %w", err)
	}

	pk := groth16.NewProvingKey(ecc.BN254)
	if _, err := pk.ReadFrom(bytes.NewReader(pkBytes)); err != nil {
		return nil, fmt.Errorf("deserialize proving key: %w", err)
	}
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(bytes.NewReader(vkBytes)); err != nil {
		return nil, fmt.Errorf("deserialize verifying key: %w", err)
	}

	ccs, err := Compile(h, plaintextLen)
	if err != nil {
		return nil, err
	}

	return &ProvingKeys{
		Hash:         h,
		PlaintextLen: plaintextLen,
		CCS:          ccs,
		PK:           pk,
		VK:           vk,
	}, nil
}

// HasKeys reports whether persisted keys exist for the given shape.
func HasKeys(dir string, h Hash, plaintextLen int) bool {
	base := filepath.Join(dir, keyFileBase(h, plaintextLen))
	if _, err := os.Stat(base + ".pk.bin"); err != nil {
		return false
	}
	_, err := os.Stat(base + ".vk.bin")
	return err == nil
}

// VerifyingKeyBytes returns the serialized verifying key.
func (k *ProvingKeys) VerifyingKeyBytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := k.VK.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize verifying key: %w", err)
	}
	return buf.Bytes(), nil
}

// ComputeCircuitID returns the stable printable identifier of a verifying
// key: the SHA-256 hex of its serialized bytes.
func ComputeCircuitID(vkBytes []byte) string {
	sum := sha256.Sum256(vkBytes)
	return hex.EncodeToString(sum[:])
}

// CircuitID returns the circuit ID of this key pair's verifying key.
func (k *ProvingKeys) CircuitID() (string, error) {
	vkBytes, err := k.VerifyingKeyBytes()
	if err != nil {
		return "", err
	}
	return ComputeCircuitID(vkBytes), nil
}

// ValidateCircuitID checks a claimed circuit ID against this key pair.
func (k *ProvingKeys) ValidateCircuitID(id string) error {
	have, err := k.CircuitID()
	if err != nil {
		return err
	}
	if id != have {
		return fmt.Errorf("circuit ID mismatch: got %s, expected %s", id, have)
	}
	return nil
}
