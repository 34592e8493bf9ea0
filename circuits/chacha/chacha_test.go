package chacha

import (
	"crypto/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
	"github.com/consensys/gnark/test"

	hostchacha "github.com/nuke-web3/zkchacha/pkg/chacha"
)

// keystreamCircuit asserts the gadget output equals a public expected
// keystream, so the test engine can cross-check against the native cipher.
type keystreamCircuit struct {
	Want  []uints.U8 `gnark:",public"`
	Key   [32]uints.U8
	Nonce [12]uints.U8
}

func (c *keystreamCircuit) Define(api frontend.API) error {
	bapi, err := uints.NewBytes(api)
	if err != nil {
		return err
	}
	ks, err := Keystream(api, c.Key, c.Nonce, len(c.Want))
	if err != nil {
		return err
	}
	for i := range ks {
		bapi.AssertIsEqual(ks[i], c.Want[i])
	}
	return nil
}

func newKeystreamAssignment(t *testing.T, key, nonce []byte, n int) *keystreamCircuit {
	t.Helper()

	want, err := hostchacha.Keystream(key, nonce, n)
	if err != nil {
		t.Fatal(err)
	}

	w := &keystreamCircuit{Want: uints.NewU8Array(want)}
	for i := range w.Key {
		w.Key[i] = uints.NewU8(key[i])
	}
	for i := range w.Nonce {
		w.Nonce[i] = uints.NewU8(nonce[i])
	}
	return w
}

// TestKeystreamMatchesNative solves the gadget against x/crypto output for
// lengths below, at, and above the block boundary.
func TestKeystreamMatchesNative(t *testing.T) {
	key := make([]byte, hostchacha.KeySize)
	nonce := make([]byte, hostchacha.NonceSize)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	if _, err := rand.Read(nonce); err != nil {
		t.Fatal(err)
	}

	for _, n := range []int{1, 4, 63, 64, 65, 130} {
		circuit := &keystreamCircuit{Want: make([]uints.U8, n)}
		assignment := newKeystreamAssignment(t, key, nonce, n)
		if err := test.IsSolved(circuit, assignment, ecc.BN254.ScalarField()); err != nil {
			t.Errorf("n=%d: solving failed: %v", n, err)
		}
	}
}

// TestKeystreamZeroVector pins the well-known all-zero key/nonce block 0
// prefix (76 b8 e0 ad ...), the basis of the repo's golden vectors.
func TestKeystreamZeroVector(t *testing.T) {
	key := make([]byte, hostchacha.KeySize)
	nonce := make([]byte, hostchacha.NonceSize)

	circuit := &keystreamCircuit{Want: make([]uints.U8, 8)}
	assignment := &keystreamCircuit{
		Want: uints.NewU8Array([]byte{0x76, 0xb8, 0xe0, 0xad, 0xa0, 0xf1, 0x3d, 0x90}),
	}
	for i := range assignment.Key {
		assignment.Key[i] = uints.NewU8(key[i])
	}
	for i := range assignment.Nonce {
		assignment.Nonce[i] = uints.NewU8(nonce[i])
	}

	if err := test.IsSolved(circuit, assignment, ecc.BN254.ScalarField()); err != nil {
		t.Fatalf("solving failed: %v", err)
	}
}

// TestKeystreamRejectsWrongBytes checks the gadget actually constrains the
// output rather than accepting arbitrary public bytes.
func TestKeystreamRejectsWrongBytes(t *testing.T) {
	key := make([]byte, hostchacha.KeySize)
	nonce := make([]byte, hostchacha.NonceSize)

	circuit := &keystreamCircuit{Want: make([]uints.U8, 4)}
	assignment := newKeystreamAssignment(t, key, nonce, 4)
	assignment.Want[2] = uints.NewU8(0x00) // corrupt one byte

	if err := test.IsSolved(circuit, assignment, ecc.BN254.ScalarField()); err == nil {
		t.Fatal("expected solving to fail on corrupted keystream byte")
	}
}
