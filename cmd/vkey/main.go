// Command vkey prints the circuit ID (the hash of the Groth16 verifying
// key) for a given digest strategy and plaintext length, so verifiers can
// pin the exact program they accept proofs for.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/nuke-web3/zkchacha/circuits/encrypt"
)

func main() {
	hashName := flag.String("hash", string(encrypt.HashSHA256), "digest strategy: sha256 or keccak256")
	plaintextLen := flag.Int("len", 4, "plaintext length in bytes the circuit is shaped for")
	flag.Parse()

	keys, err := encrypt.Setup(encrypt.Hash(*hashName), *plaintextLen)
	if err != nil {
		log.Fatal("Setup failed: ", err)
	}
	id, err := keys.CircuitID()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Hash: %s\n", keys.Hash)
	fmt.Printf("Plaintext length: %d\n", keys.PlaintextLen)
	fmt.Printf("Constraints: %d\n", keys.Constraints())
	fmt.Printf("Circuit ID: %s\n", id)
}
