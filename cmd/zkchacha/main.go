// Command zkchacha encrypts a plaintext under a configured key and either
// checks the pipeline end to end (--execute) or produces a Groth16 proof
// of correct encryption (--prove), committing publicly to the plaintext
// digest and the ciphertext.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/nuke-web3/zkchacha/circuits/encrypt"
	"github.com/nuke-web3/zkchacha/pkg/zkenc"
)

func main() {
	execute := flag.Bool("execute", false, "run the program without proving")
	prove := flag.Bool("prove", false, "generate and verify a Groth16 proof")
	hashName := flag.String("hash", string(encrypt.HashSHA256), "digest strategy: sha256 or keccak256")
	inPath := flag.String("in", "", "plaintext file (default: stdin)")
	keyDir := flag.String("keys", "", "directory for persisted proving/verifying keys")
	bundlePath := flag.String("bundle", "", "write the proof bundle to this file (prove mode)")
	attestKeyHex := flag.String("attest-key", "", "hex identity key to sign the bundle (prove mode)")
	flag.Parse()

	if *execute == *prove {
		fmt.Fprintln(os.Stderr, "Error: You must specify either --execute or --prove")
		os.Exit(1)
	}

	// .env is optional; the environment may carry ENCRYPTION_KEY directly.
	_ = godotenv.Load()

	keyHex := os.Getenv("ENCRYPTION_KEY")
	if keyHex == "" {
		log.Fatal("ENCRYPTION_KEY not set")
	}
	key, err := zkenc.ParseKey(keyHex)
	if err != nil {
		log.Fatal(err)
	}

	plaintext, err := readPlaintext(*inPath)
	if err != nil {
		log.Fatal(err)
	}

	cfg := &zkenc.Config{
		Key:       key,
		Plaintext: plaintext,
		Hash:      encrypt.Hash(*hashName),
		KeyDir:    *keyDir,
	}
	if *attestKeyHex != "" {
		attestKey, err := hex.DecodeString(*attestKeyHex)
		if err != nil {
			log.Fatal("invalid --attest-key hex:", err)
		}
		cfg.AttestKey = attestKey
	}

	fmt.Printf("Key fingerprint: %s\n", zkenc.KeyFingerprint(key))
	fmt.Printf("Plaintext: %d bytes\n", len(plaintext))

	if *execute {
		runExecute(cfg)
		return
	}
	runProve(cfg, *bundlePath)
}

func readPlaintext(path string) ([]byte, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func runExecute(cfg *zkenc.Config) {
	report, err := zkenc.Execute(cfg)
	if err != nil {
		log.Fatal("Execution failed: ", err)
	}

	fmt.Println("Program executed successfully.")
	fmt.Printf("Nonce: %x\n", report.Nonce)
	fmt.Printf("Plaintext hash: %x\n", report.Digest)
	fmt.Printf("Ciphertext: %d bytes\n", len(report.Ciphertext))
	fmt.Printf("Ciphertext hash: %x\n", report.CiphertextDigest)
	fmt.Println("Decryption matches the original plaintext.")
	fmt.Printf("Constraints: %d\n", report.Constraints)
	fmt.Printf("Solve time: %v\n", report.SolveTime)
}

func runProve(cfg *zkenc.Config, bundlePath string) {
	report, err := zkenc.Prove(cfg)
	if err != nil {
		log.Fatal("Proving failed: ", err)
	}

	fmt.Println("Successfully generated and verified proof.")
	fmt.Printf("Nonce: %x\n", report.Nonce)
	fmt.Printf("Plaintext hash: %x\n", report.Digest)
	fmt.Printf("Ciphertext: %d bytes\n", len(report.Ciphertext))
	fmt.Printf("Circuit ID: %s\n", report.CircuitID)
	fmt.Printf("Constraints: %d\n", report.Constraints)
	fmt.Printf("Proving time: %v\n", report.ProvingTime)

	if bundlePath == "" {
		return
	}

	bundle := report.Bundle()
	if len(cfg.AttestKey) != 0 {
		if err := bundle.Attest(cfg.AttestKey); err != nil {
			log.Fatal("Attestation failed: ", err)
		}
		fmt.Printf("Attested by: %s\n", bundle.Attestation.PubKey)
	}
	if err := zkenc.WriteBundle(bundlePath, bundle); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Bundle written to %s\n", bundlePath)
}
