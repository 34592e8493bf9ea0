// Package chacha provides an in-circuit ChaCha20 keystream gadget over
// 32-bit words.
//
// The gadget is bit-compatible with golang.org/x/crypto/chacha20: RFC 8439
// quarter rounds, little-endian word packing, block counter starting at 0.
// All loop bounds depend only on the requested length, never on witness
// values, so the constraint count is a pure function of the plaintext size.
package chacha

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
)

// BlockSize is the ChaCha20 block size in bytes.
const BlockSize = 64

// "expand 32-byte k"
var sigma = [4]uint32{0x61707865, 0x3320646e, 0x79622d32, 0x6b206574}

func quarterRound(uapi *uints.BinaryField[uints.U32], s *[16]uints.U32, a, b, c, d int) {
	s[a] = uapi.Add(s[a], s[b])
	s[d] = uapi.Lrot(uapi.Xor(s[d], s[a]), 16)
	s[c] = uapi.Add(s[c], s[d])
	s[b] = uapi.Lrot(uapi.Xor(s[b], s[c]), 12)
	s[a] = uapi.Add(s[a], s[b])
	s[d] = uapi.Lrot(uapi.Xor(s[d], s[a]), 8)
	s[c] = uapi.Add(s[c], s[d])
	s[b] = uapi.Lrot(uapi.Xor(s[b], s[c]), 7)
}

// Keystream returns the first n keystream bytes for (key, nonce).
func Keystream(api frontend.API, key [32]uints.U8, nonce [12]uints.U8, n int) ([]uints.U8, error) {
	uapi, err := uints.New[uints.U32](api)
	if err != nil {
		return nil, err
	}

	// State template: constants, key words, counter (set per block), nonce
	// words. Key and nonce are packed little-endian per RFC 8439.
	var tmpl [16]uints.U32
	for i, c := range sigma {
		tmpl[i] = uints.NewU32(c)
	}
	for i := 0; i < 8; i++ {
		tmpl[4+i] = uapi.PackLSB(key[4*i], key[4*i+1], key[4*i+2], key[4*i+3])
	}
	for i := 0; i < 3; i++ {
		tmpl[13+i] = uapi.PackLSB(nonce[4*i], nonce[4*i+1], nonce[4*i+2], nonce[4*i+3])
	}

	nBlocks := (n + BlockSize - 1) / BlockSize
	out := make([]uints.U8, 0, nBlocks*BlockSize)

	for block := 0; block < nBlocks; block++ {
		init := tmpl
		init[12] = uints.NewU32(uint32(block))

		s := init
		for r := 0; r < 10; r++ {
			quarterRound(uapi, &s, 0, 4, 8, 12)
			quarterRound(uapi, &s, 1, 5, 9, 13)
			quarterRound(uapi, &s, 2, 6, 10, 14)
			quarterRound(uapi, &s, 3, 7, 11, 15)
			quarterRound(uapi, &s, 0, 5, 10, 15)
			quarterRound(uapi, &s, 1, 6, 11, 12)
			quarterRound(uapi, &s, 2, 7, 8, 13)
			quarterRound(uapi, &s, 3, 4, 9, 14)
		}
		for i := range s {
			s[i] = uapi.Add(s[i], init[i])
		}
		for i := 0; i < 16; i++ {
			out = append(out, uapi.UnpackLSB(s[i])...)
		}
	}

	return out[:n], nil
}
