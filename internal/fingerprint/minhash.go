package fingerprint

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/bits"
	"math/rand"
	"strings"
	"sync"
)

// shingleSize is the number of words per shingle.
const shingleSize = 3

// mersennePrime is 2^61 - 1, the modulus for the universal hash family.
const mersennePrime = (1 << 61) - 1

// permSeed fixes the permutation parameters so signatures are comparable
// across processes and restarts.
const permSeed = 1

// Signature is a MinHash signature: one minimum hash value per
// permutation. Signatures of equal length approximate the Jaccard
// similarity of the underlying shingle sets.
type Signature []uint64

// permCache holds the (a, b) coefficients of the universal hash family
// h(x) = (a*x + b) mod p, generated lazily per signature length. Cached
// because every signature in a deployment uses the same length. Guarded
// for concurrent pipeline workers.
var (
	permMu    sync.Mutex
	permCache = map[int][][2]uint64{}
)

func permsFor(numPerm int) [][2]uint64 {
	permMu.Lock()
	defer permMu.Unlock()
	if p, ok := permCache[numPerm]; ok {
		return p
	}
	rng := rand.New(rand.NewSource(permSeed))
	params := make([][2]uint64, numPerm)
	for i := range params {
		a := uint64(rng.Int63n(mersennePrime-1)) + 1
		b := uint64(rng.Int63n(mersennePrime))
		params[i] = [2]uint64{a, b}
	}
	permCache[numPerm] = params
	return params
}

// MinHash computes a MinHash signature over 3-word shingles of the
// whitespace-tokenized text. Empty or near-empty text (fewer words than
// one shingle) yields a degenerate signature that Empty reports as
// carrying no signal; it never matches anything.
func MinHash(text string, numPerm int) Signature {
	sig := make(Signature, numPerm)
	for i := range sig {
		sig[i] = mersennePrime
	}

	words := strings.Fields(text)
	if len(words) < shingleSize {
		return sig
	}

	params := permsFor(numPerm)
	for i := 0; i+shingleSize <= len(words); i++ {
		shingle := strings.Join(words[i:i+shingleSize], " ")

		h := fnv.New64a()
		h.Write([]byte(shingle))
		base := h.Sum64() % mersennePrime

		for j, p := range params {
			// Multiply-add in 128-bit space to avoid overflow before
			// the Mersenne reduction.
			v := mulmod(p[0], base) + p[1]
			v %= mersennePrime
			if v < sig[j] {
				sig[j] = v
			}
		}
	}

	return sig
}

// mulmod returns (a * b) mod 2^61-1 without overflowing uint64.
func mulmod(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	// Fold the high bits back in: 2^64 ≡ 8 (mod 2^61-1).
	res := (lo & mersennePrime) + (lo >> 61) + (hi << 3)
	for res >= mersennePrime {
		res -= mersennePrime
	}
	return res
}

// Empty returns true if the signature carries no signal (no shingle ever
// updated it). Callers should treat empty signatures as "no meaningful
// signature" rather than matching everything.
func (s Signature) Empty() bool {
	for _, v := range s {
		if v != mersennePrime {
			return false
		}
	}
	return true
}

// Jaccard estimates the Jaccard similarity to another signature as the
// fraction of matching slots. Degenerate signatures estimate 0 against
// everything, including each other.
func (s Signature) Jaccard(other Signature) float64 {
	if len(s) == 0 || len(s) != len(other) || s.Empty() || other.Empty() {
		return 0
	}
	matches := 0
	for i := range s {
		if s[i] == other[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(s))
}

// Encode serialises the signature as big-endian uint64s for storage.
func (s Signature) Encode() []byte {
	buf := make([]byte, 8*len(s))
	for i, v := range s {
		binary.BigEndian.PutUint64(buf[i*8:], v)
	}
	return buf
}

// DecodeSignature deserialises a signature produced by Encode.
func DecodeSignature(data []byte) (Signature, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("signature length %d is not a multiple of 8", len(data))
	}
	sig := make(Signature, len(data)/8)
	for i := range sig {
		sig[i] = binary.BigEndian.Uint64(data[i*8:])
	}
	return sig, nil
}
