// Package rng builds the seeded random sources used for enemy selection.
package rng

import (
	"encoding/binary"
	"math/rand"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Seed derives a stable 64-bit seed from a phrase. An empty phrase yields a
// time-based seed.
func Seed(phrase string) int64 {
	if phrase == "" {
		return time.Now().UnixNano()
	}
	sum := blake2b.Sum256([]byte(phrase))
	return int64(binary.LittleEndian.Uint64(sum[:8]))
}

// New returns a generator seeded from phrase together with the seed used,
// so a run can be replayed.
func New(phrase string) (*rand.Rand, int64) {
	seed := Seed(phrase)
	return rand.New(rand.NewSource(seed)), seed
}
