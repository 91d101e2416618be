package kmer

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// HashCode hashes a masked k-mer code into a 64-bit value seeded by seed,
// for use as the HLL/ULL sketch item hash. The code is first
// written out in its natural little-endian byte form so that the hash
// depends only on the numeric value, not on which tier encoded it.
func HashCode(code uint64, seed uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], code)
	return xxh3.HashSeed(buf[:], seed)
}
