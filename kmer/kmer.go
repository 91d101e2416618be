// Copyright © 2018 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package kmer encodes nucleotide and amino-acid k-mers into fixed-width
// integers, canonicalizes them, and enumerates them from a filtered
// sequence buffer.
package kmer

import (
	"errors"
)

// ErrIllegalBase means a byte outside {A,C,G,T} (upper/lower) was seen, or,
// from the amino-acid encoders, a byte outside the 20 standard residues.
// The alphabet filter is expected to have already removed everything
// else, so this only fires on programmer error.
var ErrIllegalBase = errors.New("kmer: illegal base")

// ErrKOverflow means k is outside the supported nucleotide range.
var ErrKOverflow = errors.New("kmer: k (1-32, not 15) overflow")

// ErrK15Unsupported means k=15, which the packed 32-bit representation
// cannot cover and is explicitly unsupported.
var ErrK15Unsupported = errors.New("kmer: k=15 is not supported")

// ErrNotConsecutiveKmers means two k-mers are not adjacent windows.
var ErrNotConsecutiveKmers = errors.New("kmer: not consecutive k-mers")

// ErrKMismatch means two KmerCodes have different k.
var ErrKMismatch = errors.New("kmer: k mismatch")

// CheckK validates a nucleotide k value against the valid ranges:
// [1,14] ∪ {16} ∪ [17,32]; k=15 is rejected with ErrK15Unsupported so
// callers can surface the distinct UnsupportedParameter diagnostic.
func CheckK(k int) error {
	if k == 15 {
		return ErrK15Unsupported
	}
	if k < 1 || k > 32 {
		return ErrKOverflow
	}
	return nil
}

// Encode converts a nucleotide k-mer (k<=32) to its 2-bit packed integer.
//
//	A  00
//	C  01
//	G  10
//	T  11
func Encode(mer []byte) (code uint64, err error) {
	k := len(mer)
	if k == 0 || k > 32 {
		return 0, ErrKOverflow
	}
	for i := range mer {
		code <<= 2
		switch mer[i] {
		case 'A', 'a':
			// code |= 0
		case 'C', 'c':
			code |= 1
		case 'G', 'g':
			code |= 2
		case 'T', 't':
			code |= 3
		default:
			return code, ErrIllegalBase
		}
	}
	return code, nil
}

// EncodeFromFormer computes the code for the window one base to the right
// of a previous window, given the previous code, in O(1) instead of
// re-scanning the whole k-mer. mer and former must be adjacent, i.e.
// mer[0:k-1] == former[1:k].
func EncodeFromFormer(mer []byte, formerCode uint64, k int) (uint64, error) {
	code := (formerCode << 2) & Mask(k)
	switch mer[k-1] {
	case 'A', 'a':
		// code |= 0
	case 'C', 'c':
		code |= 1
	case 'G', 'g':
		code |= 2
	case 'T', 't':
		code |= 3
	default:
		return code, ErrIllegalBase
	}
	return code, nil
}

// Mask returns a mask of the low 2k bits, so that `code &^ Mask(k) == 0`
// always holds for a valid k-mer code.
func Mask(k int) uint64 {
	if 2*k >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(2*k)) - 1
}

// Reverse returns the code of the reversed (not complemented) sequence.
func Reverse(code uint64, k int) (c uint64) {
	for i := 0; i < k; i++ {
		c <<= 2
		c |= code & 3
		code >>= 2
	}
	return
}

// Complement returns the code of the complemented (not reversed) sequence.
func Complement(code uint64, k int) (c uint64) {
	for i := 0; i < k; i++ {
		c |= (code&3 ^ 3) << uint(i<<1)
		code >>= 2
	}
	return
}

// RevComp returns the code of the reverse complement sequence.
func RevComp(code uint64, k int) (c uint64) {
	for i := 0; i < k; i++ {
		c <<= 2
		c |= code&3 ^ 3
		code >>= 2
	}
	return
}

// Canonical returns min(code, RevComp(code, k)), masked to 2k bits.
func Canonical(code uint64, k int) uint64 {
	rc := RevComp(code, k) & Mask(k)
	code &= Mask(k)
	if rc < code {
		return rc
	}
	return code
}

var bit2base = [4]byte{'A', 'C', 'G', 'T'}

// Decode converts a code back to its nucleotide sequence.
func Decode(code uint64, k int) []byte {
	mer := make([]byte, k)
	for i := 0; i < k; i++ {
		mer[k-1-i] = bit2base[code&3]
		code >>= 2
	}
	return mer
}

// KmerCode is an integer-encoded k-mer together with its length.
type KmerCode struct {
	Code uint64
	K    int
}

// NewKmerCode encodes a raw k-mer.
func NewKmerCode(mer []byte) (KmerCode, error) {
	code, err := Encode(mer)
	if err != nil {
		return KmerCode{}, err
	}
	return KmerCode{Code: code, K: len(mer)}, nil
}

// Equal reports whether two KmerCodes have the same k and code.
func (kc KmerCode) Equal(other KmerCode) bool {
	return kc.K == other.K && kc.Code == other.Code
}

// Canonical returns the canonical form of kc.
func (kc KmerCode) Canonical() KmerCode {
	return KmerCode{Code: Canonical(kc.Code, kc.K), K: kc.K}
}

// RevComp returns the reverse complement of kc.
func (kc KmerCode) RevComp() KmerCode {
	return KmerCode{Code: RevComp(kc.Code, kc.K) & Mask(kc.K), K: kc.K}
}

// Bytes decodes kc back into a nucleotide byte slice.
func (kc KmerCode) Bytes() []byte {
	return Decode(kc.Code, kc.K)
}

// String returns the nucleotide string for kc.
func (kc KmerCode) String() string {
	return string(kc.Bytes())
}

// Masked reports whether the code's high bits above 2k are clear.
func (kc KmerCode) Masked() bool {
	return kc.Code&^Mask(kc.K) == 0
}
