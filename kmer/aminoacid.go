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

package kmer

import "errors"

// ErrAAKOverflow means k is outside the supported amino-acid range [1,12].
var ErrAAKOverflow = errors.New("kmer: amino-acid k (1-12) overflow")

// aaAlphabet is the 20 standard residues, in an arbitrary but fixed order
// used to assign each one a 5-bit code.
var aaAlphabet = [20]byte{
	'A', 'R', 'N', 'D', 'C', 'Q', 'E', 'G', 'H', 'I',
	'L', 'K', 'M', 'F', 'P', 'S', 'T', 'W', 'Y', 'V',
}

var aaCode [256]int8

func init() {
	for i := range aaCode {
		aaCode[i] = -1
	}
	for i, r := range aaAlphabet {
		aaCode[r] = int8(i)
		if r >= 'A' && r <= 'Z' {
			aaCode[r-'A'+'a'] = int8(i)
		}
	}
}

// IsAminoAcid reports whether b is one of the 20 standard residues.
func IsAminoAcid(b byte) bool {
	return aaCode[b] >= 0
}

// CheckAAK validates an amino-acid k value against the supported range [1,12].
func CheckAAK(k int) error {
	if k < 1 || k > 12 {
		return ErrAAKOverflow
	}
	return nil
}

// AAMask returns a mask of the low 5k bits.
func AAMask(k int) uint64 {
	b := uint(5 * k)
	if b >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << b) - 1
}

// EncodeAA packs a length-k residue window into a 5-bits/residue integer.
func EncodeAA(mer []byte) (uint64, error) {
	var code uint64
	for i := range mer {
		c := aaCode[mer[i]]
		if c < 0 {
			return 0, ErrIllegalBase
		}
		code = (code << 5) | uint64(c)
	}
	return code, nil
}

// EncodeAAFromFormer is the rolling counterpart of EncodeAA, used by the
// enumerator to avoid re-encoding every residue of every window.
func EncodeAAFromFormer(mer []byte, formerCode uint64, k int) (uint64, error) {
	c := aaCode[mer[k-1]]
	if c < 0 {
		return 0, ErrIllegalBase
	}
	return ((formerCode << 5) & AAMask(k)) | uint64(c), nil
}

// aaRevComp mirrors the residue order the way nucleotide RevComp mirrors
// bases — there is no biological "complement" for residues, so this is
// purely a bit-reversal of the 5-bit groups, matching the source's use of
// `min(fwd, rc)` as a canonicalization device rather than a biological one.
func aaRevComp(code uint64, k int) (c uint64) {
	for i := 0; i < k; i++ {
		c <<= 5
		c |= code & 0x1f
		code >>= 5
	}
	return
}

// CanonicalAA implements the asymmetric amino-acid canonicalization rule:
// identity for k<=6, min(fwd, "reverse complement") for 6<k<=12. Whether
// this asymmetry was an intentional design choice or an artifact of the
// source it was distilled from is unresolved; this preserves the
// observed behavior rather than guessing at a "fixed" symmetric scheme.
func CanonicalAA(code uint64, k int) uint64 {
	code &= AAMask(k)
	if k <= 6 {
		return code
	}
	rc := aaRevComp(code, k) & AAMask(k)
	if rc < code {
		return rc
	}
	return code
}
