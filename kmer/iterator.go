// Copyright © 2018-2020 Wei Shen <shenwei356@gmail.com>
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

// ErrShortSeq means the filtered sequence is shorter than k.
var ErrShortSeq = errors.New("kmer: sequence shorter than k")

// tier identifies which of the three packed encoders a given
// k selects. The source used distinct 32-bit and 64-bit native integer
// types per tier for memory density; this port keeps all three as
// uint64-masked code but preserves the dispatch so behavior (and the
// k=15 rejection) matches spec exactly.
type tier uint8

const (
	tier32          tier = iota // k <= 14, fits a masked 32-bit value
	tier16dedicated             // k == 16, dedicated 32-bit-16-base path
	tier64                      // 17 <= k <= 32, needs the full 64 bits
)

func selectTier(k int) (tier, error) {
	if err := CheckK(k); err != nil {
		return 0, err
	}
	switch {
	case k <= 14:
		return tier32, nil
	case k == 16:
		return tier16dedicated, nil
	default: // 17..32
		return tier64, nil
	}
}

// Enumerator yields every contiguous length-k window of a filtered base
// or residue buffer as a canonical, masked integer k-mer.
// The alphabet filter is assumed to have already run: every byte in seq
// is in-alphabet, so windows never need to be split around gaps.
type Enumerator struct {
	seq []byte
	k   int
	aa  bool
	t   tier

	idx, end int
	first    bool
	code     uint64
}

// NewEnumerator builds an Enumerator over an already-filtered buffer.
// For nucleotide mode k must satisfy the valid range (k=15 is rejected
// with ErrK15Unsupported); for amino-acid mode k must be in [1,12].
func NewEnumerator(seq []byte, k int, aminoAcid bool) (*Enumerator, error) {
	if aminoAcid {
		if err := CheckAAK(k); err != nil {
			return nil, err
		}
	} else {
		t, err := selectTier(k)
		if err != nil {
			return nil, err
		}
		if len(seq) < k {
			return nil, ErrShortSeq
		}
		return &Enumerator{seq: seq, k: k, t: t, end: len(seq) - k, first: true}, nil
	}
	if len(seq) < k {
		return nil, ErrShortSeq
	}
	return &Enumerator{seq: seq, k: k, aa: true, end: len(seq) - k, first: true}, nil
}

// Next returns the next canonical masked k-mer code, or ok=false once the
// buffer is exhausted.
func (e *Enumerator) Next() (code uint64, ok bool, err error) {
	if e.idx > e.end {
		return 0, false, nil
	}

	window := e.seq[e.idx : e.idx+e.k]

	if e.aa {
		code, err = e.nextAA(window)
	} else {
		code, err = e.nextNucleotide(window)
	}
	if err != nil {
		return 0, false, err
	}

	e.code = code
	e.idx++
	e.first = false

	if e.aa {
		return CanonicalAA(code, e.k), true, nil
	}
	return Canonical(code, e.k), true, nil
}

func (e *Enumerator) nextNucleotide(window []byte) (uint64, error) {
	// The three tiers share the same masked-uint64 arithmetic in Go; the
	// dispatch is kept distinct (rather than collapsed into one path)
	// because it is exactly the tier boundary that matters for dispatch,
	// and it is what fails fast on k=15 before any work starts.
	switch e.t {
	case tier32, tier16dedicated, tier64:
		if e.first {
			return Encode(window)
		}
		return EncodeFromFormer(window, e.code, e.k)
	default:
		return 0, ErrKOverflow
	}
}

func (e *Enumerator) nextAA(window []byte) (uint64, error) {
	if e.first {
		return EncodeAA(window)
	}
	return EncodeAAFromFormer(window, e.code, e.k)
}

// Index returns the 0-based start offset of the window last returned by
// Next.
func (e *Enumerator) Index() int {
	return e.idx - 1
}
