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

// Package sketcher drives the per-file sketching pipeline: read every
// sequence record of a FASTA/Q file, filter it down to in-alphabet runs,
// enumerate canonical k-mers over each run, and accumulate them into one
// sketch per file.
package sketcher

import (
	"io"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"

	"github.com/jianshu93/lash/kmer"
)

func init() {
	// Sequences retrieved from public archives routinely contain
	// ambiguity codes; rejecting the whole record on the first one
	// would defeat the alphabet filter below, so skip bio/seq's own
	// validation and let the filter decide instead.
	seq.ValidateSeq = false
}

// readFilteredSegments reads every record of file and returns the
// contiguous runs of in-alphabet bytes across the whole file, each run
// uppercased in place. A gap (ambiguity code, gap character, line break
// between records) ends a run rather than being silently bridged, so no
// enumerated k-mer spans one.
func readFilteredSegments(file string, aminoAcid bool) ([][]byte, error) {
	reader, err := fastx.NewDefaultReader(file)
	if err != nil {
		return nil, err
	}

	isValid := isValidBase
	if aminoAcid {
		isValid = kmer.IsAminoAcid
	}

	var segments [][]byte
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		segments = append(segments, filterRuns(record.Seq.Seq, isValid)...)
	}
	return segments, nil
}

func isValidBase(b byte) bool {
	switch b {
	case 'A', 'a', 'C', 'c', 'G', 'g', 'T', 't':
		return true
	default:
		return false
	}
}

// filterRuns splits buf into maximal contiguous runs of bytes accepted by
// isValid, upper-casing each run. Runs shorter than 1 byte are dropped;
// the caller is responsible for dropping runs shorter than k.
func filterRuns(buf []byte, isValid func(byte) bool) [][]byte {
	var runs [][]byte
	start := -1
	for i, b := range buf {
		if isValid(b) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, upper(buf[start:i]))
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, upper(buf[start:]))
	}
	return runs
}

func upper(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			out[i] = c - ('a' - 'A')
		} else {
			out[i] = c
		}
	}
	return out
}
