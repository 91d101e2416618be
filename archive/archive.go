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

// Package archive reads and writes the on-disk sketch archive triple:
// <prefix>_sketches.bin (zstd-compressed, length-prefixed sketch
// payloads), <prefix>_files.json (the ordered input file list) and
// <prefix>_parameters.json (the algorithm and its parameters).
package archive

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/jianshu93/lash/sketch"
)

const (
	sketchesSuffix   = "_sketches.bin"
	filesSuffix      = "_files.json"
	parametersSuffix = "_parameters.json"
)

// Molecule names the alphabet a sketch's k-mers were drawn from.
const (
	Nucleotide = "nucleotide"
	AminoAcid  = "amino_acid"
)

// Parameters records the sketch configuration an archive was built with.
// Two archives can only be compared if these match exactly.
type Parameters struct {
	K         int    `json:"k"`
	Algorithm string `json:"algorithm"`
	Seed      uint64 `json:"seed"`
	Precision int    `json:"precision,omitempty"`
	Estimator string `json:"estimator,omitempty"`
	Molecule  string `json:"molecule"`
}

// SketchParams adapts Parameters to the sketch package's construction
// contract.
func (p Parameters) SketchParams() sketch.Params {
	return sketch.Params{
		Algorithm: sketch.Algorithm(p.Algorithm),
		Precision: p.Precision,
		Estimator: p.Estimator,
	}
}

// Archive is a fully loaded sketch triple: one sketch per input file, in
// the same order as Files.
type Archive struct {
	Prefix     string
	Files      []string
	Parameters Parameters
	Sketches   []sketch.Sketch
}

// Write serializes sketches (one per entry of files, same order) into the
// three sidecar files at <prefix>_*. Sketches are written in input-list
// order, not map/goroutine completion order, so the output is
// byte-for-byte reproducible across runs. threads
// sets the zstd encoder's concurrency, mirroring the source's
// multithreaded level-3 encoder.
func Write(prefix string, files []string, params Parameters, sketches []sketch.Sketch, threads int) error {
	if len(files) != len(sketches) {
		return errors.New("archive: files and sketches length mismatch")
	}
	if threads < 1 {
		threads = 1
	}

	var body bytes.Buffer
	enc, err := zstd.NewWriter(&body,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(3)),
		zstd.WithEncoderConcurrency(threads),
	)
	if err != nil {
		return errors.Wrap(err, "archive: create zstd encoder")
	}
	for i, sk := range sketches {
		payload, err := sk.MarshalBinary()
		if err != nil {
			return errors.Wrapf(err, "archive: marshal sketch %d", i)
		}
		if err := writeFramed(enc, payload); err != nil {
			return errors.Wrapf(err, "archive: write sketch %d", i)
		}
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, "archive: close zstd encoder")
	}

	if err := os.WriteFile(prefix+sketchesSuffix, body.Bytes(), 0644); err != nil {
		return errors.Wrap(err, "archive: write sketches file")
	}

	filesJSON, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return errors.Wrap(err, "archive: marshal files.json")
	}
	if err := os.WriteFile(prefix+filesSuffix, filesJSON, 0644); err != nil {
		return errors.Wrap(err, "archive: write files.json")
	}

	paramsJSON, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return errors.Wrap(err, "archive: marshal parameters.json")
	}
	if err := os.WriteFile(prefix+parametersSuffix, paramsJSON, 0644); err != nil {
		return errors.Wrap(err, "archive: write parameters.json")
	}
	return nil
}

// Load reads and validates an archive triple for the given prefix.
func Load(prefix string) (*Archive, error) {
	var files []string
	if err := readJSON(prefix+filesSuffix, &files); err != nil {
		return nil, err
	}
	var params Parameters
	if err := readJSON(prefix+parametersSuffix, &params); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(prefix + sketchesSuffix)
	if err != nil {
		return nil, errors.Wrap(err, "archive: read sketches file")
	}
	dec, err := zstd.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "archive: create zstd decoder")
	}
	defer dec.Close()

	sketches := make([]sketch.Sketch, 0, len(files))
	sp := params.SketchParams()
	for i := range files {
		payload, err := readFramed(dec)
		if err != nil {
			return nil, errors.Wrapf(err, "archive: read sketch %d", i)
		}
		sk, err := sketch.Unmarshal(sp, payload)
		if err != nil {
			return nil, errors.Wrapf(err, "archive: decode sketch %d", i)
		}
		sketches = append(sketches, sk)
	}

	return &Archive{Prefix: prefix, Files: files, Parameters: params, Sketches: sketches}, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "archive: read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "archive: parse %s", path)
	}
	return nil
}

// DiscoverPrefix scans dir for a single unambiguous archive triple: a
// basename such that <basename>_sketches.bin, <basename>_files.json and
// <basename>_parameters.json all exist as siblings. Exactly one such
// basename must be found; zero or more than one is an error.
func DiscoverPrefix(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrap(err, "archive: scan directory")
	}

	have := map[string]int{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch {
		case strings.HasSuffix(name, sketchesSuffix):
			have[strings.TrimSuffix(name, sketchesSuffix)]++
		case strings.HasSuffix(name, filesSuffix):
			have[strings.TrimSuffix(name, filesSuffix)]++
		case strings.HasSuffix(name, parametersSuffix):
			have[strings.TrimSuffix(name, parametersSuffix)]++
		}
	}

	var complete []string
	for base, count := range have {
		if count == 3 {
			complete = append(complete, base)
		}
	}
	sort.Strings(complete)

	switch len(complete) {
	case 0:
		return "", errors.New("archive: no complete sketch archive found in " + dir)
	case 1:
		return filepath.Join(dir, complete[0]), nil
	default:
		return "", errors.Errorf("archive: ambiguous archive prefixes in %s: %v", dir, complete)
	}
}

