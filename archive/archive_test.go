package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jianshu93/lash/sketch"
)

func TestPutUvarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 255, 256, 65535, 1 << 32, ^uint64(0)}
	for _, v := range values {
		var buf [8]byte
		n := putUvarint(buf[:], v)
		got := uvarint(buf[:n], n)
		if got != v {
			t.Errorf("uvarint(putUvarint(%d)) = %d", v, got)
		}
	}
}

func TestFramedRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{1, 2, 3},
		bytes.Repeat([]byte{0xab}, 1000),
	}
	var buf bytes.Buffer
	for _, p := range payloads {
		if err := writeFramed(&buf, p); err != nil {
			t.Fatal(err)
		}
	}
	for _, want := range payloads {
		got, err := readFramed(&buf)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("readFramed = %v, want %v", got, want)
		}
	}
}

func buildTestSketches(t *testing.T, n int) []sketch.Sketch {
	t.Helper()
	sketches := make([]sketch.Sketch, n)
	for i := 0; i < n; i++ {
		sk, err := sketch.New(sketch.Params{Algorithm: sketch.HLL, Precision: 10})
		if err != nil {
			t.Fatal(err)
		}
		for j := uint64(0); j < uint64(100*(i+1)); j++ {
			sk.Add(j)
		}
		sketches[i] = sk
	}
	return sketches
}

func TestWriteLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "sample")
	files := []string{"a.fasta", "b.fasta", "c.fasta"}
	params := Parameters{K: 21, Algorithm: "hll", Precision: 10}
	sketches := buildTestSketches(t, len(files))

	if err := Write(prefix, files, params, sketches, 2); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(prefix)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Files) != len(files) {
		t.Fatalf("loaded %d files, want %d", len(loaded.Files), len(files))
	}
	for i, f := range files {
		if loaded.Files[i] != f {
			t.Errorf("file %d = %s, want %s", i, loaded.Files[i], f)
		}
	}
	if loaded.Parameters.K != 21 || loaded.Parameters.Algorithm != "hll" {
		t.Errorf("parameters mismatch: %+v", loaded.Parameters)
	}
	if len(loaded.Sketches) != len(sketches) {
		t.Fatalf("loaded %d sketches, want %d", len(loaded.Sketches), len(sketches))
	}
	for i, sk := range sketches {
		want := sk.Estimate()
		got := loaded.Sketches[i].Estimate()
		if got != want {
			t.Errorf("sketch %d estimate = %v, want %v", i, got, want)
		}
	}
}

// Writing the same sketches twice must produce byte-identical archives.
func TestWriteIsReproducible(t *testing.T) {
	dir := t.TempDir()
	files := []string{"x.fa", "y.fa"}
	params := Parameters{K: 15, Algorithm: "hll", Precision: 9}

	prefix1 := filepath.Join(dir, "run1")
	if err := Write(prefix1, files, params, buildTestSketches(t, 2), 1); err != nil {
		t.Fatal(err)
	}
	prefix2 := filepath.Join(dir, "run2")
	if err := Write(prefix2, files, params, buildTestSketches(t, 2), 1); err != nil {
		t.Fatal(err)
	}

	b1, err := os.ReadFile(prefix1 + sketchesSuffix)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := os.ReadFile(prefix2 + sketchesSuffix)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b1, b2) {
		t.Errorf("sketches.bin differs across identical runs")
	}
}

func TestDiscoverPrefix(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "sample")
	if err := Write(prefix, []string{"a.fa"}, Parameters{K: 21, Algorithm: "hll", Precision: 9}, buildTestSketches(t, 1), 1); err != nil {
		t.Fatal(err)
	}

	found, err := DiscoverPrefix(dir)
	if err != nil {
		t.Fatal(err)
	}
	if found != prefix {
		t.Errorf("DiscoverPrefix = %s, want %s", found, prefix)
	}
}

func TestDiscoverPrefixAmbiguous(t *testing.T) {
	dir := t.TempDir()
	params := Parameters{K: 21, Algorithm: "hll", Precision: 9}
	if err := Write(filepath.Join(dir, "one"), []string{"a.fa"}, params, buildTestSketches(t, 1), 1); err != nil {
		t.Fatal(err)
	}
	if err := Write(filepath.Join(dir, "two"), []string{"b.fa"}, params, buildTestSketches(t, 1), 1); err != nil {
		t.Fatal(err)
	}
	if _, err := DiscoverPrefix(dir); err == nil {
		t.Errorf("expected error for ambiguous prefixes")
	}
}

func TestDiscoverPrefixNone(t *testing.T) {
	dir := t.TempDir()
	if _, err := DiscoverPrefix(dir); err == nil {
		t.Errorf("expected error for empty directory")
	}
}
