package distengine

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/jianshu93/lash/archive"
	"github.com/jianshu93/lash/sketch"
)

func TestDistancePoissonClampedAndFloored(t *testing.T) {
	// similarity==0 short-circuits to 1 without evaluating log(0).
	if d := distance(0, 21, ModelPoisson); d != 1.0 {
		t.Errorf("distance(0) = %v, want 1", d)
	}
	// similarity==1 -> f=1 -> ln(1)=0 -> distance 0.
	if d := distance(1, 21, ModelPoisson); d != 0 {
		t.Errorf("distance(1) = %v, want 0", d)
	}
	// a low similarity should never exceed 1 once clamped.
	if d := distance(1e-9, 1, ModelPoisson); d > 1 {
		t.Errorf("distance(1e-9, k=1) = %v, want <= 1", d)
	}
}

func TestDistanceBinomial(t *testing.T) {
	if d := distance(1, 21, ModelBinomial); d != 0 {
		t.Errorf("distance(1) = %v, want 0", d)
	}
	if d := distance(0, 21, ModelBinomial); d != 1.0 {
		t.Errorf("distance(0) = %v, want 1", d)
	}
	// f=2*0.5/1.5=2/3, d=1-(2/3)^(1/21), should be a small positive value.
	d := distance(0.5, 21, ModelBinomial)
	if d <= 0 || d >= 1 {
		t.Errorf("distance(0.5) = %v, want in (0,1)", d)
	}
}

func buildArchive(t *testing.T, dir, name string, files []string, seeds []uint64) string {
	t.Helper()
	prefix := filepath.Join(dir, name)
	sketches := make([]sketch.Sketch, len(files))
	for i := range files {
		sk, err := sketch.New(sketch.Params{Algorithm: sketch.HLL, Precision: 10})
		if err != nil {
			t.Fatal(err)
		}
		for j := uint64(0); j < 5000; j++ {
			sk.Add(j + seeds[i])
		}
		sketches[i] = sk
	}
	params := archive.Parameters{K: 21, Algorithm: "hll", Precision: 10}
	if err := archive.Write(prefix, files, params, sketches, 1); err != nil {
		t.Fatal(err)
	}
	return prefix
}

func TestComputeCrossBasenameSelfMatch(t *testing.T) {
	dir := t.TempDir()
	refPrefix := buildArchive(t, dir, "ref", []string{"genomeA.fasta", "genomeB.fasta"}, []uint64{0, 10000})
	queryPrefix := buildArchive(t, dir, "query", []string{"genomeA.fasta"}, []uint64{0})

	pairs, err := Compute(refPrefix, queryPrefix, Options{Model: ModelPoisson, Threads: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}
	for _, p := range pairs {
		if p.Reference == "genomeA.fasta" {
			if p.Distance != 0 || p.Similarity != 1 {
				t.Errorf("self-match pair = %+v, want distance 0 similarity 1", p)
			}
		}
	}
}

func TestComputeArchiveMismatch(t *testing.T) {
	dir := t.TempDir()
	refPrefix := buildArchive(t, dir, "ref", []string{"a.fasta"}, []uint64{0})

	queryPrefixDir := filepath.Join(dir, "query")
	sk, _ := sketch.New(sketch.Params{Algorithm: sketch.ULL, Precision: 10})
	params := archive.Parameters{K: 15, Algorithm: "ull", Precision: 10}
	if err := archive.Write(queryPrefixDir, []string{"b.fasta"}, params, []sketch.Sketch{sk}, 1); err != nil {
		t.Fatal(err)
	}

	if _, err := Compute(refPrefix, queryPrefixDir, Options{Model: ModelPoisson}); err != ErrArchiveMismatch {
		t.Errorf("err = %v, want ErrArchiveMismatch", err)
	}
}

func TestComputeMatrixRequiresSameFileList(t *testing.T) {
	dir := t.TempDir()
	refPrefix := buildArchive(t, dir, "ref", []string{"a.fasta", "b.fasta"}, []uint64{0, 1000})
	queryPrefix := buildArchive(t, dir, "query", []string{"a.fasta"}, []uint64{0})

	if _, err := Compute(refPrefix, queryPrefix, Options{Model: ModelPoisson, Matrix: true}); err != ErrNotComparable {
		t.Errorf("err = %v, want ErrNotComparable", err)
	}
}

func TestComputeMatrixTriangular(t *testing.T) {
	dir := t.TempDir()
	files := []string{"a.fasta", "b.fasta", "c.fasta"}
	refPrefix := buildArchive(t, dir, "ref", files, []uint64{0, 1000, 2000})

	pairs, err := Compute(refPrefix, refPrefix, Options{Model: ModelPoisson, Matrix: true, Threads: 2})
	if err != nil {
		t.Fatal(err)
	}
	want := len(files) * (len(files) + 1) / 2
	if len(pairs) != want {
		t.Fatalf("got %d pairs, want %d (triangular incl. diagonal)", len(pairs), want)
	}
}

func TestSimilarityUnionFallback(t *testing.T) {
	a, _ := sketch.New(sketch.Params{Algorithm: sketch.HLL, Precision: 11})
	b, _ := sketch.New(sketch.Params{Algorithm: sketch.HLL, Precision: 11})
	for i := uint64(0); i < 10000; i++ {
		a.Add(i)
	}
	for i := uint64(5000); i < 15000; i++ {
		b.Add(i)
	}
	sim, err := similarity(a, b, sketch.Params{Algorithm: sketch.HLL, Precision: 11})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(sim-1.0/3.0) > 0.1 {
		t.Errorf("similarity = %v, want ~0.333", sim)
	}
}
