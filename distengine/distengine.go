// Package distengine computes pairwise mutation-distance estimates
// between two sketch archives: a similarity per algorithm,
// converted to a distance under the Poisson or binomial mutation model.
package distengine

import (
	"math"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/twotwotwo/sorts/sortutil"

	"github.com/jianshu93/lash/archive"
	"github.com/jianshu93/lash/sketch"
)

// DistanceModel names the mutation-rate model a similarity is converted
// through.
type DistanceModel string

const (
	ModelPoisson  DistanceModel = "poisson"
	ModelBinomial DistanceModel = "binomial"
)

// Options configures a distance run.
type Options struct {
	Model DistanceModel
	// Estimator overrides the ULL cardinality estimator ("fgra" or
	// "ml") used when computing similarity; the zero value keeps
	// whichever estimator the archive was built with.
	Estimator string
	Threads   int
	// Matrix requests triangular all-vs-all emission instead of the
	// default reference x query cross product; only valid when the
	// reference and query archives share the exact same file list.
	Matrix bool
}

// Pair is one reference/query comparison result.
type Pair struct {
	Reference  string
	Query      string
	Similarity float64
	Distance   float64
}

// ErrArchiveMismatch means the reference and query archives were built
// with different k, algorithm, precision, estimator, seed, or molecule and
// cannot be compared.
var ErrArchiveMismatch = errors.New("distengine: reference and query archives have incompatible parameters")

// ErrNotComparable means matrix mode was requested but the two archives
// do not contain the same file list.
var ErrNotComparable = errors.New("distengine: --dm requires identical reference and query file lists")

// Compute loads the reference and query archives at the given prefixes,
// validates their parameters match, and returns every requested pair.
func Compute(refPrefix, queryPrefix string, opt Options) ([]Pair, error) {
	ref, err := archive.Load(refPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "distengine: load reference archive")
	}
	query, err := archive.Load(queryPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "distengine: load query archive")
	}
	if !sameParameters(ref.Parameters, query.Parameters) {
		return nil, ErrArchiveMismatch
	}

	params := ref.Parameters.SketchParams()
	if opt.Estimator != "" {
		params.Estimator = opt.Estimator
	}

	if opt.Matrix {
		if !sameFileList(ref.Files, query.Files) {
			return nil, ErrNotComparable
		}
		pairs, err := computeTriangular(ref, params, opt)
		if err != nil {
			return nil, err
		}
		// Triangular pairs are written into row-major position directly
		// (see computeTriangular) and must stay in that order for the
		// matrix renderer's row/column bookkeeping, so they skip the
		// alphabetical sort applied to cross-mode output below.
		return pairs, nil
	}

	pairs, err := computeCross(ref, query, params, opt)
	if err != nil {
		return nil, err
	}
	return sortPairs(pairs), nil
}

// sortPairs imposes a deterministic reference-then-query order on the
// comparison results, since the workers above finish in scheduling order,
// not submission order. Keys are sorted with sortutil, a parallel sort
// over plain strings, and the pairs are then looked up back out by key.
func sortPairs(pairs []Pair) []Pair {
	byKey := make(map[string][]Pair, len(pairs))
	keys := make([]string, 0, len(pairs))
	for _, p := range pairs {
		key := p.Reference + "\x00" + p.Query
		if _, ok := byKey[key]; !ok {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], p)
	}
	sortutil.Strings(keys)

	sorted := make([]Pair, 0, len(pairs))
	for _, key := range keys {
		sorted = append(sorted, byKey[key]...)
	}
	return sorted
}

// TriangularRow slices out reference row i (0-indexed) from the flat pair
// list Compute returns for Options.Matrix runs: row i holds i+1 pairs, for
// queries j <= i.
func TriangularRow(pairs []Pair, i int) []Pair {
	offset := i * (i + 1) / 2
	return pairs[offset : offset+i+1]
}

func sameParameters(a, b archive.Parameters) bool {
	return a.K == b.K && a.Algorithm == b.Algorithm && a.Precision == b.Precision &&
		a.Estimator == b.Estimator && a.Seed == b.Seed && a.Molecule == b.Molecule
}

func sameFileList(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// computeCross compares every query sketch against every reference
// sketch: one outer task per query, sequential over references inside
// it, with a mutex-protected sink so results can be written out in
// whatever order workers finish without interleaving.
func computeCross(ref, query *archive.Archive, params sketch.Params, opt Options) ([]Pair, error) {
	threads := opt.Threads
	if threads < 1 {
		threads = 1
	}
	k := ref.Parameters.K

	var mu sync.Mutex
	var pairs []Pair
	errs := make([]error, len(query.Files))
	token := make(chan struct{}, threads)
	var wg sync.WaitGroup

	for qi := range query.Files {
		token <- struct{}{}
		wg.Add(1)
		go func(qi int) {
			defer func() {
				<-token
				wg.Done()
			}()
			local := make([]Pair, 0, len(ref.Files))
			for ri := range ref.Files {
				p, err := comparePair(ref.Files[ri], ref.Sketches[ri], query.Files[qi], query.Sketches[qi], params, k, opt.Model)
				if err != nil {
					errs[qi] = err
					return
				}
				local = append(local, p)
			}
			mu.Lock()
			pairs = append(pairs, local...)
			mu.Unlock()
		}(qi)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return pairs, nil
}

// computeTriangular emits each unordered pair once (including the
// diagonal) when the reference and query file lists are identical,
// avoiding the redundant symmetric half of a full cross product. Row i
// (0-indexed) holds exactly i+1 pairs, for queries j <= i, and is
// written directly into its row-major slot in the flat output so the
// result stays in reference/query index order without a final sort —
// the order the matrix renderer depends on.
func computeTriangular(ref *archive.Archive, params sketch.Params, opt Options) ([]Pair, error) {
	threads := opt.Threads
	if threads < 1 {
		threads = 1
	}
	k := ref.Parameters.K
	n := len(ref.Files)

	pairs := make([]Pair, n*(n+1)/2)
	errs := make([]error, n)
	token := make(chan struct{}, threads)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		token <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer func() {
				<-token
				wg.Done()
			}()
			offset := i * (i + 1) / 2
			for j := 0; j <= i; j++ {
				p, err := comparePair(ref.Files[i], ref.Sketches[i], ref.Files[j], ref.Sketches[j], params, k, opt.Model)
				if err != nil {
					errs[i] = err
					return
				}
				pairs[offset+j] = p
			}
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return pairs, nil
}

// comparePair computes one reference/query similarity and distance.
// Files sharing a basename are treated as the same genome re-sketched
// under a different path and short-circuit to distance 0, matching the
// source's basename self-match behavior.
func comparePair(refFile string, refSketch sketch.Sketch, queryFile string, querySketch sketch.Sketch, params sketch.Params, k int, model DistanceModel) (Pair, error) {
	if filepath.Base(refFile) == filepath.Base(queryFile) {
		return Pair{Reference: refFile, Query: queryFile, Similarity: 1, Distance: 0}, nil
	}

	sim, err := similarity(refSketch, querySketch, params)
	if err != nil {
		return Pair{}, err
	}
	return Pair{
		Reference:  refFile,
		Query:      queryFile,
		Similarity: sim,
		Distance:   distance(sim, k, model),
	}, nil
}

// similarity returns the Jaccard similarity between a and b. HMH
// estimates it directly; HLL and ULL have no native pairwise estimator,
// so it falls back to inclusion-exclusion over a cloned union:
// |A∩B|/|A∪B| = (|A|+|B|-|A∪B|)/|A∪B|. a and b are first re-cloned
// through params so an Estimator override (the ULL fgra/ml choice)
// applies uniformly to both operands and their union, not just the
// union.
func similarity(a, b sketch.Sketch, params sketch.Params) (float64, error) {
	if sim, ok := a.(sketch.Similaritor); ok {
		return sim.Similarity(b)
	}

	a, err := cloneSketch(a, params)
	if err != nil {
		return 0, err
	}
	b, err = cloneSketch(b, params)
	if err != nil {
		return 0, err
	}

	union, err := cloneSketch(a, params)
	if err != nil {
		return 0, err
	}
	if err := union.Merge(b); err != nil {
		return 0, err
	}

	eu := union.Estimate()
	if eu <= 0 {
		return 0, nil
	}
	inter := a.Estimate() + b.Estimate() - eu
	if inter < 0 {
		inter = 0
	}
	return inter / eu, nil
}

func cloneSketch(s sketch.Sketch, params sketch.Params) (sketch.Sketch, error) {
	data, err := s.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return sketch.Unmarshal(params, data)
}

// distance converts a Jaccard similarity to a mutation-rate distance
// under k-mer length k. similarity<=0 is treated as maximal
// distance directly, rather than substituting a tiny epsilon similarity
// into the formula; the result is additionally floored at zero to
// absorb floating-point overshoot from sketch estimation noise near
// similarity==1, rather than special-casing that input.
func distance(similarity float64, k int, model DistanceModel) float64 {
	if similarity <= 0 {
		return 1.0
	}
	f := 2 * similarity / (1 + similarity)
	switch model {
	case ModelBinomial:
		d := 1 - math.Pow(f, 1.0/float64(k))
		return math.Max(0, d)
	default: // ModelPoisson
		d := -math.Log(f) / float64(k)
		d = math.Max(0, d)
		return math.Min(1, d)
	}
}
