package sketcher

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/jianshu93/lash/kmer"
	"github.com/jianshu93/lash/sketch"
)

// Options configures a sketching run.
type Options struct {
	K         int
	AminoAcid bool
	Params    sketch.Params
	Seed      uint64
	Threads   int
}

// Result is one file's completed sketch, or the error that aborted it.
type Result struct {
	File   string
	Sketch sketch.Sketch
	Err    error
}

// SketchFiles builds one sketch per file, fanning the work out across
// opt.Threads workers, one task per file with no intra-file parallelism.
// Results are written directly into a slice indexed by the
// file's position in the input list, not collected from goroutine
// completion order, so two runs over the same input produce identical
// archives regardless of scheduling.
func SketchFiles(files []string, opt Options) ([]Result, error) {
	results := make([]Result, len(files))

	threads := opt.Threads
	if threads < 1 {
		threads = 1
	}

	token := make(chan struct{}, threads)
	var wg sync.WaitGroup

	for i, file := range files {
		token <- struct{}{}
		wg.Add(1)
		go func(i int, file string) {
			defer func() {
				<-token
				wg.Done()
			}()
			sk, err := sketchFile(file, opt)
			results[i] = Result{File: file, Sketch: sk, Err: err}
		}(i, file)
	}
	wg.Wait()

	for _, r := range results {
		if r.Err != nil {
			return results, errors.Wrapf(r.Err, "sketcher: %s", r.File)
		}
	}
	return results, nil
}

// sketchFile reads one file's sequence records, enumerates canonical
// k-mers over every in-alphabet run, and accumulates them into a single
// sketch. A file that yields zero k-mers (too short, or entirely out of
// alphabet) still produces a valid, empty sketch rather than an error.
func sketchFile(file string, opt Options) (sketch.Sketch, error) {
	segments, err := readFilteredSegments(file, opt.AminoAcid)
	if err != nil {
		return nil, err
	}

	sk, err := sketch.New(opt.Params)
	if err != nil {
		return nil, err
	}

	for _, seg := range segments {
		if len(seg) < opt.K {
			continue
		}
		enum, err := kmer.NewEnumerator(seg, opt.K, opt.AminoAcid)
		if err != nil {
			return nil, err
		}
		for {
			code, ok, err := enum.Next()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			addToSketch(sk, code, opt)
		}
	}
	return sk, nil
}

// addToSketch feeds one canonical k-mer code into sk. HMH hashes its own
// input, so it gets the raw code; HLL and ULL need the code pre-hashed
// with the run's shared seed.
func addToSketch(sk sketch.Sketch, code uint64, opt Options) {
	if opt.Params.Algorithm == sketch.HMH {
		sk.Add(code)
		return
	}
	sk.Add(kmer.HashCode(code, opt.Seed))
}
