package sketch

import (
	"encoding/binary"

	"github.com/axiomhq/hyperminhash"
)

// hmhSketch wraps axiomhq/hyperminhash, the only sketch family with a
// native pairwise similarity estimator. Unlike HLL/ULL, HMH hashes its
// own input internally, so Add receives the raw masked k-mer code
// rather than a pre-hashed value.
type hmhSketch struct {
	sk *hyperminhash.Sketch
}

func newHMH() *hmhSketch {
	return &hmhSketch{sk: hyperminhash.New()}
}

func (h *hmhSketch) Algorithm() Algorithm { return HMH }

func (h *hmhSketch) Add(code uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], code)
	h.sk.Add(buf[:])
}

func (h *hmhSketch) Merge(other Sketch) error {
	o, ok := other.(*hmhSketch)
	if !ok {
		return ErrAlgorithmMismatch
	}
	return h.sk.Merge(o.sk)
}

func (h *hmhSketch) Estimate() float64 {
	return float64(h.sk.Cardinality())
}

// Similarity returns the native HMH Jaccard similarity estimate between h
// and other, used directly by the distance engine's similarity table.
func (h *hmhSketch) Similarity(other Sketch) (float64, error) {
	o, ok := other.(*hmhSketch)
	if !ok {
		return 0, ErrAlgorithmMismatch
	}
	return h.sk.Similarity(o.sk), nil
}

func (h *hmhSketch) MarshalBinary() ([]byte, error) {
	return h.sk.MarshalBinary()
}

func unmarshalHMH(data []byte) (*hmhSketch, error) {
	sk := hyperminhash.New()
	if err := sk.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &hmhSketch{sk: sk}, nil
}
