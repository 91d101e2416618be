package sketch

import (
	"github.com/apache/datasketches-go/hll"
)

// hllSketch wraps apache/datasketches-go/hll. HLL has no native pairwise
// similarity, so the distance engine falls back to inclusion-exclusion:
// |union| via Merge, |A|+|B|-|union| over the union's Estimate.
type hllSketch struct {
	precision int
	sk        hll.HllSketch
}

func newHLL(precision int) (*hllSketch, error) {
	if precision < 4 || precision > 21 {
		return nil, ErrInvalidPrecision
	}
	sk, err := hll.NewHllSketch(precision, hll.TgtHllTypeHll8)
	if err != nil {
		return nil, err
	}
	return &hllSketch{precision: precision, sk: sk}, nil
}

func (h *hllSketch) Algorithm() Algorithm { return HLL }

func (h *hllSketch) Add(hash uint64) {
	h.sk.UpdateUInt64(hash)
}

// Merge replaces h's sketch with the union of h and other: after Merge,
// h's Estimate is the cardinality of the combined set.
func (h *hllSketch) Merge(other Sketch) error {
	o, ok := other.(*hllSketch)
	if !ok {
		return ErrAlgorithmMismatch
	}
	if o.precision != h.precision {
		return ErrPrecisionMismatch
	}
	union, err := hll.NewUnion(h.precision)
	if err != nil {
		return err
	}
	if err := union.UpdateSketch(h.sk); err != nil {
		return err
	}
	if err := union.UpdateSketch(o.sk); err != nil {
		return err
	}
	result, err := union.GetResult(hll.TgtHllTypeHll8)
	if err != nil {
		return err
	}
	h.sk = result
	return nil
}

func (h *hllSketch) Estimate() float64 {
	est, err := h.sk.GetEstimate()
	if err != nil {
		return 0
	}
	return est
}

func (h *hllSketch) MarshalBinary() ([]byte, error) {
	return h.sk.ToCompactSlice()
}

func unmarshalHLL(precision int, data []byte) (*hllSketch, error) {
	sk, err := hll.NewHllSketchFromSlice(data, false)
	if err != nil {
		return nil, err
	}
	return &hllSketch{precision: precision, sk: sk}, nil
}
