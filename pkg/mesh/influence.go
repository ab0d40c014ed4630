package mesh

import (
	"encoding/binary"
	gomath "math"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Influence is one bone's contribution to a vertex.
type Influence struct {
	BoneID int
	Weight float32

	// Set on the final influence of each vertex's range.
	LastInfluenceForThisVertex bool
}

// InfluenceRange is the half-open span [Start, End) of a vertex's entries in
// the submesh influence array.
type InfluenceRange struct {
	Start, End int
}

// Len returns the number of influences in the range.
func (r InfluenceRange) Len() int {
	return r.End - r.Start
}

// InfluenceSet is the order-independent form of a vertex's influence list:
// entries sorted by bone id then weight. Repeated entries are kept, since
// skinning sums every entry. Two vertices with equal sets are deformed
// identically.
type InfluenceSet struct {
	influences  []Influence
	fingerprint uint64
}

// NewInfluenceSet builds the canonical set of the given influences.
// The input slice is not modified.
func NewInfluenceSet(influences []Influence) InfluenceSet {
	sorted := make([]Influence, 0, len(influences))
	for _, inf := range influences {
		sorted = append(sorted, Influence{BoneID: inf.BoneID, Weight: inf.Weight})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].BoneID != sorted[j].BoneID {
			return sorted[i].BoneID < sorted[j].BoneID
		}
		return sorted[i].Weight < sorted[j].Weight
	})

	return InfluenceSet{
		influences:  sorted,
		fingerprint: fingerprint(sorted),
	}
}

func fingerprint(influences []Influence) uint64 {
	d := xxhash.New()
	var buf [12]byte
	for _, inf := range influences {
		binary.LittleEndian.PutUint64(buf[0:8], uint64(int64(inf.BoneID)))
		binary.LittleEndian.PutUint32(buf[8:12], gomath.Float32bits(inf.Weight))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// Influences returns the canonical entries. The slice is owned by the set.
func (s InfluenceSet) Influences() []Influence {
	return s.influences
}

// Len returns the number of influences, repeats included.
func (s InfluenceSet) Len() int {
	return len(s.influences)
}

// Fingerprint returns the xxhash of the canonical entries.
func (s InfluenceSet) Fingerprint() uint64 {
	return s.fingerprint
}

// Equal reports whether both sets hold the same bone/weight pairs.
func (s InfluenceSet) Equal(other InfluenceSet) bool {
	if s.fingerprint != other.fingerprint || len(s.influences) != len(other.influences) {
		return false
	}
	for i := range s.influences {
		if s.influences[i] != other.influences[i] {
			return false
		}
	}
	return true
}
