package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfluenceSetCanonical(t *testing.T) {
	a := NewInfluenceSet([]Influence{{BoneID: 3, Weight: 0.2}, {BoneID: 1, Weight: 0.8, LastInfluenceForThisVertex: true}})
	b := NewInfluenceSet([]Influence{{BoneID: 1, Weight: 0.8}, {BoneID: 3, Weight: 0.2}})

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, []Influence{{BoneID: 1, Weight: 0.8}, {BoneID: 3, Weight: 0.2}}, a.Influences())
}

func TestInfluenceSetDiffers(t *testing.T) {
	base := NewInfluenceSet([]Influence{{BoneID: 1, Weight: 1}})

	tests := []struct {
		name  string
		other []Influence
	}{
		{"weight", []Influence{{BoneID: 1, Weight: 0.9}}},
		{"bone", []Influence{{BoneID: 2, Weight: 1}}},
		{"extra", []Influence{{BoneID: 1, Weight: 1}, {BoneID: 2, Weight: 0}}},
		{"repeated", []Influence{{BoneID: 1, Weight: 1}, {BoneID: 1, Weight: 1}}},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, base.Equal(NewInfluenceSet(tt.other)))
		})
	}
}

func TestInfluenceSetKeepsRepeats(t *testing.T) {
	twice := NewInfluenceSet([]Influence{{BoneID: 1, Weight: 0.5}, {BoneID: 1, Weight: 0.5}})
	once := NewInfluenceSet([]Influence{{BoneID: 1, Weight: 0.5}})

	assert.Equal(t, 2, twice.Len())
	assert.False(t, twice.Equal(once))
	assert.NotEqual(t, twice.Fingerprint(), once.Fingerprint())
}
