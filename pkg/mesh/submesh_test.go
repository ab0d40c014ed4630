package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/boneblend/pkg/math"
	"github.com/Faultbox/boneblend/pkg/skeleton"
)

func vertexAt(x, y, z float32) Vertex {
	return Vertex{Position: math.Vec3{X: x, Y: y, Z: z}, Normal: math.Vec3{Y: 1}}
}

func TestAddVertexRanges(t *testing.T) {
	s := NewCoreSubmesh(3, 0, 1)
	require.NoError(t, s.AddVertex(vertexAt(0, 0, 0), ColorWhite, LodData{}, []Influence{{BoneID: 1, Weight: 0.5}, {BoneID: 2, Weight: 0.5}}))
	require.NoError(t, s.AddVertex(vertexAt(1, 0, 0), ColorWhite, LodData{}, []Influence{{BoneID: 1, Weight: 1}}))
	require.NoError(t, s.AddVertex(vertexAt(2, 0, 0), ColorWhite, LodData{}, nil))

	tests := []struct {
		vertex int
		want   InfluenceRange
	}{
		{0, InfluenceRange{Start: 0, End: 2}},
		{1, InfluenceRange{Start: 2, End: 3}},
		{2, InfluenceRange{Start: 3, End: 4}},
	}
	for _, tt := range tests {
		r, ok := s.InfluenceRange(tt.vertex)
		require.True(t, ok)
		assert.Equal(t, tt.want, r, "vertex %d", tt.vertex)

		infs := s.Influences()[r.Start:r.End]
		for i, inf := range infs {
			assert.Equal(t, i == len(infs)-1, inf.LastInfluenceForThisVertex, "vertex %d influence %d", tt.vertex, i)
		}
	}

	// Vertex without influences gets a placeholder on bone 0
	assert.Equal(t, Influence{BoneID: 0, Weight: 0, LastInfluenceForThisVertex: true}, s.Influences()[3])
	assert.False(t, s.IsStatic())

	_, ok := s.InfluenceRange(3)
	assert.False(t, ok)
}

func TestAddVertexCapacity(t *testing.T) {
	s := NewCoreSubmesh(1, 0, 0)
	require.NoError(t, s.AddVertex(vertexAt(0, 0, 0), ColorWhite, LodData{}, []Influence{{BoneID: 0, Weight: 1}}))
	err := s.AddVertex(vertexAt(1, 0, 0), ColorWhite, LodData{}, []Influence{{BoneID: 0, Weight: 1}})
	assert.ErrorIs(t, err, skeleton.ErrAllocation)
}

func TestAddVertexDoesNotAliasInput(t *testing.T) {
	s := NewCoreSubmesh(1, 0, 0)
	in := []Influence{{BoneID: 4, Weight: 1}}
	require.NoError(t, s.AddVertex(vertexAt(0, 0, 0), ColorWhite, LodData{}, in))
	in[0].BoneID = 9
	assert.Equal(t, 4, s.Influences()[0].BoneID)
}

func TestStaticDetection(t *testing.T) {
	shared := []Influence{{BoneID: 2, Weight: 0.25}, {BoneID: 1, Weight: 0.75}}
	reordered := []Influence{{BoneID: 1, Weight: 0.75}, {BoneID: 2, Weight: 0.25}}

	tests := []struct {
		name       string
		influences [][]Influence
		want       bool
	}{
		{"all equal", [][]Influence{shared, shared, shared}, true},
		{"order independent", [][]Influence{shared, reordered}, true},
		{"different weight", [][]Influence{shared, {{BoneID: 1, Weight: 0.5}, {BoneID: 2, Weight: 0.5}}}, false},
		{"different bones", [][]Influence{shared, {{BoneID: 3, Weight: 1}}}, false},
		{"empty first vertex", [][]Influence{nil, nil}, false},
		{"repeated entry", [][]Influence{{{BoneID: 1, Weight: 0.5}, {BoneID: 1, Weight: 0.5}}, {{BoneID: 1, Weight: 0.5}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewCoreSubmesh(len(tt.influences), 0, 0)
			for i, inf := range tt.influences {
				require.NoError(t, s.AddVertex(vertexAt(float32(i), 0, 0), ColorWhite, LodData{}, inf))
			}
			assert.Equal(t, tt.want, s.IsStatic())
		})
	}
}

func TestMorphTargetDisablesStatic(t *testing.T) {
	s := NewCoreSubmesh(1, 0, 0)
	require.NoError(t, s.AddVertex(vertexAt(0, 0, 0), ColorWhite, LodData{}, []Influence{{BoneID: 0, Weight: 1}}))
	require.True(t, s.IsStatic())

	_, err := s.AddMorphTarget(&MorphTarget{Name: "short", Vertices: nil})
	assert.ErrorIs(t, err, skeleton.ErrInvalidHandle)
	_, err = s.AddMorphTarget(nil)
	assert.ErrorIs(t, err, skeleton.ErrInvalidHandle)

	id, err := s.AddMorphTarget(&MorphTarget{Name: "smile", Vertices: []Vertex{vertexAt(0, 1, 0)}})
	require.NoError(t, err)
	assert.Equal(t, 0, id)
	assert.Equal(t, 1, s.MorphTargetCount())
	assert.False(t, s.IsStatic())
}

func TestStaticTransform(t *testing.T) {
	s := NewCoreSubmesh(2, 0, 0)
	inf := []Influence{{BoneID: 0, Weight: 0.5}, {BoneID: 1, Weight: 0.5}}
	require.NoError(t, s.AddVertex(vertexAt(0, 0, 0), ColorWhite, LodData{}, inf))
	require.NoError(t, s.AddVertex(vertexAt(1, 0, 0), ColorWhite, LodData{}, inf))
	require.True(t, s.IsStatic())

	bones := []math.BoneTransform{
		math.BoneTransformFromTransform(math.Transform{Rotation: math.QuatIdentity(), Translation: math.Vec3{X: 2}}),
		math.BoneTransformFromTransform(math.Transform{Rotation: math.QuatIdentity(), Translation: math.Vec3{Y: 4}}),
	}
	m, err := s.StaticTransform(bones)
	require.NoError(t, err)
	p := m.TransformPoint(math.Vec3{})
	assert.InDelta(t, 1, p.X, 1e-6)
	assert.InDelta(t, 2, p.Y, 1e-6)

	_, err = s.StaticTransform(bones[:1])
	assert.ErrorIs(t, err, skeleton.ErrInvalidHandle)
}

func TestFacesAndTextureCoordinates(t *testing.T) {
	s := NewCoreSubmesh(3, 2, 1)
	require.NoError(t, s.SetFace(0, Face{0, 1, 2}))
	assert.ErrorIs(t, s.SetFace(1, Face{}), skeleton.ErrInvalidHandle)
	assert.ErrorIs(t, s.SetFace(-1, Face{}), skeleton.ErrInvalidHandle)
	assert.Equal(t, []Face{{0, 1, 2}}, s.Faces())

	require.NoError(t, s.SetTextureCoordinate(2, 1, TextureCoordinate{U: 0.5, V: 1}))
	assert.ErrorIs(t, s.SetTextureCoordinate(3, 1, TextureCoordinate{}), skeleton.ErrInvalidHandle)
	assert.ErrorIs(t, s.SetTextureCoordinate(0, 2, TextureCoordinate{}), skeleton.ErrInvalidHandle)

	uv, ok := s.TextureCoordinates(1)
	require.True(t, ok)
	assert.Equal(t, TextureCoordinate{U: 0.5, V: 1}, uv[2])
}

func TestVertexColorsAndMetadata(t *testing.T) {
	s := NewCoreSubmesh(2, 0, 0)
	require.NoError(t, s.AddVertex(vertexAt(0, 0, 0), ColorWhite, LodData{CollapseID: 1}, nil))
	assert.False(t, s.HasNonWhiteVertexColors())
	require.NoError(t, s.AddVertex(vertexAt(0, 0, 0), Color32(0xff0000ff), LodData{}, nil))
	assert.True(t, s.HasNonWhiteVertexColors())
	assert.Equal(t, 1, s.LodData()[0].CollapseID)

	s.SetMaterialThreadID(3)
	s.SetLodCount(2)
	assert.Equal(t, 3, s.MaterialThreadID())
	assert.Equal(t, 2, s.LodCount())
}

func TestMeshScale(t *testing.T) {
	s := NewCoreSubmesh(1, 0, 0)
	require.NoError(t, s.AddVertex(vertexAt(1, 2, 3), ColorWhite, LodData{}, nil))
	m := New("body")
	assert.Equal(t, 0, m.AddSubmesh(s))

	m.Scale(2)
	assert.Equal(t, math.Vec3{X: 2, Y: 4, Z: 6}, s.Vertices()[0].Position)
	assert.Equal(t, math.Vec3{Y: 1}, s.Vertices()[0].Normal)

	_, ok := m.Submesh(1)
	assert.False(t, ok)
}

func TestScaleMorphTargets(t *testing.T) {
	s := NewCoreSubmesh(2, 0, 0)
	require.NoError(t, s.AddVertex(vertexAt(1, 0, 0), ColorWhite, LodData{}, nil))
	require.NoError(t, s.AddVertex(vertexAt(0, 1, 0), ColorWhite, LodData{}, nil))
	id, err := s.AddMorphTarget(&MorphTarget{Name: "bulge", Vertices: []Vertex{vertexAt(2, 0, 0), vertexAt(0, 3, 1)}})
	require.NoError(t, err)

	s.Scale(0.5)

	mt, ok := s.MorphTarget(id)
	require.True(t, ok)
	assert.Equal(t, math.Vec3{X: 0.5}, s.Vertices()[0].Position)
	assert.Equal(t, math.Vec3{X: 1}, mt.Vertices[0].Position)
	assert.Equal(t, math.Vec3{Y: 1.5, Z: 0.5}, mt.Vertices[1].Position)

	_, ok = s.MorphTarget(1)
	assert.False(t, ok)
}
