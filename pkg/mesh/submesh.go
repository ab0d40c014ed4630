// Package mesh holds the skinned geometry of a model: submeshes with their
// per-vertex bone influences, and the static-submesh detection used by the
// skinning fast path.
package mesh

import (
	"fmt"

	"github.com/Faultbox/boneblend/pkg/math"
	"github.com/Faultbox/boneblend/pkg/skeleton"
)

// Vertex is a bind-pose vertex position and normal.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
}

// Color32 is a packed RGBA vertex color.
type Color32 uint32

// ColorWhite is the neutral vertex color.
const ColorWhite Color32 = 0xffffffff

// LodData records where a vertex collapses to at lower detail levels.
type LodData struct {
	CollapseID        int
	FaceCollapseCount int
}

// TextureCoordinate is a UV pair.
type TextureCoordinate struct {
	U, V float32
}

// Face is a triangle of vertex ids.
type Face [3]int

// MorphTarget is a full alternative vertex set blended over the base mesh.
type MorphTarget struct {
	Name     string
	Vertices []Vertex
}

// CoreSubmesh is a piece of geometry with a single material. Storage is
// sized at construction and vertices are appended in id order with AddVertex.
type CoreSubmesh struct {
	vertices     []Vertex
	colors       []Color32
	lodData      []LodData
	ranges       []InfluenceRange
	influences   []Influence
	texCoords    [][]TextureCoordinate
	faces        []Face
	morphTargets []*MorphTarget

	nextVertex       int
	static           bool
	staticSet        InfluenceSet
	nonWhiteColors   bool
	materialThreadID int
	lodCount         int
}

// NewCoreSubmesh allocates a submesh with room for the given number of
// vertices, texture coordinate channels and faces.
func NewCoreSubmesh(vertexCount, textureCoordinateCount, faceCount int) *CoreSubmesh {
	s := &CoreSubmesh{
		vertices:  make([]Vertex, vertexCount),
		colors:    make([]Color32, vertexCount),
		lodData:   make([]LodData, vertexCount),
		ranges:    make([]InfluenceRange, vertexCount),
		texCoords: make([][]TextureCoordinate, textureCoordinateCount),
		faces:     make([]Face, faceCount),
	}
	for i := range s.texCoords {
		s.texCoords[i] = make([]TextureCoordinate, vertexCount)
	}
	return s
}

// AddVertex stores the next vertex and its influences.
//
// A vertex without influences gets a single zero-weight influence on bone 0
// and makes the submesh non-static. The last influence of the vertex is
// flagged. The submesh stays static while every vertex has the same
// influence set as the first one.
func (s *CoreSubmesh) AddVertex(v Vertex, color Color32, lod LodData, influences []Influence) error {
	if s.nextVertex >= len(s.vertices) {
		return fmt.Errorf("adding vertex %d to submesh of %d: %w", s.nextVertex, len(s.vertices), skeleton.ErrAllocation)
	}

	id := s.nextVertex
	s.nextVertex++

	set := NewInfluenceSet(influences)
	if id == 0 {
		s.static = true
		s.staticSet = set
	} else if s.static {
		s.static = s.staticSet.Equal(set)
	}

	s.vertices[id] = v
	s.colors[id] = color
	s.lodData[id] = lod
	if color != ColorWhite {
		s.nonWhiteColors = true
	}

	inf := make([]Influence, len(influences), len(influences)+1)
	copy(inf, influences)
	if len(inf) == 0 {
		s.static = false
		inf = append(inf, Influence{BoneID: 0, Weight: 0})
	}
	for i := range inf {
		inf[i].LastInfluenceForThisVertex = i == len(inf)-1
	}

	s.ranges[id] = InfluenceRange{Start: len(s.influences), End: len(s.influences) + len(inf)}
	s.influences = append(s.influences, inf...)
	return nil
}

// SetFace sets the face at faceID.
func (s *CoreSubmesh) SetFace(faceID int, f Face) error {
	if faceID < 0 || faceID >= len(s.faces) {
		return fmt.Errorf("face %d (have %d): %w", faceID, len(s.faces), skeleton.ErrInvalidHandle)
	}
	s.faces[faceID] = f
	return nil
}

// SetTextureCoordinate sets one UV of one channel.
func (s *CoreSubmesh) SetTextureCoordinate(vertexID, channel int, tc TextureCoordinate) error {
	if channel < 0 || channel >= len(s.texCoords) {
		return fmt.Errorf("texture channel %d (have %d): %w", channel, len(s.texCoords), skeleton.ErrInvalidHandle)
	}
	if vertexID < 0 || vertexID >= len(s.texCoords[channel]) {
		return fmt.Errorf("texture coordinate vertex %d: %w", vertexID, skeleton.ErrInvalidHandle)
	}
	s.texCoords[channel][vertexID] = tc
	return nil
}

// TextureCoordinates returns the UVs of one channel.
func (s *CoreSubmesh) TextureCoordinates(channel int) ([]TextureCoordinate, bool) {
	if channel < 0 || channel >= len(s.texCoords) {
		return nil, false
	}
	return s.texCoords[channel], true
}

// AddMorphTarget adds a morph target and returns its id. The submesh owns
// mt from then on. A submesh with morph targets is never treated as static.
func (s *CoreSubmesh) AddMorphTarget(mt *MorphTarget) (int, error) {
	if mt == nil {
		return -1, fmt.Errorf("adding morph target: %w", skeleton.ErrInvalidHandle)
	}
	if len(mt.Vertices) != len(s.vertices) {
		return -1, fmt.Errorf("morph target %q has %d vertices, submesh has %d: %w",
			mt.Name, len(mt.Vertices), len(s.vertices), skeleton.ErrInvalidHandle)
	}
	s.morphTargets = append(s.morphTargets, mt)
	return len(s.morphTargets) - 1, nil
}

// MorphTarget returns the morph target with the given id.
func (s *CoreSubmesh) MorphTarget(id int) (*MorphTarget, bool) {
	if id < 0 || id >= len(s.morphTargets) {
		return nil, false
	}
	return s.morphTargets[id], true
}

// MorphTargetCount returns the number of morph targets.
func (s *CoreSubmesh) MorphTargetCount() int {
	return len(s.morphTargets)
}

// IsStatic reports whether every vertex shares one influence set and there
// are no morph targets, so one transform deforms the whole submesh.
func (s *CoreSubmesh) IsStatic() bool {
	return s.static && len(s.morphTargets) == 0
}

// StaticInfluenceSet returns the influence set shared by all vertices. It is
// only meaningful when IsStatic is true.
func (s *CoreSubmesh) StaticInfluenceSet() InfluenceSet {
	return s.staticSet
}

// StaticTransform sums the bone transforms of the static influence set,
// each scaled by its weight. Weights are not renormalised.
func (s *CoreSubmesh) StaticTransform(bones []math.BoneTransform) (math.BoneTransform, error) {
	var out math.BoneTransform
	for _, inf := range s.staticSet.Influences() {
		if inf.BoneID < 0 || inf.BoneID >= len(bones) {
			return math.BoneTransform{}, fmt.Errorf("static influence bone %d (have %d): %w", inf.BoneID, len(bones), skeleton.ErrInvalidHandle)
		}
		out = out.AddScaled(bones[inf.BoneID], inf.Weight)
	}
	return out, nil
}

// Scale multiplies every vertex position by factor, morph targets included.
func (s *CoreSubmesh) Scale(factor float32) {
	scalePositions(s.vertices, factor)
	for _, mt := range s.morphTargets {
		scalePositions(mt.Vertices, factor)
	}
}

func scalePositions(vertices []Vertex, factor float32) {
	for i := range vertices {
		vertices[i].Position = vertices[i].Position.Scale(factor)
	}
}

// VertexCount returns the number of vertices the submesh was sized for.
func (s *CoreSubmesh) VertexCount() int { return len(s.vertices) }

// Vertices returns the bind-pose vertices. The slice is owned by the submesh.
func (s *CoreSubmesh) Vertices() []Vertex { return s.vertices }

// VertexColors returns the per-vertex colors.
func (s *CoreSubmesh) VertexColors() []Color32 { return s.colors }

// LodData returns the per-vertex LOD records.
func (s *CoreSubmesh) LodData() []LodData { return s.lodData }

// InfluenceRange returns the influence span of a vertex.
func (s *CoreSubmesh) InfluenceRange(vertexID int) (InfluenceRange, bool) {
	if vertexID < 0 || vertexID >= len(s.ranges) {
		return InfluenceRange{}, false
	}
	return s.ranges[vertexID], true
}

// Influences returns the flat influence array indexed by InfluenceRange.
func (s *CoreSubmesh) Influences() []Influence { return s.influences }

// Faces returns the triangle list.
func (s *CoreSubmesh) Faces() []Face { return s.faces }

// HasNonWhiteVertexColors reports whether any added vertex has a color other than white.
func (s *CoreSubmesh) HasNonWhiteVertexColors() bool { return s.nonWhiteColors }

// MaterialThreadID returns the material thread the submesh is drawn with.
func (s *CoreSubmesh) MaterialThreadID() int { return s.materialThreadID }

// SetMaterialThreadID sets the material thread.
func (s *CoreSubmesh) SetMaterialThreadID(id int) { s.materialThreadID = id }

// LodCount returns the number of LOD steps.
func (s *CoreSubmesh) LodCount() int { return s.lodCount }

// SetLodCount sets the number of LOD steps.
func (s *CoreSubmesh) SetLodCount(n int) { s.lodCount = n }
