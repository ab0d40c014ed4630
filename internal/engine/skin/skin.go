// Package skin deforms submesh vertices by the bone transforms of a posed
// skeleton.
package skin

import (
	"fmt"

	"github.com/Faultbox/boneblend/pkg/math"
	"github.com/Faultbox/boneblend/pkg/mesh"
	"github.com/Faultbox/boneblend/pkg/skeleton"
)

// BlendInfluences sums the bone transforms of one vertex's influences,
// each scaled by its weight. Weights are used as stored; a vertex whose
// weights do not sum to one is scaled accordingly.
func BlendInfluences(sub *mesh.CoreSubmesh, bones []math.BoneTransform, vertexID int) (math.BoneTransform, error) {
	r, ok := sub.InfluenceRange(vertexID)
	if !ok {
		return math.BoneTransform{}, fmt.Errorf("vertex %d (have %d): %w", vertexID, sub.VertexCount(), skeleton.ErrInvalidHandle)
	}

	var out math.BoneTransform
	for _, inf := range sub.Influences()[r.Start:r.End] {
		if inf.BoneID < 0 || inf.BoneID >= len(bones) {
			return math.BoneTransform{}, fmt.Errorf("vertex %d influence bone %d (have %d): %w", vertexID, inf.BoneID, len(bones), skeleton.ErrInvalidHandle)
		}
		out = out.AddScaled(bones[inf.BoneID], inf.Weight)
	}
	return out, nil
}

// VertexTransform returns the skinning transform of one vertex, taking the
// shared static transform when the submesh is static.
func VertexTransform(sub *mesh.CoreSubmesh, bones []math.BoneTransform, vertexID int) (math.BoneTransform, error) {
	if sub.IsStatic() {
		if vertexID < 0 || vertexID >= sub.VertexCount() {
			return math.BoneTransform{}, fmt.Errorf("vertex %d (have %d): %w", vertexID, sub.VertexCount(), skeleton.ErrInvalidHandle)
		}
		return sub.StaticTransform(bones)
	}
	return BlendInfluences(sub, bones, vertexID)
}

// Evaluator skins submeshes against one frame's bone transforms. Static
// submesh transforms are computed once per frame and reused.
type Evaluator struct {
	bones  []math.BoneTransform
	static map[*mesh.CoreSubmesh]math.BoneTransform
}

// NewEvaluator creates an evaluator with no bones set.
func NewEvaluator() *Evaluator {
	return &Evaluator{static: make(map[*mesh.CoreSubmesh]math.BoneTransform)}
}

// SetBones starts a new frame with the given bone transforms.
func (e *Evaluator) SetBones(bones []math.BoneTransform) {
	e.bones = bones
	clear(e.static)
}

// VertexTransform is VertexTransform with the frame's static cache.
func (e *Evaluator) VertexTransform(sub *mesh.CoreSubmesh, vertexID int) (math.BoneTransform, error) {
	if !sub.IsStatic() {
		return BlendInfluences(sub, e.bones, vertexID)
	}
	if vertexID < 0 || vertexID >= sub.VertexCount() {
		return math.BoneTransform{}, fmt.Errorf("vertex %d (have %d): %w", vertexID, sub.VertexCount(), skeleton.ErrInvalidHandle)
	}
	return e.staticTransform(sub)
}

func (e *Evaluator) staticTransform(sub *mesh.CoreSubmesh) (math.BoneTransform, error) {
	if m, ok := e.static[sub]; ok {
		return m, nil
	}
	m, err := sub.StaticTransform(e.bones)
	if err != nil {
		return math.BoneTransform{}, err
	}
	e.static[sub] = m
	return m, nil
}

// Skin writes the deformed vertices of sub into out, which must hold at
// least VertexCount entries. Normals are transformed but not renormalised.
func (e *Evaluator) Skin(sub *mesh.CoreSubmesh, out []mesh.Vertex) error {
	n := sub.VertexCount()
	if len(out) < n {
		return fmt.Errorf("skin output holds %d of %d vertices: %w", len(out), n, skeleton.ErrAllocation)
	}

	vertices := sub.Vertices()
	if sub.IsStatic() {
		m, err := e.staticTransform(sub)
		if err != nil {
			return err
		}
		for i, v := range vertices {
			out[i] = mesh.Vertex{Position: m.TransformPoint(v.Position), Normal: m.TransformVector(v.Normal)}
		}
		return nil
	}

	for i, v := range vertices {
		m, err := BlendInfluences(sub, e.bones, i)
		if err != nil {
			return err
		}
		out[i] = mesh.Vertex{Position: m.TransformPoint(v.Position), Normal: m.TransformVector(v.Normal)}
	}
	return nil
}
