package rig

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/boneblend/pkg/math"
	"github.com/Faultbox/boneblend/pkg/mesh"
	"github.com/Faultbox/boneblend/pkg/skeleton"
)

// Submesh ids within the body mesh.
const (
	TubeSubmesh = 0
	PropSubmesh = 1
)

// BuildBody creates the body mesh: a tube around the chain with one ring of
// vertices per joint, and a rigid quad on top of the tip bone.
func BuildBody(skel *skeleton.CoreSkeleton, segments int, boneLength float32) (*mesh.CoreMesh, error) {
	if segments < 3 {
		return nil, fmt.Errorf("tube needs at least 3 segments, got %d: %w", segments, ErrInvalidRig)
	}

	tube, err := buildTube(skel, segments, boneLength)
	if err != nil {
		return nil, err
	}
	prop, err := buildProp(skel, boneLength)
	if err != nil {
		return nil, err
	}

	m := mesh.New(BodyMesh)
	m.AddSubmesh(tube)
	m.AddSubmesh(prop)
	return m, nil
}

// ringInfluences skins the end rings fully to their bone and splits every
// inner ring evenly between the bones meeting at that joint.
func ringInfluences(ring, bones int) []mesh.Influence {
	switch {
	case ring == 0:
		return []mesh.Influence{{BoneID: 0, Weight: 1}}
	case ring >= bones:
		return []mesh.Influence{{BoneID: bones - 1, Weight: 1}}
	default:
		return []mesh.Influence{{BoneID: ring - 1, Weight: 0.5}, {BoneID: ring, Weight: 0.5}}
	}
}

func buildTube(skel *skeleton.CoreSkeleton, segments int, boneLength float32) (*mesh.CoreSubmesh, error) {
	bones := skel.BoneCount()
	rings := bones + 1
	radius := tubeRadius * boneLength

	sub := mesh.NewCoreSubmesh(rings*segments, 1, bones*segments*2)
	for r := range rings {
		y := float32(r) * boneLength
		influences := ringInfluences(r, bones)
		for s := range segments {
			angle := 2 * math32.Pi * float32(s) / float32(segments)
			sin, cos := math32.Sincos(angle)
			v := mesh.Vertex{
				Position: math.Vec3{X: cos * radius, Y: y, Z: sin * radius},
				Normal:   math.Vec3{X: cos, Z: sin},
			}
			id := r*segments + s
			if err := sub.AddVertex(v, mesh.ColorWhite, mesh.LodData{CollapseID: -1}, influences); err != nil {
				return nil, err
			}
			uv := mesh.TextureCoordinate{U: float32(s) / float32(segments), V: float32(r) / float32(bones)}
			if err := sub.SetTextureCoordinate(id, 0, uv); err != nil {
				return nil, err
			}
		}
	}

	face := 0
	for r := range bones {
		for s := range segments {
			a := r*segments + s
			b := r*segments + (s+1)%segments
			c := a + segments
			d := b + segments
			if err := sub.SetFace(face, mesh.Face{a, c, b}); err != nil {
				return nil, err
			}
			if err := sub.SetFace(face+1, mesh.Face{b, c, d}); err != nil {
				return nil, err
			}
			face += 2
		}
	}
	return sub, nil
}

// buildProp places a horizontal quad at the tip of the chain, skinned
// entirely to the last bone so it deforms as one rigid piece.
func buildProp(skel *skeleton.CoreSkeleton, boneLength float32) (*mesh.CoreSubmesh, error) {
	tip := skel.BoneCount() - 1
	tipBone, err := skel.Bone(tip)
	if err != nil {
		return nil, err
	}
	top := tipBone.Absolute.Translation.Y + boneLength
	half := tubeRadius * boneLength

	corners := []math.Vec3{
		{X: -half, Y: top, Z: -half},
		{X: half, Y: top, Z: -half},
		{X: half, Y: top, Z: half},
		{X: -half, Y: top, Z: half},
	}
	influences := []mesh.Influence{{BoneID: tip, Weight: 1}}

	sub := mesh.NewCoreSubmesh(len(corners), 0, 2)
	sub.SetMaterialThreadID(1)
	for _, p := range corners {
		if err := sub.AddVertex(mesh.Vertex{Position: p, Normal: math.Vec3{Y: 1}}, mesh.ColorWhite, mesh.LodData{CollapseID: -1}, influences); err != nil {
			return nil, err
		}
	}
	if err := sub.SetFace(0, mesh.Face{0, 2, 1}); err != nil {
		return nil, err
	}
	if err := sub.SetFace(1, mesh.Face{0, 3, 2}); err != nil {
		return nil, err
	}
	return sub, nil
}
