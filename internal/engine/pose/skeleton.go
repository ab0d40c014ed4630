package pose

import (
	"fmt"

	"github.com/Faultbox/boneblend/pkg/math"
	"github.com/Faultbox/boneblend/pkg/skeleton"
)

// Skeleton is the animated instance of a core skeleton. It is not safe for
// concurrent use; each model instance owns one.
type Skeleton struct {
	core       *skeleton.CoreSkeleton
	bones      []Bone
	order      []int // Parent-before-child ids
	transforms []math.BoneTransform
	root       math.Transform
}

// New creates a runtime skeleton in the bind pose of core.
func New(core *skeleton.CoreSkeleton) (*Skeleton, error) {
	if core == nil {
		return nil, fmt.Errorf("runtime skeleton: %w", skeleton.ErrInvalidHandle)
	}
	order, err := core.TraversalOrder()
	if err != nil {
		return nil, fmt.Errorf("runtime skeleton: %w", err)
	}

	s := &Skeleton{
		core:       core,
		bones:      make([]Bone, core.BoneCount()),
		order:      order,
		transforms: make([]math.BoneTransform, core.BoneCount()),
		root:       math.TransformIdentity(),
	}
	for id, cb := range core.Bones() {
		s.bones[id] = newBone(cb)
	}
	for i := range s.transforms {
		s.transforms[i] = math.BoneTransformIdentity()
	}
	return s, nil
}

// Core returns the skeleton definition.
func (s *Skeleton) Core() *skeleton.CoreSkeleton {
	return s.core
}

// BoneCount returns the number of bones.
func (s *Skeleton) BoneCount() int {
	return len(s.bones)
}

// Bone returns the runtime bone with the given id.
func (s *Skeleton) Bone(id int) (*Bone, error) {
	if id < 0 || id >= len(s.bones) {
		return nil, fmt.Errorf("runtime bone %d (have %d): %w", id, len(s.bones), skeleton.ErrInvalidHandle)
	}
	return &s.bones[id], nil
}

// ResetPose clears every bone's accumulators.
func (s *Skeleton) ResetPose() {
	for i := range s.bones {
		s.bones[i].ResetPose()
	}
}

// BlendPose blends a sample into one bone.
func (s *Skeleton) BlendPose(boneID int, weight float32, t math.Transform, mode BlendMode, ramp float32) error {
	b, err := s.Bone(boneID)
	if err != nil {
		return err
	}
	b.BlendPose(weight, t, mode, ramp)
	return nil
}

// SetRootTransform sets the transform root bones are composed with when
// CalculateState is asked to include it.
func (s *Skeleton) SetRootTransform(t math.Transform) {
	s.root = t
}

// RootTransform returns the external root transform.
func (s *Skeleton) RootTransform() math.Transform {
	return s.root
}

// CalculateState resolves every bone parent-first and returns the skinning
// transforms indexed by bone id. The slice is owned by the skeleton and
// overwritten by the next call.
func (s *Skeleton) CalculateState(includeRootTransform bool) []math.BoneTransform {
	var root *math.Transform
	if includeRootTransform {
		root = &s.root
	}
	for _, id := range s.order {
		s.transforms[id] = s.bones[id].CalculateAbsolutePose(s.bones, root)
	}
	return s.transforms
}

// BoneTransforms returns the skinning transforms of the last CalculateState.
func (s *Skeleton) BoneTransforms() []math.BoneTransform {
	return s.transforms
}

// Palette appends the last skinning transforms to dst as column-major
// matrices, ready for upload as a bone palette.
func (s *Skeleton) Palette(dst []math.Mat4) []math.Mat4 {
	for _, bt := range s.transforms {
		dst = append(dst, bt.ToMat4())
	}
	return dst
}

// BonePoints returns the animated absolute position of every bone.
func (s *Skeleton) BonePoints() []math.Vec3 {
	points := make([]math.Vec3, len(s.bones))
	for id := range s.bones {
		points[id] = s.bones[id].absolute.Translation
	}
	return points
}

// BonePointsStatic returns the bind-pose absolute position of every bone.
func (s *Skeleton) BonePointsStatic() []math.Vec3 {
	points := make([]math.Vec3, len(s.bones))
	for id, cb := range s.core.Bones() {
		points[id] = cb.Absolute.Translation
	}
	return points
}

// BoneLines returns one parent-to-child segment per non-root bone, in
// animated absolute coordinates.
func (s *Skeleton) BoneLines() [][2]math.Vec3 {
	var lines [][2]math.Vec3
	for id := range s.bones {
		b := &s.bones[id]
		if b.parentID == skeleton.NoParent {
			continue
		}
		lines = append(lines, [2]math.Vec3{s.bones[b.parentID].absolute.Translation, b.absolute.Translation})
	}
	return lines
}
