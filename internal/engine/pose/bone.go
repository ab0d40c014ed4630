// Package pose holds the per-instance animated state of a skeleton: the
// blend accumulators filled each frame by active animations and the
// absolute transforms resolved from them.
package pose

import (
	"fmt"

	"github.com/Faultbox/boneblend/pkg/math"
	"github.com/Faultbox/boneblend/pkg/skeleton"
)

// BlendMode selects how a contribution combines with the others of the frame.
type BlendMode int

const (
	// Additive contributions are averaged by weight.
	Additive BlendMode = iota
	// Replace contributions suppress everything blended before and after
	// them in proportion to their ramped weight.
	Replace
)

func (m BlendMode) String() string {
	switch m {
	case Additive:
		return "Additive"
	case Replace:
		return "Replace"
	default:
		return fmt.Sprintf("BlendMode(%d)", int(m))
	}
}

// Bone is the runtime state of one bone of a model instance.
type Bone struct {
	parentID     int
	bindRelative math.Transform
	boneSpace    math.Transform

	mean        math.Transform // Weighted mean of this frame's contributions
	weight      float32        // Total effective weight blended into mean
	attenuation float32        // Remaining share left by replace contributions

	relative math.Transform
	absolute math.Transform
}

func newBone(core *skeleton.CoreBone) Bone {
	b := Bone{
		parentID:     core.ParentID,
		bindRelative: core.Relative,
		boneSpace:    core.BoneSpace,
		relative:     core.Relative,
		absolute:     core.Absolute,
	}
	b.ResetPose()
	return b
}

// ResetPose clears the accumulators; with no further contributions the bone
// resolves to its bind pose.
func (b *Bone) ResetPose() {
	b.mean = b.bindRelative
	b.weight = 0
	b.attenuation = 1
}

// BlendPose folds one animation sample into the bone's accumulators.
//
// The effective weight is weight*ramp scaled by the attenuation left by
// earlier replace contributions. A replace contribution also scales the
// weight already accumulated, and the attenuation for later ones, by
// 1-ramp*weight. A zero effective weight changes nothing.
func (b *Bone) BlendPose(weight float32, t math.Transform, mode BlendMode, ramp float32) {
	effective := weight * ramp * b.attenuation
	if effective <= 0 {
		return
	}

	if mode == Replace {
		keep := clamp01(1 - ramp*weight)
		b.weight *= keep
		b.attenuation *= keep
	}

	if b.weight == 0 {
		b.mean = t
		b.weight = effective
		return
	}
	b.weight += effective
	b.mean = b.mean.Blend(t, effective/b.weight)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// resolveRelative turns the accumulators into the relative pose: the bind
// pose when nothing was blended, the bind pose blended toward the mean by
// the total weight when it is below one, the mean otherwise.
func (b *Bone) resolveRelative() math.Transform {
	switch {
	case b.weight <= 0:
		return b.bindRelative
	case b.weight < 1:
		return b.bindRelative.Blend(b.mean, b.weight)
	default:
		return b.mean
	}
}

// CalculateAbsolutePose resolves the relative pose, composes it with the
// parent's absolute transform (or root, for root bones, when non-nil) and
// returns the skinning transform absolute ∘ boneSpace. Parents must be
// calculated first.
func (b *Bone) CalculateAbsolutePose(bones []Bone, root *math.Transform) math.BoneTransform {
	b.relative = b.resolveRelative()

	switch {
	case b.parentID != skeleton.NoParent:
		b.absolute = bones[b.parentID].absolute.Mul(b.relative)
	case root != nil:
		b.absolute = root.Mul(b.relative)
	default:
		b.absolute = b.relative
	}

	return math.BoneTransformFromTransform(b.absolute.Mul(b.boneSpace))
}

// ParentID returns the parent bone id, or skeleton.NoParent.
func (b *Bone) ParentID() int { return b.parentID }

// Relative returns the relative pose resolved by the last CalculateAbsolutePose.
func (b *Bone) Relative() math.Transform { return b.relative }

// Absolute returns the absolute pose resolved by the last CalculateAbsolutePose.
func (b *Bone) Absolute() math.Transform { return b.absolute }

// AccumulatedWeight returns the total effective weight blended this frame.
func (b *Bone) AccumulatedWeight() float32 { return b.weight }
