// Package skeleton holds the static bone hierarchy shared by every model
// instance built from it. Bones reference each other by integer id into the
// owning CoreSkeleton; nothing here is mutated once loading is finished.
package skeleton

import (
	"fmt"

	"github.com/Faultbox/boneblend/pkg/math"
)

// NoParent is the parent id of a root bone.
const NoParent = -1

// LightType describes optional light metadata attached to a bone.
// It is carried through untouched; skinning ignores it.
type LightType int32

const (
	LightTypeNone        LightType = 0
	LightTypeOmni        LightType = 1
	LightTypeDirectional LightType = 2
	LightTypeTarget      LightType = 3
	LightTypeAmbient     LightType = 4
)

// String returns a human-readable light type name.
func (l LightType) String() string {
	switch l {
	case LightTypeNone:
		return "None"
	case LightTypeOmni:
		return "Omni"
	case LightTypeDirectional:
		return "Directional"
	case LightTypeTarget:
		return "Target"
	case LightTypeAmbient:
		return "Ambient"
	default:
		return fmt.Sprintf("Unknown(%d)", l)
	}
}

// CoreBone is one bone of a skeleton definition.
type CoreBone struct {
	Name     string // Unique within the skeleton
	ParentID int    // Parent bone id, or NoParent
	ChildIDs []int  // Child bone ids, filled in by CoreSkeleton.AddBone

	// Relative is the bind pose relative to the parent bone.
	Relative math.Transform
	// Absolute is the bind pose in model space, computed by CalculateState.
	Absolute math.Transform
	// BoneSpace takes a model-space point into this bone's local frame.
	BoneSpace math.Transform

	LightType  LightType
	LightColor math.Vec3
}

// NewCoreBone creates a bone with identity transforms.
func NewCoreBone(name string, parentID int) *CoreBone {
	return &CoreBone{
		Name:      name,
		ParentID:  parentID,
		Relative:  math.TransformIdentity(),
		Absolute:  math.TransformIdentity(),
		BoneSpace: math.TransformIdentity(),
	}
}

// HasLightingData reports whether the bone carries light metadata.
func (b *CoreBone) HasLightingData() bool {
	return b.LightType != LightTypeNone
}

// IsRoot reports whether the bone has no parent.
func (b *CoreBone) IsRoot() bool {
	return b.ParentID == NoParent
}

// scale rescales the translations of this bone only. CoreSkeleton.Scale walks the tree.
func (b *CoreBone) scale(factor float32) {
	b.Relative.Translation = b.Relative.Translation.Scale(factor)
	b.BoneSpace.Translation = b.BoneSpace.Translation.Scale(factor)
}

func (b *CoreBone) addChild(id int) {
	for _, c := range b.ChildIDs {
		if c == id {
			return
		}
	}
	b.ChildIDs = append(b.ChildIDs, id)
}
