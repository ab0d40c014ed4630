package skeleton

import (
	"fmt"

	"github.com/Faultbox/boneblend/pkg/math"
)

// CoreSkeleton owns the bones of a skeleton definition, addressed by id.
type CoreSkeleton struct {
	bones        []*CoreBone
	nameToID     map[string]int
	ambientColor math.Vec3
}

// New creates an empty skeleton.
func New() *CoreSkeleton {
	return &CoreSkeleton{
		nameToID: make(map[string]int),
	}
}

// AddBone appends a bone and returns its id.
// The parent may be added later; dangling parents are reported by the
// traversal in CalculateState. ChildIDs are derived from ParentID here and
// any value the caller put in them is discarded.
func (s *CoreSkeleton) AddBone(bone *CoreBone) (int, error) {
	if bone == nil {
		return NoParent, fmt.Errorf("adding bone: %w", ErrInvalidHandle)
	}
	if _, exists := s.nameToID[bone.Name]; exists {
		return NoParent, fmt.Errorf("adding bone %q: %w", bone.Name, ErrDuplicateBone)
	}
	if bone.ParentID < NoParent {
		return NoParent, fmt.Errorf("adding bone %q: parent id %d: %w", bone.Name, bone.ParentID, ErrInvalidHandle)
	}

	id := len(s.bones)
	if bone.ParentID == id {
		return NoParent, fmt.Errorf("adding bone %q: bone is its own parent: %w", bone.Name, ErrMalformedTopology)
	}

	bone.ChildIDs = nil
	s.bones = append(s.bones, bone)
	s.nameToID[bone.Name] = id

	if bone.ParentID != NoParent && bone.ParentID < id {
		s.bones[bone.ParentID].addChild(id)
	}
	// Link bones that were added before their parent
	for childID, other := range s.bones[:id] {
		if other.ParentID == id {
			bone.addChild(childID)
		}
	}

	return id, nil
}

// Bone returns the bone with the given id.
func (s *CoreSkeleton) Bone(id int) (*CoreBone, error) {
	if id < 0 || id >= len(s.bones) {
		return nil, fmt.Errorf("bone id %d (have %d): %w", id, len(s.bones), ErrInvalidHandle)
	}
	return s.bones[id], nil
}

// BoneID looks up a bone id by name.
func (s *CoreSkeleton) BoneID(name string) (int, bool) {
	id, ok := s.nameToID[name]
	return id, ok
}

// BoneCount returns the number of bones.
func (s *CoreSkeleton) BoneCount() int {
	return len(s.bones)
}

// Bones returns the bones indexed by id. The slice is owned by the skeleton.
func (s *CoreSkeleton) Bones() []*CoreBone {
	return s.bones
}

// RootIDs returns the ids of all bones without a parent, in id order.
func (s *CoreSkeleton) RootIDs() []int {
	var roots []int
	for id, b := range s.bones {
		if b.IsRoot() {
			roots = append(roots, id)
		}
	}
	return roots
}

// AmbientColor returns the scene ambient light color stored with the skeleton.
func (s *CoreSkeleton) AmbientColor() math.Vec3 {
	return s.ambientColor
}

// SetAmbientColor sets the scene ambient light color.
func (s *CoreSkeleton) SetAmbientColor(c math.Vec3) {
	s.ambientColor = c
}

// TraversalOrder returns every bone id exactly once, each parent before its
// children, walking depth-first from the roots. Dangling parent ids, cycles
// and bones unreachable from any root fail with ErrMalformedTopology.
func (s *CoreSkeleton) TraversalOrder() ([]int, error) {
	n := len(s.bones)
	for id, b := range s.bones {
		if b.ParentID != NoParent && (b.ParentID < 0 || b.ParentID >= n) {
			return nil, fmt.Errorf("bone %q references parent %d: %w", b.Name, b.ParentID, ErrMalformedTopology)
		}
		if b.ParentID == id {
			return nil, fmt.Errorf("bone %q is its own parent: %w", b.Name, ErrMalformedTopology)
		}
	}

	order := make([]int, 0, n)
	visited := make([]bool, n)
	stack := make([]int, 0, n)

	for _, root := range s.RootIDs() {
		stack = append(stack[:0], root)
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if visited[id] {
				return nil, fmt.Errorf("bone %q reached twice: %w", s.bones[id].Name, ErrMalformedTopology)
			}
			visited[id] = true
			order = append(order, id)

			children := s.bones[id].ChildIDs
			// Push in reverse so children are visited in declaration order
			for i := len(children) - 1; i >= 0; i-- {
				c := children[i]
				if c < 0 || c >= n || s.bones[c].ParentID != id {
					return nil, fmt.Errorf("bone %q lists child %d inconsistently: %w", s.bones[id].Name, c, ErrMalformedTopology)
				}
				stack = append(stack, c)
			}
		}
	}

	if len(order) != n {
		for id, seen := range visited {
			if !seen {
				return nil, fmt.Errorf("bone %q is not reachable from a root (cycle): %w", s.bones[id].Name, ErrMalformedTopology)
			}
		}
	}

	return order, nil
}

// CalculateState recomputes the absolute bind pose of every bone:
// roots take their relative transform, every other bone composes its
// parent's absolute transform with its own relative one.
func (s *CoreSkeleton) CalculateState() error {
	order, err := s.TraversalOrder()
	if err != nil {
		return err
	}

	for _, id := range order {
		b := s.bones[id]
		if b.IsRoot() {
			b.Absolute = b.Relative
		} else {
			b.Absolute = s.bones[b.ParentID].Absolute.Mul(b.Relative)
		}
	}
	return nil
}

// CalculateBoneSpace recomputes the absolute bind pose and sets each bone's
// bone-space transform to its inverse. Loaders that ship authored bone-space
// transforms do not need this.
func (s *CoreSkeleton) CalculateBoneSpace() error {
	if err := s.CalculateState(); err != nil {
		return err
	}
	for _, b := range s.bones {
		b.BoneSpace = b.Absolute.Inverse()
	}
	return nil
}

// Scale multiplies every bind-pose and bone-space translation by factor.
// Rotations are unchanged. Absolute transforms are refreshed afterwards.
func (s *CoreSkeleton) Scale(factor float32) error {
	order, err := s.TraversalOrder()
	if err != nil {
		return err
	}
	for _, id := range order {
		s.bones[id].scale(factor)
	}
	return s.CalculateState()
}
