// Package model ties a skeleton, its animations and meshes into a core
// model, and runs the per-frame update of model instances built from it.
package model

import (
	"fmt"

	"github.com/Faultbox/boneblend/pkg/animation"
	"github.com/Faultbox/boneblend/pkg/mesh"
	"github.com/Faultbox/boneblend/pkg/skeleton"
)

// CoreModel is the shared, read-only-at-runtime definition of a model.
type CoreModel struct {
	Name     string
	Skeleton *skeleton.CoreSkeleton
	Meshes   []*mesh.CoreMesh

	animations []*animation.CoreAnimation // nil entries are free slots
	names      map[string]int
}

// NewCoreModel creates an empty core model.
func NewCoreModel(name string, skel *skeleton.CoreSkeleton) *CoreModel {
	return &CoreModel{
		Name:     name,
		Skeleton: skel,
		names:    make(map[string]int),
	}
}

// AddAnimation stores an animation and returns its id, reusing the lowest
// slot freed by RemoveAnimation.
func (c *CoreModel) AddAnimation(a *animation.CoreAnimation) (int, error) {
	if a == nil {
		return -1, fmt.Errorf("model %q: adding nil animation: %w", c.Name, skeleton.ErrInvalidHandle)
	}
	if c.Skeleton != nil {
		if err := a.Validate(c.Skeleton); err != nil {
			return -1, fmt.Errorf("model %q: %w", c.Name, err)
		}
	}

	id := len(c.animations)
	for i, slot := range c.animations {
		if slot == nil {
			id = i
			break
		}
	}
	if id == len(c.animations) {
		c.animations = append(c.animations, a)
	} else {
		c.animations[id] = a
	}
	if a.Name != "" {
		c.names[a.Name] = id
	}
	return id, nil
}

// RemoveAnimation frees an animation slot.
func (c *CoreModel) RemoveAnimation(id int) error {
	a, ok := c.Animation(id)
	if !ok {
		return fmt.Errorf("model %q: animation %d: %w", c.Name, id, skeleton.ErrInvalidHandle)
	}
	if c.names[a.Name] == id {
		delete(c.names, a.Name)
	}
	c.animations[id] = nil
	return nil
}

// Animation returns the animation stored under id.
func (c *CoreModel) Animation(id int) (*animation.CoreAnimation, bool) {
	if id < 0 || id >= len(c.animations) || c.animations[id] == nil {
		return nil, false
	}
	return c.animations[id], true
}

// AnimationID looks up an animation by name.
func (c *CoreModel) AnimationID(name string) (int, bool) {
	id, ok := c.names[name]
	return id, ok
}

// AnimationCount returns the number of stored animations.
func (c *CoreModel) AnimationCount() int {
	n := 0
	for _, a := range c.animations {
		if a != nil {
			n++
		}
	}
	return n
}

// AddMesh stores a mesh and returns its id.
func (c *CoreModel) AddMesh(m *mesh.CoreMesh) int {
	c.Meshes = append(c.Meshes, m)
	return len(c.Meshes) - 1
}

// Scale rescales the skeleton, every animation and every mesh. Instances
// created before the call keep the old bind pose.
func (c *CoreModel) Scale(factor float32) error {
	if c.Skeleton != nil {
		if err := c.Skeleton.Scale(factor); err != nil {
			return fmt.Errorf("model %q: %w", c.Name, err)
		}
	}
	for _, a := range c.animations {
		if a != nil {
			a.Scale(factor)
		}
	}
	for _, m := range c.Meshes {
		m.Scale(factor)
	}
	return nil
}
