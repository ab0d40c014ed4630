package model

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/boneblend/internal/engine/pose"
	"github.com/Faultbox/boneblend/internal/engine/skin"
	"github.com/Faultbox/boneblend/internal/logger"
	"github.com/Faultbox/boneblend/pkg/math"
	"github.com/Faultbox/boneblend/pkg/mesh"
	"github.com/Faultbox/boneblend/pkg/skeleton"
)

// Blend is one animation contributing to a frame.
type Blend struct {
	AnimationID int
	Time        float32 // Seconds into the animation
	Weight      float32
	Mode        pose.BlendMode
	Ramp        float32 // Fade-in factor in [0, 1]; 0 contributes nothing
}

// attachment is a mesh attached to an instance with its skinning output.
type attachment struct {
	meshID  int
	skinned [][]mesh.Vertex // Per submesh
}

// Model is one animated instance of a CoreModel. A model is not safe for
// concurrent use, but distinct models sharing a core may be updated in
// parallel.
type Model struct {
	ID uuid.UUID

	// IncludeRootTransform composes root bones with the skeleton's root transform.
	IncludeRootTransform bool

	core      *CoreModel
	skeleton  *pose.Skeleton
	evaluator *skin.Evaluator
	meshes    []attachment
}

// New creates an instance in the bind pose.
func New(core *CoreModel) (*Model, error) {
	if core == nil || core.Skeleton == nil {
		return nil, fmt.Errorf("creating model: core model has no skeleton: %w", skeleton.ErrInvalidHandle)
	}
	s, err := pose.New(core.Skeleton)
	if err != nil {
		return nil, fmt.Errorf("creating model %q: %w", core.Name, err)
	}

	m := &Model{
		ID:        uuid.New(),
		core:      core,
		skeleton:  s,
		evaluator: skin.NewEvaluator(),
	}
	logger.Debug("model created",
		zap.String("core", core.Name),
		zap.Stringer("id", m.ID),
		zap.Int("bones", core.Skeleton.BoneCount()))
	return m, nil
}

// Core returns the model definition.
func (m *Model) Core() *CoreModel {
	return m.core
}

// Skeleton returns the runtime skeleton.
func (m *Model) Skeleton() *pose.Skeleton {
	return m.skeleton
}

// AttachMesh attaches a core mesh for skinning and returns the attachment index.
func (m *Model) AttachMesh(meshID int) (int, error) {
	if meshID < 0 || meshID >= len(m.core.Meshes) {
		return -1, fmt.Errorf("attaching mesh %d (have %d): %w", meshID, len(m.core.Meshes), skeleton.ErrInvalidHandle)
	}

	cm := m.core.Meshes[meshID]
	a := attachment{meshID: meshID, skinned: make([][]mesh.Vertex, len(cm.Submeshes))}
	for i, sub := range cm.Submeshes {
		a.skinned[i] = make([]mesh.Vertex, sub.VertexCount())
	}
	m.meshes = append(m.meshes, a)
	return len(m.meshes) - 1, nil
}

// Update runs one frame: reset every bone, blend each animation's tracks
// sampled at the blend's time, resolve the absolute pose and skin the
// attached meshes.
func (m *Model) Update(blends []Blend) error {
	m.skeleton.ResetPose()

	for _, b := range blends {
		anim, ok := m.core.Animation(b.AnimationID)
		if !ok {
			return fmt.Errorf("model %s: animation %d: %w", m.ID, b.AnimationID, skeleton.ErrInvalidHandle)
		}
		for _, track := range anim.Tracks() {
			translation, rotation, err := track.State(b.Time)
			if err != nil {
				return fmt.Errorf("model %s: animation %q: %w", m.ID, anim.Name, err)
			}
			t := math.Transform{Rotation: rotation, Translation: translation}
			if err := m.skeleton.BlendPose(track.BoneID(), b.Weight, t, b.Mode, b.Ramp); err != nil {
				return fmt.Errorf("model %s: animation %q: %w", m.ID, anim.Name, err)
			}
		}
	}

	bones := m.skeleton.CalculateState(m.IncludeRootTransform)
	m.evaluator.SetBones(bones)

	for _, a := range m.meshes {
		cm := m.core.Meshes[a.meshID]
		for i, sub := range cm.Submeshes {
			if err := m.evaluator.Skin(sub, a.skinned[i]); err != nil {
				return fmt.Errorf("model %s: mesh %q submesh %d: %w", m.ID, cm.Name, i, err)
			}
		}
	}
	return nil
}

// BoneTransforms returns the skinning transforms of the last Update.
func (m *Model) BoneTransforms() []math.BoneTransform {
	return m.skeleton.BoneTransforms()
}

// SkinnedVertices returns the deformed vertices of one submesh of an
// attached mesh, as of the last Update.
func (m *Model) SkinnedVertices(attachmentID, submeshID int) ([]mesh.Vertex, bool) {
	if attachmentID < 0 || attachmentID >= len(m.meshes) {
		return nil, false
	}
	skinned := m.meshes[attachmentID].skinned
	if submeshID < 0 || submeshID >= len(skinned) {
		return nil, false
	}
	return skinned[submeshID], true
}
