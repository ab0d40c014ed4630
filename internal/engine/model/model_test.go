package model_test

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/boneblend/internal/config"
	"github.com/Faultbox/boneblend/internal/engine/model"
	"github.com/Faultbox/boneblend/internal/engine/pose"
	"github.com/Faultbox/boneblend/internal/engine/rig"
	"github.com/Faultbox/boneblend/pkg/animation"
	"github.com/Faultbox/boneblend/pkg/math"
	"github.com/Faultbox/boneblend/pkg/skeleton"
)

func testRig(t *testing.T) *rig.Rig {
	t.Helper()
	cfg := config.Default().Rig
	cfg.Bones = 3
	cfg.Keyframes = 9
	cfg.RingSegments = 4
	r, err := rig.Build(cfg)
	require.NoError(t, err)
	return r
}

func newInstance(t *testing.T, r *rig.Rig) *model.Model {
	t.Helper()
	m, err := model.New(r.Core)
	require.NoError(t, err)
	_, err = m.AttachMesh(r.Body)
	require.NoError(t, err)
	return m
}

func assertVec(t *testing.T, want, got math.Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-4, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-4, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-4, "z")
}

func TestAnimationSlots(t *testing.T) {
	skel, err := rig.BuildSkeleton(2, 1)
	require.NoError(t, err)
	core := model.NewCoreModel("slots", skel)

	ids := make([]int, 3)
	for i, name := range []string{"a", "b", "c"} {
		ids[i], err = core.AddAnimation(animation.New(name, 1))
		require.NoError(t, err)
	}
	assert.Equal(t, []int{0, 1, 2}, ids)

	require.NoError(t, core.RemoveAnimation(1))
	assert.Equal(t, 2, core.AnimationCount())
	_, ok := core.Animation(1)
	assert.False(t, ok)
	_, ok = core.AnimationID("b")
	assert.False(t, ok)
	assert.ErrorIs(t, core.RemoveAnimation(1), skeleton.ErrInvalidHandle)

	id, err := core.AddAnimation(animation.New("d", 1))
	require.NoError(t, err)
	assert.Equal(t, 1, id, "freed slot is reused")
	id, ok = core.AnimationID("d")
	assert.True(t, ok)
	assert.Equal(t, 1, id)

	_, err = core.AddAnimation(nil)
	assert.ErrorIs(t, err, skeleton.ErrInvalidHandle)

	bad := animation.New("bad", 1)
	track := animation.NewCoreTrack(7)
	require.NoError(t, track.AddKeyframe(animation.CoreKeyframe{Rotation: math.QuatIdentity()}))
	require.NoError(t, bad.AddTrack(track))
	_, err = core.AddAnimation(bad)
	assert.ErrorIs(t, err, skeleton.ErrInvalidHandle)
}

func TestNewRequiresSkeleton(t *testing.T) {
	_, err := model.New(model.NewCoreModel("empty", nil))
	assert.ErrorIs(t, err, skeleton.ErrInvalidHandle)
	_, err = model.New(nil)
	assert.ErrorIs(t, err, skeleton.ErrInvalidHandle)
}

func TestInstancesHaveDistinctIDs(t *testing.T) {
	r := testRig(t)
	a := newInstance(t, r)
	b := newInstance(t, r)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestBindPoseSkinning(t *testing.T) {
	r := testRig(t)
	m := newInstance(t, r)
	require.NoError(t, m.Update(nil))

	body := r.Core.Meshes[r.Body]
	for subID, sub := range body.Submeshes {
		skinned, ok := m.SkinnedVertices(0, subID)
		require.True(t, ok)
		for i, v := range sub.Vertices() {
			assertVec(t, v.Position, skinned[i].Position)
			assertVec(t, v.Normal, skinned[i].Normal)
		}
	}

	_, ok := m.SkinnedVertices(1, 0)
	assert.False(t, ok)
	_, ok = m.SkinnedVertices(0, 5)
	assert.False(t, ok)
}

func TestUpdateMovesRigidProp(t *testing.T) {
	r := testRig(t)
	m := newInstance(t, r)
	require.NoError(t, m.Update([]model.Blend{{AnimationID: r.Swing, Time: 0.5, Weight: 1, Mode: pose.Additive, Ramp: 1}}))

	prop := r.Core.Meshes[r.Body].Submeshes[rig.PropSubmesh]
	require.True(t, prop.IsStatic())
	skinned, ok := m.SkinnedVertices(0, rig.PropSubmesh)
	require.True(t, ok)

	bind := prop.Vertices()
	assert.Greater(t, skinned[0].Position.Distance(bind[0].Position), float32(0.01), "prop should follow the swing")
	// Rigid: pairwise distances are preserved
	for i := range bind {
		for j := i + 1; j < len(bind); j++ {
			assert.InDelta(t, bind[i].Position.Distance(bind[j].Position), skinned[i].Position.Distance(skinned[j].Position), 1e-4)
		}
	}

	tip := m.BoneTransforms()[2]
	assertVec(t, tip.TransformPoint(bind[0].Position), skinned[0].Position)
}

func TestUpdateErrors(t *testing.T) {
	r := testRig(t)
	m := newInstance(t, r)
	assert.ErrorIs(t, m.Update([]model.Blend{{AnimationID: 9, Weight: 1, Ramp: 1}}), skeleton.ErrInvalidHandle)

	nan := float32(gomath.NaN())
	swing := model.Blend{AnimationID: r.Swing, Time: nan, Weight: 1, Ramp: 1}
	assert.ErrorIs(t, m.Update([]model.Blend{swing}), animation.ErrInvalidTime)

	_, err := m.AttachMesh(3)
	assert.ErrorIs(t, err, skeleton.ErrInvalidHandle)
}

func TestReplaceBlendOverridesSwing(t *testing.T) {
	r := testRig(t)
	swingOnly := newInstance(t, r)
	both := newInstance(t, r)

	require.NoError(t, swingOnly.Update([]model.Blend{
		{AnimationID: r.Swing, Time: 0.5, Weight: 1, Mode: pose.Replace, Ramp: 1},
	}))
	require.NoError(t, both.Update([]model.Blend{
		{AnimationID: r.Twist, Time: 0.5, Weight: 1, Mode: pose.Additive, Ramp: 1},
		{AnimationID: r.Swing, Time: 0.5, Weight: 1, Mode: pose.Replace, Ramp: 1},
	}))

	for i := range swingOnly.BoneTransforms() {
		assertVec(t,
			swingOnly.BoneTransforms()[i].TransformPoint(math.Vec3{X: 1, Y: 2, Z: 3}),
			both.BoneTransforms()[i].TransformPoint(math.Vec3{X: 1, Y: 2, Z: 3}))
	}
}

func TestRootTransform(t *testing.T) {
	r := testRig(t)
	m := newInstance(t, r)
	m.IncludeRootTransform = true
	m.Skeleton().SetRootTransform(math.Transform{Rotation: math.QuatIdentity(), Translation: math.Vec3{X: 10}})
	require.NoError(t, m.Update(nil))

	sub := r.Core.Meshes[r.Body].Submeshes[rig.TubeSubmesh]
	skinned, _ := m.SkinnedVertices(0, rig.TubeSubmesh)
	for i, v := range sub.Vertices() {
		assertVec(t, v.Position.Add(math.Vec3{X: 10}), skinned[i].Position)
	}
}

func TestScalePropagation(t *testing.T) {
	r := testRig(t)
	sub := r.Core.Meshes[r.Body].Submeshes[rig.TubeSubmesh]
	last := len(sub.Vertices()) - 1
	before := sub.Vertices()[last].Position
	tipY := r.Core.Skeleton.Bones()[2].Absolute.Translation.Y

	require.NoError(t, r.Core.Scale(2))

	assert.InDelta(t, tipY*2, r.Core.Skeleton.Bones()[2].Absolute.Translation.Y, 1e-5)
	assertVec(t, before.Scale(2), sub.Vertices()[last].Position)

	swing, _ := r.Core.Animation(r.Swing)
	track, ok := swing.Track(1)
	require.True(t, ok)
	k, _ := track.Keyframe(0)
	assert.InDelta(t, 2*config.Default().Rig.BoneLength, k.Translation.Y, 1e-5)

	// A fresh instance in the bind pose still reproduces the scaled mesh
	m := newInstance(t, r)
	require.NoError(t, m.Update(nil))
	skinned, _ := m.SkinnedVertices(0, rig.TubeSubmesh)
	for i, v := range sub.Vertices() {
		assertVec(t, v.Position, skinned[i].Position)
	}
}
