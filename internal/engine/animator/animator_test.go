package animator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/boneblend/internal/config"
	"github.com/Faultbox/boneblend/internal/engine/model"
	"github.com/Faultbox/boneblend/internal/engine/pose"
	"github.com/Faultbox/boneblend/internal/engine/rig"
	"github.com/Faultbox/boneblend/pkg/mesh"
	"github.com/Faultbox/boneblend/pkg/skeleton"
)

func instances(t *testing.T, r *rig.Rig, n int) []*model.Model {
	t.Helper()
	models := make([]*model.Model, n)
	for i := range models {
		m, err := model.New(r.Core)
		require.NoError(t, err)
		_, err = m.AttachMesh(r.Body)
		require.NoError(t, err)
		models[i] = m
	}
	return models
}

func blendsAt(r *rig.Rig, time float32) []model.Blend {
	return []model.Blend{
		{AnimationID: r.Swing, Time: time, Weight: 1, Mode: pose.Additive, Ramp: 1},
		{AnimationID: r.Twist, Time: time, Weight: 0.5, Mode: pose.Additive, Ramp: 1},
	}
}

func TestUpdateMatchesSequential(t *testing.T) {
	r, err := rig.Build(config.Default().Rig)
	require.NoError(t, err)

	parallel := instances(t, r, 24)
	sequential := instances(t, r, 24)

	jobs := make([]Job, len(parallel))
	for i, m := range parallel {
		jobs[i] = Job{Model: m, Blends: blendsAt(r, float32(i)*0.07)}
	}
	require.NoError(t, New(4).Update(context.Background(), jobs))

	for i, m := range sequential {
		require.NoError(t, m.Update(blendsAt(r, float32(i)*0.07)))

		want, _ := m.SkinnedVertices(0, rig.TubeSubmesh)
		got, _ := parallel[i].SkinnedVertices(0, rig.TubeSubmesh)
		assert.Equal(t, want, got, "instance %d", i)
	}
}

func TestUpdateCancelled(t *testing.T) {
	r, err := rig.Build(config.Default().Rig)
	require.NoError(t, err)
	models := instances(t, r, 8)

	jobs := make([]Job, len(models))
	for i, m := range models {
		jobs[i] = Job{Model: m, Blends: blendsAt(r, 0.5)}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = New(2).Update(ctx, jobs)
	assert.ErrorIs(t, err, context.Canceled)

	// Nothing was skinned
	for _, m := range models {
		got, _ := m.SkinnedVertices(0, rig.TubeSubmesh)
		for _, v := range got {
			assert.Equal(t, mesh.Vertex{}, v)
		}
	}
}

func TestUpdateReportsJobError(t *testing.T) {
	r, err := rig.Build(config.Default().Rig)
	require.NoError(t, err)
	models := instances(t, r, 3)

	jobs := []Job{
		{Model: models[0], Blends: blendsAt(r, 0)},
		{Model: models[1], Blends: []model.Blend{{AnimationID: 42, Weight: 1, Ramp: 1}}},
		{Model: models[2], Blends: blendsAt(r, 0)},
	}
	err = New(1).Update(context.Background(), jobs)
	assert.ErrorIs(t, err, skeleton.ErrInvalidHandle)
}

func TestUpdateRejectsBadBatch(t *testing.T) {
	r, err := rig.Build(config.Default().Rig)
	require.NoError(t, err)
	m := instances(t, r, 1)[0]

	p := New(2)
	err = p.Update(context.Background(), []Job{{Model: m}, {Model: m}})
	assert.ErrorIs(t, err, ErrDuplicateModel)

	err = p.Update(context.Background(), []Job{{Model: nil}})
	assert.ErrorIs(t, err, skeleton.ErrInvalidHandle)
}

func TestNewClampsWorkers(t *testing.T) {
	assert.Equal(t, 1, New(0).Workers())
	assert.Equal(t, 1, New(-3).Workers())
	assert.Equal(t, 6, New(6).Workers())
}

func TestEmptyBatch(t *testing.T) {
	assert.NoError(t, New(3).Update(context.Background(), nil))
}
