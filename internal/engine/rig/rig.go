// Package rig builds a procedural test character: a chain skeleton standing
// along +Y, looping animations for it and a skinned tube mesh with a rigid
// prop on the tip bone.
package rig

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/boneblend/internal/config"
	"github.com/Faultbox/boneblend/internal/engine/model"
	"github.com/Faultbox/boneblend/internal/logger"
	"github.com/Faultbox/boneblend/pkg/animation"
	"github.com/Faultbox/boneblend/pkg/math"
	"github.com/Faultbox/boneblend/pkg/skeleton"
)

// Animation and mesh names registered on the core model.
const (
	SwingAnimation = "swing"
	TwistAnimation = "twist"
	BodyMesh       = "body"
)

const (
	swingAmplitude = 0.6 // Radians
	swingPhase     = 0.5 // Per bone
	twistAmplitude = math32.Pi / 4
	tubeRadius     = 0.2 // Fraction of bone length
)

// ErrInvalidRig is returned for rig parameters that cannot produce a model.
var ErrInvalidRig = errors.New("invalid rig parameters")

// Rig is a built procedural character.
type Rig struct {
	Core  *model.CoreModel
	Swing int // Animation ids
	Twist int
	Body  int // Mesh id
}

// Build assembles the core model described by cfg.
func Build(cfg config.RigConfig) (*Rig, error) {
	skel, err := BuildSkeleton(cfg.Bones, cfg.BoneLength)
	if err != nil {
		return nil, err
	}
	core := model.NewCoreModel("rig", skel)

	swing, err := BuildSwing(skel, cfg.Keyframes, cfg.Duration)
	if err != nil {
		return nil, err
	}
	twist, err := BuildTwist(skel, cfg.Keyframes, cfg.Duration)
	if err != nil {
		return nil, err
	}

	r := &Rig{Core: core}
	if r.Swing, err = core.AddAnimation(swing); err != nil {
		return nil, err
	}
	if r.Twist, err = core.AddAnimation(twist); err != nil {
		return nil, err
	}

	body, err := BuildBody(skel, cfg.RingSegments, cfg.BoneLength)
	if err != nil {
		return nil, err
	}
	r.Body = core.AddMesh(body)

	logger.Debug("rig built",
		zap.Int("bones", skel.BoneCount()),
		zap.Int("keyframes", swing.KeyframeCount()+twist.KeyframeCount()),
		zap.Int("submeshes", len(body.Submeshes)))
	return r, nil
}

// BuildSkeleton creates a chain of bones, each boneLength above its parent.
// Bind and bone-space transforms are calculated.
func BuildSkeleton(bones int, boneLength float32) (*skeleton.CoreSkeleton, error) {
	if bones < 1 {
		return nil, fmt.Errorf("rig needs at least one bone, got %d: %w", bones, ErrInvalidRig)
	}

	skel := skeleton.New()
	for i := range bones {
		b := skeleton.NewCoreBone(boneName(i), i-1)
		if i > 0 {
			b.Relative.Translation = math.Vec3{Y: boneLength}
		}
		if _, err := skel.AddBone(b); err != nil {
			return nil, err
		}
	}
	if err := skel.CalculateBoneSpace(); err != nil {
		return nil, err
	}
	return skel, nil
}

func boneName(i int) string {
	return fmt.Sprintf("bone_%02d", i)
}

// BuildSwing creates a looping side-to-side swing about Z, phase-shifted
// along the chain.
func BuildSwing(skel *skeleton.CoreSkeleton, keyframes int, duration float32) (*animation.CoreAnimation, error) {
	ids := make([]int, skel.BoneCount())
	for i := range ids {
		ids[i] = i
	}
	return buildLoop(skel, SwingAnimation, ids, keyframes, duration, func(boneID int, phase float32) math.Quat {
		angle := swingAmplitude * math32.Sin(phase+float32(boneID)*swingPhase)
		return math.QuatFromAxisAngle(math.Vec3{Z: 1}, angle)
	})
}

// BuildTwist creates a looping twist about Y on the root bone only.
func BuildTwist(skel *skeleton.CoreSkeleton, keyframes int, duration float32) (*animation.CoreAnimation, error) {
	return buildLoop(skel, TwistAnimation, []int{0}, keyframes, duration, func(_ int, phase float32) math.Quat {
		return math.QuatFromAxisAngle(math.Vec3{Y: 1}, twistAmplitude*math32.Sin(phase))
	})
}

// buildLoop samples rotation over one period for the given bones.
// Translations stay at the bind pose.
func buildLoop(skel *skeleton.CoreSkeleton, name string, boneIDs []int, keyframes int, duration float32, rotation func(boneID int, phase float32) math.Quat) (*animation.CoreAnimation, error) {
	if keyframes < 2 || duration <= 0 {
		return nil, fmt.Errorf("animation %q: %d keyframes over %vs: %w", name, keyframes, duration, ErrInvalidRig)
	}

	a := animation.New(name, duration)
	for _, id := range boneIDs {
		b, err := skel.Bone(id)
		if err != nil {
			return nil, err
		}
		track := animation.NewCoreTrack(id)
		for k := range keyframes {
			t := duration * float32(k) / float32(keyframes-1)
			phase := 2 * math32.Pi * t / duration
			if err := track.AddKeyframe(animation.CoreKeyframe{
				Time:        t,
				Translation: b.Relative.Translation,
				Rotation:    rotation(id, phase),
			}); err != nil {
				return nil, err
			}
		}
		if err := a.AddTrack(track); err != nil {
			return nil, err
		}
	}
	return a, nil
}
