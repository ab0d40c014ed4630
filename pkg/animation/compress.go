package animation

import (
	"fmt"
	"sort"

	"github.com/chewxy/math32"

	"github.com/Faultbox/boneblend/pkg/math"
	"github.com/Faultbox/boneblend/pkg/skeleton"
)

// DefaultHighRangeThreshold is the translation magnitude above which a track
// is flagged as needing a wide encoding range.
const DefaultHighRangeThreshold = 512

// TranslationCompressibility analyses the translations of the track.
//
// required is false only when a skeleton is given and every keyframe stays
// within threshold (per axis) of the bone's bind translation. dynamic is true
// when the translation range over the track exceeds threshold on any axis.
// highRange is true when any component's magnitude exceeds highRangeThreshold.
// The track is not modified.
func (t *CoreTrack) TranslationCompressibility(threshold, highRangeThreshold float32, skel *skeleton.CoreSkeleton) (required, dynamic, highRange bool) {
	if len(t.keyframes) == 0 {
		return false, false, false
	}

	var bind math.Vec3
	haveBind := false
	if skel != nil {
		if b, err := skel.Bone(t.boneID); err == nil {
			bind = b.Relative.Translation
			haveBind = true
		}
	}
	required = !haveBind

	minV := t.keyframes[0].Translation
	maxV := minV
	for _, k := range t.keyframes {
		tr := k.Translation
		minV = math.Vec3{X: math32.Min(minV.X, tr.X), Y: math32.Min(minV.Y, tr.Y), Z: math32.Min(minV.Z, tr.Z)}
		maxV = math.Vec3{X: math32.Max(maxV.X, tr.X), Y: math32.Max(maxV.Y, tr.Y), Z: math32.Max(maxV.Z, tr.Z)}

		if haveBind && tr.MaxAbsDiff(bind) > threshold {
			required = true
		}
		if tr.MaxAbsDiff(math.Vec3{}) > highRangeThreshold {
			highRange = true
		}
	}
	dynamic = maxV.MaxAbsDiff(minV) > threshold
	return required, dynamic, highRange
}

// CollapseSequences removes interior keyframes that interpolation between
// their surviving neighbours reproduces within tolerance. It makes greedy
// passes, removing the earliest eliminatable keyframe first, until a pass
// removes nothing or only two keyframes remain. The first and last keyframes
// are never removed.
//
// Every keyframe of the sequence as it was on entry stays reproducible within
// tolerance: a candidate is only dropped if the new span reproduces all
// original keyframes it covers, not just the candidate itself.
func (t *CoreTrack) CollapseSequences(translationTolerance, rotationToleranceDegrees float32) {
	if len(t.keyframes) <= 2 {
		return
	}

	original := make([]CoreKeyframe, len(t.keyframes))
	copy(original, t.keyframes)
	rotationTolerance := rotationToleranceDegrees * math32.Pi / 180

	for len(t.keyframes) > 2 {
		removed := false
		for i := 1; i+1 < len(t.keyframes); {
			if spanReproduces(t.keyframes[i-1], t.keyframes[i+1], original, translationTolerance, rotationTolerance) {
				t.keyframes = append(t.keyframes[:i], t.keyframes[i+1:]...)
				removed = true
				continue
			}
			i++
		}
		if !removed {
			break
		}
	}
}

// spanReproduces checks every original keyframe strictly between prev and
// next against the interpolation of prev and next.
func spanReproduces(prev, next CoreKeyframe, original []CoreKeyframe, translationTolerance, rotationTolerance float32) bool {
	start := sort.Search(len(original), func(i int) bool {
		return original[i].Time > prev.Time
	})
	for _, k := range original[start:] {
		if k.Time >= next.Time {
			break
		}
		translation, rotation := interpolate(prev, next, k.Time)
		if translation.Distance(k.Translation) > translationTolerance {
			return false
		}
		if rotation.AngleTo(k.Rotation) > rotationTolerance {
			return false
		}
	}
	return true
}

// Compress runs the translation analysis, stores the resulting hints and
// then collapses redundant keyframes. skel may be nil.
func (t *CoreTrack) Compress(translationTolerance, rotationToleranceDegrees float32, skel *skeleton.CoreSkeleton) error {
	if len(t.keyframes) == 0 {
		return fmt.Errorf("compressing bone %d: %w", t.boneID, ErrEmptyTrack)
	}

	t.translationRequired, t.translationIsDynamic, t.highRangeRequired =
		t.TranslationCompressibility(translationTolerance, DefaultHighRangeThreshold, skel)
	t.CollapseSequences(translationTolerance, rotationToleranceDegrees)
	return nil
}
