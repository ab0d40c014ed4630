// Package animation holds keyframed bone tracks and the animations that
// group them. Tracks are immutable once loaded and compressed, so one
// CoreAnimation can drive any number of model instances concurrently.
package animation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/chewxy/math32"

	"github.com/Faultbox/boneblend/pkg/math"
)

// Track errors.
var (
	ErrEmptyTrack    = errors.New("track has no keyframes")
	ErrKeyframeOrder = errors.New("keyframe time already present in track")
	ErrInvalidTime   = errors.New("time is not a number")
)

// CoreKeyframe is one timestamped bone pose, relative to the parent bone.
type CoreKeyframe struct {
	Time        float32 // Seconds from the start of the animation
	Translation math.Vec3
	Rotation    math.Quat
}

// CoreTrack is the time-ordered keyframe sequence of a single bone.
type CoreTrack struct {
	boneID    int
	keyframes []CoreKeyframe // Strictly increasing by Time

	// Derived by Compress; hints for savers, never read while blending.
	translationRequired  bool
	translationIsDynamic bool
	highRangeRequired    bool
}

// NewCoreTrack creates an empty track for the given bone.
// The compression hints start out conservative (everything required).
func NewCoreTrack(boneID int) *CoreTrack {
	return &CoreTrack{
		boneID:               boneID,
		translationRequired:  true,
		translationIsDynamic: true,
		highRangeRequired:    true,
	}
}

// BoneID returns the id of the bone this track animates.
func (t *CoreTrack) BoneID() int {
	return t.boneID
}

// AddKeyframe inserts k, keeping the sequence sorted by time.
func (t *CoreTrack) AddKeyframe(k CoreKeyframe) error {
	if math32.IsNaN(k.Time) {
		return fmt.Errorf("bone %d: keyframe: %w", t.boneID, ErrInvalidTime)
	}
	i := sort.Search(len(t.keyframes), func(i int) bool {
		return t.keyframes[i].Time >= k.Time
	})
	if i < len(t.keyframes) && t.keyframes[i].Time == k.Time {
		return fmt.Errorf("bone %d at t=%v: %w", t.boneID, k.Time, ErrKeyframeOrder)
	}

	t.keyframes = append(t.keyframes, CoreKeyframe{})
	copy(t.keyframes[i+1:], t.keyframes[i:])
	t.keyframes[i] = k
	return nil
}

// KeyframeCount returns the number of keyframes.
func (t *CoreTrack) KeyframeCount() int {
	return len(t.keyframes)
}

// Keyframe returns the keyframe at index i.
func (t *CoreTrack) Keyframe(i int) (CoreKeyframe, bool) {
	if i < 0 || i >= len(t.keyframes) {
		return CoreKeyframe{}, false
	}
	return t.keyframes[i], true
}

// Keyframes returns the keyframes in time order. The slice is owned by the track.
func (t *CoreTrack) Keyframes() []CoreKeyframe {
	return t.keyframes
}

// TranslationRequired reports whether the translation ever leaves the bind pose.
// When false, consumers may drop translation data and use the skeleton's.
func (t *CoreTrack) TranslationRequired() bool { return t.translationRequired }

// TranslationIsDynamic reports whether the translation changes over the track.
func (t *CoreTrack) TranslationIsDynamic() bool { return t.translationIsDynamic }

// HighRangeRequired reports whether any translation component is large
// enough to need a wide encoding range.
func (t *CoreTrack) HighRangeRequired() bool { return t.highRangeRequired }

// SetTranslationHints overrides the derived hints, as loaders do when the
// stored track omitted them.
func (t *CoreTrack) SetTranslationHints(required, dynamic, highRange bool) {
	t.translationRequired = required
	t.translationIsDynamic = dynamic
	t.highRangeRequired = highRange
}

// State samples the track at the given time.
// Times before the first keyframe return the first keyframe and times after
// the last return the last; nothing is extrapolated. NaN is rejected with
// ErrInvalidTime.
func (t *CoreTrack) State(time float32) (math.Vec3, math.Quat, error) {
	n := len(t.keyframes)
	if n == 0 {
		return math.Vec3{}, math.QuatIdentity(), fmt.Errorf("bone %d: %w", t.boneID, ErrEmptyTrack)
	}
	if math32.IsNaN(time) {
		return math.Vec3{}, math.QuatIdentity(), fmt.Errorf("bone %d: %w", t.boneID, ErrInvalidTime)
	}

	first, last := t.keyframes[0], t.keyframes[n-1]
	if time <= first.Time {
		return first.Translation, first.Rotation, nil
	}
	if time >= last.Time {
		return last.Translation, last.Rotation, nil
	}

	next := t.upperBound(time)
	translation, rotation := interpolate(t.keyframes[next-1], t.keyframes[next], time)
	return translation, rotation, nil
}

// upperBound returns the index of the first keyframe later than time.
func (t *CoreTrack) upperBound(time float32) int {
	return sort.Search(len(t.keyframes), func(i int) bool {
		return t.keyframes[i].Time > time
	})
}

// interpolate blends two bracketing keyframes. Compression uses the same
// function so its error checks match what State will later return.
func interpolate(prev, next CoreKeyframe, time float32) (math.Vec3, math.Quat) {
	if time <= prev.Time {
		return prev.Translation, prev.Rotation
	}
	f := (time - prev.Time) / (next.Time - prev.Time)
	return prev.Translation.Lerp(next.Translation, f), prev.Rotation.Slerp(next.Rotation, f)
}

// Scale multiplies every keyframe translation by factor.
func (t *CoreTrack) Scale(factor float32) {
	for i := range t.keyframes {
		t.keyframes[i].Translation = t.keyframes[i].Translation.Scale(factor)
	}
}

// FillInvalidTranslations replaces every keyframe translation with the bind
// translation when the track was marked as not needing its own.
func (t *CoreTrack) FillInvalidTranslations(bind math.Vec3) {
	if t.translationRequired {
		return
	}
	for i := range t.keyframes {
		t.keyframes[i].Translation = bind
	}
}
