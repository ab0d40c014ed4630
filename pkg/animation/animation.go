package animation

import (
	"fmt"
	"sort"

	"github.com/Faultbox/boneblend/pkg/skeleton"
)

// CoreAnimation groups the tracks of one animation, at most one per bone.
type CoreAnimation struct {
	Name     string
	Duration float32 // Seconds

	tracks  map[int]*CoreTrack
	ordered []*CoreTrack // By bone id
}

// New creates an empty animation.
func New(name string, duration float32) *CoreAnimation {
	return &CoreAnimation{
		Name:     name,
		Duration: duration,
		tracks:   make(map[int]*CoreTrack),
	}
}

// AddTrack adds a track, replacing any existing track for the same bone.
func (a *CoreAnimation) AddTrack(track *CoreTrack) error {
	if track == nil {
		return fmt.Errorf("animation %q: nil track: %w", a.Name, skeleton.ErrInvalidHandle)
	}
	if track.BoneID() < 0 {
		return fmt.Errorf("animation %q: track bone id %d: %w", a.Name, track.BoneID(), skeleton.ErrInvalidHandle)
	}
	id := track.BoneID()
	i := sort.Search(len(a.ordered), func(i int) bool {
		return a.ordered[i].BoneID() >= id
	})
	if _, ok := a.tracks[id]; ok {
		a.ordered[i] = track
	} else {
		a.ordered = append(a.ordered, nil)
		copy(a.ordered[i+1:], a.ordered[i:])
		a.ordered[i] = track
	}
	a.tracks[id] = track
	return nil
}

// Track returns the track driving the given bone, if any.
func (a *CoreAnimation) Track(boneID int) (*CoreTrack, bool) {
	t, ok := a.tracks[boneID]
	return t, ok
}

// TrackCount returns the number of tracks.
func (a *CoreAnimation) TrackCount() int {
	return len(a.tracks)
}

// Tracks returns all tracks ordered by bone id. The slice is owned by the
// animation and must not be modified.
func (a *CoreAnimation) Tracks() []*CoreTrack {
	return a.ordered
}

// KeyframeCount returns the total number of keyframes over all tracks.
func (a *CoreAnimation) KeyframeCount() int {
	n := 0
	for _, t := range a.tracks {
		n += t.KeyframeCount()
	}
	return n
}

// Validate checks every track against the skeleton: bone ids must exist and
// no track may be empty.
func (a *CoreAnimation) Validate(skel *skeleton.CoreSkeleton) error {
	for _, t := range a.Tracks() {
		if _, err := skel.Bone(t.BoneID()); err != nil {
			return fmt.Errorf("animation %q: %w", a.Name, err)
		}
		if t.KeyframeCount() == 0 {
			return fmt.Errorf("animation %q: bone %d: %w", a.Name, t.BoneID(), ErrEmptyTrack)
		}
	}
	return nil
}

// Scale multiplies the translations of every track by factor.
func (a *CoreAnimation) Scale(factor float32) {
	for _, t := range a.tracks {
		t.Scale(factor)
	}
}

// Compress compresses every track. skel may be nil; see CoreTrack.Compress.
func (a *CoreAnimation) Compress(translationTolerance, rotationToleranceDegrees float32, skel *skeleton.CoreSkeleton) error {
	for _, t := range a.Tracks() {
		if err := t.Compress(translationTolerance, rotationToleranceDegrees, skel); err != nil {
			return fmt.Errorf("animation %q: %w", a.Name, err)
		}
	}
	return nil
}
