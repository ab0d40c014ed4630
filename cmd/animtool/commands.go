package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/Faultbox/boneblend/internal/assets"
	"github.com/Faultbox/boneblend/internal/config"
	"github.com/Faultbox/boneblend/internal/engine/model"
	"github.com/Faultbox/boneblend/internal/engine/pose"
	"github.com/Faultbox/boneblend/internal/engine/rig"
)

func cmdInfo(cfg *config.Config, lib *assets.Manager, out io.Writer) error {
	r, err := lib.Rig(cfg.Rig)
	if err != nil {
		return err
	}
	core := r.Core

	fmt.Fprintf(out, "Model:      %s\n", core.Name)
	fmt.Fprintf(out, "Bones:      %d\n", core.Skeleton.BoneCount())
	fmt.Fprintf(out, "Animations: %d\n", core.AnimationCount())
	fmt.Fprintf(out, "Meshes:     %d\n", len(core.Meshes))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Skeleton:")
	for id, b := range core.Skeleton.Bones() {
		p := b.Absolute.Translation
		fmt.Fprintf(out, "  %3d %-10s parent=%-3d bind=(%.3f, %.3f, %.3f)\n", id, b.Name, b.ParentID, p.X, p.Y, p.Z)
	}

	fmt.Fprintln(out, "Animations:")
	for _, id := range []int{r.Swing, r.Twist} {
		a, _ := core.Animation(id)
		fmt.Fprintf(out, "  %3d %-10s duration=%.2fs tracks=%d keyframes=%d\n", id, a.Name, a.Duration, a.TrackCount(), a.KeyframeCount())
	}

	fmt.Fprintln(out, "Meshes:")
	for id, m := range core.Meshes {
		fmt.Fprintf(out, "  %3d %s\n", id, m.Name)
		for sid, sub := range m.Submeshes {
			fmt.Fprintf(out, "      submesh %d: vertices=%d faces=%d influences=%d static=%v\n",
				sid, sub.VertexCount(), len(sub.Faces()), len(sub.Influences()), sub.IsStatic())
		}
	}
	return nil
}

func cmdPose(cfg *config.Config, lib *assets.Manager, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("pose", flag.ContinueOnError)
	fs.SetOutput(out)
	anim := fs.String("anim", rig.SwingAnimation, "Animation to blend")
	at := fs.Float64("time", 0, "Sample time in seconds")
	weight := fs.Float64("weight", 1, "Blend weight")
	replace := fs.Bool("replace", false, "Blend in replace mode")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("pose: %v: %w", err, errUsage)
	}

	r, err := lib.Rig(cfg.Rig)
	if err != nil {
		return err
	}
	id, ok := r.Core.AnimationID(*anim)
	if !ok {
		return fmt.Errorf("pose: unknown animation %q: %w", *anim, errUsage)
	}

	m, err := model.New(r.Core)
	if err != nil {
		return err
	}
	m.IncludeRootTransform = cfg.Animation.IncludeRootTransform

	mode := pose.Additive
	if *replace {
		mode = pose.Replace
	}
	if err := m.Update([]model.Blend{{
		AnimationID: id,
		Time:        float32(*at),
		Weight:      float32(*weight),
		Mode:        mode,
		Ramp:        1,
	}}); err != nil {
		return err
	}

	fmt.Fprintf(out, "Pose: %s at %.3fs (weight %.2f, %s)\n", *anim, *at, *weight, mode)
	s := m.Skeleton()
	bind := s.BonePointsStatic()
	for boneID, p := range s.BonePoints() {
		b, _ := s.Bone(boneID)
		fmt.Fprintf(out, "  %3d pos=(%7.3f, %7.3f, %7.3f) bind=(%7.3f, %7.3f, %7.3f) weight=%.2f\n",
			boneID, p.X, p.Y, p.Z, bind[boneID].X, bind[boneID].Y, bind[boneID].Z, b.AccumulatedWeight())
	}
	fmt.Fprintf(out, "Segments: %d\n", len(s.BoneLines()))
	return nil
}

func cmdCompress(cfg *config.Config, lib *assets.Manager, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("compress", flag.ContinueOnError)
	fs.SetOutput(out)
	tol := fs.Float64("t", float64(cfg.Compression.TranslationTolerance), "Translation tolerance")
	rot := fs.Float64("r", float64(cfg.Compression.RotationToleranceDegrees), "Rotation tolerance in degrees")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("compress: %v: %w", err, errUsage)
	}

	r, err := lib.Rig(cfg.Rig)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Tolerance: translation %.4f, rotation %.3f°\n", *tol, *rot)
	totalBefore, totalAfter := 0, 0
	for _, id := range []int{r.Swing, r.Twist} {
		a, _ := r.Core.Animation(id)
		before := a.KeyframeCount()
		if err := a.Compress(float32(*tol), float32(*rot), r.Core.Skeleton); err != nil {
			return err
		}
		after := a.KeyframeCount()
		totalBefore += before
		totalAfter += after

		fmt.Fprintf(out, "  %-10s %5d -> %5d keyframes\n", a.Name, before, after)
		for _, t := range a.Tracks() {
			fmt.Fprintf(out, "      bone %3d: %3d keyframes translation(required=%v dynamic=%v high_range=%v)\n",
				t.BoneID(), t.KeyframeCount(), t.TranslationRequired(), t.TranslationIsDynamic(), t.HighRangeRequired())
		}
	}

	saved := 0.0
	if totalBefore > 0 {
		saved = 100 * float64(totalBefore-totalAfter) / float64(totalBefore)
	}
	fmt.Fprintf(out, "Total: %d -> %d keyframes (%.1f%% removed)\n", totalBefore, totalAfter, saved)
	return nil
}
