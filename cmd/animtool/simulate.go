package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/boneblend/internal/assets"
	"github.com/Faultbox/boneblend/internal/config"
	"github.com/Faultbox/boneblend/internal/engine/animator"
	"github.com/Faultbox/boneblend/internal/engine/model"
	"github.com/Faultbox/boneblend/internal/engine/pose"
	"github.com/Faultbox/boneblend/internal/logger"
)

// fadeSeconds is how long the twist layer takes to ramp in.
const fadeSeconds = 0.5

func cmdSimulate(ctx context.Context, cfg *config.Config, lib *assets.Manager, out io.Writer) error {
	r, err := lib.Rig(cfg.Rig)
	if err != nil {
		return err
	}

	sim := cfg.Simulation
	models := make([]*model.Model, sim.Instances)
	for i := range models {
		m, err := model.New(r.Core)
		if err != nil {
			return err
		}
		m.IncludeRootTransform = cfg.Animation.IncludeRootTransform
		if _, err := m.AttachMesh(r.Body); err != nil {
			return err
		}
		models[i] = m
	}

	pool := animator.New(cfg.Animation.Workers)
	jobs := make([]animator.Job, len(models))
	dt := 1 / sim.FrameRate
	duration := cfg.Rig.Duration

	start := time.Now()
	for frame := range sim.Frames {
		now := float32(frame) * dt
		ramp := math32.Min(now/fadeSeconds, 1)
		for i, m := range models {
			// Stagger instances so they are not all in phase
			t := math32.Mod(now+float32(i)*0.1, duration)
			jobs[i] = animator.Job{Model: m, Blends: []model.Blend{
				{AnimationID: r.Swing, Time: t, Weight: 1, Mode: pose.Additive, Ramp: 1},
				{AnimationID: r.Twist, Time: t, Weight: 0.5, Mode: pose.Additive, Ramp: ramp},
			}}
		}
		if err := pool.Update(ctx, jobs); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
	}
	elapsed := time.Since(start)

	updates := sim.Instances * sim.Frames
	rate := 0.0
	if elapsed > 0 {
		rate = float64(updates) / elapsed.Seconds()
	}
	logger.Info("simulation finished",
		zap.Int("instances", sim.Instances),
		zap.Int("frames", sim.Frames),
		zap.Int("workers", pool.Workers()),
		zap.Duration("elapsed", elapsed))

	fmt.Fprintf(out, "Instances: %d\n", sim.Instances)
	fmt.Fprintf(out, "Frames:    %d at %.0f fps\n", sim.Frames, sim.FrameRate)
	fmt.Fprintf(out, "Workers:   %d\n", pool.Workers())
	fmt.Fprintf(out, "Elapsed:   %v\n", elapsed.Round(time.Microsecond))
	fmt.Fprintf(out, "Updates:   %d (%.0f/s)\n", updates, rate)
	return nil
}
