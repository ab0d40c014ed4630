// Package animator updates many model instances concurrently.
package animator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/boneblend/internal/engine/model"
	"github.com/Faultbox/boneblend/internal/logger"
	"github.com/Faultbox/boneblend/pkg/skeleton"
)

// ErrDuplicateModel is returned when one batch lists a model twice.
var ErrDuplicateModel = errors.New("model scheduled twice in one batch")

// Job is one instance's frame: the model and the animations blended into it.
type Job struct {
	Model  *model.Model
	Blends []model.Blend
}

// Pool runs model updates on a bounded number of goroutines. Each model is
// updated by exactly one goroutine per batch; core models are shared
// read-only.
type Pool struct {
	workers int
	log     *zap.Logger
}

// New creates a pool running at most workers updates at once.
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		workers: workers,
		log:     logger.Named("animator"),
	}
}

// Workers returns the concurrency limit.
func (p *Pool) Workers() int {
	return p.workers
}

// Update runs one frame for every job and waits for them. The first failing
// job cancels the jobs not yet started and its error is returned.
// Cancelling ctx stops scheduling; instances already updating finish their
// frame.
func (p *Pool) Update(ctx context.Context, jobs []Job) error {
	seen := make(map[*model.Model]struct{}, len(jobs))
	for i, job := range jobs {
		if job.Model == nil {
			return fmt.Errorf("job %d: nil model: %w", i, skeleton.ErrInvalidHandle)
		}
		if _, dup := seen[job.Model]; dup {
			return fmt.Errorf("job %d: model %s: %w", i, job.Model.ID, ErrDuplicateModel)
		}
		seen[job.Model] = struct{}{}
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	scheduled := 0
	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		scheduled++
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := job.Model.Update(job.Blends); err != nil {
				return fmt.Errorf("job %d: %w", i, err)
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	p.log.Debug("batch updated",
		zap.Int("jobs", len(jobs)),
		zap.Int("scheduled", scheduled),
		zap.Int("workers", p.workers),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))
	return err
}
