package runner

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mmr-tortoise/matrixctl/internal/config"
	"github.com/mmr-tortoise/matrixctl/internal/model"
	"github.com/mmr-tortoise/matrixctl/internal/report"
)

// Environment starts are staggered so a wide parallel run does not fork
// an arbitrary number of provisioning processes in the same instant.
const (
	startsPerSecond = 4
	startBurst      = 2
)

// RunAll executes the given environments and journals the outcome.
//
// parallel bounds concurrency: 0 or 1 means serial execution in the
// given order; higher values run that many environments at once, ordered
// slowest-first from the timing journal so the longest environment is
// not the one that starts last. Each environment reports independently;
// the summary's overall status is the conjunction of all results.
//
// The returned error covers journal failures only — environment
// failures are expressed in the summary, not as errors.
func (r *Runner) RunAll(ctx context.Context, envs []config.Env, parallel int) (*model.RunSummary, error) {
	start := time.Now()
	summary := &model.RunSummary{}

	if parallel > 1 && len(envs) > 1 {
		summary.Results = r.runParallel(ctx, envs, parallel)
	} else {
		for _, env := range envs {
			if ctx.Err() != nil {
				summary.Results = append(summary.Results, model.EnvResult{
					Name:   env.Name,
					Status: model.StatusError,
					Reason: "run cancelled",
				})
				continue
			}
			summary.Results = append(summary.Results, r.RunEnv(ctx, env))
		}
	}

	summary.Duration = time.Since(start)

	if err := r.store.RecordSummary(summary); err != nil {
		return summary, err
	}
	return summary, nil
}

// runParallel fans the environments out over an errgroup with a
// concurrency limit and a start-rate limiter. Results arrive in
// completion order.
func (r *Runner) runParallel(ctx context.Context, envs []config.Env, parallel int) []model.EnvResult {
	timings, err := r.store.Timings()
	if err != nil {
		// Missing or corrupt history only affects scheduling order.
		r.log.Debug("no usable timing journal", zap.Error(err))
	}

	names := make([]string, len(envs))
	byName := make(map[string]config.Env, len(envs))
	for i, env := range envs {
		names[i] = env.Name
		byName[env.Name] = env
	}
	ordered := report.OrderSlowestFirst(names, timings)

	limiter := rate.NewLimiter(rate.Limit(startsPerSecond), startBurst)

	var mu sync.Mutex
	results := make([]model.EnvResult, 0, len(envs))

	// The group context is deliberately not used for cancellation:
	// sibling environments report independently, so one failure must
	// not tear the others down. Only the caller's ctx cancels.
	g := new(errgroup.Group)
	g.SetLimit(parallel)

	for _, name := range ordered {
		env := byName[name]
		g.Go(func() error {
			var result model.EnvResult
			if err := limiter.Wait(ctx); err != nil {
				result = model.EnvResult{
					Name:   env.Name,
					Status: model.StatusError,
					Reason: "run cancelled",
				}
			} else {
				result = r.RunEnv(ctx, env)
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait is purely a join.
	_ = g.Wait()
	return results
}
