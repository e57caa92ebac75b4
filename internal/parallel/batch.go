package parallel

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/gitrdm/gokanproof/pkg/chainer"
)

// Result holds the proofs found for one query of a batch.
type Result struct {
	Query  chainer.Judgment
	Proofs []chainer.Judgment
}

// Runner runs batches of backward queries on a shared pool and engine.
type Runner struct {
	pool   *WorkerPool
	engine *chainer.Engine
}

// NewRunner creates a runner using engine, or the default engine if nil.
func NewRunner(pool *WorkerPool, engine *chainer.Engine) *Runner {
	if engine == nil {
		engine = chainer.DefaultEngine()
	}
	return &Runner{pool: pool, engine: engine}
}

// Backward proves every query against kb with the given depth budget and
// returns the results in query order. kb is only read; searches run
// concurrently, so it must tolerate concurrent Match calls (chainer.Store
// and its snapshots do). Each query's proofs are in the same order a
// sequential search would produce.
func (r *Runner) Backward(ctx context.Context, kb chainer.KnowledgeBase, depth int, queries []chainer.Judgment) ([]Result, error) {
	for i, q := range queries {
		if q.IsZero() {
			return nil, fmt.Errorf("query %d: %w", i, chainer.ErrNilJudgment)
		}
	}

	results := make([]Result, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		results[i].Query = q
		g.Go(func() error {
			err := r.pool.Do(gctx, func() {
				results[i].Proofs = chainer.Collapse(r.engine.Backward(gctx, kb, depth, q))
			})
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A cancelled search ends early without error; do not report partial
	// proof lists as complete.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
