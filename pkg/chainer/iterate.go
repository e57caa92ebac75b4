package chainer

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
)

// IterateBackward runs rounds of Backward at a fixed depth, using the
// default engine. See Engine.IterateBackward.
func IterateBackward(ctx context.Context, kb KnowledgeBase, depth, rounds int, query Judgment) (iter.Seq[Judgment], error) {
	return DefaultEngine().IterateBackward(ctx, kb, depth, rounds, query)
}

// IterateForward runs rounds of Forward at a fixed depth, using the
// default engine. See Engine.IterateForward.
func IterateForward(ctx context.Context, kb KnowledgeBase, depth, rounds int, source Judgment) (iter.Seq[Judgment], error) {
	return DefaultEngine().IterateForward(ctx, kb, depth, rounds, source)
}

// IterateBackward answers query with rounds rounds of backward chaining
// at depth, committing each round's results to kb.
//
// A round first synthesizes lemmas when Config.Lemmas is set: the open
// query "?proof : ?theorem" is chained at depth and every result is added
// to kb, so the proof abstractions it finds become base facts. The
// round's queries are then answered, the results are collapsed and
// deduplicated by unification, added to kb with AddIfAbsent, and become
// the queries of the next round.
//
// With rounds == 0 the sequence holds query alone and kb is not touched.
// The returned sequence replays the last round's results. Errors come
// from kb or from ctx; kb keeps whatever was committed before the error.
func (e *Engine) IterateBackward(ctx context.Context, kb KnowledgeBase, depth, rounds int, query Judgment) (iter.Seq[Judgment], error) {
	return e.iterate(ctx, kb, depth, rounds, query, "backward", func(q Judgment) iter.Seq[Judgment] {
		return e.Backward(ctx, kb, depth, q)
	})
}

// IterateForward derives from source with rounds rounds of forward
// chaining at depth, committing each round's results to kb and chaining
// forward from all of them in the next round. There is no lemma pass.
//
// With rounds == 0 the sequence holds source alone and kb is not
// touched.
func (e *Engine) IterateForward(ctx context.Context, kb KnowledgeBase, depth, rounds int, source Judgment) (iter.Seq[Judgment], error) {
	return e.iterate(ctx, kb, depth, rounds, source, "forward", func(src Judgment) iter.Seq[Judgment] {
		return e.Forward(ctx, kb, depth, src)
	})
}

func (e *Engine) iterate(ctx context.Context, kb KnowledgeBase, depth, rounds int, input Judgment, mode string, chain func(Judgment) iter.Seq[Judgment]) (iter.Seq[Judgment], error) {
	if kb == nil {
		return nil, ErrNilKnowledgeBase
	}
	if depth < 0 || rounds < 0 {
		return nil, fmt.Errorf("%w: depth=%d rounds=%d", ErrInvalidDepth, depth, rounds)
	}
	if input.IsZero() {
		return nil, ErrNilJudgment
	}

	frontier := []Judgment{input}
	for round := 1; round <= rounds; round++ {
		if mode == "backward" && e.config.Lemmas {
			lemmas := Dedup(Collapse(e.Backward(ctx, kb, depth, Judge(Fresh("proof"), Fresh("theorem")))))
			if _, err := e.commit(ctx, kb, lemmas); err != nil {
				return nil, fmt.Errorf("round %d lemmas: %w", round, err)
			}
		}

		var results []Judgment
		for q := range Superpose(frontier) {
			results = append(results, Collapse(chain(q))...)
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		results = Dedup(results)

		added, err := e.commit(ctx, kb, results)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		e.logger.DebugContext(ctx, "iterate round complete",
			slog.String("mode", mode),
			slog.Int("round", round),
			slog.Int("results", len(results)),
			slog.Int("added", added),
			slog.Int("kb_size", kb.Len()))

		frontier = results
	}
	return Superpose(frontier), nil
}

// commit adds every judgment absent from kb and reports how many were
// added.
func (e *Engine) commit(ctx context.Context, kb KnowledgeBase, js []Judgment) (int, error) {
	added := 0
	for _, j := range js {
		ok, err := kb.AddIfAbsent(j)
		if err != nil {
			return added, fmt.Errorf("commit %s: %w", j, err)
		}
		if ok {
			added++
			e.commits.Add(1)
		}
		if e.tracer != nil {
			e.tracer.Commit(ctx, j, ok)
		}
	}
	return added, nil
}
