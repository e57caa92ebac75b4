package chainer

import (
	"context"
	"iter"
	"slices"
)

// Control replaces the depth budget of Backward with an application
// context of type C.
//
// The updaters receive the goal being expanded and return the context for
// the abstraction subgoal and for the argument subgoals. Terminate is
// consulted before every goal and again for every base-case match; when
// it holds, that branch alone contributes no results. The goal is passed
// to the control functions fully instantiated, but the context never takes
// part in unification, so control logic cannot change which proofs are
// valid, only which are searched.
type Control[C any] struct {
	AbsUpdate func(goal Judgment, c C) C
	ArgUpdate func(goal Judgment, c C) C
	Terminate func(goal Judgment, c C) bool
}

// ControlledBackward is Backward steered by ctrl instead of a depth
// budget, starting from context c, using the default engine.
func ControlledBackward[C any](ctx context.Context, kb KnowledgeBase, ctrl Control[C], c C, query Judgment) iter.Seq[Judgment] {
	return ControlledBackwardIn(ctx, DefaultEngine(), kb, nil, ctrl, c, query)
}

// ControlledBackwardIn is ControlledBackward on engine e with a local
// environment.
//
// Goals are expanded whenever their proof is, or can be bound to, an
// application, regardless of any depth; Terminate is the only pruning.
// A predicate that always holds returns exactly Backward at depth 0.
// Config.MaxControlDepth still cuts any branch nested deeper than it, so
// a predicate that never fires cannot recurse without bound.
//
// Tracer hooks receive a depth of -1, since there is no depth budget.
func ControlledBackwardIn[C any](ctx context.Context, e *Engine, kb KnowledgeBase, env Environment, ctrl Control[C], c C, query Judgment) iter.Seq[Judgment] {
	return func(yield func(Judgment) bool) {
		if query.IsZero() {
			return
		}
		ctx, span := startSearchSpan(ctx, "ControlledBackward", e.config.MaxControlDepth, query)
		count := 0
		defer func() { endSearchSpan(ctx, span, "ControlledBackward", count) }()

		for sub := range controlledGoal(e, kb, env, ctrl, c, query, 0)(ctx, NewSubstitution()) {
			count++
			e.results.Add(1)
			if !yield(sub.Resolve(query)) {
				return
			}
		}
	}
}

// noDepthBudget is the depth reported to tracers by a controlled
// search.
const noDepthBudget = -1

func controlledGoal[C any](e *Engine, kb KnowledgeBase, env Environment, ctrl Control[C], c C, query Judgment, level int) Goal {
	return func(ctx context.Context, sub *Substitution) Stream {
		return func(yield func(*Substitution) bool) {
			e.goals.Add(1)
			goal := sub.Resolve(query)
			root := level == 0
			stop := ctrl.Terminate(goal, c)
			if !root && (stop || (e.config.MaxControlDepth > 0 && level > e.config.MaxControlDepth)) {
				e.prune(ctx, goal)
				return
			}

			for s := range e.match(kb, env, noDepthBudget, query)(ctx, sub) {
				if !root {
					if m := s.Resolve(query); ctrl.Terminate(m, c) {
						e.prune(ctx, m)
						continue
					}
				}
				if !yield(s) {
					return
				}
			}
			if stop {
				e.prune(ctx, goal)
				return
			}
			if cancelled(ctx) {
				return
			}

			absCtx, argCtx := ctrl.AbsUpdate(goal, c), ctrl.ArgUpdate(goal, c)
			subgoal := func(j Judgment, abstraction bool) Goal {
				if abstraction {
					return controlledGoal(e, kb, env, ctrl, absCtx, j, level+1)
				}
				return controlledGoal(e, kb, env, ctrl, argCtx, j, level+1)
			}
			for s := range e.expand(noDepthBudget, query, subgoal)(ctx, sub) {
				if !yield(s) {
					return
				}
			}
		}
	}
}

func (e *Engine) prune(ctx context.Context, goal Judgment) {
	e.prunes.Add(1)
	if e.tracer != nil {
		e.tracer.Prune(ctx, goal)
	}
}

// DepthControl is the depth budget expressed as a Control: the context is
// the remaining depth, both updaters decrement it, and a goal is pruned
// once it is negative. ControlledBackward with DepthControl and context d
// yields the same results as Backward at depth d for any d >= 0.
func DepthControl() Control[int] {
	dec := func(_ Judgment, d int) int { return d - 1 }
	return Control[int]{
		AbsUpdate: dec,
		ArgUpdate: dec,
		Terminate: func(_ Judgment, d int) bool { return d < 0 },
	}
}

// TargetContext is the context of TargetControl.
type TargetContext struct {
	Depth     int
	Ancestors []Term // theorems of the enclosing goals, outermost first
}

// TargetControl bounds the search by depth like DepthControl and also
// prunes any goal whose theorem is structurally equal to the theorem of an
// enclosing goal, since such a proof would need itself as a subproof.
// Start it with NewTargetContext(maxDepth).
func TargetControl() Control[TargetContext] {
	update := func(goal Judgment, c TargetContext) TargetContext {
		return TargetContext{
			Depth:     c.Depth - 1,
			Ancestors: append(slices.Clip(c.Ancestors), goal.Theorem),
		}
	}
	return Control[TargetContext]{
		AbsUpdate: update,
		ArgUpdate: update,
		Terminate: func(goal Judgment, c TargetContext) bool {
			if c.Depth < 0 {
				return true
			}
			if goal.Theorem.IsVar() {
				return false
			}
			return slices.ContainsFunc(c.Ancestors, goal.Theorem.Equal)
		},
	}
}

// NewTargetContext returns the starting context for TargetControl.
func NewTargetContext(maxDepth int) TargetContext {
	return TargetContext{Depth: maxDepth}
}
