package chainer

import (
	"context"
	"iter"
)

// Backward enumerates every instance of query provable from kb within
// depth application expansions, using the default engine.
//
// Example:
//
//	kb := NewStore(
//		Judge(NewSymbol("a"), NewSymbol("A")),
//	)
//	for j := range Backward(ctx, kb, 0, Judge(Fresh("prf"), NewSymbol("A"))) {
//		fmt.Println(j) // a : A
//	}
func Backward(ctx context.Context, kb KnowledgeBase, depth int, query Judgment) iter.Seq[Judgment] {
	return DefaultEngine().Backward(ctx, kb, depth, query)
}

// Backward enumerates every instance of query provable from kb within
// depth application expansions.
//
// At each goal the knowledge base is searched first (the base case). If
// depth remains and the goal's proof is an application (h a1 .. an), the
// goal is also decomposed into the abstraction subgoal
// h : P1 -> .. -> Pn -> Theorem and the argument subgoals ai : Pi, each at
// depth-1. A goal whose proof is an unbound variable is decomposed as the
// application (F X), and as flat applications up to Config.MaxArity.
//
// Results come in depth-first order, base case before decomposition and
// abstraction before arguments. They are not deduplicated: each derivation
// yields its own result. A nil kb is treated as empty; a negative depth
// yields nothing.
func (e *Engine) Backward(ctx context.Context, kb KnowledgeBase, depth int, query Judgment) iter.Seq[Judgment] {
	return e.BackwardIn(ctx, kb, nil, depth, query)
}

// BackwardIn is Backward with a local environment of judgments that is
// searched after kb at every goal.
func (e *Engine) BackwardIn(ctx context.Context, kb KnowledgeBase, env Environment, depth int, query Judgment) iter.Seq[Judgment] {
	return func(yield func(Judgment) bool) {
		if depth < 0 || query.IsZero() {
			return
		}
		ctx, span := startSearchSpan(ctx, "Backward", depth, query)
		count := 0
		defer func() { endSearchSpan(ctx, span, "Backward", count) }()

		for sub := range e.backwardGoal(kb, env, depth, query)(ctx, NewSubstitution()) {
			count++
			e.results.Add(1)
			if !yield(sub.Resolve(query)) {
				return
			}
		}
	}
}

// backwardGoal is the depth-bounded search for one goal.
func (e *Engine) backwardGoal(kb KnowledgeBase, env Environment, depth int, query Judgment) Goal {
	return func(ctx context.Context, sub *Substitution) Stream {
		return func(yield func(*Substitution) bool) {
			e.goals.Add(1)
			for s := range e.match(kb, env, depth, query)(ctx, sub) {
				if !yield(s) {
					return
				}
			}
			if depth <= 0 || cancelled(ctx) {
				return
			}

			subgoal := func(j Judgment, _ bool) Goal {
				return e.backwardGoal(kb, env, depth-1, j)
			}
			for s := range e.expand(depth, query, subgoal)(ctx, sub) {
				if !yield(s) {
					return
				}
			}
		}
	}
}

// match is the base case: kb entries first, then env entries.
func (e *Engine) match(kb KnowledgeBase, env Environment, depth int, query Judgment) Goal {
	return func(ctx context.Context, sub *Substitution) Stream {
		return func(yield func(*Substitution) bool) {
			found := func(s *Substitution) bool {
				e.matches.Add(1)
				if e.tracer != nil {
					e.tracer.Match(ctx, depth, s.Resolve(query))
				}
				return yield(s)
			}
			if kb != nil {
				for s := range kb.Match(ctx, query, sub) {
					if !found(s) {
						return
					}
				}
			}
			for s := range env.Match(ctx, query, sub) {
				if !found(s) {
					return
				}
			}
		}
	}
}

// subgoalFunc builds the search for a subgoal of an expansion.
// abstraction is true for the head of the application.
type subgoalFunc func(j Judgment, abstraction bool) Goal

// expand is the recursive case. It decomposes query's proof into an
// application and conjoins the abstraction and argument subgoals.
func (e *Engine) expand(depth int, query Judgment, subgoal subgoalFunc) Goal {
	return func(ctx context.Context, sub *Substitution) Stream {
		return func(yield func(*Substitution) bool) {
			switch p := sub.Walk(query.Proof).(type) {
			case *Var:
				for arity := 1; arity <= e.config.MaxArity; arity++ {
					shape := freshApplication(arity)
					s := sub.Bind(p, shape)
					for r := range e.application(depth, shape, query, subgoal)(ctx, s) {
						if !yield(r) {
							return
						}
					}
					if cancelled(ctx) {
						return
					}
				}
			case *Compound:
				if p.Len() < 2 {
					return
				}
				for r := range e.application(depth, p, query, subgoal)(ctx, sub) {
					if !yield(r) {
						return
					}
				}
			}
		}
	}
}

// application searches h : P1 -> .. -> Pn -> Theorem, then ai : Pi for
// each argument, sharing bindings left to right.
func (e *Engine) application(depth int, proof *Compound, query Judgment, subgoal subgoalFunc) Goal {
	return func(ctx context.Context, sub *Substitution) Stream {
		e.expansions.Add(1)
		if e.tracer != nil {
			e.tracer.Expand(ctx, depth, sub.Resolve(query))
		}

		args := proof.children[1:]
		premises := make([]Term, len(args))
		for i := range premises {
			premises[i] = Fresh("premise")
		}

		goals := make([]Goal, 0, len(proof.children))
		goals = append(goals, subgoal(Judge(proof.children[0], Arrows(query.Theorem, premises...)), true))
		for i, a := range args {
			goals = append(goals, subgoal(Judge(a, premises[i]), false))
		}
		return Conj(goals...)(ctx, sub)
	}
}

// freshApplication returns (F X1 .. Xn) over fresh variables.
func freshApplication(arity int) *Compound {
	children := make([]Term, arity+1)
	children[0] = Fresh("abs")
	for i := 1; i <= arity; i++ {
		children[i] = Fresh("arg")
	}
	return &Compound{children: children}
}
