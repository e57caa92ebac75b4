package chainer

import (
	"context"
	"iter"
)

// Forward enumerates source and every judgment derivable from it within
// depth forward steps, using the default engine.
func Forward(ctx context.Context, kb KnowledgeBase, depth int, source Judgment) iter.Seq[Judgment] {
	return DefaultEngine().Forward(ctx, kb, depth, source)
}

// Forward enumerates source and every judgment derivable from it within
// depth forward steps.
//
// source is assumed true; its variables may take any binding the rules
// allow. One forward step combines a judgment with a rule from kb:
//
//   - as an argument: F : Theorem -> C gives (F Proof) : C
//   - as an abstraction: when Theorem is P -> C, X : P gives (Proof X) : C
//   - at position i of a flat rule F : P1 -> .. -> Pn -> C, for
//     2 <= n <= Config.MaxArity, giving (F p1 .. pn) : C
//
// The missing rule or premise proofs are found by Backward at depth-1,
// and each derived judgment is chained forward again at depth-1.
// source itself is always the first result. Results are not
// deduplicated: a conclusion reached by two derivations is yielded twice,
// with different proofs.
func (e *Engine) Forward(ctx context.Context, kb KnowledgeBase, depth int, source Judgment) iter.Seq[Judgment] {
	return func(yield func(Judgment) bool) {
		if depth < 0 || source.IsZero() {
			return
		}
		ctx, span := startSearchSpan(ctx, "Forward", depth, source)
		count := 0
		defer func() { endSearchSpan(ctx, span, "Forward", count) }()

		e.forward(ctx, kb, depth, source, func(j Judgment) bool {
			count++
			e.results.Add(1)
			return yield(j)
		})
	}
}

// forward yields src and its derivations; it returns false once yield
// has asked to stop.
func (e *Engine) forward(ctx context.Context, kb KnowledgeBase, depth int, src Judgment, yield func(Judgment) bool) bool {
	if !yield(src) {
		return false
	}
	if depth <= 0 {
		return true
	}
	for next := range e.steps(ctx, kb, depth, src) {
		if !e.forward(ctx, kb, depth-1, next, yield) {
			return false
		}
		if cancelled(ctx) {
			return false
		}
	}
	return true
}

// steps yields every judgment one forward step away from src.
func (e *Engine) steps(ctx context.Context, kb KnowledgeBase, depth int, src Judgment) iter.Seq[Judgment] {
	return func(yield func(Judgment) bool) {
		// src as the argument of a rule
		f, c := Fresh("rule"), Fresh("conclusion")
		for s := range e.backwardGoal(kb, nil, depth-1, Judge(f, Arrow(src.Theorem, c)))(ctx, NewSubstitution()) {
			if !yield(s.Resolve(Judge(App(f, src.Proof), c))) {
				return
			}
		}

		// src as a rule
		if premise, conclusion, ok := SplitArrow(src.Theorem); ok {
			x := Fresh("arg")
			for s := range e.backwardGoal(kb, nil, depth-1, Judge(x, premise))(ctx, NewSubstitution()) {
				if !yield(s.Resolve(Judge(App(src.Proof, x), conclusion))) {
					return
				}
			}
		}

		// src at each position of a flat application
		for arity := 2; arity <= e.config.MaxArity; arity++ {
			for pos := range arity {
				for j := range e.flatStep(ctx, kb, depth, src, arity, pos) {
					if !yield(j) {
						return
					}
				}
			}
		}
	}
}

// flatStep places src at argument position pos of an arity-ary rule and
// discharges the other premises.
func (e *Engine) flatStep(ctx context.Context, kb KnowledgeBase, depth int, src Judgment, arity, pos int) iter.Seq[Judgment] {
	return func(yield func(Judgment) bool) {
		f, c := Fresh("rule"), Fresh("conclusion")
		premises := make([]Term, arity)
		children := make([]Term, arity+1)
		children[0] = f
		goals := []Goal{nil}
		for i := range arity {
			if i == pos {
				premises[i] = src.Theorem
				children[i+1] = src.Proof
				continue
			}
			premises[i] = Fresh("premise")
			children[i+1] = Fresh("arg")
			goals = append(goals, e.backwardGoal(kb, nil, depth-1, Judge(children[i+1], premises[i])))
		}
		goals[0] = e.backwardGoal(kb, nil, depth-1, Judge(f, Arrows(c, premises...)))

		derived := Judge(&Compound{children: children}, c)
		for s := range Conj(goals...)(ctx, NewSubstitution()) {
			if !yield(s.Resolve(derived)) {
				return
			}
		}
	}
}
