package chainer

import (
	"context"
	"iter"
	"slices"
)

// Stream is a lazy, restartable sequence of alternative substitutions.
// Ranging over a stream twice re-runs the search that produces it.
type Stream = iter.Seq[*Substitution]

// Goal represents a search step. A goal maps a substitution to the stream
// of every way the goal can be satisfied under it. Goals compose with Conj
// and Disj.
type Goal func(ctx context.Context, sub *Substitution) Stream

// Success is a goal that always succeeds with the given substitution.
var Success Goal = func(ctx context.Context, sub *Substitution) Stream {
	return func(yield func(*Substitution) bool) {
		yield(sub)
	}
}

// Failure is a goal that always fails (returns no substitutions).
var Failure Goal = func(ctx context.Context, sub *Substitution) Stream {
	return func(yield func(*Substitution) bool) {}
}

// Eq creates a unification goal that constrains two terms to be equal.
func Eq(term1, term2 Term) Goal {
	return func(ctx context.Context, sub *Substitution) Stream {
		return func(yield func(*Substitution) bool) {
			if cancelled(ctx) {
				return
			}
			if s := Unify(term1, term2, sub); s != nil {
				yield(s)
			}
		}
	}
}

// Conj creates a conjunction goal that requires all goals to succeed.
// Goals run left to right; every solution of a goal is extended by every
// solution of the goals after it (depth-first cross product).
func Conj(goals ...Goal) Goal {
	if len(goals) == 0 {
		return Success
	}

	if len(goals) == 1 {
		return goals[0]
	}

	first, rest := goals[0], Conj(goals[1:]...)
	return func(ctx context.Context, sub *Substitution) Stream {
		return func(yield func(*Substitution) bool) {
			for s1 := range first(ctx, sub) {
				for s2 := range rest(ctx, s1) {
					if !yield(s2) {
						return
					}
				}
				if cancelled(ctx) {
					return
				}
			}
		}
	}
}

// Disj creates a disjunction goal. All solutions of the first goal come
// before all solutions of the second, and so on.
func Disj(goals ...Goal) Goal {
	if len(goals) == 0 {
		return Failure
	}

	if len(goals) == 1 {
		return goals[0]
	}

	return func(ctx context.Context, sub *Substitution) Stream {
		return func(yield func(*Substitution) bool) {
			for _, g := range goals {
				for s := range g(ctx, sub) {
					if !yield(s) {
						return
					}
				}
				if cancelled(ctx) {
					return
				}
			}
		}
	}
}

// Collapse materializes a lazy sequence into a slice.
func Collapse[T any](seq iter.Seq[T]) []T {
	return slices.Collect(seq)
}

// Superpose re-expands a slice into a lazy sequence of alternatives.
// The slice is copied, so later changes to xs do not affect the sequence.
func Superpose[T any](xs []T) iter.Seq[T] {
	return slices.Values(slices.Clone(xs))
}

// First returns the first element of seq, if any.
func First[T any](seq iter.Seq[T]) (T, bool) {
	for x := range seq {
		return x, true
	}
	var zero T
	return zero, false
}

// Take collects at most n elements of seq. n <= 0 collects everything.
func Take[T any](seq iter.Seq[T], n int) []T {
	var out []T
	if n <= 0 {
		return Collapse(seq)
	}
	for x := range seq {
		out = append(out, x)
		if len(out) >= n {
			break
		}
	}
	return out
}

// Dedup drops judgments that unify with an earlier one, keeping
// first-occurrence order. This is the same equality AddIfAbsent uses, so a
// deduplicated round never inserts a judgment twice.
func Dedup(js []Judgment) []Judgment {
	out := make([]Judgment, 0, len(js))
	for _, j := range js {
		if slices.ContainsFunc(out, func(k Judgment) bool { return unifiable(k, j) }) {
			continue
		}
		out = append(out, j)
	}
	return out
}

func cancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
