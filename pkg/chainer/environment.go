package chainer

import (
	"context"
	"slices"
)

// Environment is an ordered list of local judgments, typically the typing
// facts of bound variables in one query.
//
// Unlike a KnowledgeBase, environment entries are not renamed apart: their
// variables are shared with the query that owns the environment. Matching
// tries every entry at most once, in insertion order, and never mutates the
// list.
type Environment []Judgment

// NewEnvironment creates an environment from the given judgments.
func NewEnvironment(judgments ...Judgment) Environment {
	return Environment(slices.Clone(judgments))
}

// With returns a new environment with j appended. The receiver is unchanged.
func (env Environment) With(j Judgment) Environment {
	return append(slices.Clip(env), j)
}

// Match yields a substitution for every entry that unifies with pattern
// under sub.
func (env Environment) Match(ctx context.Context, pattern Judgment, sub *Substitution) Stream {
	return func(yield func(*Substitution) bool) {
		for _, j := range env {
			if cancelled(ctx) {
				return
			}
			if next := UnifyJudgments(pattern, j, sub); next != nil {
				if !yield(next) {
					return
				}
			}
		}
	}
}
