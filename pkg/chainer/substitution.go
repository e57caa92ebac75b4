package chainer

import (
	"fmt"
	"sort"
	"strings"
)

// Substitution represents a mapping from variables to terms.
// Substitutions are never mutated after construction: Bind returns a new
// substitution, so a search branch can keep its own snapshot while sibling
// branches extend theirs.
type Substitution struct {
	bindings map[int64]Term // Maps variable IDs to terms
}

// NewSubstitution creates an empty substitution.
func NewSubstitution() *Substitution {
	return &Substitution{bindings: make(map[int64]Term)}
}

// Lookup returns the term bound to a variable, or nil if unbound.
func (s *Substitution) Lookup(v *Var) Term {
	return s.bindings[v.id]
}

// Bind creates a new substitution with an additional binding.
func (s *Substitution) Bind(v *Var, term Term) *Substitution {
	// Prevent binding a variable to itself
	if tv, ok := term.(*Var); ok && tv.id == v.id {
		return s
	}

	bindings := make(map[int64]Term, len(s.bindings)+1)
	for k, t := range s.bindings {
		bindings[k] = t
	}
	bindings[v.id] = term
	return &Substitution{bindings: bindings}
}

// Walk follows variable bindings until it reaches a non-variable or an
// unbound variable.
func (s *Substitution) Walk(term Term) Term {
	for {
		v, ok := term.(*Var)
		if !ok {
			return term
		}
		bound, exists := s.bindings[v.id]
		if !exists {
			return term
		}
		term = bound
	}
}

// DeepWalk resolves all bindings in a term recursively.
func (s *Substitution) DeepWalk(term Term) Term {
	walked := s.Walk(term)
	c, ok := walked.(*Compound)
	if !ok {
		return walked
	}
	children := make([]Term, len(c.children))
	for i, ch := range c.children {
		children[i] = s.DeepWalk(ch)
	}
	return &Compound{children: children}
}

// Resolve instantiates both components of a judgment.
func (s *Substitution) Resolve(j Judgment) Judgment {
	return Judgment{Proof: s.DeepWalk(j.Proof), Theorem: s.DeepWalk(j.Theorem)}
}

// Size returns the number of bindings in the substitution.
func (s *Substitution) Size() int {
	return len(s.bindings)
}

// String returns a string representation of the substitution,
// ordered by variable id.
func (s *Substitution) String() string {
	if len(s.bindings) == 0 {
		return "{}"
	}
	ids := make([]int64, 0, len(s.bindings))
	for id := range s.bindings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("_%d=%s", id, s.bindings[id].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
