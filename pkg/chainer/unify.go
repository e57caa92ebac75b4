package chainer

import (
	"sync/atomic"
)

// Variable counter for generating unique variable IDs
var varCounter int64

// Fresh creates a new logic variable with an optional name for debugging.
// Each call to Fresh generates a variable with a globally unique ID,
// ensuring no variable conflicts even in concurrent environments.
//
// Example:
//
//	prf := Fresh("prf")
//	query := Judge(prf, NewSymbol("A"))
func Fresh(name string) *Var {
	id := atomic.AddInt64(&varCounter, 1)
	return &Var{id: id, name: name}
}

// Unify computes the most general unifier of two terms under sub.
// It returns the extended substitution, or nil if the terms do not unify.
//
// Unification Rules:
//   - Symbol == Symbol: succeeds if the names match
//   - Var == Term: binds the variable (fails if the variable occurs in the term)
//   - Compound == Compound: same length, children unified left to right
//   - Otherwise: fails
func Unify(term1, term2 Term, sub *Substitution) *Substitution {
	// Walk both terms to their final values
	t1 := sub.Walk(term1)
	t2 := sub.Walk(term2)

	if v1, ok := t1.(*Var); ok {
		if v2, ok := t2.(*Var); ok && v1.id == v2.id {
			return sub
		}
		if occurs(v1, t2, sub) {
			return nil
		}
		return sub.Bind(v1, t2)
	}

	if v2, ok := t2.(*Var); ok {
		if occurs(v2, t1, sub) {
			return nil
		}
		return sub.Bind(v2, t1)
	}

	switch a := t1.(type) {
	case *Symbol:
		if a.Equal(t2) {
			return sub
		}
		return nil
	case *Compound:
		b, ok := t2.(*Compound)
		if !ok || len(a.children) != len(b.children) {
			return nil
		}
		for i := range a.children {
			sub = Unify(a.children[i], b.children[i], sub)
			if sub == nil {
				return nil
			}
		}
		return sub
	}
	return nil
}

// UnifyJudgments unifies proofs and then theorems.
func UnifyJudgments(a, b Judgment, sub *Substitution) *Substitution {
	sub = Unify(a.Proof, b.Proof, sub)
	if sub == nil {
		return nil
	}
	return Unify(a.Theorem, b.Theorem, sub)
}

// occurs reports whether v appears in t under sub.
func occurs(v *Var, t Term, sub *Substitution) bool {
	switch w := sub.Walk(t).(type) {
	case *Var:
		return w.id == v.id
	case *Compound:
		for _, ch := range w.children {
			if occurs(v, ch, sub) {
				return true
			}
		}
	}
	return false
}

// RenameApart returns a copy of the judgment with every variable replaced
// by a fresh one. Shared variables stay shared in the copy.
func RenameApart(j Judgment) Judgment {
	varMap := make(map[int64]*Var)
	return Judgment{
		Proof:   copyTermRecursive(j.Proof, varMap),
		Theorem: copyTermRecursive(j.Theorem, varMap),
	}
}

// copyTermRecursive performs the actual copying with variable tracking.
// The varMap ensures that shared variables in the original remain shared
// in the copy (with fresh variables).
func copyTermRecursive(term Term, varMap map[int64]*Var) Term {
	switch t := term.(type) {
	case *Var:
		if fresh, exists := varMap[t.id]; exists {
			return fresh
		}
		fresh := Fresh(t.name)
		varMap[t.id] = fresh
		return fresh

	case *Compound:
		if isGround(t) {
			return t
		}
		children := make([]Term, len(t.children))
		for i, ch := range t.children {
			children[i] = copyTermRecursive(ch, varMap)
		}
		return &Compound{children: children}

	default:
		return term
	}
}

// isGround returns true if the term contains no variables.
func isGround(t Term) bool {
	switch v := t.(type) {
	case *Var:
		return false
	case *Compound:
		for _, ch := range v.children {
			if !isGround(ch) {
				return false
			}
		}
	}
	return true
}

// IsGround reports whether neither component of j contains a variable.
func (j Judgment) IsGround() bool {
	return isGround(j.Proof) && isGround(j.Theorem)
}

// Vars returns the distinct variables of t in first-occurrence order.
func Vars(t Term) []*Var {
	var out []*Var
	seen := make(map[int64]bool)
	var walk func(Term)
	walk = func(t Term) {
		switch v := t.(type) {
		case *Var:
			if !seen[v.id] {
				seen[v.id] = true
				out = append(out, v)
			}
		case *Compound:
			for _, ch := range v.children {
				walk(ch)
			}
		}
	}
	walk(t)
	return out
}
