// Package chainer provides depth-bounded, non-deterministic proof search
// over curried, typed terms.
//
// The package is a small logic-programming engine built around a single
// judgment shape, "Proof : Theorem". Knowledge bases store judgments
// (facts and rules are not distinguished), and queries are judgments whose
// proof and/or theorem contain logic variables. The engine offers:
//   - Backward chaining: find proofs for a theorem within a depth budget
//   - Forward chaining: derive every conclusion reachable from a source
//   - Iterative chaining: commit each round's results back into the
//     knowledge base so later rounds reuse them as lemmas
//   - Inference control: replace the depth budget with programmable
//     context updaters and a termination predicate
//
// Every chaining operation returns a lazy, restartable iter.Seq of results.
// Search exhaustion is never an error; it is an empty sequence.
package chainer

import (
	"fmt"
	"strings"
)

// Term represents any value in the proof-search universe.
// Terms are symbols, logic variables, or compound terms.
// Terms are immutable once built and safe to share between goroutines.
type Term interface {
	// String returns a human-readable representation of the term.
	String() string

	// Equal checks if this term is structurally equal to another term.
	// This is different from unification - it's a strict equality check.
	Equal(other Term) bool

	// IsVar returns true if this term is a logic variable.
	IsVar() bool

	// Clone creates a deep copy of the term.
	Clone() Term
}

// Symbol is an atomic constant. Symbols with the same name are equal.
type Symbol struct {
	name string
}

// NewSymbol creates a symbol with the given name.
func NewSymbol(name string) *Symbol {
	return &Symbol{name: name}
}

// Name returns the symbol's name.
func (s *Symbol) Name() string {
	return s.name
}

// String returns the symbol's name.
func (s *Symbol) String() string {
	return s.name
}

// Equal checks if two symbols have the same name.
func (s *Symbol) Equal(other Term) bool {
	if o, ok := other.(*Symbol); ok {
		return s.name == o.name
	}
	return false
}

// IsVar always returns false for symbols.
func (s *Symbol) IsVar() bool {
	return false
}

// Clone returns the symbol itself; symbols are immutable.
func (s *Symbol) Clone() Term {
	return s
}

// Var is a logic variable. Its scope is one query or one rule instantiation;
// two variables are the same variable only if they share an id.
type Var struct {
	id   int64
	name string
}

// ID returns the variable's unique identifier.
func (v *Var) ID() int64 {
	return v.id
}

// Name returns the name the variable was created with.
func (v *Var) Name() string {
	return v.name
}

// String returns a string representation of the variable.
func (v *Var) String() string {
	if v.name != "" {
		return fmt.Sprintf("$%s_%d", v.name, v.id)
	}
	return fmt.Sprintf("$_%d", v.id)
}

// Equal checks if two variables are the same variable.
func (v *Var) Equal(other Term) bool {
	if o, ok := other.(*Var); ok {
		return v.id == o.id
	}
	return false
}

// IsVar always returns true for variables.
func (v *Var) IsVar() bool {
	return true
}

// Clone creates a copy of the variable with the same identity.
func (v *Var) Clone() Term {
	return &Var{id: v.id, name: v.name}
}

// Compound is an ordered sequence of one or more child terms. The first
// child is the head. Applications are binary compounds (f a); rule types
// use the arrow compound (-> premise conclusion).
type Compound struct {
	children []Term
}

// NewCompound creates a compound term from its children.
// It panics if no children are given.
func NewCompound(children ...Term) *Compound {
	if len(children) == 0 {
		panic("chainer: compound term needs at least one child")
	}
	return &Compound{children: append([]Term(nil), children...)}
}

// Len returns the number of children.
func (c *Compound) Len() int {
	return len(c.children)
}

// Head returns the first child.
func (c *Compound) Head() Term {
	return c.children[0]
}

// Child returns the i-th child.
func (c *Compound) Child(i int) Term {
	return c.children[i]
}

// Children returns a copy of the child list.
func (c *Compound) Children() []Term {
	return append([]Term(nil), c.children...)
}

// String returns the parenthesised child list, e.g. "(f a b)".
func (c *Compound) String() string {
	parts := make([]string, len(c.children))
	for i, ch := range c.children {
		parts[i] = ch.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Equal checks if two compounds are structurally equal.
func (c *Compound) Equal(other Term) bool {
	o, ok := other.(*Compound)
	if !ok || len(o.children) != len(c.children) {
		return false
	}
	for i := range c.children {
		if !c.children[i].Equal(o.children[i]) {
			return false
		}
	}
	return true
}

// IsVar always returns false for compounds.
func (c *Compound) IsVar() bool {
	return false
}

// Clone creates a deep copy of the compound.
func (c *Compound) Clone() Term {
	children := make([]Term, len(c.children))
	for i, ch := range c.children {
		children[i] = ch.Clone()
	}
	return &Compound{children: children}
}

// ArrowSymbol is the head of rule types. Only this arrow is understood by
// the chainer; object-level connectives are ordinary compounds.
var ArrowSymbol = NewSymbol("->")

// App builds the curried application (f a).
func App(f, a Term) *Compound {
	return NewCompound(f, a)
}

// Apply builds the curried application ((f a1) a2) ... an.
// With no arguments it returns f unchanged.
func Apply(f Term, args ...Term) Term {
	result := f
	for _, a := range args {
		result = App(result, a)
	}
	return result
}

// Arrow builds the rule type (-> premise conclusion).
func Arrow(premise, conclusion Term) *Compound {
	return NewCompound(ArrowSymbol, premise, conclusion)
}

// Arrows builds the curried rule type p1 -> (p2 -> ... -> conclusion).
func Arrows(conclusion Term, premises ...Term) Term {
	result := conclusion
	for i := len(premises) - 1; i >= 0; i-- {
		result = Arrow(premises[i], result)
	}
	return result
}

// SplitArrow returns the premise and conclusion of a rule type.
// ok is false if t is not of the form (-> premise conclusion).
func SplitArrow(t Term) (premise, conclusion Term, ok bool) {
	c, isCompound := t.(*Compound)
	if !isCompound || len(c.children) != 3 || !c.children[0].Equal(ArrowSymbol) {
		return nil, nil, false
	}
	return c.children[1], c.children[2], true
}

// Judgment is the typed pair "Proof : Theorem". Facts, rules and queries
// all share this shape.
type Judgment struct {
	Proof   Term
	Theorem Term
}

// Judge builds the judgment proof : theorem.
func Judge(proof, theorem Term) Judgment {
	return Judgment{Proof: proof, Theorem: theorem}
}

// String returns "proof : theorem".
func (j Judgment) String() string {
	return j.Proof.String() + " : " + j.Theorem.String()
}

// Equal checks structural equality of both components.
func (j Judgment) Equal(other Judgment) bool {
	return j.Proof.Equal(other.Proof) && j.Theorem.Equal(other.Theorem)
}

// Clone creates a deep copy of the judgment.
func (j Judgment) Clone() Judgment {
	return Judgment{Proof: j.Proof.Clone(), Theorem: j.Theorem.Clone()}
}

// IsZero reports whether the judgment has no proof or theorem.
func (j Judgment) IsZero() bool {
	return j.Proof == nil || j.Theorem == nil
}

// Term returns the judgment as the compound (: proof theorem).
func (j Judgment) Term() *Compound {
	return NewCompound(judgmentSymbol, j.Proof, j.Theorem)
}

var judgmentSymbol = NewSymbol(":")
