package chainer

import (
	"context"
	"fmt"
)

// Symbols of the control language used by ProvableControl.
var (
	TerminateSymbol = NewSymbol("terminate")
	ZeroSymbol      = NewSymbol("Z")
	SuccSymbol      = NewSymbol("S")
)

// ProvableOptions configures ProvableControl.
type ProvableOptions struct {
	// AbsUpdate and ArgUpdate default to wrapping the context in (S c).
	AbsUpdate func(goal Judgment, c Term) Term
	ArgUpdate func(goal Judgment, c Term) Term

	// QuoteVariables replaces the goal's variables with symbols before
	// the termination query, so control axioms can only match what the
	// goal already fixes. Off by default: with live variables a control
	// axiom such as (terminate (: $p (R $x $x)) $c) also matches a goal
	// (R $a $b) whose arguments are merely unbound.
	QuoteVariables bool

	// Engine runs the termination queries (nil = a private engine with
	// the default configuration).
	Engine *Engine

	// Context bounds the termination queries (nil = context.Background()).
	// Control functions take no context, so cancelling the outer search
	// does not reach a nested query unless it shares this one. A cancelled
	// Context finds no termination proofs.
	Context context.Context
}

// ProvableControl makes termination a theorem: a goal is pruned when
// Backward finds a proof of
//
//	(terminate (: proof theorem) context)
//
// in controlKB within depth. The context is a Term, by default a Peano
// count of the goal's nesting starting from ZeroSymbol.
//
// For example a control knowledge base holding
//
//	stop : (terminate $goal (S (S (S $n))))
//
// reproduces DepthControl with depth 2.
func ProvableControl(controlKB KnowledgeBase, depth int, opts ProvableOptions) Control[Term] {
	succ := func(_ Judgment, c Term) Term { return App(SuccSymbol, c) }
	if opts.AbsUpdate == nil {
		opts.AbsUpdate = succ
	}
	if opts.ArgUpdate == nil {
		opts.ArgUpdate = succ
	}
	engine := opts.Engine
	if engine == nil {
		engine = NewEngine(DefaultConfig())
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	return Control[Term]{
		AbsUpdate: opts.AbsUpdate,
		ArgUpdate: opts.ArgUpdate,
		Terminate: func(goal Judgment, c Term) bool {
			if opts.QuoteVariables {
				goal = quoteJudgment(goal)
			}
			query := Judge(Fresh("why"), NewCompound(TerminateSymbol, goal.Term(), c))
			_, found := First(engine.Backward(ctx, controlKB, depth, query))
			return found
		},
	}
}

// quoteJudgment replaces every variable with a symbol that no other
// variable can produce.
func quoteJudgment(j Judgment) Judgment {
	return Judgment{Proof: quote(j.Proof), Theorem: quote(j.Theorem)}
}

func quote(t Term) Term {
	switch v := t.(type) {
	case *Var:
		return NewSymbol(fmt.Sprintf("'%s_%d", v.name, v.id))
	case *Compound:
		if isGround(v) {
			return v
		}
		children := make([]Term, len(v.children))
		for i, ch := range v.children {
			children[i] = quote(ch)
		}
		return &Compound{children: children}
	}
	return t
}
