package chainer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlledBackward_DepthControl(t *testing.T) {
	ctx := context.Background()
	kb := chainKB()

	for _, th := range []Term{symA, symB, symC} {
		for depth := range 4 {
			want := judgmentStrings(Collapse(Backward(ctx, kb, depth, Judge(Fresh("prf"), th))))
			got := judgmentStrings(Collapse(ControlledBackward(ctx, kb, DepthControl(), depth, Judge(Fresh("prf"), th))))
			assert.Equal(t, want, got, "theorem %s at depth %d", th, depth)
		}
	}
}

// A predicate that always holds stops every expansion, leaving exactly
// the query's base-case matches.
func TestControlledBackward_AlwaysTerminate(t *testing.T) {
	ctx := context.Background()
	kb := chainKB()
	always := Control[int]{
		AbsUpdate: func(_ Judgment, c int) int { return c },
		ArgUpdate: func(_ Judgment, c int) int { return c },
		Terminate: func(Judgment, int) bool { return true },
	}

	for _, query := range []Judgment{
		Judge(Fresh("prf"), symA),
		Judge(Fresh("prf"), symB),
		Judge(Fresh("prf"), Fresh("t")),
		Judge(symAb, Fresh("t")),
	} {
		e := NewEngine(nil)
		want := judgmentStrings(Collapse(Backward(ctx, kb, 0, query)))
		got := judgmentStrings(Collapse(ControlledBackwardIn(ctx, e, kb, nil, always, 0, query)))
		assert.Equal(t, want, got, "query %s", query)
		assert.Equal(t, int64(1), e.Stats().Prunes, "query %s", query)
		assert.Zero(t, e.Stats().Expansions, "query %s", query)
	}
	assert.Equal(t, []string{"a : A"},
		judgmentStrings(Collapse(ControlledBackward(ctx, kb, always, 0, Judge(Fresh("prf"), symA)))))
}

// A predicate that holds only after a subgoal has matched discards that
// match but keeps searching elsewhere. The query's own matches are kept.
func TestControlledBackward_BaseMatchRecheck(t *testing.T) {
	ctx := context.Background()
	a2 := NewSymbol("a2")
	kb := chainKB()
	require.NoError(t, kb.Add(Judge(a2, symA)))
	ctrl := DepthControl()
	inner := ctrl.Terminate
	ctrl.Terminate = func(goal Judgment, d int) bool {
		return inner(goal, d) || goal.Proof.Equal(symX)
	}

	got := judgmentStrings(Collapse(ControlledBackward(ctx, kb, ctrl, 2, Judge(Fresh("prf"), symB))))
	assert.Equal(t, []string{"((ModusPonens ab) a2) : B"}, got)

	got = judgmentStrings(Collapse(ControlledBackward(ctx, kb, ctrl, 1, Judge(Fresh("prf"), symA))))
	assert.Equal(t, []string{"a : A", "a2 : A"}, got)
}

func TestControlledBackward_ContextsAreIndependent(t *testing.T) {
	ctx := context.Background()
	kb := chainKB()

	// Arguments get no budget: only abstraction chains may expand.
	ctrl := Control[int]{
		AbsUpdate: func(_ Judgment, d int) int { return d - 1 },
		ArgUpdate: func(_ Judgment, d int) int { return -1 },
		Terminate: func(_ Judgment, d int) bool { return d < 0 },
	}
	assert.Empty(t, Collapse(ControlledBackward(ctx, kb, ctrl, 3, Judge(Fresh("prf"), symB))))

	ctrl.ArgUpdate = func(_ Judgment, d int) int { return d - 1 }
	assert.Len(t, Collapse(ControlledBackward(ctx, kb, ctrl, 3, Judge(Fresh("prf"), symB))), 1)
}

func TestControlledBackward_MaxControlDepth(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(&Config{MaxArity: 1, MaxControlDepth: 3})
	never := Control[struct{}]{
		AbsUpdate: func(_ Judgment, c struct{}) struct{} { return c },
		ArgUpdate: func(_ Judgment, c struct{}) struct{} { return c },
		Terminate: func(Judgment, struct{}) bool { return false },
	}

	got := judgmentStrings(Collapse(ControlledBackwardIn(ctx, e, chainKB(), nil, never, struct{}{}, Judge(Fresh("prf"), symC))))
	assert.Equal(t, []string{"((ModusPonens bc) ((ModusPonens ab) a)) : C"}, got)
	assert.Positive(t, e.Stats().Prunes)
}

func TestTargetControl(t *testing.T) {
	ctx := context.Background()

	t.Run("finds the chain", func(t *testing.T) {
		got := judgmentStrings(Collapse(ControlledBackward(ctx, chainKB(), TargetControl(), NewTargetContext(3), Judge(Fresh("prf"), symC))))
		assert.Equal(t, []string{"((ModusPonens bc) ((ModusPonens ab) a)) : C"}, got)
	})

	t.Run("prunes repeated targets", func(t *testing.T) {
		// loop : A -> A would let every proof of A be wrapped again.
		kb := NewStore(
			Judge(NewSymbol("loop"), Arrow(symA, symA)),
			Judge(symX, symA),
		)
		plain := Collapse(Backward(ctx, kb, 3, Judge(Fresh("prf"), symA)))
		targeted := judgmentStrings(Collapse(ControlledBackward(ctx, kb, TargetControl(), NewTargetContext(3), Judge(Fresh("prf"), symA))))

		assert.Greater(t, len(plain), 1)
		assert.Equal(t, []string{"a : A"}, targeted)
	})

	t.Run("updates do not alias", func(t *testing.T) {
		ctrl := TargetControl()
		base := TargetContext{Depth: 3, Ancestors: make([]Term, 1, 4)}
		base.Ancestors[0] = symA
		c1 := ctrl.AbsUpdate(Judge(Fresh("p"), symB), base)
		c2 := ctrl.ArgUpdate(Judge(Fresh("p"), symC), base)
		assert.True(t, c1.Ancestors[1].Equal(symB))
		assert.True(t, c2.Ancestors[1].Equal(symC))
		assert.Len(t, base.Ancestors, 1)
	})
}

func TestProvableControl(t *testing.T) {
	ctx := context.Background()
	kb := chainKB()

	t.Run("peano depth bound", func(t *testing.T) {
		// stop : (terminate $goal (S (S (S $n))))
		n := Fresh("n")
		control := NewStore(Judge(NewSymbol("stop"),
			NewCompound(TerminateSymbol, Fresh("goal"), App(SuccSymbol, App(SuccSymbol, App(SuccSymbol, n))))))
		ctrl := ProvableControl(control, 0, ProvableOptions{})

		for _, th := range []Term{symA, symB, symC} {
			want := judgmentStrings(Collapse(Backward(ctx, kb, 2, Judge(Fresh("prf"), th))))
			got := judgmentStrings(Collapse(ControlledBackward(ctx, kb, ctrl, Term(ZeroSymbol), Judge(Fresh("prf"), th))))
			assert.Equal(t, want, got, "theorem %s", th)
		}
	})

	t.Run("free variables over-unify unless quoted", func(t *testing.T) {
		r, q := NewSymbol("R"), NewSymbol("Q")
		x := Fresh("x")
		// Never search a reflexive goal.
		control := NewStore(Judge(NewSymbol("noRefl"),
			NewCompound(TerminateSymbol, NewCompound(judgmentSymbol, Fresh("p"), NewCompound(r, x, x)), Fresh("c"))))
		facts := NewStore(
			Judge(NewSymbol("r12"), NewCompound(r, NewSymbol("one"), NewSymbol("two"))),
			Judge(NewSymbol("lift"), Arrow(NewCompound(r, Fresh("a"), Fresh("b")), q)),
		)
		query := Judge(Fresh("prf"), q)

		// The premise subgoal is (R $a $b), which unifies with (R $x $x).
		live := ProvableControl(control, 0, ProvableOptions{})
		assert.Empty(t, Collapse(ControlledBackward(ctx, facts, live, Term(ZeroSymbol), query)))

		quoted := ProvableControl(control, 0, ProvableOptions{QuoteVariables: true})
		got := judgmentStrings(Collapse(ControlledBackward(ctx, facts, quoted, Term(ZeroSymbol), query)))
		assert.Equal(t, []string{"(lift r12) : Q"}, got)
	})

	t.Run("termination queries use the options context", func(t *testing.T) {
		control := NewStore(Judge(NewSymbol("stop"), NewCompound(TerminateSymbol, Fresh("goal"), Fresh("c"))))
		goal := Judge(Fresh("prf"), symA)

		assert.True(t, ProvableControl(control, 0, ProvableOptions{}).Terminate(goal, ZeroSymbol))

		cancelledCtx, cancel := context.WithCancel(ctx)
		cancel()
		ctrl := ProvableControl(control, 0, ProvableOptions{Context: cancelledCtx})
		assert.False(t, ctrl.Terminate(goal, ZeroSymbol))
	})
}
