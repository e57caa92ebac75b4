package chainer

import (
	"context"
	"slices"
	"testing"
)

func TestGoals(t *testing.T) {
	ctx := context.Background()
	x, y := Fresh("x"), Fresh("y")

	t.Run("Disj is ordered", func(t *testing.T) {
		goal := Disj(Eq(x, symA), Eq(x, symB), Eq(x, symC))
		var got []string
		for sub := range goal(ctx, NewSubstitution()) {
			got = append(got, sub.Walk(x).String())
		}
		if !slices.Equal(got, []string{"A", "B", "C"}) {
			t.Errorf("expected [A B C], got %v", got)
		}
	})

	t.Run("Conj is a depth-first cross product", func(t *testing.T) {
		goal := Conj(Disj(Eq(x, symA), Eq(x, symB)), Disj(Eq(y, symC), Eq(y, symD)))
		var got []string
		for sub := range goal(ctx, NewSubstitution()) {
			got = append(got, sub.Walk(x).String()+sub.Walk(y).String())
		}
		if !slices.Equal(got, []string{"AC", "AD", "BC", "BD"}) {
			t.Errorf("unexpected order %v", got)
		}
	})

	t.Run("Conj shares bindings", func(t *testing.T) {
		goal := Conj(Eq(x, y), Eq(y, symA))
		sub, ok := First(goal(ctx, NewSubstitution()))
		if !ok || !sub.Walk(x).Equal(symA) {
			t.Error("x should be bound through y")
		}
	})

	t.Run("empty combinators", func(t *testing.T) {
		if _, ok := First(Conj()(ctx, NewSubstitution())); !ok {
			t.Error("empty conjunction should succeed")
		}
		if _, ok := First(Disj()(ctx, NewSubstitution())); ok {
			t.Error("empty disjunction should fail")
		}
		if _, ok := First(Failure(ctx, NewSubstitution())); ok {
			t.Error("Failure should not succeed")
		}
	})

	t.Run("cancelled context stops enumeration", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, ok := First(Eq(x, symA)(cctx, NewSubstitution())); ok {
			t.Error("cancelled Eq should yield nothing")
		}
	})

	t.Run("streams are restartable", func(t *testing.T) {
		stream := Disj(Eq(x, symA), Eq(x, symB))(ctx, NewSubstitution())
		if len(Collapse(stream)) != 2 || len(Collapse(stream)) != 2 {
			t.Error("ranging twice should replay the search")
		}
	})
}

func TestCollapseSuperpose(t *testing.T) {
	xs := []int{1, 2, 3}
	seq := Superpose(xs)
	xs[0] = 99

	if got := Collapse(seq); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("Superpose should copy its input, got %v", got)
	}
	if got := Take(seq, 2); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("Take(2) = %v", got)
	}
	if got := Take(seq, 0); len(got) != 3 {
		t.Errorf("Take(0) should collect everything, got %v", got)
	}
	if _, ok := First(Superpose([]int(nil))); ok {
		t.Error("First of an empty sequence should report false")
	}
}

func TestDedup(t *testing.T) {
	p := Fresh("p")
	js := []Judgment{
		Judge(symX, symA),
		Judge(proofB(), symB),
		Judge(NewSymbol("a"), NewSymbol("A")),
		Judge(p, imp(p, symA)),
		Judge(Fresh("q"), imp(Fresh("q2"), symA)),
	}

	got := judgmentStrings(Dedup(js))
	if len(got) != 3 {
		t.Fatalf("expected 3 judgments after dedup, got %v", got)
	}
	if got[0] != "a : A" || got[1] != "((ModusPonens ab) a) : B" {
		t.Errorf("dedup should keep first occurrences in order, got %v", got)
	}
}
