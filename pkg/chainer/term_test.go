package chainer

import (
	"testing"
)

// TestVar tests variable creation and methods.
func TestVar(t *testing.T) {
	t.Run("Fresh creates unique variables", func(t *testing.T) {
		v1 := Fresh("x")
		v2 := Fresh("x")

		if v1.Equal(v2) {
			t.Error("Fresh should create unique variables")
		}
		if v1.ID() == v2.ID() {
			t.Error("Fresh variables should have unique IDs")
		}
	})

	t.Run("Variable equality", func(t *testing.T) {
		v1 := Fresh("x")
		v2 := v1.Clone().(*Var)

		if !v1.Equal(v2) {
			t.Error("Variable should equal its clone")
		}
		if !v1.IsVar() {
			t.Error("Variable should return true for IsVar()")
		}
	})

	t.Run("Variable string representation", func(t *testing.T) {
		v1 := Fresh("prf")
		v2 := Fresh("")

		if v1.String() == v2.String() {
			t.Error("Different variables should have different string representations")
		}
		if v1.String()[:4] != "$prf" {
			t.Errorf("expected $prf prefix, got %s", v1.String())
		}
	})
}

// TestSymbol tests atomic constants.
func TestSymbol(t *testing.T) {
	a1 := NewSymbol("A")
	a2 := NewSymbol("A")

	if !a1.Equal(a2) {
		t.Error("Symbols with the same name should be equal")
	}
	if a1.Equal(NewSymbol("B")) {
		t.Error("Symbols with different names should not be equal")
	}
	if a1.IsVar() {
		t.Error("Symbol should not be a variable")
	}
	if a1.Name() != "A" || a1.String() != "A" {
		t.Errorf("unexpected symbol rendering %q", a1.String())
	}
}

// TestCompound tests compound terms and the curried builders.
func TestCompound(t *testing.T) {
	t.Run("NewCompound panics without children", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for empty compound")
			}
		}()
		NewCompound()
	})

	t.Run("children are copied", func(t *testing.T) {
		children := []Term{NewSymbol("f"), NewSymbol("a")}
		c := NewCompound(children...)
		children[1] = NewSymbol("b")

		if c.Child(1).String() != "a" {
			t.Error("compound should not alias the caller's slice")
		}
		got := c.Children()
		got[0] = NewSymbol("g")
		if c.Head().String() != "f" {
			t.Error("Children should return a copy")
		}
	})

	t.Run("Apply is curried", func(t *testing.T) {
		app := Apply(NewSymbol("f"), NewSymbol("a"), NewSymbol("b"))
		if app.String() != "((f a) b)" {
			t.Errorf("expected ((f a) b), got %s", app)
		}
		if Apply(NewSymbol("f")).String() != "f" {
			t.Error("Apply with no arguments should return f")
		}
	})

	t.Run("Arrows is right nested", func(t *testing.T) {
		rule := Arrows(symC, symA, symB)
		if rule.String() != "(-> A (-> B C))" {
			t.Errorf("unexpected rule type %s", rule)
		}

		premise, conclusion, ok := SplitArrow(rule)
		if !ok || !premise.Equal(symA) || conclusion.String() != "(-> B C)" {
			t.Errorf("SplitArrow(%s) = %v, %v, %v", rule, premise, conclusion, ok)
		}
	})

	t.Run("object implication is not a rule arrow", func(t *testing.T) {
		if _, _, ok := SplitArrow(imp(symA, symB)); ok {
			t.Error("→ should not be split as a rule arrow")
		}
		if _, _, ok := SplitArrow(symA); ok {
			t.Error("a symbol is not a rule type")
		}
	})

	t.Run("Clone is deep and equal", func(t *testing.T) {
		c := NewCompound(NewSymbol("f"), Fresh("x"))
		clone := c.Clone()
		if !c.Equal(clone) {
			t.Error("clone should equal the original")
		}
		if c.Equal(NewCompound(NewSymbol("f"))) {
			t.Error("compounds of different length should not be equal")
		}
	})
}

// TestJudgment tests the proof : theorem pair.
func TestJudgment(t *testing.T) {
	j := Judge(symX, symA)

	if j.String() != "a : A" {
		t.Errorf("expected \"a : A\", got %q", j.String())
	}
	if !j.Equal(Judge(NewSymbol("a"), NewSymbol("A"))) {
		t.Error("judgments with equal parts should be equal")
	}
	if j.IsZero() || !(Judgment{}).IsZero() {
		t.Error("IsZero mismatch")
	}
	if !j.IsGround() || Judge(Fresh("p"), symA).IsGround() {
		t.Error("IsGround mismatch")
	}
	if j.Term().String() != "(: a A)" {
		t.Errorf("unexpected judgment term %s", j.Term())
	}
}
