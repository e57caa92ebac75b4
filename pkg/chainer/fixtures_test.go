package chainer

// Shared fixtures for the chaining tests.

var (
	symA  = NewSymbol("A")
	symB  = NewSymbol("B")
	symC  = NewSymbol("C")
	symD  = NewSymbol("D")
	symAb = NewSymbol("ab")
	symBc = NewSymbol("bc")
	symCd = NewSymbol("cd")
	symX  = NewSymbol("a")
	symMP = NewSymbol("ModusPonens")

	// implies is the object-level implication, distinct from the rule arrow
	implies = NewSymbol("→")
)

func imp(p, q Term) Term {
	return NewCompound(implies, p, q)
}

// chainKB is the three-fact chain
//
//	ab : A → B
//	bc : B → C
//	a  : A
//	ModusPonens : (p → q) -> p -> q
func chainKB() *Store {
	p, q := Fresh("p"), Fresh("q")
	return NewStore(
		Judge(symAb, imp(symA, symB)),
		Judge(symBc, imp(symB, symC)),
		Judge(symX, symA),
		Judge(symMP, Arrows(q, imp(p, q), p)),
	)
}

// mp builds the proof ((ModusPonens rule) arg).
func mp(rule, arg Term) Term {
	return Apply(symMP, rule, arg)
}

func proofB() Term { return mp(symAb, symX) }
func proofC() Term { return mp(symBc, proofB()) }

func judgmentStrings(js []Judgment) []string {
	out := make([]string, len(js))
	for i, j := range js {
		out[i] = j.String()
	}
	return out
}
