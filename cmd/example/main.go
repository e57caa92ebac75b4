// Package main is a short tour of the chainer API: terms and unification,
// backward and forward chaining, iterative lemma reuse, inference control
// and concurrent batches.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gitrdm/gokanproof/internal/parallel"
	"github.com/gitrdm/gokanproof/pkg/chainer"
)

var (
	a  = chainer.NewSymbol("A")
	b  = chainer.NewSymbol("B")
	c  = chainer.NewSymbol("C")
	mp = chainer.NewSymbol("ModusPonens")

	implies = chainer.NewSymbol("→")
)

func imp(p, q chainer.Term) chainer.Term {
	return chainer.NewCompound(implies, p, q)
}

// chain builds ab : A → B, bc : B → C, a : A and the modus ponens rule.
func chain() *chainer.Store {
	p, q := chainer.Fresh("p"), chainer.Fresh("q")
	return chainer.NewStore(
		chainer.Judge(chainer.NewSymbol("ab"), imp(a, b)),
		chainer.Judge(chainer.NewSymbol("bc"), imp(b, c)),
		chainer.Judge(chainer.NewSymbol("a"), a),
		chainer.Judge(mp, chainer.Arrows(q, imp(p, q), p)),
	)
}

func main() {
	fmt.Println("=== Proof Search Tour ===")
	fmt.Println()

	unification()
	backwardChaining()
	forwardChaining()
	iterativeChaining()
	inferenceControl()
	batchQueries()
}

func unification() {
	fmt.Println("1. Unification:")

	x, y := chainer.Fresh("x"), chainer.Fresh("y")
	left := imp(x, b)
	right := imp(a, y)
	sub := chainer.Unify(left, right, chainer.NewSubstitution())
	fmt.Printf("   %s = %s => %s\n", left, right, sub.DeepWalk(left))

	// The occurs check rejects cyclic bindings.
	cyclic := chainer.Unify(x, chainer.App(chainer.NewSymbol("f"), x), chainer.NewSubstitution())
	fmt.Printf("   x = (f x) => unifiable: %v\n", cyclic != nil)
	fmt.Println()
}

func backwardChaining() {
	fmt.Println("2. Backward Chaining:")

	ctx := context.Background()
	for depth := 0; depth <= 3; depth++ {
		query := chainer.Judge(chainer.Fresh("prf"), c)
		proofs := chainer.Collapse(chainer.Backward(ctx, chain(), depth, query))
		fmt.Printf("   depth %d: %d proof(s) of C\n", depth, len(proofs))
		for _, p := range proofs {
			fmt.Printf("     %s\n", p)
		}
	}
	fmt.Println()
}

func forwardChaining() {
	fmt.Println("3. Forward Chaining:")

	source := chainer.Judge(chainer.NewSymbol("a"), a)
	for j := range chainer.Forward(context.Background(), chain(), 3, source) {
		fmt.Printf("   %s\n", j)
	}
	fmt.Println()
}

func iterativeChaining() {
	fmt.Println("4. Iterative Chaining:")

	ctx := context.Background()
	query := chainer.Judge(chainer.Fresh("prf"), c)

	iterative := chainer.NewEngine(nil)
	kb := chain()
	results, err := iterative.IterateBackward(ctx, kb, 2, 1, query)
	if err != nil {
		fmt.Printf("   error: %v\n", err)
		return
	}
	for j := range results {
		fmt.Printf("   %s\n", j)
	}

	oneShot := chainer.NewEngine(nil)
	chainer.Collapse(oneShot.Backward(ctx, chain(), 4, query))

	fmt.Printf("   store grew to %d judgments\n", kb.Len())
	fmt.Printf("   steps: depth 2 with lemmas = %d, single depth 4 = %d\n",
		iterative.Stats().Steps(), oneShot.Stats().Steps())
	fmt.Println()
}

func inferenceControl() {
	fmt.Println("5. Inference Control:")

	ctx := context.Background()
	query := chainer.Judge(chainer.Fresh("prf"), c)

	depth := chainer.Collapse(chainer.ControlledBackward(ctx, chain(), chainer.DepthControl(), 3, query))
	fmt.Printf("   depth control (3): %d proof(s)\n", len(depth))

	target := chainer.Collapse(chainer.ControlledBackward(ctx, chain(), chainer.TargetControl(), chainer.NewTargetContext(3), query))
	fmt.Printf("   target control (3): %d proof(s)\n", len(target))

	// stop : (terminate $goal (S (S (S (S $n)))))
	succ := func(t chainer.Term) chainer.Term { return chainer.App(chainer.SuccSymbol, t) }
	controlKB := chainer.NewStore(chainer.Judge(chainer.NewSymbol("stop"),
		chainer.NewCompound(chainer.TerminateSymbol, chainer.Fresh("goal"), succ(succ(succ(succ(chainer.Fresh("n"))))))))
	ctrl := chainer.ProvableControl(controlKB, 0, chainer.ProvableOptions{})
	provable := chainer.Collapse(chainer.ControlledBackward(ctx, chain(), ctrl, chainer.Term(chainer.ZeroSymbol), query))
	fmt.Printf("   provable control (S^4 stops): %d proof(s)\n", len(provable))
	fmt.Println()
}

func batchQueries() {
	fmt.Println("6. Concurrent Batch:")

	pool := parallel.NewWorkerPool(0)
	defer pool.Shutdown()

	queries := []chainer.Judgment{
		chainer.Judge(chainer.Fresh("prf"), a),
		chainer.Judge(chainer.Fresh("prf"), b),
		chainer.Judge(chainer.Fresh("prf"), c),
	}
	start := time.Now()
	results, err := parallel.NewRunner(pool, nil).Backward(context.Background(), chain(), 3, queries)
	if err != nil {
		fmt.Printf("   error: %v\n", err)
		return
	}
	for _, r := range results {
		fmt.Printf("   %s: %d proof(s)\n", r.Query.Theorem, len(r.Proofs))
	}
	fmt.Printf("   %d queries on %d workers in %v\n", len(queries), pool.Workers(), time.Since(start))
	fmt.Println()
}
