package main

import (
	"fmt"
	"iter"

	"github.com/spf13/cobra"

	"github.com/gitrdm/gokanproof/pkg/chainer"
)

func newBackwardCmd(a *app) *cobra.Command {
	var (
		query string
		depth int
		limit int
	)
	cmd := &cobra.Command{
		Use:   "backward",
		Short: "Prove a query by backward chaining",
		Long: `Find proofs of a query judgment whose application depth is at most
--depth. The proof and theorem of the query may contain variables; every
solution is printed with them filled in. Without --query, each query of
the knowledge-base file is proved in turn.

Examples:
  chainer backward --kb chain.yaml --depth 3 --query '{proof: $prf, theorem: C}'
  chainer backward --kb chain.yaml --depth 2 --query '{proof: $prf, theorem: $t}' --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			depth, err := a.depth(cmd, depth)
			if err != nil {
				return err
			}
			queries, err := a.queries(query, "query")
			if err != nil {
				return err
			}

			total := 0
			for _, q := range queries {
				if len(queries) > 1 {
					fmt.Fprintf(a.out, "# %s\n", q)
				}
				proofs := chainer.Take(a.engine.Backward(cmd.Context(), a.kb, depth, q), limit)
				a.print(proofs)
				total += len(proofs)
			}
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			a.logStats("backward", total)
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "query judgment, e.g. '{proof: $prf, theorem: C}'")
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "depth budget (default from config)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "stop after this many proofs (0 = all)")
	return cmd
}

func newForwardCmd(a *app) *cobra.Command {
	var (
		source string
		depth  int
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "forward",
		Short: "Derive consequences of a judgment by forward chaining",
		Long: `Print every judgment reachable from --source by applying rules of the
knowledge base, up to --depth steps. The source itself is printed first.

Examples:
  chainer forward --kb chain.yaml --depth 2 --source '{proof: a, theorem: A}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			depth, err := a.depth(cmd, depth)
			if err != nil {
				return err
			}
			sources, err := a.queries(source, "source")
			if err != nil {
				return err
			}

			total := 0
			for _, src := range sources {
				derived := chainer.Take(a.engine.Forward(cmd.Context(), a.kb, depth, src), limit)
				a.print(derived)
				total += len(derived)
			}
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			a.logStats("forward", total)
			return nil
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "source judgment, e.g. '{proof: a, theorem: A}'")
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "depth budget (default from config)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "stop after this many judgments (0 = all)")
	return cmd
}

func newIterateCmd(a *app) *cobra.Command {
	var (
		mode   string
		query  string
		depth  int
		rounds int
	)
	cmd := &cobra.Command{
		Use:   "iterate",
		Short: "Chain in rounds, storing each round's results as lemmas",
		Long: `Run --rounds rounds of backward or forward chaining at --depth. After
each round the new judgments are added to the knowledge base, so later
rounds can use them as facts. With --db the lemmas persist across runs.

Examples:
  chainer iterate --kb chain.yaml --depth 2 --rounds 1 --query '{proof: $prf, theorem: C}'
  chainer iterate --kb chain.yaml --mode forward --depth 1 --rounds 2 --query '{proof: a, theorem: A}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			depth, err := a.depth(cmd, depth)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("rounds") {
				rounds = a.cfg.Engine.Rounds
			}
			queries, err := a.queries(query, "query")
			if err != nil {
				return err
			}

			var chain func(q chainer.Judgment) (iter.Seq[chainer.Judgment], error)
			switch mode {
			case "backward":
				chain = func(q chainer.Judgment) (iter.Seq[chainer.Judgment], error) {
					return a.engine.IterateBackward(cmd.Context(), a.kb, depth, rounds, q)
				}
			case "forward":
				chain = func(q chainer.Judgment) (iter.Seq[chainer.Judgment], error) {
					return a.engine.IterateForward(cmd.Context(), a.kb, depth, rounds, q)
				}
			default:
				return fmt.Errorf("unknown mode %q (want backward or forward)", mode)
			}

			total := 0
			for _, q := range queries {
				seq, err := chain(q)
				if err != nil {
					return err
				}
				results := chainer.Collapse(seq)
				a.print(results)
				total += len(results)
			}
			a.logStats("iterate-"+mode, total)
			return nil
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "backward", "chaining direction (backward, forward)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "query or source judgment")
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "depth budget per round (default from config)")
	cmd.Flags().IntVarP(&rounds, "rounds", "r", 0, "number of rounds (default from config)")
	return cmd
}
