package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitrdm/gokanproof/internal/parallel"
	"github.com/gitrdm/gokanproof/pkg/chainer"
	"github.com/gitrdm/gokanproof/pkg/kbfile"
)

// snapshotter is implemented by chainer.Store and kbstore.Store.
type snapshotter interface {
	Snapshot() *chainer.Store
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		queriesPath string
		depth       int
		workers     int
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Prove many queries concurrently",
		Long: `Prove every query of a YAML file concurrently against one snapshot of
the knowledge base. The file uses the knowledge-base format; only its
queries section is read. Without --queries, the queries of the --kb file
are used. Results are printed in query order.

Examples:
  chainer batch --kb chain.yaml --depth 3
  chainer batch --kb chain.yaml --queries goals.yaml --workers 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			depth, err := a.depth(cmd, depth)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Batch.Workers
			}

			var queries []chainer.Judgment
			if queriesPath != "" {
				doc, err := kbfile.Load(queriesPath)
				if err != nil {
					return err
				}
				queries = doc.Queries
			} else if a.file != nil {
				queries = a.file.Queries
			}
			if len(queries) == 0 {
				return fmt.Errorf("no queries: pass --queries or a --kb file with a queries section")
			}

			kb := a.kb
			if s, ok := kb.(snapshotter); ok {
				kb = s.Snapshot()
			}

			pool := parallel.NewWorkerPool(workers)
			defer pool.Shutdown()
			results, err := parallel.NewRunner(pool, a.engine).Backward(cmd.Context(), kb, depth, queries)
			if err != nil {
				return err
			}

			total := 0
			for _, r := range results {
				fmt.Fprintln(a.out, r.Query.String())
				if len(r.Proofs) == 0 {
					fmt.Fprintln(a.out, "  no proof")
				}
				for _, p := range r.Proofs {
					fmt.Fprintf(a.out, "  %s\n", p)
				}
				total += len(r.Proofs)
			}
			a.logStats("batch", total)
			return nil
		},
	}
	cmd.Flags().StringVar(&queriesPath, "queries", "", "YAML file with a queries section")
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "depth budget (default from config)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent searches (default from config)")
	return cmd
}
