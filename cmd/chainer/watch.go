package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/gitrdm/gokanproof/pkg/chainer"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		query    string
		depth    int
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-prove a query whenever the knowledge-base file changes",
		Long: `Prove the query once, then watch the --kb file and prove it again after
every change until interrupted. Bursts of writes within --debounce are
handled as one change. Without --query the queries are re-read from the
file on every change.

Examples:
  chainer watch --kb chain.yaml --depth 3 --query '{proof: $prf, theorem: C}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.cfg.Store.KnowledgeBase
			if path == "" {
				return fmt.Errorf("watch needs a --kb file")
			}
			depth, err := a.depth(cmd, depth)
			if err != nil {
				return err
			}
			queries, err := a.queries(query, "query")
			if err != nil {
				return err
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Close()
			// Editors often replace the file, so watch its directory.
			if err := watcher.Add(filepath.Dir(path)); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}

			ctx := cmd.Context()
			prove := func() {
				for _, q := range queries {
					proofs := chainer.Collapse(a.engine.Backward(ctx, a.kb, depth, q))
					fmt.Fprintf(a.out, "# %s: %d proof(s)\n", q, len(proofs))
					a.print(proofs)
				}
			}
			prove()

			target := filepath.Clean(path)
			var timer *time.Timer
			var fire <-chan time.Time
			for {
				select {
				case <-ctx.Done():
					return nil

				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create) {
						continue
					}
					if timer == nil {
						timer = time.NewTimer(debounce)
					} else {
						timer.Reset(debounce)
					}
					fire = timer.C

				case <-fire:
					fire = nil
					if err := a.reload(); err != nil {
						a.logger.Warn("reload failed", slog.String("path", path), slog.String("error", err.Error()))
						continue
					}
					a.logger.Info("knowledge base changed", slog.String("path", path), slog.Int("judgments", a.kb.Len()))
					// Without --query the file's own queries may have changed.
					next, err := a.queries(query, "query")
					if err != nil {
						a.logger.Warn("no queries after reload", slog.String("path", path), slog.String("error", err.Error()))
						continue
					}
					queries = next
					prove()

				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					a.logger.Warn("watch error", slog.String("error", err.Error()))
				}
			}
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "query judgment")
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "depth budget (default from config)")
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "quiet period before re-running")
	return cmd
}
