package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gitrdm/gokanproof/internal/config"
	"github.com/gitrdm/gokanproof/internal/telemetry"
	"github.com/gitrdm/gokanproof/pkg/chainer"
	"github.com/gitrdm/gokanproof/pkg/kbfile"
	"github.com/gitrdm/gokanproof/pkg/kbstore"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer

	configPath  string
	kbPath      string
	dbPath      string
	logLevel    string
	metricsAddr string

	cfg      *config.Config
	logger   *slog.Logger
	engine   *chainer.Engine
	metrics  *telemetry.MetricsTracer
	registry *prometheus.Registry

	kb   chainer.KnowledgeBase
	file *kbfile.KnowledgeBase // nil without --kb
	db   *kbstore.Store

	cleanup []func(context.Context) error
}

// run executes the command line args and releases every resource the
// invocation opened, whether or not the command succeeded.
func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	a := &app{out: out, errOut: errOut}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	err := cmd.ExecuteContext(ctx)
	return errors.Join(err, a.close(context.WithoutCancel(ctx)))
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chainer",
		Short: "Depth-bounded proof search over typed judgments",
		Long: `Search for proofs of typed judgments by backward and forward chaining.

A knowledge base is a YAML file of judgments, each a proof term and the
theorem it proves. Rules are judgments whose theorem is an arrow type
[->, premise, conclusion]; scalars starting with $ are variables.

Examples:
  chainer backward --kb chain.yaml --depth 3 --query '{proof: $prf, theorem: C}'
  chainer forward --kb chain.yaml --depth 2 --source '{proof: a, theorem: A}'
  chainer iterate --kb chain.yaml --db ./kb.db --depth 2 --rounds 2 --query '{proof: $prf, theorem: C}'
  chainer batch --kb chain.yaml --workers 4`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML configuration file")
	pf.StringVar(&a.kbPath, "kb", "", "YAML knowledge-base file")
	pf.StringVar(&a.dbPath, "db", "", "BadgerDB directory; derived judgments persist here")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	cmd.AddCommand(
		newBackwardCmd(a),
		newForwardCmd(a),
		newIterateCmd(a),
		newBatchCmd(a),
		newWatchCmd(a),
		newVersionCmd(a),
	)
	return cmd
}

// setup loads the configuration, applies flag overrides and opens the
// knowledge base.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("kb") {
		cfg.Store.KnowledgeBase = a.kbPath
	}
	if flags.Changed("db") {
		cfg.Store.DB = a.dbPath
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = a.metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.Log.Logger(a.errOut)

	a.registry = prometheus.NewRegistry()
	a.metrics = telemetry.NewMetricsTracer(a.registry)
	tracers := chainer.MultiTracer{a.metrics}
	if cfg.Log.Trace {
		tracers = append(tracers, chainer.NewLogTracer(a.logger))
	}
	a.engine = chainer.NewEngine(cfg.Engine.Chainer(a.logger, tracers))

	ctx := cmd.Context()
	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "chainer",
		ServiceVersion: chainer.Version,
		TraceExporter:  cfg.Metrics.Traces,
		OTLPEndpoint:   cfg.Metrics.OTLPEndpoint,
		Registerer:     a.registry,
		Writer:         a.errOut,
	})
	if err != nil {
		return err
	}
	a.cleanup = append(a.cleanup, shutdown)

	if addr := cfg.Metrics.Addr; addr != "" {
		serveCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := telemetry.Serve(serveCtx, addr, a.registry, a.logger); err != nil {
				a.logger.Error("metrics server failed", slog.String("error", err.Error()))
			}
		}()
		a.cleanup = append(a.cleanup, func(context.Context) error {
			cancel()
			<-done
			return nil
		})
	}

	return a.openKnowledgeBase()
}

// openKnowledgeBase loads --kb and, with --db, seeds the persistent store
// with the file's judgments that it does not already hold.
func (a *app) openKnowledgeBase() error {
	if err := a.loadFile(); err != nil {
		return err
	}

	if path := a.cfg.Store.DB; path != "" {
		storeCfg := kbstore.DefaultConfig(path)
		storeCfg.SyncWrites = a.cfg.Store.SyncWrites
		storeCfg.Logger = a.logger
		db, err := kbstore.Open(storeCfg)
		if err != nil {
			return err
		}
		a.db = db
		a.kb = db
		a.cleanup = append(a.cleanup, func(context.Context) error { return db.Close() })
		return a.seed()
	}

	if a.file != nil {
		a.kb = a.file.Store()
	} else {
		a.kb = chainer.NewStore()
	}
	return nil
}

func (a *app) loadFile() error {
	path := a.cfg.Store.KnowledgeBase
	if path == "" {
		return nil
	}
	file, err := kbfile.Load(path)
	if err != nil {
		return err
	}
	a.file = file
	a.logger.Debug("loaded knowledge base",
		slog.String("path", path),
		slog.String("name", file.Name),
		slog.Int("judgments", len(file.Judgments)),
	)
	return nil
}

func (a *app) seed() error {
	if a.file == nil {
		return nil
	}
	added := 0
	for _, j := range a.file.Judgments {
		ok, err := a.kb.AddIfAbsent(j)
		if err != nil {
			return fmt.Errorf("seed knowledge base: %w", err)
		}
		if ok {
			added++
		}
	}
	a.logger.Debug("seeded knowledge base", slog.Int("added", added), slog.Int("total", a.kb.Len()))
	return nil
}

// reload re-reads the knowledge-base file after it changed on disk.
func (a *app) reload() error {
	if err := a.loadFile(); err != nil {
		return err
	}
	if a.db != nil {
		return a.seed()
	}
	a.kb = a.file.Store()
	return nil
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		errs = append(errs, a.cleanup[i](ctx))
	}
	a.cleanup = nil
	return errors.Join(errs...)
}

// queries returns the judgment given by flag, or the queries of the
// knowledge-base file if the flag is empty.
func (a *app) queries(flag, name string) ([]chainer.Judgment, error) {
	if flag != "" {
		q, err := kbfile.ParseJudgment(flag)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", name, err)
		}
		return []chainer.Judgment{q}, nil
	}
	if a.file != nil && len(a.file.Queries) > 0 {
		return a.file.Queries, nil
	}
	return nil, fmt.Errorf("--%s is required when the knowledge base has no queries", name)
}

func (a *app) depth(cmd *cobra.Command, depth int) (int, error) {
	if !cmd.Flags().Changed("depth") {
		depth = a.cfg.Engine.Depth
	}
	if depth < 0 {
		return 0, fmt.Errorf("%w: %d", chainer.ErrInvalidDepth, depth)
	}
	return depth, nil
}

func (a *app) print(js []chainer.Judgment) {
	for _, j := range js {
		fmt.Fprintln(a.out, j.String())
	}
}

func (a *app) logStats(op string, results int) {
	stats := a.engine.Stats()
	a.logger.Info("search complete",
		slog.String("op", op),
		slog.Int("results", results),
		slog.Int64("goals", stats.Goals),
		slog.Int64("expansions", stats.Expansions),
		slog.Int64("prunes", stats.Prunes),
		slog.Int("kb_size", a.kb.Len()),
	)
}
