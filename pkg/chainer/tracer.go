package chainer

import (
	"context"
	"log/slog"
	"os"
)

// Tracer observes a search without taking part in it. Hooks are called
// synchronously from the goroutine that ranges over the results, so they
// must be cheap and must not block. depth is the remaining depth budget,
// or -1 in a controlled search, which has none.
type Tracer interface {
	// Expand is called when a goal is decomposed into an application.
	Expand(ctx context.Context, depth int, goal Judgment)
	// Match is called for every base-case match against a store or
	// environment.
	Match(ctx context.Context, depth int, fact Judgment)
	// Prune is called when inference control cuts a branch.
	Prune(ctx context.Context, goal Judgment)
	// Commit is called when an iterative round writes a judgment back to
	// the knowledge base. added is false if it was already present.
	Commit(ctx context.Context, j Judgment, added bool)
}

// NopTracer ignores every event.
type NopTracer struct{}

func (NopTracer) Expand(context.Context, int, Judgment) {}
func (NopTracer) Match(context.Context, int, Judgment)  {}
func (NopTracer) Prune(context.Context, Judgment)       {}
func (NopTracer) Commit(context.Context, Judgment, bool) {}

// LogTracer writes search events to a slog.Logger at debug level.
type LogTracer struct {
	Logger *slog.Logger
}

// NewLogTracer returns a tracer logging to logger, or to a stderr text
// handler at debug level if logger is nil.
func NewLogTracer(logger *slog.Logger) *LogTracer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return &LogTracer{Logger: logger}
}

func (t *LogTracer) Expand(ctx context.Context, depth int, goal Judgment) {
	t.Logger.DebugContext(ctx, "expand", slog.Int("depth", depth), slog.String("goal", goal.String()))
}

func (t *LogTracer) Match(ctx context.Context, depth int, fact Judgment) {
	t.Logger.DebugContext(ctx, "match", slog.Int("depth", depth), slog.String("fact", fact.String()))
}

func (t *LogTracer) Prune(ctx context.Context, goal Judgment) {
	t.Logger.DebugContext(ctx, "prune", slog.String("goal", goal.String()))
}

func (t *LogTracer) Commit(ctx context.Context, j Judgment, added bool) {
	t.Logger.DebugContext(ctx, "commit", slog.String("judgment", j.String()), slog.Bool("added", added))
}

// MultiTracer fans every event out to each tracer in order.
type MultiTracer []Tracer

func (m MultiTracer) Expand(ctx context.Context, depth int, goal Judgment) {
	for _, t := range m {
		t.Expand(ctx, depth, goal)
	}
}

func (m MultiTracer) Match(ctx context.Context, depth int, fact Judgment) {
	for _, t := range m {
		t.Match(ctx, depth, fact)
	}
}

func (m MultiTracer) Prune(ctx context.Context, goal Judgment) {
	for _, t := range m {
		t.Prune(ctx, goal)
	}
}

func (m MultiTracer) Commit(ctx context.Context, j Judgment, added bool) {
	for _, t := range m {
		t.Commit(ctx, j, added)
	}
}
