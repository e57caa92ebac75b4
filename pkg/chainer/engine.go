package chainer

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

var (
	// ErrNilKnowledgeBase is returned by operations that must write to a
	// knowledge base when none is given.
	ErrNilKnowledgeBase = errors.New("chainer: nil knowledge base")

	// ErrInvalidDepth is returned when a depth budget or round count is
	// negative.
	ErrInvalidDepth = errors.New("chainer: depth and rounds must be non-negative")
)

// Config holds the search parameters of an Engine.
type Config struct {
	// MaxArity is the widest flat application tried when a goal's proof is
	// an unbound variable (1 = curried binary applications only).
	MaxArity int

	// Lemmas enables the lemma-synthesis pass of IterateBackward: before
	// each round the open query "?proof : ?theorem" is chained at the
	// round's depth and every result is committed to the knowledge base.
	Lemmas bool

	// MaxControlDepth bounds the nesting of a controlled search whatever
	// its termination predicate says (0 = unlimited).
	MaxControlDepth int

	// Tracer receives search events (nil = no tracing)
	Tracer Tracer

	// Logger is used for round-level progress messages (nil = discard)
	Logger *slog.Logger
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxArity:        1,
		Lemmas:          true,
		MaxControlDepth: 64,
	}
}

// Engine runs chaining searches with one configuration and accumulates
// statistics across them. An Engine is safe for concurrent use.
type Engine struct {
	config *Config
	tracer Tracer
	logger *slog.Logger

	goals      atomic.Int64
	expansions atomic.Int64
	matches    atomic.Int64
	prunes     atomic.Int64
	commits    atomic.Int64
	results    atomic.Int64
}

// NewEngine creates an engine with the given configuration.
// A nil config selects DefaultConfig.
func NewEngine(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxArity < 1 {
		config.MaxArity = 1
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		config: config,
		tracer: config.Tracer,
		logger: logger,
	}
}

// Config returns the engine's configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// Stats counts the work an engine has done.
type Stats struct {
	// Goals is the number of subgoals attempted
	Goals int64

	// Expansions is the number of goals decomposed into an application
	Expansions int64

	// Matches is the number of base-case matches against a knowledge base
	// or environment
	Matches int64

	// Prunes is the number of branches cut by inference control
	Prunes int64

	// Commits is the number of judgments added to a knowledge base by
	// iterative chaining
	Commits int64

	// Results is the number of judgments yielded to callers
	Results int64
}

// Steps is the total number of chaining steps: goals attempted plus
// applications expanded.
func (s Stats) Steps() int64 {
	return s.Goals + s.Expansions
}

// Stats returns current engine statistics.
func (e *Engine) Stats() Stats {
	return Stats{
		Goals:      e.goals.Load(),
		Expansions: e.expansions.Load(),
		Matches:    e.matches.Load(),
		Prunes:     e.prunes.Load(),
		Commits:    e.commits.Load(),
		Results:    e.results.Load(),
	}
}

// ResetStats zeroes the engine's counters.
func (e *Engine) ResetStats() {
	e.goals.Store(0)
	e.expansions.Store(0)
	e.matches.Store(0)
	e.prunes.Store(0)
	e.commits.Store(0)
	e.results.Store(0)
}

// Default engine used by the package-level functions
var defaultEngine *Engine
var defaultEngineMu sync.RWMutex

// DefaultEngine returns the engine behind the package-level functions,
// creating it if necessary.
func DefaultEngine() *Engine {
	defaultEngineMu.RLock()
	if defaultEngine != nil {
		defaultEngineMu.RUnlock()
		return defaultEngine
	}
	defaultEngineMu.RUnlock()

	defaultEngineMu.Lock()
	defer defaultEngineMu.Unlock()

	// Double-check after acquiring write lock
	if defaultEngine == nil {
		defaultEngine = NewEngine(DefaultConfig())
	}
	return defaultEngine
}

// SetDefaultEngine replaces the engine behind the package-level functions.
// This is useful for testing or custom configurations.
func SetDefaultEngine(engine *Engine) {
	defaultEngineMu.Lock()
	defer defaultEngineMu.Unlock()
	defaultEngine = engine
}
