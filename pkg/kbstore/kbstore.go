// Package kbstore provides a knowledge base persisted in BadgerDB.
//
// A Store keeps every judgment in an in-memory chainer.Store for matching
// and writes each insertion through to BadgerDB before it becomes
// visible, so judgments committed by iterative chaining survive a restart.
// Judgments are stored in insertion order under sequence-numbered keys,
// encoded in the kbfile flow syntax.
package kbstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/gitrdm/gokanproof/pkg/chainer"
	"github.com/gitrdm/gokanproof/pkg/kbfile"
)

// keyPrefix namespaces judgment records.
var keyPrefix = []byte("kb/judgment/")

// Config holds configuration for a persistent store.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger is the logger for BadgerDB operations.
	// If nil, BadgerDB's internal logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns the configuration for a durable store at path.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns configuration optimized for testing.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store is a chainer.KnowledgeBase whose insertions are persisted.
// Matching and lookups are served by the embedded in-memory store.
type Store struct {
	*chainer.Store

	mu   sync.Mutex // serialises writes so disk and memory order agree
	db   *badger.DB
	next uint64
}

var _ chainer.KnowledgeBase = (*Store)(nil)

// Open opens the database described by cfg and loads the judgments it
// holds.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("kbstore: path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	judgments, err := load(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{
		Store: chainer.NewStore(judgments...),
		db:    db,
		next:  uint64(len(judgments)),
	}, nil
}

// load reads every judgment record in key order.
func load(db *badger.DB) ([]chainer.Judgment, error) {
	var out []chainer.Judgment
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = keyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				j, err := kbfile.ParseJudgment(string(val))
				if err != nil {
					return fmt.Errorf("record %x: %w", item.Key(), err)
				}
				out = append(out, j)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}
	return out, nil
}

// Add persists j and appends it. Duplicates are kept.
func (s *Store) Add(j chainer.Judgment) error {
	if j.IsZero() {
		return chainer.ErrNilJudgment
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(j); err != nil {
		return err
	}
	return s.Store.Add(j)
}

// AddIfAbsent persists and appends j unless a stored judgment unifies
// with it. It reports whether j was added.
func (s *Store) AddIfAbsent(j chainer.Judgment) (bool, error) {
	if j.IsZero() {
		return false, chainer.ErrNilJudgment
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Store.Contains(j) {
		return false, nil
	}
	if err := s.persist(j); err != nil {
		return false, err
	}
	return true, s.Store.Add(j)
}

func (s *Store) persist(j chainer.Judgment) error {
	val, err := kbfile.FormatJudgment(j)
	if err != nil {
		return fmt.Errorf("encode %s: %w", j, err)
	}
	key := make([]byte, len(keyPrefix)+8)
	copy(key, keyPrefix)
	binary.BigEndian.PutUint64(key[len(keyPrefix):], s.next)

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, []byte(val))
	})
	if err != nil {
		return fmt.Errorf("persist %s: %w", j, err)
	}
	s.next++
	return nil
}

// Close closes the database. The in-memory judgments stay readable.
func (s *Store) Close() error {
	return s.db.Close()
}
