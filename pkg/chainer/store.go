package chainer

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// ErrNilJudgment is returned when a judgment without proof or theorem is
// added to a knowledge base.
var ErrNilJudgment = errors.New("chainer: judgment has nil proof or theorem")

// KnowledgeBase is the mutable multiset of judgments the chainers search.
//
// Match is the unification oracle: it yields one extended substitution for
// every stored judgment that unifies with the pattern, in insertion order.
// Stored judgments are renamed apart before each match, so the variables of
// a stored rule are local to one use of that rule.
type KnowledgeBase interface {
	Match(ctx context.Context, pattern Judgment, sub *Substitution) Stream
	Add(j Judgment) error
	AddIfAbsent(j Judgment) (bool, error)
	Judgments() []Judgment
	Len() int
}

// Store is the in-memory KnowledgeBase.
//
// A Store is append-only: judgments are never retracted, so a reader that
// captured the current length sees a consistent prefix no matter what is
// appended afterwards. All methods are safe for concurrent use; writes are
// serialised by the store.
type Store struct {
	id uuid.UUID

	mu        sync.RWMutex
	judgments []Judgment
	hashes    map[uint64][]int // judgment hash -> positions, for exact lookups
	keys      map[string][]int // theorem key -> positions
	wildcards []int            // positions whose theorem has no key
}

// NewStore creates an empty store with a fresh session id.
func NewStore(judgments ...Judgment) *Store {
	s := &Store{
		id:     uuid.New(),
		hashes: make(map[uint64][]int),
		keys:   make(map[string][]int),
	}
	for _, j := range judgments {
		if !j.IsZero() {
			s.appendLocked(j)
		}
	}
	return s
}

// ID returns the store's session id.
func (s *Store) ID() uuid.UUID {
	return s.id
}

// Len returns the number of stored judgments.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.judgments)
}

// Judgments returns a copy of the stored judgments in insertion order.
func (s *Store) Judgments() []Judgment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.judgments)
}

// Add appends a judgment. Duplicates are kept; use AddIfAbsent for
// idempotent insertion.
func (s *Store) Add(j Judgment) error {
	if j.IsZero() {
		return ErrNilJudgment
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(j)
	return nil
}

// AddIfAbsent appends j unless a stored judgment unifies with it.
// It reports whether j was added.
//
// The presence check is the same unification the chainers use for
// matching, so a stored rule with variables also covers its instances.
func (s *Store) AddIfAbsent(j Judgment) (bool, error) {
	if j.IsZero() {
		return false, ErrNilJudgment
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.containsLocked(j) {
		return false, nil
	}
	s.appendLocked(j)
	return true, nil
}

// Contains reports whether a stored judgment unifies with j.
func (s *Store) Contains(j Judgment) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.containsLocked(j)
}

// Snapshot returns an independent store holding the current judgments.
// The snapshot shares the session id; later writes to either store are
// not visible in the other.
func (s *Store) Snapshot() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := NewStore(s.judgments...)
	snap.id = s.id
	return snap
}

// Match yields a substitution for every stored judgment that unifies with
// pattern under sub. The candidate set is fixed when iteration starts.
func (s *Store) Match(ctx context.Context, pattern Judgment, sub *Substitution) Stream {
	return func(yield func(*Substitution) bool) {
		candidates := s.candidates(sub.Walk(pattern.Theorem))
		for _, j := range candidates {
			if cancelled(ctx) {
				return
			}
			if next := UnifyJudgments(pattern, RenameApart(j), sub); next != nil {
				if !yield(next) {
					return
				}
			}
		}
	}
}

// candidates selects stored judgments that may unify with a pattern
// theorem, in insertion order.
func (s *Store) candidates(theorem Term) []Judgment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := theoremKey(theorem)
	if key == "" {
		// No suitable index; scan everything
		return slices.Clone(s.judgments)
	}

	positions := mergeSorted(s.keys[key], s.wildcards)
	out := make([]Judgment, len(positions))
	for i, p := range positions {
		out[i] = s.judgments[p]
	}
	return out
}

func (s *Store) containsLocked(j Judgment) bool {
	for _, p := range s.hashes[hashJudgment(j)] {
		if s.judgments[p].Equal(j) {
			return true
		}
	}

	key := theoremKey(j.Theorem)
	check := func(p int) bool { return unifiable(s.judgments[p], j) }
	if key == "" {
		for p := range s.judgments {
			if check(p) {
				return true
			}
		}
		return false
	}
	return slices.ContainsFunc(s.keys[key], check) || slices.ContainsFunc(s.wildcards, check)
}

func (s *Store) appendLocked(j Judgment) {
	pos := len(s.judgments)
	s.judgments = append(s.judgments, j)

	h := hashJudgment(j)
	s.hashes[h] = append(s.hashes[h], pos)

	if key := theoremKey(j.Theorem); key != "" {
		s.keys[key] = append(s.keys[key], pos)
	} else {
		s.wildcards = append(s.wildcards, pos)
	}
}

// unifiable reports whether stored, renamed apart, unifies with j.
func unifiable(stored, j Judgment) bool {
	return UnifyJudgments(RenameApart(stored), j, NewSubstitution()) != nil
}

// theoremKey indexes a theorem by its outer shape. Two theorems with
// different non-empty keys never unify. Variables and compounds without a
// symbol head have the empty key and match anything.
func theoremKey(t Term) string {
	switch v := t.(type) {
	case *Symbol:
		return "sym:" + v.name
	case *Compound:
		if head, ok := v.children[0].(*Symbol); ok {
			return fmt.Sprintf("cmp:%d:%s", len(v.children), head.name)
		}
	}
	return ""
}

// hashJudgment hashes the printed form; equal judgments hash equally.
func hashJudgment(j Judgment) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%v|%v", j.Proof, j.Theorem)
	return h.Sum64()
}

// mergeSorted merges two ascending position lists.
func mergeSorted(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] < b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
