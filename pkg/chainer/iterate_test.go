package chainer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterateBackward_Reuse(t *testing.T) {
	ctx := context.Background()
	want := "((ModusPonens bc) ((ModusPonens ab) a)) : C"

	iterative := NewEngine(nil)
	kb := chainKB()
	seq, err := iterative.IterateBackward(ctx, kb, 2, 1, Judge(Fresh("prf"), symC))
	require.NoError(t, err)
	assert.Equal(t, []string{want}, judgmentStrings(Collapse(seq)))

	// The round stored the lemmas it derived on the way.
	assert.Equal(t, 8, kb.Len())
	assert.True(t, kb.Contains(Judge(App(symMP, symAb), Arrow(symA, symB))))
	assert.True(t, kb.Contains(Judge(proofB(), symB)))
	assert.True(t, kb.Contains(Judge(proofC(), symC)))

	oneShot := NewEngine(nil)
	got := judgmentStrings(Collapse(oneShot.Backward(ctx, chainKB(), 4, Judge(Fresh("prf"), symC))))
	assert.Equal(t, []string{want}, got)

	assert.Less(t, iterative.Stats().Steps(), oneShot.Stats().Steps(),
		"two depth-2 searches should be cheaper than one depth-4 search")
}

func TestIterateBackward_WithoutLemmas(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(&Config{MaxArity: 1, Lemmas: false})
	kb := chainKB()

	seq, err := e.IterateBackward(ctx, kb, 2, 1, Judge(Fresh("prf"), symC))
	require.NoError(t, err)
	assert.Empty(t, Collapse(seq), "C is not reachable at depth 2 without stored lemmas")
	assert.Equal(t, 4, kb.Len())
}

func TestIterateBackward_ZeroRounds(t *testing.T) {
	ctx := context.Background()
	kb := chainKB()
	query := Judge(Fresh("prf"), symC)

	seq, err := IterateBackward(ctx, kb, 2, 0, query)
	require.NoError(t, err)

	got := Collapse(seq)
	require.Len(t, got, 1)
	assert.True(t, got[0].Equal(query))
	assert.Equal(t, 4, kb.Len(), "zero rounds must not touch the store")
}

// The store only grows: each extra round keeps everything the previous
// rounds committed.
func TestIterateBackward_StoreGrowth(t *testing.T) {
	ctx := context.Background()
	var prev []string
	for rounds := range 4 {
		kb := chainKB()
		_, err := IterateBackward(ctx, kb, 2, rounds, Judge(Fresh("prf"), symC))
		require.NoError(t, err)

		for _, j := range prev {
			assert.Contains(t, groundStrings(kb), j)
		}
		prev = groundStrings(kb)
	}
}

func groundStrings(kb *Store) []string {
	var out []string
	for _, j := range kb.Judgments() {
		if j.IsGround() {
			out = append(out, j.String())
		}
	}
	return out
}

func TestIterateForward(t *testing.T) {
	ctx := context.Background()

	t.Run("rounds accumulate depth", func(t *testing.T) {
		kb := chainKB()
		seq, err := IterateForward(ctx, kb, 2, 2, Judge(symX, symA))
		require.NoError(t, err)

		got := judgmentStrings(Collapse(seq))
		assert.Contains(t, got, "((ModusPonens bc) ((ModusPonens ab) a)) : C")
		assert.True(t, kb.Contains(Judge(proofC(), symC)))
	})

	t.Run("zero rounds", func(t *testing.T) {
		kb := chainKB()
		seq, err := IterateForward(ctx, kb, 2, 0, Judge(symX, symA))
		require.NoError(t, err)
		assert.Equal(t, []string{"a : A"}, judgmentStrings(Collapse(seq)))
		assert.Equal(t, 4, kb.Len())
	})
}

func TestIterate_Errors(t *testing.T) {
	ctx := context.Background()
	query := Judge(Fresh("prf"), symC)

	_, err := IterateBackward(ctx, nil, 2, 1, query)
	assert.ErrorIs(t, err, ErrNilKnowledgeBase)

	_, err = IterateBackward(ctx, chainKB(), -1, 1, query)
	assert.ErrorIs(t, err, ErrInvalidDepth)

	_, err = IterateForward(ctx, chainKB(), 1, -1, query)
	assert.ErrorIs(t, err, ErrInvalidDepth)

	_, err = IterateForward(ctx, chainKB(), 1, 1, Judgment{})
	assert.ErrorIs(t, err, ErrNilJudgment)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = IterateBackward(cctx, chainKB(), 2, 1, query)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIterate_CommitTracing(t *testing.T) {
	ctx := context.Background()
	rec := &recordingTracer{}
	e := NewEngine(&Config{MaxArity: 1, Lemmas: true, Tracer: rec})

	_, err := e.IterateBackward(ctx, chainKB(), 2, 1, Judge(Fresh("prf"), symC))
	require.NoError(t, err)
	assert.Equal(t, int64(4), e.Stats().Commits)
	assert.GreaterOrEqual(t, rec.commits, 4)
}
