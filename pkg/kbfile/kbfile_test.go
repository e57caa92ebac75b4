package kbfile

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/gokanproof/pkg/chainer"
)

func TestLoad(t *testing.T) {
	kb, err := Load(filepath.Join("testdata", "chain.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "three-fact-chain", kb.Name)
	require.Len(t, kb.Judgments, 4)
	require.Len(t, kb.Queries, 2)
	assert.Equal(t, "ab : (→ A B)", kb.Judgments[0].String())

	t.Run("variables are shared within a judgment", func(t *testing.T) {
		rule := kb.Judgments[3]
		vars := chainer.Vars(rule.Theorem)
		require.Len(t, vars, 2)
		assert.Equal(t, "p", vars[0].Name())
		assert.Equal(t, "q", vars[1].Name())
	})

	t.Run("variables are scoped to one judgment", func(t *testing.T) {
		a := kb.Queries[0].Proof.(*chainer.Var)
		b := kb.Queries[1].Proof.(*chainer.Var)
		assert.False(t, a.Equal(b))
	})

	t.Run("loaded store proves the chain", func(t *testing.T) {
		got := chainer.Collapse(chainer.Backward(context.Background(), kb.Store(), 3, kb.Queries[0]))
		require.Len(t, got, 1)
		assert.Equal(t, "((ModusPonens bc) ((ModusPonens ab) a)) : C", got[0].String())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join("testdata", "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing theorem", "judgments: [{proof: a}]"},
		{"empty compound", "judgments: [{proof: a, theorem: []}]"},
		{"mapping term", "judgments: [{proof: a, theorem: {x: y}}]"},
		{"empty symbol", "judgments: [{proof: a, theorem: }]"},
		{"bad query", "queries: [{proof: [], theorem: A}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrBadTerm)
		})
	}

	_, err := Unmarshal([]byte("judgments: [unterminated"))
	assert.Error(t, err)
}

func TestParseTerm(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"A", "A"},
		{"[f, a, b]", "(f a b)"},
		{"[->, A, [->, B, C]]", "(-> A (-> B C))"},
		{"$$money", "$money"},
		{"'$quoted'", "$quoted"},
		{"42", "42"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			term, err := ParseTerm(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, term.String())
		})
	}

	t.Run("variables", func(t *testing.T) {
		term, err := ParseTerm("[f, $x, $x, $, $]")
		require.NoError(t, err)
		vars := chainer.Vars(term)
		assert.Len(t, vars, 3, "$x is one variable, each $ is a new one")
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ParseTerm("")
		assert.ErrorIs(t, err, ErrBadTerm)
	})
}

func TestRoundTrip(t *testing.T) {
	kb, err := Load(filepath.Join("testdata", "chain.yaml"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Save(path, kb))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, kb.Name, again.Name)
	require.Len(t, again.Judgments, len(kb.Judgments))

	// Ground judgments survive unchanged; rules keep their shape.
	for i := range kb.Judgments {
		if kb.Judgments[i].IsGround() {
			assert.True(t, kb.Judgments[i].Equal(again.Judgments[i]))
			continue
		}
		assert.NotNil(t, chainer.UnifyJudgments(kb.Judgments[i], again.Judgments[i], chainer.NewSubstitution()))
	}
}

func TestFormatJudgment(t *testing.T) {
	x, y := chainer.Fresh("x"), chainer.Fresh("x")
	j := chainer.Judge(chainer.App(chainer.NewSymbol("f"), x), chainer.NewCompound(chainer.NewSymbol("R"), x, y))

	s, err := FormatJudgment(j)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, "{proof: [f, $x_"), s)

	parsed, err := ParseJudgment(s)
	require.NoError(t, err)
	vars := chainer.Vars(parsed.Theorem)
	assert.Len(t, vars, 2, "distinct variables with one name stay distinct")

	t.Run("symbols with a dollar survive", func(t *testing.T) {
		s, err := FormatJudgment(chainer.Judge(chainer.NewSymbol("$cash"), chainer.NewSymbol("A")))
		require.NoError(t, err)
		parsed, err := ParseJudgment(s)
		require.NoError(t, err)
		assert.Equal(t, "$cash : A", parsed.String())
	})
}
