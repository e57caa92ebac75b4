// Package kbfile reads and writes knowledge bases as YAML.
//
// Terms map onto YAML nodes one to one:
//
//	A              symbol A
//	$x             variable x
//	$$x            symbol $x
//	[f, a, b]      compound (f a b)
//
// A judgment is a mapping with proof and theorem keys. Variables are
// scoped to the judgment they appear in: $p in two judgments names two
// different variables.
//
//	name: three-fact-chain
//	judgments:
//	  - {proof: ab, theorem: [→, A, B]}
//	  - {proof: a, theorem: A}
//	  - {proof: ModusPonens, theorem: [->, [→, $p, $q], [->, $p, $q]]}
//	queries:
//	  - {proof: $prf, theorem: C}
package kbfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gitrdm/gokanproof/pkg/chainer"
)

// ErrBadTerm is returned when a YAML node does not describe a term or
// judgment.
var ErrBadTerm = errors.New("kbfile: malformed term")

// KnowledgeBase is the decoded content of a knowledge-base file.
type KnowledgeBase struct {
	Name      string
	Judgments []chainer.Judgment
	Queries   []chainer.Judgment
}

// Store returns a new in-memory store holding the file's judgments.
func (kb *KnowledgeBase) Store() *chainer.Store {
	return chainer.NewStore(kb.Judgments...)
}

// document is the on-disk layout.
type document struct {
	Name      string         `yaml:"name,omitempty"`
	Judgments []judgmentNode `yaml:"judgments"`
	Queries   []judgmentNode `yaml:"queries,omitempty"`
}

type judgmentNode struct {
	Proof   yaml.Node `yaml:"proof"`
	Theorem yaml.Node `yaml:"theorem"`
}

// Load reads a knowledge base from a YAML file.
func Load(path string) (*KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base: %w", err)
	}
	kb, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return kb, nil
}

// Decode reads a knowledge base from r.
func Decode(r io.Reader) (*KnowledgeBase, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// Unmarshal decodes a knowledge base document.
func Unmarshal(data []byte) (*KnowledgeBase, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base: %w", err)
	}

	kb := &KnowledgeBase{Name: doc.Name}
	for i := range doc.Judgments {
		j, err := doc.Judgments[i].judgment()
		if err != nil {
			return nil, fmt.Errorf("judgment %d: %w", i, err)
		}
		kb.Judgments = append(kb.Judgments, j)
	}
	for i := range doc.Queries {
		q, err := doc.Queries[i].judgment()
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", i, err)
		}
		kb.Queries = append(kb.Queries, q)
	}
	return kb, nil
}

// Marshal encodes a knowledge base document.
func Marshal(kb *KnowledgeBase) ([]byte, error) {
	doc := document{Name: kb.Name}
	for _, j := range kb.Judgments {
		doc.Judgments = append(doc.Judgments, encodeJudgment(j))
	}
	for _, q := range kb.Queries {
		doc.Queries = append(doc.Queries, encodeJudgment(q))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("failed to encode knowledge base: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes a knowledge base to a YAML file.
func Save(path string, kb *KnowledgeBase) error {
	data, err := Marshal(kb)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write knowledge base: %w", err)
	}
	return nil
}

// ParseJudgment decodes a single judgment mapping, e.g.
// "{proof: $prf, theorem: C}".
func ParseJudgment(s string) (chainer.Judgment, error) {
	var n judgmentNode
	if err := yaml.Unmarshal([]byte(s), &n); err != nil {
		return chainer.Judgment{}, fmt.Errorf("failed to parse judgment %q: %w", s, err)
	}
	return n.judgment()
}

// ParseTerm decodes a single term, e.g. "[→, A, $x]".
func ParseTerm(s string) (chainer.Term, error) {
	var n yaml.Node
	if err := yaml.Unmarshal([]byte(s), &n); err != nil {
		return nil, fmt.Errorf("failed to parse term %q: %w", s, err)
	}
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		return decodeTerm(n.Content[0], make(map[string]*chainer.Var))
	}
	return nil, fmt.Errorf("%w: empty input", ErrBadTerm)
}

// FormatJudgment renders j in the flow form ParseJudgment accepts.
func FormatJudgment(j chainer.Judgment) (string, error) {
	n := encodeJudgment(j)
	node := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
	node.Content = []*yaml.Node{
		{Kind: yaml.ScalarNode, Value: "proof"}, flow(&n.Proof),
		{Kind: yaml.ScalarNode, Value: "theorem"}, flow(&n.Theorem),
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func flow(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.SequenceNode {
		n.Style = yaml.FlowStyle
	}
	return n
}

func (n *judgmentNode) judgment() (chainer.Judgment, error) {
	if n.Proof.IsZero() || n.Theorem.IsZero() {
		return chainer.Judgment{}, fmt.Errorf("%w: judgment needs proof and theorem", ErrBadTerm)
	}
	vars := make(map[string]*chainer.Var)
	proof, err := decodeTerm(&n.Proof, vars)
	if err != nil {
		return chainer.Judgment{}, fmt.Errorf("proof: %w", err)
	}
	theorem, err := decodeTerm(&n.Theorem, vars)
	if err != nil {
		return chainer.Judgment{}, fmt.Errorf("theorem: %w", err)
	}
	return chainer.Judge(proof, theorem), nil
}
