package kbfile

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gitrdm/gokanproof/pkg/chainer"
)

func decodeTerm(node *yaml.Node, vars map[string]*chainer.Var) (chainer.Term, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return decodeScalar(node, vars)

	case yaml.SequenceNode:
		if len(node.Content) == 0 {
			return nil, fmt.Errorf("%w: line %d: empty sequence", ErrBadTerm, node.Line)
		}
		children := make([]chainer.Term, len(node.Content))
		for i, child := range node.Content {
			t, err := decodeTerm(child, vars)
			if err != nil {
				return nil, err
			}
			children[i] = t
		}
		return chainer.NewCompound(children...), nil

	case yaml.AliasNode:
		return decodeTerm(node.Alias, vars)

	default:
		return nil, fmt.Errorf("%w: line %d: expected scalar or sequence", ErrBadTerm, node.Line)
	}
}

func decodeScalar(node *yaml.Node, vars map[string]*chainer.Var) (chainer.Term, error) {
	value := node.Value
	if value == "" {
		return nil, fmt.Errorf("%w: line %d: empty symbol", ErrBadTerm, node.Line)
	}
	if node.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) != 0 || !strings.HasPrefix(value, "$") {
		return chainer.NewSymbol(value), nil
	}
	if strings.HasPrefix(value, "$$") {
		return chainer.NewSymbol(value[1:]), nil
	}

	name := value[1:]
	if name == "" {
		// Anonymous: every occurrence is a new variable
		return chainer.Fresh(""), nil
	}
	v, ok := vars[name]
	if !ok {
		v = chainer.Fresh(name)
		vars[name] = v
	}
	return v, nil
}

// encodeJudgment names the judgment's variables after their own names,
// adding the id only where two variables would otherwise share a name.
func encodeJudgment(j chainer.Judgment) judgmentNode {
	names := varNames(chainer.Vars(chainer.NewCompound(j.Proof, j.Theorem)))
	return judgmentNode{
		Proof:   *encodeTerm(j.Proof, names),
		Theorem: *encodeTerm(j.Theorem, names),
	}
}

func varNames(vars []*chainer.Var) map[int64]string {
	count := make(map[string]int)
	for _, v := range vars {
		count[v.Name()]++
	}
	names := make(map[int64]string, len(vars))
	for _, v := range vars {
		name := v.Name()
		if name == "" || count[name] > 1 {
			name = fmt.Sprintf("%s_%d", name, v.ID())
		}
		names[v.ID()] = "$" + name
	}
	return names
}

func encodeTerm(t chainer.Term, names map[int64]string) *yaml.Node {
	switch v := t.(type) {
	case *chainer.Var:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: names[v.ID()]}

	case *chainer.Symbol:
		name := v.Name()
		if strings.HasPrefix(name, "$") {
			name = "$" + name
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Value: name}

	case *chainer.Compound:
		node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, ch := range v.Children() {
			node.Content = append(node.Content, encodeTerm(ch, names))
		}
		return node
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Value: t.String()}
}
