// Package yamldoc adapts gopkg.in/yaml.v3 nodes to the docshape document
// view. It preserves mapping order, non-core tags, and quoting styles, and
// resolves anchors/aliases transparently.
package yamldoc

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/docshape/docshape"
)

// Parse decodes a single YAML document. An empty input yields a null node,
// matching how an absent document validates.
func Parse(data []byte) (docshape.Node, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("yamldoc: %w", err)
	}
	return FromNode(&n), nil
}

// FromNode wraps an already-decoded *yaml.Node.
func FromNode(n *yaml.Node) docshape.Node {
	return yamlNode{n: n}
}

type yamlNode struct {
	n *yaml.Node
}

// resolve unwraps document wrappers and alias indirections.
func (y yamlNode) resolve() *yaml.Node {
	n := y.n
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

func (y yamlNode) Kind() docshape.Kind {
	n := y.resolve()
	if n == nil || n.Kind == 0 {
		return docshape.KindNull
	}
	switch n.Kind {
	case yaml.MappingNode:
		return docshape.KindMap
	case yaml.SequenceNode:
		return docshape.KindSequence
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return docshape.KindNull
		}
		return docshape.KindScalar
	default:
		return docshape.KindNull
	}
}

func (y yamlNode) Tag() string {
	n := y.resolve()
	if n == nil {
		return ""
	}
	if strings.HasPrefix(n.Tag, "!") && !strings.HasPrefix(n.Tag, "!!") {
		return n.Tag
	}
	return ""
}

func (y yamlNode) Text() string {
	n := y.resolve()
	if n == nil {
		return ""
	}
	return n.Value
}

func (y yamlNode) ScalarType() docshape.ScalarType {
	n := y.resolve()
	if n == nil {
		return docshape.ScalarNull
	}
	quoted := n.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle|yaml.LiteralStyle|yaml.FoldedStyle) != 0
	if n.Style&yaml.TaggedStyle != 0 && n.Tag == "!!str" {
		quoted = true
	}
	return docshape.ResolveScalar(n.Value, quoted)
}

func (y yamlNode) Len() int {
	n := y.resolve()
	if n == nil || n.Kind != yaml.SequenceNode {
		return 0
	}
	return len(n.Content)
}

func (y yamlNode) Index(i int) docshape.Node {
	n := y.resolve()
	return yamlNode{n: n.Content[i]}
}

func (y yamlNode) Pairs() []docshape.Pair {
	n := y.resolve()
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	pairs := make([]docshape.Pair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		pairs = append(pairs, docshape.Pair{
			Key:   yamlNode{n: n.Content[i]},
			Value: yamlNode{n: n.Content[i+1]},
		})
	}
	return pairs
}
