// Package jsondoc adapts JSON input to the docshape document view. It walks
// the goccy/go-json token stream directly so that object member order is
// preserved and integers stay distinguishable from floats.
package jsondoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	j "github.com/goccy/go-json"

	"github.com/docshape/docshape"
)

// Parse decodes a single JSON value. Empty input yields a null node.
func Parse(data []byte) (docshape.Node, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nullNode{}, nil
		}
		return nil, fmt.Errorf("jsondoc: %w", err)
	}
	n, err := build(dec, tok)
	if err != nil {
		return nil, fmt.Errorf("jsondoc: %w", err)
	}
	return n, nil
}

func build(dec *j.Decoder, tok j.Token) (docshape.Node, error) {
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			return buildObject(dec)
		case '[':
			return buildArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", v.String())
		}
	case string:
		return scalarNode{text: v, st: docshape.ScalarString}, nil
	case j.Number:
		st := docshape.ScalarInt
		if strings.ContainsAny(v.String(), ".eE") {
			st = docshape.ScalarFloat
		}
		return scalarNode{text: v.String(), st: st}, nil
	case bool:
		if v {
			return scalarNode{text: "true", st: docshape.ScalarBool}, nil
		}
		return scalarNode{text: "false", st: docshape.ScalarBool}, nil
	case nil:
		return nullNode{}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func buildObject(dec *j.Decoder) (docshape.Node, error) {
	var pairs []docshape.Pair
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(j.Delim); ok && d == '}' {
			return mapNode{pairs: pairs}, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		vt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		val, err := build(dec, vt)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, docshape.Pair{
			Key:   scalarNode{text: key, st: docshape.ScalarString},
			Value: val,
		})
	}
}

func buildArray(dec *j.Decoder) (docshape.Node, error) {
	var items []docshape.Node
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(j.Delim); ok && d == ']' {
			return seqNode{items: items}, nil
		}
		item, err := build(dec, tok)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

type scalarNode struct {
	text string
	st   docshape.ScalarType
}

func (s scalarNode) Kind() docshape.Kind             { return docshape.KindScalar }
func (s scalarNode) Tag() string                     { return "" }
func (s scalarNode) Text() string                    { return s.text }
func (s scalarNode) ScalarType() docshape.ScalarType { return s.st }
func (s scalarNode) Len() int                        { return 0 }
func (s scalarNode) Index(int) docshape.Node         { return nil }
func (s scalarNode) Pairs() []docshape.Pair          { return nil }

type seqNode struct {
	items []docshape.Node
}

func (s seqNode) Kind() docshape.Kind             { return docshape.KindSequence }
func (s seqNode) Tag() string                     { return "" }
func (s seqNode) Text() string                    { return "" }
func (s seqNode) ScalarType() docshape.ScalarType { return docshape.ScalarNull }
func (s seqNode) Len() int                        { return len(s.items) }
func (s seqNode) Index(i int) docshape.Node       { return s.items[i] }
func (s seqNode) Pairs() []docshape.Pair          { return nil }

type mapNode struct {
	pairs []docshape.Pair
}

func (m mapNode) Kind() docshape.Kind             { return docshape.KindMap }
func (m mapNode) Tag() string                     { return "" }
func (m mapNode) Text() string                    { return "" }
func (m mapNode) ScalarType() docshape.ScalarType { return docshape.ScalarNull }
func (m mapNode) Len() int                        { return 0 }
func (m mapNode) Index(int) docshape.Node         { return nil }
func (m mapNode) Pairs() []docshape.Pair          { return m.pairs }

type nullNode struct{}

func (nullNode) Kind() docshape.Kind             { return docshape.KindNull }
func (nullNode) Tag() string                     { return "" }
func (nullNode) Text() string                    { return "" }
func (nullNode) ScalarType() docshape.ScalarType { return docshape.ScalarNull }
func (nullNode) Len() int                        { return 0 }
func (nullNode) Index(int) docshape.Node         { return nil }
func (nullNode) Pairs() []docshape.Pair          { return nil }
