package docshape

import (
	"strconv"
	"strings"
)

// Kind classifies a document node.
type Kind int

const (
	KindNull Kind = iota
	KindScalar
	KindSequence
	KindMap
)

// ScalarType is the resolved type of a scalar node's text. Quoted scalars
// always resolve to ScalarString regardless of their content.
type ScalarType int

const (
	ScalarString ScalarType = iota
	ScalarInt
	ScalarFloat
	ScalarBool
	ScalarNull
)

// Node is the uniform view over a parsed document node that the validator
// consumes. Adapters (yamldoc, jsondoc) implement it; the engine only reads.
type Node interface {
	// Kind reports whether the node is a scalar, sequence, map, or null.
	Kind() Kind
	// Tag returns the node's non-core tag (for example "!optional"), or ""
	// when the node carries none.
	Tag() string
	// Text returns the scalar text. Undefined for non-scalars.
	Text() string
	// ScalarType returns the resolved scalar typing. Undefined for
	// non-scalars.
	ScalarType() ScalarType
	// Len returns the number of children of a sequence.
	Len() int
	// Index returns the i-th child of a sequence.
	Index(i int) Node
	// Pairs returns a map's entries in document order.
	Pairs() []Pair
}

// Pair is one ordered key/value entry of a map node.
type Pair struct {
	Key   Node
	Value Node
}

// ResolveScalar types a scalar's raw text the way the YAML adapters do:
// booleans use the YAML 1.1 token set, integers are plain base-10, and
// anything quoted stays a string. The YAML adapter and the engine's
// synthetic key nodes use it; the JSON adapter types scalars from its token
// kinds instead.
func ResolveScalar(text string, quoted bool) ScalarType {
	if quoted {
		return ScalarString
	}
	switch text {
	case "", "~", "null", "Null", "NULL":
		return ScalarNull
	}
	if isBoolText(text) {
		return ScalarBool
	}
	if isIntText(text) {
		return ScalarInt
	}
	if isFloatText(text) {
		return ScalarFloat
	}
	return ScalarString
}

func isBoolText(s string) bool {
	switch s {
	case "y", "Y", "yes", "Yes", "YES",
		"n", "N", "no", "No", "NO",
		"true", "True", "TRUE",
		"false", "False", "FALSE",
		"on", "On", "ON",
		"off", "Off", "OFF":
		return true
	}
	return false
}

func isBoolTrue(s string) bool {
	switch s {
	case "y", "Y", "yes", "Yes", "YES", "true", "True", "TRUE", "on", "On", "ON":
		return true
	}
	return false
}

func isIntText(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isFloatText(s string) bool {
	if !strings.ContainsAny(s, ".eE") {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// textNode is a synthetic scalar used for generic arguments, dynamic-key
// names, and attribute-stripped keys. It never carries a tag.
type textNode string

func (t textNode) Kind() Kind             { return KindScalar }
func (t textNode) Tag() string            { return "" }
func (t textNode) Text() string           { return string(t) }
func (t textNode) ScalarType() ScalarType { return ResolveScalar(string(t), false) }
func (t textNode) Len() int               { return 0 }
func (t textNode) Index(int) Node         { return nil }
func (t textNode) Pairs() []Pair          { return nil }
