package docshape_test

import (
	"testing"

	"github.com/docshape/docshape"
	"github.com/docshape/docshape/yamldoc"
)

func newValidator(t *testing.T, schema string) *docshape.Validator {
	t.Helper()
	n, err := yamldoc.Parse([]byte(schema))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	v, err := docshape.New(n)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return v
}

func parseDoc(t *testing.T, doc string) docshape.Node {
	t.Helper()
	n, err := yamldoc.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse doc: %v", err)
	}
	return n
}

func checkValid(t *testing.T, v *docshape.Validator, doc string) {
	t.Helper()
	errs := v.Validate(parseDoc(t, doc))
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %d: %v", len(errs), errs[0].Description(0))
	}
}

func checkErrors(t *testing.T, v *docshape.Validator, doc string, want ...string) {
	t.Helper()
	errs := v.Validate(parseDoc(t, doc))
	if len(errs) != len(want) {
		var got []string
		for i := range errs {
			got = append(got, errs[i].Description(0))
		}
		t.Fatalf("expected %d errors, got %d: %q", len(want), len(errs), got)
	}
	for i := range want {
		if got := errs[i].Description(0); got != want[i] {
			t.Fatalf("error %d:\n got: %q\nwant: %q", i, got, want[i])
		}
	}
}

// Built-in types

func TestAnyTypeValidation(t *testing.T) {
	v := newValidator(t, "root: any")
	checkValid(t, v, "42.0")
	checkValid(t, v, "[ 1, 2, 3 ]")
	checkValid(t, v, "{ key: value }")
}

func TestScalarTypeValidation(t *testing.T) {
	v := newValidator(t, "root: scalar")
	checkValid(t, v, "42.0")
	checkErrors(t, v, "[ 1, 2, 3 ]", "/: expected value type: scalar")
	checkErrors(t, v, "{ key: value }", "/: expected value type: scalar")
}

func TestNumericTypeValidation(t *testing.T) {
	v := newValidator(t, "root: numeric")
	checkValid(t, v, "42")
	checkValid(t, v, "42.0")
	checkErrors(t, v, "some string", "/: expected value type: numeric")
}

func TestIntegerTypeValidation(t *testing.T) {
	v := newValidator(t, "root: integer")
	checkValid(t, v, "42")
	checkErrors(t, v, "42.0", "/: expected value type: integer")
	checkErrors(t, v, "some string", "/: expected value type: integer")
}

func TestBooleanTypeValidation(t *testing.T) {
	v := newValidator(t, "root: [boolean]")
	checkValid(t, v, "[ true, false, y, n, yes, no, on, off ]")
	checkErrors(t, v, "[ true, some string ]", "/1: expected value type: boolean")
}

func TestStringTypeValidation(t *testing.T) {
	v := newValidator(t, "root: [string]")
	checkValid(t, v, "[ some string, '42', 'true', '42.0' ]")
	checkErrors(t, v, "[ true, 42, 42.0 ]",
		"/0: expected value type: string",
		"/1: expected value type: string",
		"/2: expected value type: string")
}

func TestAnySequenceValidation(t *testing.T) {
	v := newValidator(t, "root: []")
	checkValid(t, v, "[ 1, 2, 3 ]")
	checkErrors(t, v, "42.0", "/: expected value type: []")
}

func TestAnyMapValidation(t *testing.T) {
	v := newValidator(t, "root: {}")
	checkValid(t, v, "{ key: value }")
	checkErrors(t, v, "42.0", "/: expected value type: {}")
}

func TestTypeAliases(t *testing.T) {
	for _, tc := range []struct{ schema, doc string }{
		{"root: map", "{ key: value }"},
		{"root: {}", "{ key: value }"},
		{"root: list", "[ 1, 2, 3 ]"},
		{"root: []", "[ 1, 2, 3 ]"},
		{"root: numeric", "42.0"},
		{"root: num", "42.0"},
		{"root: integer", "42"},
		{"root: int", "42"},
		{"root: boolean", "true"},
		{"root: bool", "true"},
		{"root: string", "hello"},
		{"root: str", "hello"},
	} {
		checkValid(t, newValidator(t, tc.schema), tc.doc)
	}
}

// Custom types

func TestCustomTypeValidation(t *testing.T) {
	v := newValidator(t, `
types:
  custom_type: scalar
root: custom_type
`)
	checkValid(t, v, "42.0")
	checkErrors(t, v, "[ 1, 2, 3 ]", "/: expected value type: scalar")
	checkErrors(t, v, "{ key: value }", "/: expected value type: scalar")
}

// Sequences

func TestSequenceValidation(t *testing.T) {
	v := newValidator(t, `
root:
  - name: scalar
    description: any
`)
	checkValid(t, v, `
- name: Some name 1
  description: Some description 1
- name: Some name 2
  description: Some description 2
`)
	checkErrors(t, v, `
- name: Some name 1
  description: Some description 1
- name: [ 1, 2, 3 ]
  description: Some description 2
`, "/1.name: expected value type: scalar")
	checkErrors(t, v, `
- name: Some name 1
  description: Some description 1
- description: Some description 2
`, "/1.name: node not found")
	checkErrors(t, v, "42",
		"/: expected value type: [{name: scalar, description: any}]")
}

// Variants

func TestValueVariantValidation(t *testing.T) {
	v := newValidator(t, `
root: !variant
  - 42
  - some string
  - [ 1, 2, 3 ]
  - { key: key, value: value }
`)
	checkValid(t, v, "42")
	checkValid(t, v, "some string")
	checkValid(t, v, "[ 1, 2, 3 ]")
	checkValid(t, v, "{ key: key, value: value }")
	checkErrors(t, v, "420", "/: expected value: one of"+
		"\n\t- 42"+
		"\n\t- some string"+
		"\n\t- [1, 2, 3]"+
		"\n\t- {key: key, value: value}")
}

func TestKeyValueVariantValidation(t *testing.T) {
	v := newValidator(t, `
types:
  key: !variant
    - first
    - second
root:
  $key: any
  required: any
`)
	checkValid(t, v, "{ first: 42, required: 24 }")
	checkValid(t, v, "{ second: 42, required: 24 }")
	checkErrors(t, v, "{ third: 42, required: 24 }",
		"/: missing key with type: key",
		"/third: undefined node")
}

func TestTypeVariantValidation(t *testing.T) {
	v := newValidator(t, `
root:
  - scalar
  - [scalar]
  - { key: scalar, value: [scalar], optional: !optional scalar }
`)
	checkValid(t, v, "42")
	checkValid(t, v, "[ 1, 2, 3 ]")
	checkValid(t, v, "{ key: 42, value: [ 1, 2, 3 ] }")
	checkErrors(t, v, "{ key: 42, value: 420 }",
		"/: expected value type: one of"+
			"\n\t- scalar"+
			"\n\t- [scalar]"+
			"\n\t- {key: scalar, value: [scalar], optional: !<!optional> scalar}"+
			"\n\t* failed variant 0:"+
			"\n\t\t/: expected value type: scalar"+
			"\n\t* failed variant 1:"+
			"\n\t\t/: expected value type: [scalar]"+
			"\n\t* failed variant 2:"+
			"\n\t\t/value: expected value type: {key: scalar, value: [scalar], optional: !<!optional> scalar}")
	checkErrors(t, v, "{ name: 42, description: 420 }",
		"/: expected value type: one of"+
			"\n\t- scalar"+
			"\n\t- [scalar]"+
			"\n\t- {key: scalar, value: [scalar], optional: !<!optional> scalar}"+
			"\n\t* failed variant 0:"+
			"\n\t\t/: expected value type: scalar"+
			"\n\t* failed variant 1:"+
			"\n\t\t/: expected value type: [scalar]"+
			"\n\t* failed variant 2:"+
			"\n\t\t/key: node not found"+
			"\n\t\t/value: node not found"+
			"\n\t\t/name: undefined node"+
			"\n\t\t/description: undefined node")
}

func TestNestedErrors(t *testing.T) {
	v := newValidator(t, `
types:
  target:
    - library: string
    - executable: string
root:
  targets: [target]
`)
	errs := v.Validate(parseDoc(t, `
targets:
  - library: library
  - executable: executable
    undefined_key: anything
`))
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	want := "/targets.1: expected value type: target" +
		"\n\t* failed variant 0:" +
		"\n\t\t/targets.1.library: node not found" +
		"\n\t\t/targets.1.executable: undefined node" +
		"\n\t\t/targets.1.undefined_key: undefined node" +
		"\n\t* failed variant 1:" +
		"\n\t\t/targets.1.undefined_key: undefined node"
	if got := errs[0].Description(0); got != want {
		t.Fatalf("unbounded description:\n got: %q\nwant: %q", got, want)
	}
	if got := errs[0].Description(1); got != "/targets.1: expected value type: target" {
		t.Fatalf("depth-1 description: %q", got)
	}
}

// Structures

func TestRequiredStructureValidation(t *testing.T) {
	v := newValidator(t, `
types:
  custom_type:
    name: scalar
    description: any
root: custom_type
`)
	checkValid(t, v, "{ name: some name, description: [ 1, 2, 3 ] }")
	checkErrors(t, v, "name: some name", "/description: node not found")
	checkErrors(t, v, "{}",
		"/name: node not found",
		"/description: node not found")
	checkErrors(t, v, "",
		"/name: node not found",
		"/description: node not found")
}

func TestOptionalStructureValidation(t *testing.T) {
	v := newValidator(t, `
types:
  custom_type:
    name: !optional scalar
    description: !optional any
root: custom_type
`)
	checkValid(t, v, "{ name: some name, description: [ 1, 2, 3 ] }")
	checkValid(t, v, "name: some name")
	checkErrors(t, v, "", "/: expected value type: custom_type")
}

func TestEmbeddedStructureValidation(t *testing.T) {
	v := newValidator(t, `
types:
  custom_type:
    name: scalar
    description: any
root:
  _: !embed custom_type
`)
	checkValid(t, v, "{ name: some name, description: [ 1, 2, 3 ] }")
	checkErrors(t, v, "{}",
		"/name: node not found",
		"/description: node not found")
	checkErrors(t, v, "", "/: expected value type: {_: !<!embed> custom_type}")
}

func TestOptionalEmbeddedStructureValidation(t *testing.T) {
	v := newValidator(t, `
types:
  custom_type:
    name: !optional scalar
    description: !optional any
root:
  _: !embed custom_type
`)
	checkErrors(t, v, "", "/: expected value type: {_: !<!embed> custom_type}")
}

func TestKeyTypeValidation(t *testing.T) {
	v := newValidator(t, `
root:
  $numeric: any
  $boolean: any
`)
	checkValid(t, v, "{ 420: [ 1, 2, 3 ], 42.0: 123, true: 1 }")
	checkErrors(t, v, "{ some_key: [ 1, 2, 3 ], another_key: 123 }",
		"/: missing key with type: numeric",
		"/: missing key with type: boolean",
		"/some_key: undefined node",
		"/another_key: undefined node")
	checkErrors(t, v, "some string",
		"/: expected value type: {$numeric: any, $boolean: any}")
}

func TestEmbeddedKeyTypeValidation(t *testing.T) {
	v := newValidator(t, `
types:
  embedded:
    $integer: any
root:
  _1: !embed
    $numeric: any
  _2: !embed embedded
  $boolean: any
`)
	checkValid(t, v, "{ 420: [ 1, 2, 3 ], 42.0: 123, true: 1 }")
	checkErrors(t, v, "{ some_key: [ 1, 2, 3 ], another_key: 123 }",
		"/: missing key with type: numeric",
		"/: missing key with type: integer",
		"/: missing key with type: boolean",
		"/some_key: undefined node",
		"/another_key: undefined node")
	checkErrors(t, v, "some string",
		"/: expected value type: {_1: !<!embed> {$numeric: any}, _2: !<!embed> embedded, $boolean: any}")
}

// Schema settings

func TestDefaultRequiredSetting(t *testing.T) {
	v := newValidator(t, `
settings:
  default_required: false
root:
  name: !required scalar
  description: any
`)
	checkValid(t, v, "name: some name")
	checkErrors(t, v, "{}", "/name: node not found")
}

func TestCustomTagNames(t *testing.T) {
	v := newValidator(t, `
settings:
  optional_tag: my_optional
  required_tag: my_required
  embed_tag: my_embed
root:
  _: !my_embed
    name: !my_required scalar
    description: !my_optional any
`)
	checkValid(t, v, "name: some name")
}

// Attributes

func TestIgnoreAttributesOff(t *testing.T) {
	v := newValidator(t, "root: { key: string }")
	checkValid(t, v, "key: some string")
	checkErrors(t, v, "key:ATTR: some string",
		"/key: node not found",
		"/key:ATTR: undefined node")
}

func TestIgnoreAttributesOn(t *testing.T) {
	v := newValidator(t, `
settings:
  ignore_attributes: true
root:
  key: string
`)
	checkValid(t, v, "key: some string")
	checkValid(t, v, "key:ATTR: some string")
	checkValid(t, v, "key:ATTR:ATTR: some string")
}

func TestAttributeIdempotence(t *testing.T) {
	v := newValidator(t, `
settings:
  ignore_attributes: true
root:
  key: integer
`)
	checkErrors(t, v, "key: some string", "/key: expected value type: integer")
	checkErrors(t, v, "key:X: some string", "/key: expected value type: integer")
	checkErrors(t, v, "key: 1\nother: 2", "/other: undefined node")
	checkErrors(t, v, "key: 1\nother:X: 2", "/other: undefined node")
}

func TestCustomAttributeSeparator(t *testing.T) {
	v := newValidator(t, `
settings:
  ignore_attributes: true
  attribute_separator: '@'
root:
  key: string
`)
	checkValid(t, v, "key@ATTR: some string")
	checkErrors(t, v, "key:ATTR: some string",
		"/key: node not found",
		"/key:ATTR: undefined node")
}

// Generic types

func TestGenericListValidation(t *testing.T) {
	v := newValidator(t, `
types:
  custom_boolean: boolean
  list<T>:
    - T
    - [T]
root:
  boolean_list: list<custom_boolean>
  scalar_list: list<scalar>
`)
	checkValid(t, v, `
boolean_list: true
scalar_list: [ 1, 2, some string ]
`)
	checkErrors(t, v, `
boolean_list: some string
scalar_list: []
`, "/boolean_list: expected value type: list<custom_boolean>"+
		"\n\t* failed variant 0:"+
		"\n\t\t/boolean_list: expected value type: boolean"+
		"\n\t* failed variant 1:"+
		"\n\t\t/boolean_list: expected value type: [T]")
}

func TestGenericKeyValidation(t *testing.T) {
	v := newValidator(t, `
types:
  generic<T>: T
root:
  $generic<string>: any
  $generic<boolean>: any
`)
	checkValid(t, v, "{ '42': value, true: value }")
	checkErrors(t, v, "true: value",
		"/: missing key with type: generic<string>")
}

func TestMultipleGenericArgsValidation(t *testing.T) {
	v := newValidator(t, `
types:
  one_of<T;Y>: [T, Y]
root: [one_of<boolean;integer>]
`)
	checkValid(t, v, "[ true, 42, false, 12 ]")
	checkErrors(t, v, "[ true, 42, false, 12, some string ]",
		"/4: expected value type: one_of<boolean;integer>"+
			"\n\t* failed variant 0:"+
			"\n\t\t/4: expected value type: boolean"+
			"\n\t* failed variant 1:"+
			"\n\t\t/4: expected value type: integer")
}

func TestNestedGenericArgsValidation(t *testing.T) {
	v := newValidator(t, `
types:
  one_of<T;Y>: [T, Y]
root: [one_of<boolean;one_of<integer;string>>]
`)
	checkValid(t, v, "[ true, 42, false, 12, some string ]")
}

func TestPassedGenericArgsValidation(t *testing.T) {
	v := newValidator(t, `
types:
  some<T>: T
  list<T>: [some<T>]
  single_or_list<T>:
    - T
    - list<T>
root: single_or_list<string>
`)
	checkValid(t, v, "[ hello, world ]")
	checkValid(t, v, "hello")
}

func TestGenericMapValidation(t *testing.T) {
	v := newValidator(t, `
types:
  map<K;V>: { $K: V }
root: map<integer;boolean>
`)
	checkValid(t, v, "{ 42: true, 24: false }")
	checkErrors(t, v, "{ 42: true, 24: some string }",
		"/24: expected value type: boolean")
}

func TestIfGenericTypeValidation(t *testing.T) {
	v := newValidator(t, `
types:
  if<T>:
    - T
    - - - if: string
          then: T
        - T
root: if<integer>
`)
	checkValid(t, v, `
- if: hello
  then: 42
- 24
- 420
`)
	checkErrors(t, v, `
- if: hello
  then: not an integer
- not an integer
- 42
`, "/: expected value type: if<integer>"+
		"\n\t* failed variant 0:"+
		"\n\t\t/: expected value type: integer"+
		"\n\t* failed variant 1:"+
		"\n\t\t/0: expected value type: [[{if: string, then: T}, T]]"+
		"\n\t\t\t* failed variant 0:"+
		"\n\t\t\t\t/0.then: expected value type: integer"+
		"\n\t\t\t* failed variant 1:"+
		"\n\t\t\t\t/0: expected value type: integer"+
		"\n\t\t/1: expected value type: [[{if: string, then: T}, T]]"+
		"\n\t\t\t* failed variant 0:"+
		"\n\t\t\t\t/1.if: node not found"+
		"\n\t\t\t\t/1.then: node not found"+
		"\n\t\t\t* failed variant 1:"+
		"\n\t\t\t\t/1: expected value type: integer")
}

func TestCustomGenericBracketsAndSeparator(t *testing.T) {
	v := newValidator(t, `
settings:
  generic_brackets: ['(', ')']
  generic_separator: ','
types:
  one_of(T,Y): [T, Y]
root:
  - one_of(boolean,integer)
`)
	checkValid(t, v, "[ true, 42 ]")
	checkErrors(t, v, "[ some string ]",
		"/0: expected value type: one_of(boolean,integer)"+
			"\n\t* failed variant 0:"+
			"\n\t\t/0: expected value type: boolean"+
			"\n\t* failed variant 1:"+
			"\n\t\t/0: expected value type: integer")
}

// Recursion guard

func TestRecursiveTypeValidation(t *testing.T) {
	v := newValidator(t, `
types:
  tree:
    value: integer
    children: !optional [tree]
root: tree
`)
	checkValid(t, v, `
value: 1
children:
  - value: 2
  - value: 3
    children: []
`)
	checkErrors(t, v, "{ value: 1, children: [ { value: nope } ] }",
		"/children.0.value: expected value type: integer")
}

func TestSchemaTooDeep(t *testing.T) {
	v := newValidator(t, `
types:
  wrap<T>: T
  loop: wrap<loop>
root: loop
`)
	errs := v.Validate(parseDoc(t, "42"))
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if got := errs[0].Description(0); got != "/: schema too deep" {
		t.Fatalf("unexpected error: %q", got)
	}
}

func TestWithMaxDepth(t *testing.T) {
	n, err := yamldoc.Parse([]byte(`
types:
  wrap<T>: T
  loop: wrap<loop>
root: loop
`))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	v, err := docshape.New(n, docshape.WithMaxDepth(8))
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	errs := v.Validate(parseDoc(t, "42"))
	if len(errs) != 1 || errs[0].Message != "schema too deep" {
		t.Fatalf("expected depth error, got %v", errs)
	}
}

// Determinism

func TestDeterministicOutput(t *testing.T) {
	v := newValidator(t, `
root:
  $numeric: any
  $boolean: any
`)
	doc := "{ some_key: [ 1, 2, 3 ], another_key: 123 }"
	first := v.Validate(parseDoc(t, doc))
	for i := 0; i < 5; i++ {
		next := v.Validate(parseDoc(t, doc))
		if len(next) != len(first) {
			t.Fatalf("run %d: error count changed", i)
		}
		for k := range next {
			if next[k].Description(0) != first[k].Description(0) {
				t.Fatalf("run %d: error %d changed", i, k)
			}
		}
	}
}
