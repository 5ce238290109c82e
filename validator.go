package docshape

// DefaultMaxDepth bounds schema recursion during validation. Exceeding it
// reports a "schema too deep" validation error instead of recursing further.
const DefaultMaxDepth = 256

// Option configures a Validator at construction.
type Option func(*Validator)

// WithMaxDepth overrides the recursion depth cap.
func WithMaxDepth(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxDepth = n
		}
	}
}

// Validator holds a loaded schema. It is immutable after construction and
// safe to share across goroutines.
type Validator struct {
	sc       *schema
	maxDepth int
}

// New loads and checks a schema document. All schema faults (unknown
// settings, duplicate or undefined types, arity mismatches, malformed
// generic syntax, missing root, alias cycles) surface here, wrapped in
// ErrLoad. Afterwards Validate reports a schema fault only when the
// recursion depth cap is exceeded or when an embed that depends on a generic
// argument does not resolve to a structure.
func New(schema Node, opts ...Option) (*Validator, error) {
	sc, err := loadSchema(schema)
	if err != nil {
		return nil, err
	}
	v := &Validator{sc: sc, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Settings exposes the effective settings the schema was loaded with.
func (v *Validator) Settings() Settings { return v.sc.settings }

// Validate walks the document against the schema root and returns every
// mismatch. An empty result means the document conforms. The input tree is
// only read, never retained or mutated.
func (v *Validator) Validate(doc Node) []Error {
	m := &matcher{sc: v.sc, maxDepth: v.maxDepth}
	return m.run(doc)
}
