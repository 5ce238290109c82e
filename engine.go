package docshape

import (
	"strconv"
	"strings"
)

// environ binds the generic parameters of the named-type body currently
// being matched. Each binding keeps the environment its argument expression
// was written in, so nested applications resolve in the caller's scope.
type environ struct {
	vars map[string]binding
}

type binding struct {
	t   typeExpr
	env *environ
}

func bindParams(params []string, args []typeExpr, caller *environ) *environ {
	if len(params) == 0 {
		return nil
	}
	vars := make(map[string]binding, len(params))
	for i, p := range params {
		vars[p] = binding{t: args[i], env: caller}
	}
	return &environ{vars: vars}
}

// matcher is the validation engine. It is stateless apart from the schema
// and the depth cap, so a single matcher serves concurrent callers.
type matcher struct {
	sc       *schema
	maxDepth int
}

func (m *matcher) run(doc Node) []Error {
	return m.match(doc, m.sc.root, nil, "/", m.sc.root.node(), 0)
}

// match validates node against t under env. display is the schema node
// whose rendering names the expected type in container mismatches; entering
// a reference or trying a variant alternative resets it, descending into
// struct fields or list elements keeps it.
func (m *matcher) match(node Node, t typeExpr, env *environ, path string, display Node, depth int) []Error {
	if depth > m.maxDepth {
		return []Error{{Path: path, Message: "schema too deep"}}
	}
	switch x := t.(type) {
	case *typeParam:
		b := env.vars[x.name]
		return m.match(node, b.t, b.env, path, b.t.node(), depth+1)
	case *typeRef:
		nt := m.sc.types[x.name]
		return m.match(node, nt.body, bindParams(nt.params, x.args, env), path, x.src, depth+1)
	case *typeBuiltin:
		if builtinMatches(x.kind, node) {
			return nil
		}
		return []Error{{Path: path, Message: "expected value type: " + displayString(x.src)}}
	case *typeLiteral:
		if Render(node) == Render(x.src) {
			return nil
		}
		return []Error{{Path: path, Message: "expected value type: " + displayString(x.src)}}
	case *typeList:
		return m.matchList(node, x, env, path, display, depth)
	case *typeVariant:
		return m.matchVariant(node, x, env, path, display, depth)
	case *typeStruct:
		return m.matchStruct(node, x, env, path, display, depth)
	}
	return nil
}

func builtinMatches(kind builtinKind, node Node) bool {
	switch kind {
	case builtinAny:
		return true
	case builtinScalar:
		return node.Kind() == KindScalar
	case builtinNumeric:
		if node.Kind() != KindScalar {
			return false
		}
		st := node.ScalarType()
		return st == ScalarInt || st == ScalarFloat
	case builtinInteger:
		return node.Kind() == KindScalar && node.ScalarType() == ScalarInt
	case builtinBoolean:
		return node.Kind() == KindScalar && node.ScalarType() == ScalarBool
	case builtinString:
		return node.Kind() == KindScalar && node.ScalarType() == ScalarString
	case builtinAnyList:
		return node.Kind() == KindSequence
	case builtinAnyMap:
		return node.Kind() == KindMap
	}
	return false
}

func (m *matcher) matchList(node Node, t *typeList, env *environ, path string, display Node, depth int) []Error {
	if node.Kind() != KindSequence {
		return []Error{{Path: path, Message: "expected value type: " + displayString(display)}}
	}
	var errs []Error
	for i := 0; i < node.Len(); i++ {
		child := childPath(path, strconv.Itoa(i))
		errs = append(errs, m.match(node.Index(i), t.elem, env, child, display, depth+1)...)
	}
	return errs
}

func (m *matcher) matchVariant(node Node, t *typeVariant, env *environ, path string, display Node, depth int) []Error {
	if t.value {
		rendered := Render(node)
		var alts []string
		for _, alt := range t.alts {
			lit := alt.(*typeLiteral)
			if Render(lit.src) == rendered {
				return nil
			}
			alts = append(alts, Render(lit.src))
		}
		var b strings.Builder
		b.WriteString("expected value: one of")
		for _, a := range alts {
			b.WriteString("\n\t- ")
			b.WriteString(a)
		}
		return []Error{{Path: path, Message: b.String()}}
	}

	branches := make([]Branch, 0, len(t.alts))
	for _, alt := range t.alts {
		errs := m.match(node, alt, env, path, alt.node(), depth+1)
		if len(errs) == 0 {
			return nil
		}
		branches = append(branches, Branch{Errors: errs})
	}
	return []Error{{
		Path:     path,
		Message:  "expected value type: " + displayString(display),
		Branches: branches,
	}}
}

// resolvedEntry is a struct entry paired with the environment its types
// must be evaluated in; embed splicing brings entries in from other scopes.
type resolvedEntry struct {
	e   structEntry
	env *environ
}

func (m *matcher) splice(t *typeStruct, env *environ, seen map[*typeStruct]bool) ([]resolvedEntry, *Error) {
	if seen[t] {
		return nil, &Error{Message: "schema too deep"}
	}
	seen[t] = true
	defer delete(seen, t)

	var out []resolvedEntry
	for _, e := range t.entries {
		if e.kind != entryEmbed {
			out = append(out, resolvedEntry{e: e, env: env})
			continue
		}
		target, tenv, ok := m.resolveStruct(e.typ, env)
		if !ok {
			return nil, &Error{Message: "embedded type is not a structure"}
		}
		nested, fail := m.splice(target, tenv, seen)
		if fail != nil {
			return nil, fail
		}
		out = append(out, nested...)
	}
	return out, nil
}

// resolveStruct chases a type expression through parameters and references
// until it reaches a structure.
func (m *matcher) resolveStruct(t typeExpr, env *environ) (*typeStruct, *environ, bool) {
	for steps := 0; steps <= m.maxDepth; steps++ {
		switch x := t.(type) {
		case *typeStruct:
			return x, env, true
		case *typeParam:
			b := env.vars[x.name]
			t, env = b.t, b.env
		case *typeRef:
			nt := m.sc.types[x.name]
			env = bindParams(nt.params, x.args, env)
			t = nt.body
		default:
			return nil, nil, false
		}
	}
	return nil, nil, false
}

// structKey is one data key prepared for matching. When the schema ignores
// attributes the stripped text drives both matching and paths, so appending
// an attribute to a key cannot change the error set.
type structKey struct {
	matchText string
	matchNode Node
	byField   bool
	byKeyed   bool
}

func (m *matcher) matchStruct(node Node, t *typeStruct, env *environ, path string, display Node, depth int) []Error {
	entries, fail := m.splice(t, env, map[*typeStruct]bool{})
	if fail != nil {
		fail.Path = path
		return []Error{*fail}
	}

	if node.Kind() != KindMap {
		// A non-map only expands to field-level errors when the structure
		// itself declares a required field; embed-only and key-only
		// structures surface as a plain type mismatch.
		direct := false
		for _, e := range t.entries {
			if e.kind == entryField && e.required {
				direct = true
				break
			}
		}
		if !direct {
			return []Error{{Path: path, Message: "expected value type: " + displayString(display)}}
		}
		var errs []Error
		for _, re := range entries {
			if re.e.kind == entryField && re.e.required {
				errs = append(errs, Error{Path: childPath(path, re.e.name), Message: "node not found"})
			}
		}
		return errs
	}

	pairs := node.Pairs()
	keys := make([]structKey, len(pairs))
	for i, p := range pairs {
		raw := p.Key.Text()
		keys[i] = structKey{matchText: raw, matchNode: p.Key}
		if m.sc.settings.IgnoreAttributes {
			if cut := strings.Index(raw, m.sc.settings.AttrSep); cut >= 0 {
				keys[i].matchText = raw[:cut]
				keys[i].matchNode = textNode(raw[:cut])
			}
		}
	}

	var fieldErrs, keyedErrs, undefErrs []Error

	// Field checks in declaration order; the first matching key wins,
	// later duplicates fall through to the undefined-key report.
	for _, re := range entries {
		if re.e.kind != entryField {
			continue
		}
		found := -1
		for i := range keys {
			if !keys[i].byField && keys[i].matchText == re.e.name {
				found = i
				break
			}
		}
		if found < 0 {
			if re.e.required {
				fieldErrs = append(fieldErrs, Error{Path: childPath(path, re.e.name), Message: "node not found"})
			}
			continue
		}
		keys[found].byField = true
		child := childPath(path, keys[found].matchText)
		fieldErrs = append(fieldErrs, m.match(pairs[found].Value, re.e.typ, re.env, child, display, depth+1)...)
	}

	// Dynamic-key checks in declaration order. Keys consumed by fields are
	// out of scope; a key may satisfy several specs.
	for _, re := range entries {
		if re.e.kind != entryKeyed {
			continue
		}
		satisfied := false
		for i := range keys {
			if keys[i].byField {
				continue
			}
			if len(m.match(keys[i].matchNode, re.e.keyType, re.env, path, re.e.keyNode, depth+1)) != 0 {
				continue
			}
			satisfied = true
			keys[i].byKeyed = true
			child := childPath(path, keys[i].matchText)
			keyedErrs = append(keyedErrs, m.match(pairs[i].Value, re.e.typ, re.env, child, display, depth+1)...)
		}
		if !satisfied {
			keyedErrs = append(keyedErrs, Error{
				Path:    path,
				Message: "missing key with type: " + displayString(re.e.keyNode),
			})
		}
	}

	for i := range keys {
		if !keys[i].byField && !keys[i].byKeyed {
			undefErrs = append(undefErrs, Error{Path: childPath(path, keys[i].matchText), Message: "undefined node"})
		}
	}

	errs := append(fieldErrs, keyedErrs...)
	return append(errs, undefErrs...)
}

func childPath(path, segment string) string {
	if path == "/" {
		return "/" + segment
	}
	return path + "." + segment
}
