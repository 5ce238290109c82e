package docshape

import (
	"fmt"
	"strings"

	"github.com/docshape/docshape/internal/typeref"
)

// loader walks a schema document once and produces the typed schema. It
// parses type expressions into their internal form but does not resolve
// references; checkSchema does that afterwards.
type loader struct {
	set Settings
	syn typeref.Syntax
}

func loadSchema(root Node) (*schema, error) {
	if root == nil || root.Kind() != KindMap {
		return nil, fmt.Errorf("%w: schema is not a mapping", ErrLoad)
	}

	set := defaultSettings()
	for _, p := range root.Pairs() {
		if p.Key.Kind() == KindScalar && p.Key.Text() == "settings" {
			if err := parseSettings(p.Value, &set); err != nil {
				return nil, err
			}
		}
	}

	ld := &loader{
		set: set,
		syn: typeref.Syntax{Open: set.BracketOpen, Close: set.BracketClose, Sep: set.GenericSep},
	}

	sc := &schema{settings: set, types: map[string]*namedType{}}
	for _, p := range root.Pairs() {
		if p.Key.Kind() != KindScalar {
			return nil, fmt.Errorf("%w: top-level key is not a scalar", ErrLoad)
		}
		switch p.Key.Text() {
		case "settings":
			// parsed above
		case "types":
			if err := ld.parseTypes(p.Value, sc); err != nil {
				return nil, err
			}
		case "root":
			expr, err := ld.parseExpr(p.Value, nil)
			if err != nil {
				return nil, err
			}
			sc.root = expr
		default:
			return nil, fmt.Errorf("%w: unknown top-level key %q", ErrLoad, p.Key.Text())
		}
	}
	if sc.root == nil {
		return nil, fmt.Errorf("%w: schema has no root", ErrLoad)
	}
	if err := checkSchema(sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func parseSettings(n Node, set *Settings) error {
	if n.Kind() != KindMap {
		return fmt.Errorf("%w: settings is not a mapping", ErrLoad)
	}
	for _, p := range n.Pairs() {
		key := p.Key.Text()
		switch key {
		case "default_required":
			b, err := settingBool(key, p.Value)
			if err != nil {
				return err
			}
			set.DefaultRequired = b
		case "ignore_attributes":
			b, err := settingBool(key, p.Value)
			if err != nil {
				return err
			}
			set.IgnoreAttributes = b
		case "optional_tag":
			s, err := settingString(key, p.Value)
			if err != nil {
				return err
			}
			set.OptionalTag = s
		case "required_tag":
			s, err := settingString(key, p.Value)
			if err != nil {
				return err
			}
			set.RequiredTag = s
		case "embed_tag":
			s, err := settingString(key, p.Value)
			if err != nil {
				return err
			}
			set.EmbedTag = s
		case "variant_tag":
			s, err := settingString(key, p.Value)
			if err != nil {
				return err
			}
			set.VariantTag = s
		case "generic_brackets":
			if p.Value.Kind() != KindSequence || p.Value.Len() != 2 {
				return fmt.Errorf("%w: setting %q must be a pair of strings", ErrLoad, key)
			}
			openB, err := settingString(key, p.Value.Index(0))
			if err != nil {
				return err
			}
			closeB, err := settingString(key, p.Value.Index(1))
			if err != nil {
				return err
			}
			set.BracketOpen, set.BracketClose = openB, closeB
		case "generic_separator":
			s, err := settingString(key, p.Value)
			if err != nil {
				return err
			}
			set.GenericSep = s
		case "attribute_separator":
			s, err := settingString(key, p.Value)
			if err != nil {
				return err
			}
			set.AttrSep = s
		default:
			return fmt.Errorf("%w: unknown setting %q", ErrLoad, key)
		}
	}
	return nil
}

func settingBool(key string, n Node) (bool, error) {
	if n.Kind() != KindScalar || n.ScalarType() != ScalarBool {
		return false, fmt.Errorf("%w: setting %q must be a boolean", ErrLoad, key)
	}
	return isBoolTrue(n.Text()), nil
}

func settingString(key string, n Node) (string, error) {
	if n.Kind() != KindScalar || n.Text() == "" {
		return "", fmt.Errorf("%w: setting %q must be a non-empty string", ErrLoad, key)
	}
	return n.Text(), nil
}

func (ld *loader) parseTypes(n Node, sc *schema) error {
	if n.Kind() != KindMap {
		return fmt.Errorf("%w: types is not a mapping", ErrLoad)
	}
	for _, p := range n.Pairs() {
		if p.Key.Kind() != KindScalar {
			return fmt.Errorf("%w: type name is not a scalar", ErrLoad)
		}
		name, params, err := typeref.Parse(p.Key.Text(), ld.syn)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrLoad, err)
		}
		if _, dup := sc.types[name]; dup {
			return fmt.Errorf("%w: duplicate type %q", ErrLoad, name)
		}
		scope := map[string]struct{}{}
		for _, prm := range params {
			if _, dup := scope[prm]; dup {
				return fmt.Errorf("%w: duplicate parameter %q of type %q", ErrLoad, prm, name)
			}
			scope[prm] = struct{}{}
		}
		body, err := ld.parseExpr(p.Value, scope)
		if err != nil {
			return err
		}
		sc.types[name] = &namedType{name: name, params: params, body: body}
		sc.order = append(sc.order, name)
	}
	return nil
}

// parseExpr turns a schema node into a type expression. params is the set
// of generic parameter names in scope.
func (ld *loader) parseExpr(n Node, params map[string]struct{}) (typeExpr, error) {
	if tagMatches(n.Tag(), ld.set.VariantTag) {
		if n.Kind() != KindSequence || n.Len() == 0 {
			return nil, fmt.Errorf("%w: variant requires a non-empty sequence", ErrLoad)
		}
		v := &typeVariant{value: true, src: n}
		for i := 0; i < n.Len(); i++ {
			v.alts = append(v.alts, &typeLiteral{src: n.Index(i)})
		}
		return v, nil
	}
	if tagMatches(n.Tag(), ld.set.EmbedTag) {
		return nil, fmt.Errorf("%w: embedded reference outside a structure", ErrLoad)
	}

	switch n.Kind() {
	case KindScalar:
		return ld.parseScalarRef(n.Text(), n, params)
	case KindSequence:
		switch n.Len() {
		case 0:
			return &typeBuiltin{kind: builtinAnyList, src: n}, nil
		case 1:
			elem, err := ld.parseExpr(n.Index(0), params)
			if err != nil {
				return nil, err
			}
			return &typeList{elem: elem, src: n}, nil
		default:
			v := &typeVariant{src: n}
			for i := 0; i < n.Len(); i++ {
				alt, err := ld.parseExpr(n.Index(i), params)
				if err != nil {
					return nil, err
				}
				v.alts = append(v.alts, alt)
			}
			return v, nil
		}
	case KindMap:
		if len(n.Pairs()) == 0 {
			return &typeBuiltin{kind: builtinAnyMap, src: n}, nil
		}
		return ld.parseStruct(n, params)
	default:
		return nil, fmt.Errorf("%w: empty type expression", ErrLoad)
	}
}

// parseScalarRef parses a scalar type reference: a generic parameter, a
// built-in alias, or a named reference with optional generic arguments.
func (ld *loader) parseScalarRef(text string, src Node, params map[string]struct{}) (typeExpr, error) {
	name, args, err := typeref.Parse(text, ld.syn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	if len(args) == 0 {
		if _, ok := params[name]; ok {
			return &typeParam{name: name, src: src}, nil
		}
		if kind, ok := builtinByName[name]; ok {
			return &typeBuiltin{kind: kind, src: src}, nil
		}
		return &typeRef{name: name, src: src}, nil
	}
	if _, ok := params[name]; ok {
		return nil, fmt.Errorf("%w: generic parameter %q cannot take arguments", ErrLoad, name)
	}
	ref := &typeRef{name: name, src: src}
	for _, a := range args {
		arg, err := ld.parseScalarRef(a, textNode(a), params)
		if err != nil {
			return nil, err
		}
		ref.args = append(ref.args, arg)
	}
	return ref, nil
}

func (ld *loader) parseStruct(n Node, params map[string]struct{}) (typeExpr, error) {
	st := &typeStruct{src: n}
	seen := map[string]struct{}{}
	for _, p := range n.Pairs() {
		if p.Key.Kind() != KindScalar {
			return nil, fmt.Errorf("%w: structure key is not a scalar", ErrLoad)
		}
		key := p.Key.Text()
		v := p.Value

		if tagMatches(v.Tag(), ld.set.EmbedTag) {
			var target typeExpr
			var err error
			switch v.Kind() {
			case KindScalar:
				target, err = ld.parseScalarRef(v.Text(), v, params)
			case KindMap:
				target, err = ld.parseStruct(v, params)
			default:
				err = fmt.Errorf("%w: embedded reference must be a name or a mapping", ErrLoad)
			}
			if err != nil {
				return nil, err
			}
			st.entries = append(st.entries, structEntry{kind: entryEmbed, name: key, typ: target})
			continue
		}

		if strings.HasPrefix(key, "$") {
			keyText := key[1:]
			keyType, err := ld.parseScalarRef(keyText, textNode(keyText), params)
			if err != nil {
				return nil, err
			}
			valType, err := ld.parseExpr(v, params)
			if err != nil {
				return nil, err
			}
			st.entries = append(st.entries, structEntry{
				kind:    entryKeyed,
				keyNode: textNode(keyText),
				keyType: keyType,
				typ:     valType,
			})
			continue
		}

		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrLoad, key)
		}
		seen[key] = struct{}{}

		required := ld.set.DefaultRequired
		if tagMatches(v.Tag(), ld.set.OptionalTag) {
			required = false
		} else if tagMatches(v.Tag(), ld.set.RequiredTag) {
			required = true
		}
		typ, err := ld.parseExpr(v, params)
		if err != nil {
			return nil, err
		}
		st.entries = append(st.entries, structEntry{kind: entryField, name: key, typ: typ, required: required})
	}
	return st, nil
}
