package docshape

import "fmt"

// checkSchema verifies the loaded type graph before any validation runs:
// every reference names an existing type with matching arity, embeds point
// at structures without field conflicts, and pure alias chains terminate.
// After it passes, the engine reports a schema fault only for the recursion
// depth cap and for parameter-dependent embeds that resolve to a
// non-structure.
func checkSchema(sc *schema) error {
	for _, name := range sc.order {
		if err := checkExpr(sc, sc.types[name].body); err != nil {
			return err
		}
	}
	if err := checkExpr(sc, sc.root); err != nil {
		return err
	}
	return checkAliasCycles(sc)
}

func checkExpr(sc *schema, t typeExpr) error {
	switch x := t.(type) {
	case *typeRef:
		nt, ok := sc.types[x.name]
		if !ok {
			return fmt.Errorf("%w: undefined type %q", ErrLoad, x.name)
		}
		if len(nt.params) != len(x.args) {
			return fmt.Errorf("%w: type %q expects %d arguments, got %d",
				ErrLoad, x.name, len(nt.params), len(x.args))
		}
		for _, a := range x.args {
			if err := checkExpr(sc, a); err != nil {
				return err
			}
		}
	case *typeList:
		return checkExpr(sc, x.elem)
	case *typeVariant:
		if x.value {
			return nil
		}
		for _, alt := range x.alts {
			if err := checkExpr(sc, alt); err != nil {
				return err
			}
		}
	case *typeStruct:
		return checkStruct(sc, x)
	}
	return nil
}

func checkStruct(sc *schema, st *typeStruct) error {
	fields := map[string]struct{}{}
	if err := collectStructFields(sc, st, fields, map[*typeStruct]bool{}); err != nil {
		return err
	}
	for _, e := range st.entries {
		switch e.kind {
		case entryField:
			if err := checkExpr(sc, e.typ); err != nil {
				return err
			}
		case entryKeyed:
			if err := checkExpr(sc, e.keyType); err != nil {
				return err
			}
			if err := checkExpr(sc, e.typ); err != nil {
				return err
			}
		case entryEmbed:
			if err := checkExpr(sc, e.typ); err != nil {
				return err
			}
		}
	}
	return nil
}

// collectStructFields gathers the field names a struct will expect after
// embed splicing, following statically resolvable references, and reports
// conflicts. Embeds whose shape depends on a generic parameter are skipped
// here; at validation time the engine only checks that they resolve to a
// structure, and field conflicts they bring in are not reported.
func collectStructFields(sc *schema, st *typeStruct, fields map[string]struct{}, visiting map[*typeStruct]bool) error {
	if visiting[st] {
		return fmt.Errorf("%w: recursive embed", ErrLoad)
	}
	visiting[st] = true
	defer delete(visiting, st)

	for _, e := range st.entries {
		switch e.kind {
		case entryField:
			if _, dup := fields[e.name]; dup {
				return fmt.Errorf("%w: embedded fields conflict on %q", ErrLoad, e.name)
			}
			fields[e.name] = struct{}{}
		case entryEmbed:
			target, known := staticStruct(sc, e.typ)
			if target == nil {
				if known {
					return fmt.Errorf("%w: embedded type is not a structure", ErrLoad)
				}
				continue
			}
			if err := collectStructFields(sc, target, fields, visiting); err != nil {
				return err
			}
		}
	}
	return nil
}

// staticStruct follows references until it reaches a structure. The second
// result is false when the shape cannot be decided statically (a generic
// parameter stands in the way).
func staticStruct(sc *schema, t typeExpr) (*typeStruct, bool) {
	seen := map[string]bool{}
	for {
		switch x := t.(type) {
		case *typeStruct:
			return x, true
		case *typeRef:
			if seen[x.name] {
				return nil, false
			}
			seen[x.name] = true
			nt, ok := sc.types[x.name]
			if !ok {
				return nil, false
			}
			t = nt.body
		case *typeParam:
			return nil, false
		default:
			return nil, true
		}
	}
}

// checkAliasCycles rejects named types whose bodies are nothing but chains
// of references back into themselves: such types never consume a document
// level and validation against them would not terminate.
func checkAliasCycles(sc *schema) error {
	for _, name := range sc.order {
		seen := map[string]bool{name: true}
		cur := sc.types[name]
		for {
			ref, ok := cur.body.(*typeRef)
			if !ok {
				break
			}
			if seen[ref.name] {
				return fmt.Errorf("%w: recursive alias %q", ErrLoad, ref.name)
			}
			seen[ref.name] = true
			next, ok := sc.types[ref.name]
			if !ok {
				break
			}
			cur = next
		}
	}
	return nil
}
