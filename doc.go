package docshape

// Package docshape validates hierarchical document trees (YAML-shaped data)
// against schemas that are themselves documents.
//
// - Schemas declare named types, generic (parameterized) types, variants,
//   optional/required/embedded markers, and typed map keys
// - Validation walks an already-parsed tree and returns a list of Error
//   values, each carrying a path into the data and, for variant dispatch,
//   the reason every alternative failed
// - The engine performs no I/O and never mutates the input
//
// Design policy:
// - Keep only public APIs exported from the root package; surface syntax
//   scanning lives under internal/.
// - Document adapters live in their own packages (yamldoc, jsondoc) and the
//   CLI under cmd/docshape.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	schema, err := yamldoc.Parse(schemaBytes)
//	v, err := docshape.New(schema)
//	doc, err := yamldoc.Parse(docBytes)
//	for _, e := range v.Validate(doc) {
//		fmt.Println(e.Description(0))
//	}
