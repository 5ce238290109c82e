package docshape

// Settings are the schema-level knobs read from the optional top-level
// "settings" map. Zero value is not useful; use defaultSettings.
type Settings struct {
	DefaultRequired  bool
	IgnoreAttributes bool
	OptionalTag      string
	RequiredTag      string
	EmbedTag         string
	VariantTag       string
	BracketOpen      string
	BracketClose     string
	GenericSep       string
	AttrSep          string
}

func defaultSettings() Settings {
	return Settings{
		DefaultRequired:  true,
		IgnoreAttributes: false,
		OptionalTag:      "!optional",
		RequiredTag:      "!required",
		EmbedTag:         "!embed",
		VariantTag:       "!variant",
		BracketOpen:      "<",
		BracketClose:     ">",
		GenericSep:       ";",
		AttrSep:          ":",
	}
}

// tagMatches reports whether a node tag names the configured tag: either
// verbatim or with the leading "!" the document syntax adds.
func tagMatches(nodeTag, setting string) bool {
	if nodeTag == "" || setting == "" {
		return false
	}
	return nodeTag == setting || nodeTag == "!"+setting
}

// namedType is one entry of the top-level "types" map. Zero-parameter
// entries are monomorphic aliases.
type namedType struct {
	name   string
	params []string
	body   typeExpr
}

// schema is the loaded, checked form a Validator runs against.
type schema struct {
	settings Settings
	types    map[string]*namedType
	order    []string // type names in document order, for deterministic checks
	root     typeExpr
}

// typeExpr is the internal representation of a type expression. Every
// variant retains the schema node it was parsed from; error messages render
// these source nodes, so substitution never rewrites surface text.
type typeExpr interface {
	node() Node
}

type builtinKind int

const (
	builtinAny builtinKind = iota
	builtinScalar
	builtinNumeric
	builtinInteger
	builtinBoolean
	builtinString
	builtinAnyList
	builtinAnyMap
)

// builtinByName maps the case-sensitive built-in alias spellings.
var builtinByName = map[string]builtinKind{
	"any":     builtinAny,
	"scalar":  builtinScalar,
	"numeric": builtinNumeric,
	"num":     builtinNumeric,
	"integer": builtinInteger,
	"int":     builtinInteger,
	"boolean": builtinBoolean,
	"bool":    builtinBoolean,
	"string":  builtinString,
	"str":     builtinString,
	"map":     builtinAnyMap,
	"list":    builtinAnyList,
}

type typeBuiltin struct {
	kind builtinKind
	src  Node
}

type typeRef struct {
	name string
	args []typeExpr
	src  Node
}

type typeParam struct {
	name string
	src  Node
}

// typeLiteral matches by value equality of canonical renderings. Only value
// variants produce it.
type typeLiteral struct {
	src Node
}

type typeList struct {
	elem typeExpr
	src  Node
}

// typeVariant is either a value variant (!variant tag, literal
// alternatives) or a type variant (schema sequence of length >= 2).
type typeVariant struct {
	alts  []typeExpr
	value bool
	src   Node
}

type entryKind int

const (
	entryField entryKind = iota
	entryKeyed
	entryEmbed
)

// structEntry is one ordered entry of a struct: a literal field, a dynamic
// key spec ($T), or an embedded reference spliced in place.
type structEntry struct {
	kind     entryKind
	name     string   // field name
	typ      typeExpr // field type, keyed value type, or embed target
	required bool     // field only
	keyNode  Node     // keyed: the text after the sigil, for rendering
	keyType  typeExpr // keyed: parsed key type
}

type typeStruct struct {
	entries []structEntry
	src     Node
}

func (t *typeBuiltin) node() Node { return t.src }
func (t *typeRef) node() Node     { return t.src }
func (t *typeParam) node() Node   { return t.src }
func (t *typeLiteral) node() Node { return t.src }
func (t *typeList) node() Node    { return t.src }
func (t *typeVariant) node() Node { return t.src }
func (t *typeStruct) node() Node  { return t.src }
