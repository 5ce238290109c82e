package docshape

import (
	"strings"
)

// Render produces the canonical single-line flow rendering of a node:
// sequences as [a, b, c], maps as {k: v}, non-core tags as !<tag> prefixes.
// Literal comparison and error messages both rely on this rendering, so two
// nodes are value-equal exactly when their renderings are equal.
func Render(n Node) string {
	var b strings.Builder
	renderNode(&b, n)
	return b.String()
}

func renderNode(b *strings.Builder, n Node) {
	if tag := n.Tag(); tag != "" {
		b.WriteString("!<")
		b.WriteString(tag)
		b.WriteString("> ")
	}
	switch n.Kind() {
	case KindNull:
		b.WriteString("~")
	case KindScalar:
		renderScalar(b, n)
	case KindSequence:
		b.WriteString("[")
		for i := 0; i < n.Len(); i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			renderNode(b, n.Index(i))
		}
		b.WriteString("]")
	case KindMap:
		b.WriteString("{")
		for i, p := range n.Pairs() {
			if i > 0 {
				b.WriteString(", ")
			}
			renderNode(b, p.Key)
			b.WriteString(": ")
			renderNode(b, p.Value)
		}
		b.WriteString("}")
	}
}

// renderScalar quotes strings that would otherwise read back as a different
// scalar type, so that '42' and 42 stay distinguishable.
func renderScalar(b *strings.Builder, n Node) {
	text := n.Text()
	if n.ScalarType() == ScalarString && (text == "" || ResolveScalar(text, false) != ScalarString) {
		b.WriteString(`"`)
		b.WriteString(text)
		b.WriteString(`"`)
		return
	}
	b.WriteString(text)
}

// displayString renders the node standing for the expected type in an error
// message: scalars by their surface text, variant sequences as a "one of"
// listing, anything else in flow style.
func displayString(n Node) string {
	switch {
	case n.Kind() == KindScalar:
		return n.Text()
	case n.Kind() == KindSequence && n.Len() >= 2:
		var b strings.Builder
		b.WriteString("one of")
		for i := 0; i < n.Len(); i++ {
			b.WriteString("\n\t- ")
			renderNode(&b, n.Index(i))
		}
		return b.String()
	default:
		return Render(n)
	}
}
