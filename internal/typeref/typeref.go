// Package typeref scans the surface syntax of type references appearing as
// schema scalars: a bare name, or a generic application NAME<ARG;ARG> with
// configurable brackets and separator. Arguments are returned unparsed; the
// loader feeds each one back through its own expression parser.
package typeref

import (
	"fmt"
	"strings"
)

// Syntax carries the configurable pieces of the reference grammar.
type Syntax struct {
	Open  string // opening bracket, default "<"
	Close string // closing bracket, default ">"
	Sep   string // argument separator, default ";"
}

// Default is the out-of-the-box reference syntax.
var Default = Syntax{Open: "<", Close: ">", Sep: ";"}

// Parse splits a type reference into its name and raw argument strings.
// A reference without brackets yields args == nil. Separators only split at
// bracket depth zero, so nested applications stay intact.
func Parse(s string, syn Syntax) (name string, args []string, err error) {
	open := strings.Index(s, syn.Open)
	if open < 0 {
		if strings.Contains(s, syn.Close) {
			return "", nil, fmt.Errorf("malformed type reference %q: unbalanced %q", s, syn.Close)
		}
		return s, nil, nil
	}
	if open == 0 {
		return "", nil, fmt.Errorf("malformed type reference %q: missing name", s)
	}
	if !strings.HasSuffix(s, syn.Close) {
		return "", nil, fmt.Errorf("malformed type reference %q: missing %q", s, syn.Close)
	}
	name = s[:open]
	inner := s[open+len(syn.Open) : len(s)-len(syn.Close)]
	args, err = splitArgs(inner, syn)
	if err != nil {
		return "", nil, fmt.Errorf("malformed type reference %q: %w", s, err)
	}
	if len(args) == 0 {
		return "", nil, fmt.Errorf("malformed type reference %q: empty argument list", s)
	}
	return name, args, nil
}

func splitArgs(inner string, syn Syntax) ([]string, error) {
	var args []string
	depth := 0
	start := 0
	for i := 0; i < len(inner); {
		switch {
		case strings.HasPrefix(inner[i:], syn.Open):
			depth++
			i += len(syn.Open)
		case strings.HasPrefix(inner[i:], syn.Close):
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced %q", syn.Close)
			}
			i += len(syn.Close)
		case depth == 0 && strings.HasPrefix(inner[i:], syn.Sep):
			args = append(args, strings.TrimSpace(inner[start:i]))
			i += len(syn.Sep)
			start = i
		default:
			i++
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced %q", syn.Open)
	}
	args = append(args, strings.TrimSpace(inner[start:]))
	for _, a := range args {
		if a == "" {
			return nil, fmt.Errorf("empty argument")
		}
	}
	return args, nil
}

// Format renders a reference back to its surface form. Parse(Format(n, a))
// round-trips for every well-formed name and argument list.
func Format(name string, args []string, syn Syntax) string {
	if len(args) == 0 {
		return name
	}
	return name + syn.Open + strings.Join(args, syn.Sep) + syn.Close
}
