package docshape

import (
	"errors"
	"strconv"
	"strings"
)

// ErrLoad marks schema load failures returned by New. Use errors.Is to
// distinguish them from I/O or adapter errors.
var ErrLoad = errors.New("docshape: invalid schema")

// Error is one validation finding. Path addresses the offending data node
// (root is "/", sequence children append ".N", map children append ".KEY").
// Branches is non-empty only for variant dispatch failures and holds the
// errors of every attempted alternative, in declaration order.
type Error struct {
	Path     string   `json:"path"`
	Message  string   `json:"message"`
	Branches []Branch `json:"branches,omitempty"`
}

// Branch is the outcome of one failed variant alternative.
type Branch struct {
	Errors []Error `json:"errors"`
}

// Description serialises the error tree. depth limits how many levels are
// printed: 1 yields only the top line, 0 or negative prints everything.
func (e *Error) Description(depth int) string {
	var b strings.Builder
	e.describe(&b, depth, 0)
	return b.String()
}

// Error implements the error interface with the unbounded description.
func (e *Error) Error() string { return e.Description(0) }

func (e *Error) describe(b *strings.Builder, depth, level int) {
	b.WriteString(e.Path)
	b.WriteString(": ")
	b.WriteString(e.Message)
	if depth == 1 {
		return
	}
	next := depth - 1
	if depth <= 0 {
		next = 0
	}
	indent := strings.Repeat("\t", level+1)
	for i := range e.Branches {
		b.WriteString("\n")
		b.WriteString(indent)
		b.WriteString("* failed variant ")
		b.WriteString(strconv.Itoa(i))
		b.WriteString(":")
		for j := range e.Branches[i].Errors {
			b.WriteString("\n")
			b.WriteString(indent)
			b.WriteString("\t")
			e.Branches[i].Errors[j].describe(b, next, level+2)
		}
	}
}
