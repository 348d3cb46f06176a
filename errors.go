package constrain

import (
	"fmt"
	"strings"
)

// SyntaxError reports a constraint declaration that can never hold, such as
// both exclusive and inclusive lower bounds on the same number. It is raised
// while compiling, never during validation.
type SyntaxError struct {
	msg string
}

func (e *SyntaxError) Error() string { return e.msg }

func syntaxErrorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{msg: fmt.Sprintf(format, args...)}
}

// TypeError reports a constraint value Compile does not understand, such as
// an unknown Constraint implementation. It is raised while compiling, never
// during validation.
type TypeError struct {
	msg string
}

func (e *TypeError) Error() string { return e.msg }

func typeErrorf(format string, args ...any) *TypeError {
	return &TypeError{msg: fmt.Sprintf(format, args...)}
}

// Report is one flattened entry of a violation dump.
type Report struct {
	Location   string `json:"location"`
	ErrorClass string `json:"error_class"`
	Detail     string `json:"detail"`
}

// ValueError reports a value that violates its constraints. Path addresses
// the offending element within the validated tree ("" for the root). In
// exhaustive mode container violations carry their children in Errors,
// ordered by discovery.
type ValueError struct {
	Path        string
	Constraints Constraint
	Errors      []*ValueError

	raw any
}

func newValueError(value any, path string, c Constraint, nested []*ValueError) *ValueError {
	return &ValueError{Path: path, Constraints: c, Errors: nested, raw: value}
}

// Location returns Path, or "Given" for the root.
func (e *ValueError) Location() string {
	if e.Path == "" {
		return "Given"
	}
	return e.Path
}

func (e *ValueError) detail() string {
	return fmt.Sprintf("value <%v> fails constraints: %s", formatValue(e.raw), e.Constraints)
}

func (e *ValueError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Location(), e.detail())
	if len(e.Errors) > 0 {
		b.WriteString(" (")
		for i, sub := range e.Errors {
			if i > 0 {
				b.WriteString("; ")
			}
			fmt.Fprintf(&b, "%s: %s", sub.Location(), sub.detail())
		}
		b.WriteByte(')')
	}
	return b.String()
}

// Value returns the offending value as seen by the failing validator.
func (e *ValueError) Value() any { return e.raw }

// ErrorAt returns the nested violation recorded for the given path, if any.
func (e *ValueError) ErrorAt(path string) *ValueError {
	for _, sub := range e.Errors {
		if sub.Path == path {
			return sub
		}
	}
	return nil
}

// Dump flattens the violation tree breadth-first, root entry first, nested
// entries in discovery order.
func (e *ValueError) Dump() []Report {
	var out []Report
	queue := []*ValueError{e}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, Report{
			Location:   cur.Location(),
			ErrorClass: "ValueError",
			Detail:     cur.detail(),
		})
		queue = append(queue, cur.Errors...)
	}
	return out
}

// AsValueError extracts a *ValueError from err when validation failed with
// one.
func AsValueError(err error) (*ValueError, bool) {
	ve, ok := err.(*ValueError)
	return ve, ok
}

func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case []byte:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
