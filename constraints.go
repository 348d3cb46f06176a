package constrain

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Kind discriminates the constraint variants.
type Kind int

const (
	KindUndeclared Kind = iota
	KindType
	KindText
	KindNumber
	KindDecimal
	KindEnumeration
	KindArray
	KindMapping
	KindStructured
	KindMulti
	KindDeferred
)

func (k Kind) String() string {
	switch k {
	case KindUndeclared:
		return "undeclared"
	case KindType:
		return "type"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDecimal:
		return "decimal"
	case KindEnumeration:
		return "enumeration"
	case KindArray:
		return "array"
	case KindMapping:
		return "mapping"
	case KindStructured:
		return "structured"
	case KindMulti:
		return "multi"
	case KindDeferred:
		return "deferred"
	}
	return "unknown"
}

// Meta carries the settings shared by every constraint variant.
//
// Type is the Go type the constraint targets; it may be nil for purely
// shape-based constraints built from documents rather than Go declarations.
// Name is the display name used in error paths and schema titles; when empty
// it falls back to the type name or the kind.
type Meta struct {
	Type      reflect.Type
	Name      string
	Nullable  bool
	ReadOnly  bool
	WriteOnly bool

	// Default is only meaningful when HasDefault is true; nil is a valid
	// default for nullable constraints.
	Default    any
	HasDefault bool
}

// Metadata returns the shared settings. It exists so that embedding Meta
// satisfies the Constraint interface's metadata accessor.
func (m *Meta) Metadata() *Meta { return m }

// DisplayName returns Name, falling back to the target type's name.
func (m *Meta) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	if m.Type != nil {
		if n := m.Type.Name(); n != "" {
			return n
		}
		return m.Type.String()
	}
	return ""
}

// Constraint is the closed set of validation rules understood by Compile and
// by the schema builders. Constraints are pointer-shaped; a node may appear
// in several places of a tree (or reference an ancestor) and is compiled and
// schema-built once per identity.
type Constraint interface {
	Metadata() *Meta
	Kind() Kind
	// String renders a compact, human-readable summary of the active rules.
	// It is embedded in violation messages.
	String() string
}

// ---- scalar constraints ----

// UndeclaredConstraints accepts any value. It marks positions where no rule
// was declared so that trees stay total.
type UndeclaredConstraints struct {
	Meta
}

func (c *UndeclaredConstraints) Kind() Kind     { return KindUndeclared }
func (c *UndeclaredConstraints) String() string { return render("any", &c.Meta, nil) }

// TypeConstraints requires the value to be an instance of the target type and
// nothing more.
type TypeConstraints struct {
	Meta
}

func (c *TypeConstraints) Kind() Kind { return KindType }
func (c *TypeConstraints) String() string {
	return render("type", &c.Meta, []pair{{"type", typeName(c.Type)}})
}

// TextConstraints validates strings and byte slices.
//
// Strip removes surrounding whitespace and Curtail truncates to MaxLength;
// both run before any assertion, strip first. Pattern matches from the start
// of the value, not the whole value.
type TextConstraints struct {
	Meta
	MinLength *int
	MaxLength *int
	Pattern   string
	Strip     bool
	Curtail   bool
}

func (c *TextConstraints) Kind() Kind { return KindText }
func (c *TextConstraints) String() string {
	return render("text", &c.Meta, []pair{
		{"minLength", c.MinLength},
		{"maxLength", c.MaxLength},
		{"pattern", c.Pattern},
		{"strip", c.Strip},
		{"curtail", c.Curtail},
	})
}

// NumberConstraints validates numeric values. GT/GE and LT/LE are mutually
// exclusive pairs; setting both members of a pair is a syntax error reported
// by Compile.
type NumberConstraints struct {
	Meta
	GT         *float64
	GE         *float64
	LT         *float64
	LE         *float64
	MultipleOf *float64
}

func (c *NumberConstraints) Kind() Kind { return KindNumber }
func (c *NumberConstraints) String() string {
	return render("number", &c.Meta, boundPairs(c.GT, c.GE, c.LT, c.LE, c.MultipleOf))
}

// DecimalConstraints extends numeric bounds with digit-count rules.
// MaxDigits counts significant digits on both sides of the point;
// DecimalPlaces counts digits to the right of it.
type DecimalConstraints struct {
	Meta
	GT            *float64
	GE            *float64
	LT            *float64
	LE            *float64
	MultipleOf    *float64
	MaxDigits     *int
	DecimalPlaces *int
}

func (c *DecimalConstraints) Kind() Kind { return KindDecimal }
func (c *DecimalConstraints) String() string {
	ps := boundPairs(c.GT, c.GE, c.LT, c.LE, c.MultipleOf)
	ps = append(ps, pair{"maxDigits", c.MaxDigits}, pair{"decimalPlaces", c.DecimalPlaces})
	return render("decimal", &c.Meta, ps)
}

// EnumerationConstraints restricts the value to a fixed set of items.
type EnumerationConstraints struct {
	Meta
	Items []any
}

func (c *EnumerationConstraints) Kind() Kind { return KindEnumeration }
func (c *EnumerationConstraints) String() string {
	return render("enum", &c.Meta, []pair{{"items", fmt.Sprintf("%v", c.Items)}})
}

// ---- container constraints ----

// ArrayConstraints validates slices. Unique deduplicates while preserving
// first-seen order before the size assertions run. Values, when non-nil,
// applies to every element.
type ArrayConstraints struct {
	Meta
	MinItems *int
	MaxItems *int
	Unique   bool
	Values   Constraint
}

func (c *ArrayConstraints) Kind() Kind { return KindArray }
func (c *ArrayConstraints) String() string {
	return render("array", &c.Meta, []pair{
		{"minItems", c.MinItems},
		{"maxItems", c.MaxItems},
		{"unique", c.Unique},
	})
}

// MappingConstraints validates string-keyed maps. KeyPattern must match every
// key from its start. Keys and Values, when non-nil, apply to each entry.
type MappingConstraints struct {
	Meta
	MinItems   *int
	MaxItems   *int
	KeyPattern string
	Keys       Constraint
	Values     Constraint
}

func (c *MappingConstraints) Kind() Kind { return KindMapping }
func (c *MappingConstraints) String() string {
	return render("mapping", &c.Meta, []pair{
		{"minItems", c.MinItems},
		{"maxItems", c.MaxItems},
		{"keyPattern", c.KeyPattern},
	})
}

// Field is one declared member of a structured constraint. Order matters:
// for tuples it is positional, and error collection follows it.
type Field struct {
	Name        string
	Constraints Constraint
}

// StructuredConstraints validates objects with a declared field layout, or
// fixed-arity tuples when Tuple is set. Objects tolerate undeclared keys;
// tuples require the exact declared arity.
type StructuredConstraints struct {
	Meta
	Fields   []Field
	Required []string
	Tuple    bool
}

func (c *StructuredConstraints) Kind() Kind { return KindStructured }
func (c *StructuredConstraints) String() string {
	names := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		names[i] = f.Name
	}
	ps := []pair{{"fields", strings.Join(names, ",")}}
	if len(c.Required) > 0 {
		req := append([]string(nil), c.Required...)
		sort.Strings(req)
		ps = append(ps, pair{"required", strings.Join(req, ",")})
	}
	if c.Tuple {
		ps = append(ps, pair{"tuple", true})
	}
	return render("object", &c.Meta, ps)
}

// MultiConstraints validates a union of alternatives. With TagField set the
// union is tagged: the named discriminator selects the alternative via
// TagMapping. Otherwise dispatch is by value type, ties broken by the
// declaration order of Alternatives.
type MultiConstraints struct {
	Meta
	Alternatives []Constraint
	TagField     string
	TagMapping   map[string]Constraint
}

func (c *MultiConstraints) Kind() Kind { return KindMulti }
func (c *MultiConstraints) String() string {
	alts := make([]string, len(c.Alternatives))
	for i, a := range c.Alternatives {
		alts[i] = a.Metadata().DisplayName()
		if alts[i] == "" {
			alts[i] = a.Kind().String()
		}
	}
	ps := []pair{{"alternatives", strings.Join(alts, "|")}}
	if c.TagField != "" {
		ps = append(ps, pair{"tag", c.TagField})
	}
	return render("union", &c.Meta, ps)
}

// DeferredConstraints defers resolution of a node until validation or schema
// generation first needs it. It is the escape hatch for self-referential
// declarations whose target is not constructed yet.
type DeferredConstraints struct {
	Meta
	Resolve func() Constraint
}

func (c *DeferredConstraints) Kind() Kind     { return KindDeferred }
func (c *DeferredConstraints) String() string { return render("deferred", &c.Meta, nil) }

// ---- rendering helpers ----

type pair struct {
	k string
	v any
}

func boundPairs(gt, ge, lt, le, mul *float64) []pair {
	return []pair{
		{"gt", gt},
		{"ge", ge},
		{"lt", lt},
		{"le", le},
		{"multipleOf", mul},
	}
}

// render produces the compact summary used in violation messages, e.g.
// "text(nullable=true, minLength=2)". Unset rules are omitted.
func render(kind string, m *Meta, ps []pair) string {
	var b strings.Builder
	b.WriteString(kind)
	b.WriteByte('(')
	n := 0
	write := func(k string, v any) {
		if n > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", k, v)
		n++
	}
	if m.Nullable {
		write("nullable", true)
	}
	for _, p := range ps {
		switch v := p.v.(type) {
		case nil:
			continue
		case *int:
			if v == nil {
				continue
			}
			write(p.k, *v)
		case *float64:
			if v == nil {
				continue
			}
			write(p.k, *v)
		case string:
			if v == "" {
				continue
			}
			write(p.k, v)
		case bool:
			if !v {
				continue
			}
			write(p.k, v)
		default:
			write(p.k, v)
		}
	}
	b.WriteByte(')')
	return b.String()
}

func typeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}
