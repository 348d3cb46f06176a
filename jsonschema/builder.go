package jsonschema

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/reoring/constrain"
)

// Builder renders constraint trees as JSON Schema documents. Results are
// memoized by constraint identity, so building the same node twice returns
// the same *Schema, and self-referential trees terminate with a $ref at the
// point of re-entry. A Builder is safe for concurrent use.
type Builder struct {
	mu       sync.Mutex
	cache    map[constrain.Constraint]*Schema
	visited  map[constrain.Constraint]bool
	attached []constrain.Constraint
	seen     map[constrain.Constraint]bool
}

func NewBuilder() *Builder {
	return &Builder{
		cache:   make(map[constrain.Constraint]*Schema),
		visited: make(map[constrain.Constraint]bool),
		seen:    make(map[constrain.Constraint]bool),
	}
}

// Build renders a single constraint tree.
func (b *Builder) Build(c constrain.Constraint) (*Schema, error) {
	return b.BuildField(c, "")
}

// BuildField renders a constraint that sits in a named field; the field name
// titles the schema when the constraint carries no name of its own.
func (b *Builder) BuildField(c constrain.Constraint, fieldName string) (*Schema, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.build(c, fieldName)
}

// Attach queues a constraint for bulk emission via All.
func (b *Builder) Attach(c constrain.Constraint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c == nil || b.seen[c] {
		return
	}
	b.seen[c] = true
	b.attached = append(b.attached, c)
}

// All builds every attached constraint, hoists titled nested schemas into a
// flat definitions map and returns the roots as references.
func (b *Builder) All() (*Package, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	roots := make([]*Schema, 0, len(b.attached))
	for _, c := range b.attached {
		s, err := b.build(c, "")
		if err != nil {
			return nil, err
		}
		roots = append(roots, s)
	}

	pkg := &Package{Definitions: make(map[string]*Schema)}
	g := &gatherer{defs: pkg.Definitions, done: make(map[*Schema]bool)}
	for _, root := range roots {
		pkg.OneOf = append(pkg.OneOf, g.hoist(root))
	}
	return pkg, nil
}

func (b *Builder) build(c constrain.Constraint, fieldName string) (*Schema, error) {
	if c == nil {
		return nil, fmt.Errorf("jsonschema: cannot build a nil constraint")
	}
	if s, ok := b.cache[c]; ok {
		return s, nil
	}
	title := titleFor(c, fieldName)
	if b.visited[c] {
		return NewRef(title), nil
	}
	b.visited[c] = true
	defer delete(b.visited, c)

	s, err := b.buildKind(c, title)
	if err != nil {
		return nil, err
	}

	m := c.Metadata()
	if m.HasDefault {
		s.Default = m.Default
	}
	if m.Nullable {
		s = wrapNullable(s, title, m)
	}
	if m.ReadOnly {
		s = wrapReadOnly(s, m)
	}
	if m.WriteOnly {
		s.WriteOnly = true
		s.Title = prefixTitle("WriteOnly", s.Title)
	}

	b.cache[c] = s
	return s, nil
}

func (b *Builder) buildKind(c constrain.Constraint, title string) (*Schema, error) {
	switch c := c.(type) {
	case *constrain.UndeclaredConstraints:
		return &Schema{Title: title}, nil

	case *constrain.TypeConstraints:
		return &Schema{Title: title, Type: jsonType(c.Type)}, nil

	case *constrain.TextConstraints:
		return &Schema{
			Title:     title,
			Type:      "string",
			MinLength: c.MinLength,
			MaxLength: c.MaxLength,
			Pattern:   c.Pattern,
		}, nil

	case *constrain.NumberConstraints:
		s := &Schema{Title: title, Type: numericType(c.Type)}
		applyBounds(s, c.GT, c.GE, c.LT, c.LE, c.MultipleOf)
		return s, nil

	case *constrain.DecimalConstraints:
		s := &Schema{Title: title, Type: "number"}
		applyBounds(s, c.GT, c.GE, c.LT, c.LE, c.MultipleOf)
		return s, nil

	case *constrain.EnumerationConstraints:
		return &Schema{
			Title: title,
			Type:  enumType(c.Items),
			Enum:  append([]any(nil), c.Items...),
		}, nil

	case *constrain.ArrayConstraints:
		s := &Schema{
			Title:       title,
			Type:        "array",
			MinItems:    c.MinItems,
			MaxItems:    c.MaxItems,
			UniqueItems: c.Unique,
		}
		if c.Values != nil {
			items, err := b.build(c.Values, "")
			if err != nil {
				return nil, err
			}
			s.Items = items
		}
		return s, nil

	case *constrain.MappingConstraints:
		s := &Schema{
			Title:         title,
			Type:          "object",
			MinProperties: c.MinItems,
			MaxProperties: c.MaxItems,
		}
		if c.KeyPattern != "" {
			s.PropertyNames = &Schema{Pattern: c.KeyPattern}
		} else if c.Keys != nil {
			keys, err := b.build(c.Keys, "")
			if err != nil {
				return nil, err
			}
			s.PropertyNames = keys
		}
		if c.Values != nil {
			values, err := b.build(c.Values, "")
			if err != nil {
				return nil, err
			}
			s.AdditionalProperties = values
		}
		return s, nil

	case *constrain.StructuredConstraints:
		if c.Tuple {
			return b.buildTuple(c, title)
		}
		return b.buildObject(c, title)

	case *constrain.MultiConstraints:
		s := &Schema{Title: title}
		for _, alt := range c.Alternatives {
			as, err := b.build(alt, "")
			if err != nil {
				return nil, err
			}
			s.OneOf = append(s.OneOf, as)
		}
		return s, nil

	case *constrain.DeferredConstraints:
		if c.Resolve == nil {
			return nil, fmt.Errorf("jsonschema: deferred constraint %q has no resolver", title)
		}
		target := c.Resolve()
		if target == nil {
			return nil, fmt.Errorf("jsonschema: deferred constraint %q resolved to nil", title)
		}
		return b.build(target, title)
	}
	return nil, fmt.Errorf("jsonschema: unsupported constraint %T", c)
}

func (b *Builder) buildObject(c *constrain.StructuredConstraints, title string) (*Schema, error) {
	s := &Schema{
		Title:      title,
		Type:       "object",
		Properties: make(map[string]*Schema, len(c.Fields)),
	}
	for _, f := range c.Fields {
		fs, err := b.build(f.Constraints, f.Name)
		if err != nil {
			return nil, err
		}
		s.Properties[f.Name] = fs
	}
	if len(c.Required) > 0 {
		req := append([]string(nil), c.Required...)
		sort.Strings(req)
		s.Required = req
	}
	return s, nil
}

func (b *Builder) buildTuple(c *constrain.StructuredConstraints, title string) (*Schema, error) {
	arity := len(c.Fields)
	s := &Schema{
		Title:    title,
		Type:     "array",
		MinItems: &arity,
		MaxItems: &arity,
	}
	for _, f := range c.Fields {
		fs, err := b.build(f.Constraints, f.Name)
		if err != nil {
			return nil, err
		}
		s.PrefixItems = append(s.PrefixItems, fs)
	}
	return s, nil
}

// ---- wrapping ----

// wrapNullable lifts the schema into oneOf [schema, null]. A declared
// default bubbles up to the wrapper so encoders see it at the top level,
// even when the declared default is null itself.
func wrapNullable(s *Schema, title string, m *constrain.Meta) *Schema {
	w := &Schema{
		Title: prefixTitle("Nullable", title),
		OneOf: []*Schema{s, {Type: "null"}},
	}
	if m.HasDefault {
		w.Default = m.Default
		s.Default = nil
	}
	return w
}

// wrapReadOnly marks the schema read-only; with a declared default the value
// can never legally change, so it collapses to a single-member enum.
func wrapReadOnly(s *Schema, m *constrain.Meta) *Schema {
	s.ReadOnly = true
	s.Title = prefixTitle("ReadOnly", s.Title)
	if m.HasDefault {
		s.Enum = []any{m.Default}
	}
	return s
}

func prefixTitle(prefix, title string) string {
	if title == "" {
		return ""
	}
	return prefix + title
}

// ---- definition gathering ----

type gatherer struct {
	defs map[string]*Schema
	done map[*Schema]bool
}

// hoist moves titled schemas into the definitions map and returns the node
// that should sit in their place.
func (g *gatherer) hoist(s *Schema) *Schema {
	if s == nil || s.IsRef() {
		return s
	}
	if s.Title == "" {
		g.walk(s)
		return s
	}
	if _, ok := g.defs[s.Title]; !ok {
		g.defs[s.Title] = s
		g.walk(s)
	}
	return NewRef(s.Title)
}

func (g *gatherer) walk(s *Schema) {
	if g.done[s] {
		return
	}
	g.done[s] = true
	s.Items = g.hoist(s.Items)
	s.PropertyNames = g.hoist(s.PropertyNames)
	for i, child := range s.PrefixItems {
		s.PrefixItems[i] = g.hoist(child)
	}
	for k, child := range s.Properties {
		s.Properties[k] = g.hoist(child)
	}
	for i, child := range s.OneOf {
		s.OneOf[i] = g.hoist(child)
	}
	if child, ok := s.AdditionalProperties.(*Schema); ok {
		s.AdditionalProperties = g.hoist(child)
	}
	for k, child := range s.Definitions {
		s.Definitions[k] = g.hoist(child)
	}
}

// ---- helpers ----

func titleFor(c constrain.Constraint, fieldName string) string {
	if name := c.Metadata().DisplayName(); name != "" {
		return name
	}
	return camelize(fieldName)
}

// camelize turns snake_case and kebab-case field names into schema titles.
func camelize(name string) string {
	if name == "" {
		return ""
	}
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' })
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

func applyBounds(s *Schema, gt, ge, lt, le, mul *float64) {
	s.ExclusiveMinimum = gt
	s.Minimum = ge
	s.ExclusiveMaximum = lt
	s.Maximum = le
	s.MultipleOf = mul
}

func jsonType(t reflect.Type) string {
	if t == nil {
		return ""
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	}
	return ""
}

func numericType(t reflect.Type) string {
	if jt := jsonType(t); jt == "integer" {
		return "integer"
	}
	return "number"
}

func enumType(items []any) string {
	jt := ""
	for _, item := range items {
		var cur string
		switch item.(type) {
		case string:
			cur = "string"
		case bool:
			cur = "boolean"
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			cur = "integer"
		case float32, float64:
			cur = "number"
		default:
			return ""
		}
		if jt == "" {
			jt = cur
			continue
		}
		if jt != cur {
			if (jt == "integer" && cur == "number") || (jt == "number" && cur == "integer") {
				jt = "number"
				continue
			}
			return ""
		}
	}
	return jt
}
