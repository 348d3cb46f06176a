package specfile

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/reoring/constrain"
)

var (
	typeString = reflect.TypeOf("")
	typeInt    = reflect.TypeOf(int64(0))
	typeFloat  = reflect.TypeOf(float64(0))
	typeBool   = reflect.TypeOf(true)
	typeSlice  = reflect.TypeOf([]any(nil))
	typeMap    = reflect.TypeOf(map[string]any(nil))
)

// loader resolves $refs against $defs. Definitions are allocated as empty
// shells first and filled afterwards, so references may form cycles.
type loader struct {
	defs   map[string]*node
	shells map[string]constrain.Constraint
}

func buildDocument(doc *document) (constrain.Constraint, error) {
	l := &loader{defs: doc.Defs, shells: make(map[string]constrain.Constraint, len(doc.Defs))}
	for name, n := range doc.Defs {
		if n == nil {
			return nil, fmt.Errorf("specfile: definition %q is empty", name)
		}
		shell, err := l.alloc(n, name)
		if err != nil {
			return nil, err
		}
		l.shells[name] = shell
	}
	for name, n := range doc.Defs {
		if err := l.fill(l.shells[name], n); err != nil {
			return nil, err
		}
	}
	return l.build(&doc.node, doc.Name)
}

func (l *loader) build(n *node, name string) (constrain.Constraint, error) {
	if n.Ref != "" {
		return l.resolve(n.Ref)
	}
	c, err := l.alloc(n, name)
	if err != nil {
		return nil, err
	}
	if err := l.fill(c, n); err != nil {
		return nil, err
	}
	return c, nil
}

func (l *loader) resolve(ref string) (constrain.Constraint, error) {
	name := strings.TrimPrefix(ref, "#/$defs/")
	c, ok := l.shells[name]
	if !ok {
		return nil, fmt.Errorf("specfile: unknown reference %q", ref)
	}
	return c, nil
}

// alloc creates the empty constraint for a node's declared type and fills
// its shared metadata. Composite members are attached later by fill.
func (l *loader) alloc(n *node, name string) (constrain.Constraint, error) {
	meta := constrain.Meta{
		Name:      name,
		Nullable:  n.Nullable,
		ReadOnly:  n.ReadOnly,
		WriteOnly: n.WriteOnly,
	}
	if n.Default != nil {
		meta.Default = *n.Default
		meta.HasDefault = true
	}

	switch kindOf(n) {
	case "string":
		meta.Type = typeString
		return &constrain.TextConstraints{Meta: meta}, nil
	case "integer":
		meta.Type = typeInt
		return &constrain.NumberConstraints{Meta: meta}, nil
	case "number":
		meta.Type = typeFloat
		return &constrain.NumberConstraints{Meta: meta}, nil
	case "decimal":
		meta.Type = typeFloat
		return &constrain.DecimalConstraints{Meta: meta}, nil
	case "boolean":
		meta.Type = typeBool
		return &constrain.TypeConstraints{Meta: meta}, nil
	case "enum":
		return &constrain.EnumerationConstraints{Meta: meta}, nil
	case "array":
		meta.Type = typeSlice
		return &constrain.ArrayConstraints{Meta: meta}, nil
	case "map":
		meta.Type = typeMap
		return &constrain.MappingConstraints{Meta: meta}, nil
	case "object":
		meta.Type = typeMap
		return &constrain.StructuredConstraints{Meta: meta}, nil
	case "tuple":
		meta.Type = typeSlice
		return &constrain.StructuredConstraints{Meta: meta, Tuple: true}, nil
	case "union":
		return &constrain.MultiConstraints{Meta: meta}, nil
	case "any":
		return &constrain.UndeclaredConstraints{Meta: meta}, nil
	}
	return nil, fmt.Errorf("specfile: unknown type %q", n.Type)
}

// kindOf normalizes the declared type, inferring it from the present keys
// when omitted.
func kindOf(n *node) string {
	switch strings.ToLower(n.Type) {
	case "string", "text":
		return "string"
	case "integer", "int":
		return "integer"
	case "number", "float":
		return "number"
	case "decimal":
		return "decimal"
	case "boolean", "bool":
		return "boolean"
	case "enum":
		return "enum"
	case "array", "list":
		return "array"
	case "map", "mapping":
		return "map"
	case "object":
		return "object"
	case "tuple":
		return "tuple"
	case "union", "oneof":
		return "union"
	case "any":
		return "any"
	case "":
		switch {
		case len(n.Enum) > 0:
			return "enum"
		case len(n.Fields) > 0:
			return "object"
		case len(n.OneOf) > 0 || len(n.Mapping) > 0:
			return "union"
		}
	}
	return ""
}

func (l *loader) fill(c constrain.Constraint, n *node) error {
	switch c := c.(type) {
	case *constrain.TextConstraints:
		c.MinLength = n.MinLength
		c.MaxLength = n.MaxLength
		c.Pattern = n.Pattern
		c.Strip = n.Strip
		c.Curtail = n.Curtail

	case *constrain.NumberConstraints:
		c.GT, c.GE, c.LT, c.LE = n.GT, n.GE, n.LT, n.LE
		c.MultipleOf = n.MultipleOf

	case *constrain.DecimalConstraints:
		c.GT, c.GE, c.LT, c.LE = n.GT, n.GE, n.LT, n.LE
		c.MultipleOf = n.MultipleOf
		c.MaxDigits = n.MaxDigits
		c.DecimalPlaces = n.DecimalPlaces

	case *constrain.EnumerationConstraints:
		c.Items = append([]any(nil), n.Enum...)

	case *constrain.ArrayConstraints:
		c.MinItems = n.MinItems
		c.MaxItems = n.MaxItems
		c.Unique = n.Unique
		if n.Values != nil {
			values, err := l.build(n.Values, "")
			if err != nil {
				return err
			}
			c.Values = values
		}

	case *constrain.MappingConstraints:
		c.MinItems = n.MinItems
		c.MaxItems = n.MaxItems
		c.KeyPattern = n.KeyPattern
		if n.Keys != nil {
			keys, err := l.build(n.Keys, "")
			if err != nil {
				return err
			}
			c.Keys = keys
		}
		if n.Values != nil {
			values, err := l.build(n.Values, "")
			if err != nil {
				return err
			}
			c.Values = values
		}

	case *constrain.StructuredConstraints:
		for i, f := range n.Fields {
			if f == nil {
				return fmt.Errorf("specfile: empty field declaration in %q", c.DisplayName())
			}
			name := f.Name
			if name == "" {
				if !c.Tuple {
					return fmt.Errorf("specfile: object %q has an unnamed field", c.DisplayName())
				}
				name = strconv.Itoa(i)
			}
			fc, err := l.build(&f.node, "")
			if err != nil {
				return err
			}
			c.Fields = append(c.Fields, constrain.Field{Name: name, Constraints: fc})
		}
		c.Required = append([]string(nil), n.Required...)

	case *constrain.MultiConstraints:
		for _, alt := range n.OneOf {
			ac, err := l.build(alt, "")
			if err != nil {
				return err
			}
			c.Alternatives = append(c.Alternatives, ac)
		}
		c.TagField = n.Tag
		if len(n.Mapping) > 0 {
			c.TagMapping = make(map[string]constrain.Constraint, len(n.Mapping))
			for tag, alt := range n.Mapping {
				ac, err := l.build(alt, "")
				if err != nil {
					return err
				}
				c.TagMapping[tag] = ac
			}
		}
	}
	return nil
}
