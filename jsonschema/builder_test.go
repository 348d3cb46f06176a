package jsonschema_test

import (
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/constrain"
	js "github.com/reoring/constrain/jsonschema"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func TestBuild_Text(t *testing.T) {
	b := js.NewBuilder()
	s, err := b.Build(&constrain.TextConstraints{
		Meta:      constrain.Meta{Name: "Nickname"},
		MinLength: intp(1),
		MaxLength: intp(32),
		Pattern:   `[a-z]+`,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := &js.Schema{
		Title:     "Nickname",
		Type:      "string",
		MinLength: intp(1),
		MaxLength: intp(32),
		Pattern:   `[a-z]+`,
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_NumberBounds(t *testing.T) {
	b := js.NewBuilder()
	s, err := b.Build(&constrain.NumberConstraints{
		GT: floatp(0),
		LE: floatp(100),
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if s.ExclusiveMinimum == nil || *s.ExclusiveMinimum != 0 {
		t.Fatalf("gt must map to exclusiveMinimum, got %+v", s)
	}
	if s.Maximum == nil || *s.Maximum != 100 {
		t.Fatalf("le must map to maximum, got %+v", s)
	}
	if s.Minimum != nil || s.ExclusiveMaximum != nil {
		t.Fatalf("unset bounds must stay unset, got %+v", s)
	}
}

func TestBuild_NullableWrapsAndBubblesDefault(t *testing.T) {
	b := js.NewBuilder()
	s, err := b.Build(&constrain.TextConstraints{
		Meta: constrain.Meta{
			Name:       "Label",
			Nullable:   true,
			Default:    "none",
			HasDefault: true,
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if s.Title != "NullableLabel" {
		t.Fatalf("expected NullableLabel, got %q", s.Title)
	}
	if len(s.OneOf) != 2 || s.OneOf[1].Type != "null" {
		t.Fatalf("expected oneOf [schema, null], got %+v", s.OneOf)
	}
	if s.Default != "none" {
		t.Fatalf("default must bubble to the wrapper, got %v", s.Default)
	}
	if s.OneOf[0].Default != nil {
		t.Fatalf("inner default must move, got %v", s.OneOf[0].Default)
	}
}

// Bubbling keys off the declared-default flag, not the default's value, so
// falsy defaults move to the wrapper too.
func TestBuild_NullableBubblesFalsyDefault(t *testing.T) {
	b := js.NewBuilder()
	s, err := b.Build(&constrain.TypeConstraints{
		Meta: constrain.Meta{
			Name:       "Flag",
			Type:       reflect.TypeOf(true),
			Nullable:   true,
			Default:    false,
			HasDefault: true,
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if s.Default != false {
		t.Fatalf("default must bubble to the wrapper, got %v", s.Default)
	}
	if s.OneOf[0].Default != nil {
		t.Fatalf("inner default must move, got %v", s.OneOf[0].Default)
	}

	none, err := js.NewBuilder().Build(&constrain.TextConstraints{
		Meta: constrain.Meta{Name: "Label", Nullable: true},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if none.Default != nil || none.OneOf[0].Default != nil {
		t.Fatalf("no declared default may appear anywhere, got %+v", none)
	}
}

func TestBuild_ReadOnlyWithDefaultIsConstant(t *testing.T) {
	b := js.NewBuilder()
	s, err := b.Build(&constrain.TextConstraints{
		Meta: constrain.Meta{
			Name:       "ID",
			ReadOnly:   true,
			Default:    "fixed",
			HasDefault: true,
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !s.ReadOnly {
		t.Fatalf("expected readOnly")
	}
	if s.Title != "ReadOnlyID" {
		t.Fatalf("expected ReadOnlyID, got %q", s.Title)
	}
	if len(s.Enum) != 1 || s.Enum[0] != "fixed" {
		t.Fatalf("read-only default must collapse to a single-member enum, got %v", s.Enum)
	}
}

func TestBuild_WriteOnly(t *testing.T) {
	b := js.NewBuilder()
	s, err := b.Build(&constrain.TextConstraints{
		Meta: constrain.Meta{Name: "Secret", WriteOnly: true},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !s.WriteOnly || s.Title != "WriteOnlySecret" {
		t.Fatalf("expected write-only wrapping, got %+v", s)
	}
}

func TestBuild_MemoizedByIdentity(t *testing.T) {
	b := js.NewBuilder()
	c := &constrain.TextConstraints{Meta: constrain.Meta{Name: "Same"}}
	first, err := b.Build(c)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	second, err := b.Build(c)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if first != second {
		t.Fatalf("expected the identical schema object on rebuild")
	}
}

func TestBuild_CycleEmitsRef(t *testing.T) {
	user := &constrain.StructuredConstraints{
		Meta:     constrain.Meta{Name: "User"},
		Required: []string{"name"},
	}
	user.Fields = []constrain.Field{
		{Name: "name", Constraints: &constrain.TextConstraints{MinLength: intp(1)}},
		{Name: "friend", Constraints: user},
	}

	b := js.NewBuilder()
	s, err := b.Build(user)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	friend := s.Properties["friend"]
	if friend == nil || !friend.IsRef() {
		t.Fatalf("self reference must become a $ref, got %+v", friend)
	}
	if friend.Ref != "#/definitions/User" {
		t.Fatalf("unexpected ref %q", friend.Ref)
	}
	if s.Properties["name"].Type != "string" {
		t.Fatalf("non-cyclic members must build normally")
	}
}

func TestBuild_TupleAndMapping(t *testing.T) {
	b := js.NewBuilder()
	tuple, err := b.Build(&constrain.StructuredConstraints{
		Meta:  constrain.Meta{Name: "Pair"},
		Tuple: true,
		Fields: []constrain.Field{
			{Name: "0", Constraints: &constrain.TextConstraints{}},
			{Name: "1", Constraints: &constrain.NumberConstraints{}},
		},
	})
	if err != nil {
		t.Fatalf("build tuple: %v", err)
	}
	if tuple.Type != "array" || len(tuple.PrefixItems) != 2 {
		t.Fatalf("unexpected tuple schema %+v", tuple)
	}
	if *tuple.MinItems != 2 || *tuple.MaxItems != 2 {
		t.Fatalf("tuple arity must pin minItems and maxItems")
	}

	mapping, err := b.Build(&constrain.MappingConstraints{
		KeyPattern: `[a-z]+`,
		Values:     &constrain.NumberConstraints{GE: floatp(0)},
	})
	if err != nil {
		t.Fatalf("build mapping: %v", err)
	}
	if mapping.Type != "object" || mapping.PropertyNames == nil || mapping.PropertyNames.Pattern != `[a-z]+` {
		t.Fatalf("unexpected mapping schema %+v", mapping)
	}
	if _, ok := mapping.AdditionalProperties.(*js.Schema); !ok {
		t.Fatalf("values must map to additionalProperties")
	}
}

func TestAll_HoistsTitledDefinitions(t *testing.T) {
	address := &constrain.StructuredConstraints{
		Meta: constrain.Meta{Name: "Address"},
		Fields: []constrain.Field{
			{Name: "city", Constraints: &constrain.TextConstraints{MinLength: intp(1)}},
		},
	}
	user := &constrain.StructuredConstraints{
		Meta: constrain.Meta{Name: "User"},
		Fields: []constrain.Field{
			{Name: "name", Constraints: &constrain.TextConstraints{MinLength: intp(1)}},
			{Name: "address", Constraints: address},
		},
	}

	b := js.NewBuilder()
	b.Attach(user)
	b.Attach(address)
	pkg, err := b.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}

	if _, ok := pkg.Definitions["User"]; !ok {
		t.Fatalf("User must be hoisted into definitions")
	}
	if _, ok := pkg.Definitions["Address"]; !ok {
		t.Fatalf("Address must be hoisted into definitions")
	}
	nested := pkg.Definitions["User"].Properties["address"]
	if nested == nil || nested.Ref != "#/definitions/Address" {
		t.Fatalf("nested titled schema must become a ref, got %+v", nested)
	}
	if len(pkg.OneOf) != 2 {
		t.Fatalf("expected two attached roots, got %d", len(pkg.OneOf))
	}
	for _, root := range pkg.OneOf {
		if !root.IsRef() {
			t.Fatalf("roots must be emitted as refs, got %+v", root)
		}
	}
}

func TestBuild_EnumAndUnion(t *testing.T) {
	b := js.NewBuilder()
	enum, err := b.Build(&constrain.EnumerationConstraints{Items: []any{"a", "b"}})
	if err != nil {
		t.Fatalf("build enum: %v", err)
	}
	if enum.Type != "string" || len(enum.Enum) != 2 {
		t.Fatalf("unexpected enum schema %+v", enum)
	}

	union, err := b.Build(&constrain.MultiConstraints{
		Alternatives: []constrain.Constraint{
			&constrain.TextConstraints{},
			&constrain.NumberConstraints{},
		},
	})
	if err != nil {
		t.Fatalf("build union: %v", err)
	}
	if len(union.OneOf) != 2 {
		t.Fatalf("expected oneOf with two branches, got %+v", union)
	}
}
